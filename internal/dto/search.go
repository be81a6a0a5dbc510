package dto

// GroupRequest names one elective group for a group-mode search.
type GroupRequest struct {
	Name         string   `json:"name" validate:"required"`
	Alternatives []string `json:"alternatives" validate:"required,min=1,dive,required"`
}

// GroupSearchRequest drives the Cartesian-product search over elective
// groups plus optional ungrouped courses.
type GroupSearchRequest struct {
	Groups   []GroupRequest `json:"groups" validate:"required,min=1,dive"`
	Optional []string       `json:"optional" validate:"omitempty,dive,required"`
	Limit    int            `json:"limit" validate:"omitempty,min=1,max=100"`
}

// PrioritySearchRequest drives the priority-ordered wishlist search.
type PrioritySearchRequest struct {
	Courses []string `json:"courses" validate:"omitempty,dive,required"`
	Limit   int      `json:"limit" validate:"omitempty,min=1,max=100"`
}

// CombinationResponse is one ranked conflict-free selection.
type CombinationResponse struct {
	Courses      []string `json:"courses"`
	DaysAttended int      `json:"daysAttended"`
	IdleHours    float64  `json:"idleHours"`
}

// SearchResponse wraps the ranked list with how it was produced.
type SearchResponse struct {
	Mode         string                `json:"mode"`
	Combinations []CombinationResponse `json:"combinations"`
	Cached       bool                  `json:"cached"`
}
