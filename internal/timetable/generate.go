package timetable

import (
	"context"
	"sort"
	"strings"
)

// DefaultSearchLimit caps how many ranked combinations a search returns
// when the caller does not ask for a specific count.
const DefaultSearchLimit = 10

// maxAlternativePasses bounds how many greedy variants the priority search
// explores beyond the pure greedy pass.
const maxAlternativePasses = 4

// ElectiveGroup names a set of mutually exclusive course alternatives from
// which exactly one must be chosen.
type ElectiveGroup struct {
	Name         string   `json:"name"`
	Alternatives []string `json:"alternatives"`
}

// Combination is one conflict-free course selection snapshot produced by a
// search. It is never mutated after creation.
type Combination struct {
	Courses      []string `json:"courses"`
	DaysAttended int      `json:"daysAttended"`
	IdleHours    float64  `json:"idleHours"`
}

// GenerateGroupCombinations explores the Cartesian product of one course per
// elective group, plus each ungrouped optional course independently in or
// out, pruning any prefix that already contains a pairwise conflict. The
// surviving selections are ranked ascending by (days attended, idle hours),
// preferring larger selections on full ties.
//
// Cancellation is best-effort: the context is checked between outer-loop
// iterations and a cancelled search returns the ranked prefix found so far.
func GenerateGroupCombinations(ctx context.Context, pool Pool, groups []ElectiveGroup, optional []string, limit int) []Combination {
	slots := make([][]string, 0, len(groups)+len(optional))
	grouped := make(map[string]struct{})
	for _, group := range groups {
		var candidates []string
		for _, key := range group.Alternatives {
			if _, ok := pool[key]; ok {
				candidates = append(candidates, key)
				grouped[key] = struct{}{}
			}
		}
		if len(candidates) == 0 {
			// A group with no resolvable alternative can never satisfy the
			// exactly-one rule, so no combination exists at all.
			return nil
		}
		slots = append(slots, candidates)
	}
	for _, key := range optional {
		if _, ok := pool[key]; !ok {
			continue
		}
		if _, dup := grouped[key]; dup {
			continue
		}
		grouped[key] = struct{}{}
		// Empty string marks "leave this optional course out".
		slots = append(slots, []string{key, ""})
	}
	if len(slots) == 0 {
		return nil
	}

	collector := newCombinationCollector(pool)
	selected := make([]string, 0, len(slots))
	cancelled := false

	var walk func(depth int)
	walk = func(depth int) {
		if cancelled {
			return
		}
		if depth == len(slots) {
			collector.add(selected)
			return
		}
		for _, key := range slots[depth] {
			if depth == 0 && ctx.Err() != nil {
				cancelled = true
				return
			}
			if key == "" {
				walk(depth + 1)
				continue
			}
			if conflictsWithSelection(pool, selected, key) {
				continue
			}
			selected = append(selected, key)
			walk(depth + 1)
			selected = selected[:len(selected)-1]
		}
	}
	walk(0)

	return rankCombinations(collector.combos, limit)
}

// GeneratePrioritySchedules builds conflict-free selections honouring a
// priority-ordered wishlist: one pure greedy pass, then alternative passes
// that each drop one high-priority course to surface maximal combinations
// the pure pass hides. Results are deduplicated by course set and ranked
// exactly like group-mode results. An empty list in means an empty list
// out; that is a normal outcome, not an error.
func GeneratePrioritySchedules(ctx context.Context, pool Pool, orderedCourseKeys []string, limit int) []Combination {
	order := make([]string, 0, len(orderedCourseKeys))
	for _, key := range orderedCourseKeys {
		if _, ok := pool[key]; ok {
			order = append(order, key)
		}
	}
	if len(order) == 0 {
		return nil
	}

	collector := newCombinationCollector(pool)
	accepted, blockers := greedySelect(pool, order, "")
	collector.add(accepted)

	// Alternative passes re-run the greedy construction with one blocking
	// course removed. Dropping a course that never blocked anything would
	// only yield a dominated subset, so blockers are the only candidates.
	passes := 0
	for _, blocker := range blockers {
		if passes >= maxAlternativePasses || ctx.Err() != nil {
			break
		}
		alternative, _ := greedySelect(pool, order, blocker)
		collector.add(alternative)
		passes++
	}

	return rankCombinations(collector.combos, limit)
}

// greedySelect walks the priority order once, accepting each course that
// does not conflict with anything already accepted; a conflicting course is
// skipped permanently for the pass. A non-empty exclude key is dropped
// outright, which is how alternative passes vary the construction. The
// second return lists accepted courses that blocked at least one later
// course, in acceptance order.
func greedySelect(pool Pool, order []string, exclude string) ([]string, []string) {
	var accepted []string
	blocked := make(map[string]struct{})
	var blockers []string
	for _, key := range order {
		if key == exclude {
			continue
		}
		sessions := pool[key].Sessions
		clash := ""
		for _, selectedKey := range accepted {
			if selectedKey == key || SchedulesConflict(sessions, pool[selectedKey].Sessions) {
				clash = selectedKey
				break
			}
		}
		if clash != "" {
			if _, seen := blocked[clash]; !seen {
				blocked[clash] = struct{}{}
				blockers = append(blockers, clash)
			}
			continue
		}
		accepted = append(accepted, key)
	}
	return accepted, blockers
}

func conflictsWithSelection(pool Pool, selected []string, candidate string) bool {
	candidateSessions := pool[candidate].Sessions
	for _, key := range selected {
		if key == candidate {
			return true
		}
		if SchedulesConflict(candidateSessions, pool[key].Sessions) {
			return true
		}
	}
	return false
}

// combinationCollector deduplicates selections by course set and scores
// each fresh one via the statistics calculator. Selections whose statistics
// cannot be computed are skipped; a batch search is best-effort.
type combinationCollector struct {
	pool   Pool
	seen   map[string]struct{}
	combos []Combination
}

func newCombinationCollector(pool Pool) *combinationCollector {
	return &combinationCollector{pool: pool, seen: make(map[string]struct{})}
}

func (c *combinationCollector) add(selection []string) {
	if len(selection) == 0 {
		return
	}
	keys := make([]string, len(selection))
	copy(keys, selection)
	sort.Strings(keys)
	signature := strings.Join(keys, "\x00")
	if _, dup := c.seen[signature]; dup {
		return
	}
	c.seen[signature] = struct{}{}

	days, err := DaysAttended(c.pool, keys)
	if err != nil {
		return
	}
	idle, err := IdleHours(c.pool, keys)
	if err != nil {
		return
	}
	c.combos = append(c.combos, Combination{Courses: keys, DaysAttended: days, IdleHours: idle})
}

func rankCombinations(combos []Combination, limit int) []Combination {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	sort.SliceStable(combos, func(i, j int) bool {
		if combos[i].DaysAttended != combos[j].DaysAttended {
			return combos[i].DaysAttended < combos[j].DaysAttended
		}
		if combos[i].IdleHours != combos[j].IdleHours {
			return combos[i].IdleHours < combos[j].IdleHours
		}
		return len(combos[i].Courses) > len(combos[j].Courses)
	})
	if len(combos) > limit {
		combos = combos[:limit]
	}
	return combos
}
