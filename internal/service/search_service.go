package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/chupolovski/planner-api/internal/dto"
	"github.com/chupolovski/planner-api/internal/timetable"
	appErrors "github.com/chupolovski/planner-api/pkg/errors"
)

const (
	// SearchModeGroups explores one-per-elective-group products.
	SearchModeGroups = "groups"
	// SearchModePriority walks an ordered wishlist greedily.
	SearchModePriority = "priority"
)

// SearchConfig tunes result caching and default sizing.
type SearchConfig struct {
	CacheTTL     time.Duration
	DefaultLimit int
}

// SearchService runs combination searches over the current catalog pool and
// caches ranked results keyed by a request digest.
type SearchService struct {
	catalog   poolProvider
	cache     *CacheService
	metrics   *MetricsService
	cfg       SearchConfig
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSearchService creates the search service.
func NewSearchService(catalog poolProvider, cache *CacheService, metrics *MetricsService, cfg SearchConfig, validate *validator.Validate, logger *zap.Logger) *SearchService {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = timetable.DefaultSearchLimit
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchService{catalog: catalog, cache: cache, metrics: metrics, cfg: cfg, validator: validate, logger: logger}
}

// SearchGroups ranks conflict-free selections taking exactly one course per
// group, each optional course independently in or out. A course key may
// appear in at most one group.
func (s *SearchService) SearchGroups(ctx context.Context, req dto.GroupSearchRequest) (*dto.SearchResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid group search payload")
	}
	seen := make(map[string]int)
	for i, group := range req.Groups {
		for _, key := range group.Alternatives {
			if prev, dup := seen[key]; dup && prev != i {
				return nil, appErrors.Clone(appErrors.ErrValidation, "course "+key+" appears in more than one group")
			}
			seen[key] = i
		}
	}

	limit := req.Limit
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}

	cacheKey := searchCacheKey(SearchModeGroups, req)
	if resp, ok := s.cached(ctx, cacheKey); ok {
		return resp, nil
	}

	pool := s.catalog.Pool()
	groups := make([]timetable.ElectiveGroup, 0, len(req.Groups))
	for _, g := range req.Groups {
		groups = append(groups, timetable.ElectiveGroup{Name: g.Name, Alternatives: g.Alternatives})
	}

	start := time.Now()
	combos := timetable.GenerateGroupCombinations(ctx, pool, groups, req.Optional, limit)
	s.metrics.ObserveSearch(SearchModeGroups, len(combos), time.Since(start))

	resp := s.respond(SearchModeGroups, combos)
	s.store(ctx, cacheKey, resp)
	return resp, nil
}

// SearchPriority ranks the greedy schedule of an ordered wishlist together
// with alternatives that skip blocking courses.
func (s *SearchService) SearchPriority(ctx context.Context, req dto.PrioritySearchRequest) (*dto.SearchResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid priority search payload")
	}

	limit := req.Limit
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}

	cacheKey := searchCacheKey(SearchModePriority, req)
	if resp, ok := s.cached(ctx, cacheKey); ok {
		return resp, nil
	}

	pool := s.catalog.Pool()

	start := time.Now()
	combos := timetable.GeneratePrioritySchedules(ctx, pool, req.Courses, limit)
	s.metrics.ObserveSearch(SearchModePriority, len(combos), time.Since(start))

	resp := s.respond(SearchModePriority, combos)
	s.store(ctx, cacheKey, resp)
	return resp, nil
}

func (s *SearchService) respond(mode string, combos []timetable.Combination) *dto.SearchResponse {
	resp := &dto.SearchResponse{Mode: mode, Combinations: make([]dto.CombinationResponse, 0, len(combos))}
	for _, c := range combos {
		resp.Combinations = append(resp.Combinations, dto.CombinationResponse{
			Courses:      c.Courses,
			DaysAttended: c.DaysAttended,
			IdleHours:    c.IdleHours,
		})
	}
	return resp
}

func (s *SearchService) cached(ctx context.Context, key string) (*dto.SearchResponse, bool) {
	if s.cache == nil {
		return nil, false
	}
	var resp dto.SearchResponse
	hit, err := s.cache.Get(ctx, key, &resp)
	if err != nil || !hit {
		return nil, false
	}
	resp.Cached = true
	return &resp, true
}

func (s *SearchService) store(ctx context.Context, key string, resp *dto.SearchResponse) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, resp, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("search cache store failed", zap.String("key", key), zap.Error(err))
	}
}

// searchCacheKey digests the request payload so identical searches share a
// cache entry. Invalidated by pattern search:* on catalog import.
func searchCacheKey(mode string, req interface{}) string {
	payload, err := json.Marshal(req)
	if err != nil {
		return "search:" + mode + ":unkeyed"
	}
	sum := sha256.Sum256(payload)
	return "search:" + mode + ":" + hex.EncodeToString(sum[:])
}
