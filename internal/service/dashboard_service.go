package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/academic-dashboard/internal/chart"
	"github.com/stemsi/academic-dashboard/internal/config"
	"github.com/stemsi/academic-dashboard/internal/dashboard"
	"github.com/stemsi/academic-dashboard/internal/model"
	"github.com/stemsi/academic-dashboard/internal/repository"
)

var (
	ErrUnknownSchool  = errors.New("unknown school")
	ErrInvalidSortKey = errors.New("invalid sort key")
)

// ViewCache stores computed views between requests. Implemented by
// repository.ViewCacheRepository; nil disables caching.
type ViewCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Flush(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}

// SortOption is a sort key paired with its display label.
type SortOption struct {
	Key   model.SortKey `json:"key"`
	Label string        `json:"label"`
}

// SchoolsData lists what the dashboard controls can choose from.
type SchoolsData struct {
	Schools  []string     `json:"schools"`
	SortKeys []SortOption `json:"sort_keys"`
}

// DashboardService renders dashboard views over the embedded school dataset.
type DashboardService struct {
	schools   *repository.SchoolRepository
	cache     ViewCache
	ttl       time.Duration
	chartOpts chart.Options
	log       zerolog.Logger
}

// NewDashboardService creates a new DashboardService. cache may be nil.
func NewDashboardService(
	schools *repository.SchoolRepository,
	cache ViewCache,
	cfg *config.Config,
	log zerolog.Logger,
) *DashboardService {
	return &DashboardService{
		schools:   schools,
		cache:     cache,
		ttl:       cfg.RenderCacheTTL,
		chartOpts: chart.Options{Width: cfg.ChartWidth, Height: cfg.ChartHeight},
		log:       log.With().Str("component", "dashboard_service").Logger(),
	}
}

// Schools returns the school names in dataset order and the available sort keys.
func (s *DashboardService) Schools(_ context.Context) SchoolsData {
	opts := make([]SortOption, len(model.SortKeys))
	for i, k := range model.SortKeys {
		opts[i] = SortOption{Key: k, Label: k.Label()}
	}
	return SchoolsData{Schools: s.schools.Names(), SortKeys: opts}
}

// Normalize validates state and fills defaults. Duplicate names are dropped;
// an empty selection stays empty and means every school.
func (s *DashboardService) Normalize(state model.ViewState) (model.ViewState, error) {
	if state.SortKey == "" {
		state.SortKey = model.DefaultSortKey
	}
	if !state.SortKey.Valid() {
		return state, fmt.Errorf("%w: %q", ErrInvalidSortKey, state.SortKey)
	}

	seen := make(map[string]struct{}, len(state.Selected))
	selected := make([]string, 0, len(state.Selected))
	for _, name := range state.Selected {
		if !s.schools.Has(name) {
			return state, fmt.Errorf("%w: %q", ErrUnknownSchool, name)
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		selected = append(selected, name)
	}
	state.Selected = selected
	return state, nil
}

// Render returns the dashboard view for state.
func (s *DashboardService) Render(ctx context.Context, state model.ViewState) (*dashboard.View, error) {
	state, err := s.Normalize(state)
	if err != nil {
		return nil, err
	}

	key := config.CacheKey.DashboardViewKey(string(state.SortKey), state.Selected)
	if v, ok := s.cached(ctx, key); ok {
		v.State = state
		v = dashboard.WithTable(v, state.ShowTable)
		return &v, nil
	}

	v := dashboard.Render(s.schools.All(), state)
	s.store(ctx, key, v)
	return &v, nil
}

// PrewarmCache stores the unfiltered view for every sort key, so the first page
// loads after startup are served from the cache. Returns how many views were written.
func (s *DashboardService) PrewarmCache(ctx context.Context) int {
	if s.cache == nil {
		return 0
	}

	records := s.schools.All()
	warmed := 0
	for _, k := range model.SortKeys {
		key := config.CacheKey.DashboardViewKey(string(k), nil)
		data, err := json.Marshal(dashboard.Render(records, model.ViewState{SortKey: k}))
		if err != nil {
			s.log.Warn().Err(err).Str("sort", string(k)).Msg("marshal view for prewarm")
			continue
		}
		if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("Failed to prewarm view, skipping")
			continue
		}
		warmed++
	}

	s.log.Info().
		Int("warmed", warmed).
		Int("total", len(model.SortKeys)).
		Msg("Render cache prewarmed")
	return warmed
}

// FlushCache drops every cached view. It is a no-op without a cache.
func (s *DashboardService) FlushCache(ctx context.Context) (int64, error) {
	if s.cache == nil {
		return 0, nil
	}
	return s.cache.Flush(ctx)
}

// CacheStatus reports "disabled", "ok" or "unavailable".
func (s *DashboardService) CacheStatus(ctx context.Context) string {
	if s.cache == nil {
		return "disabled"
	}
	if err := s.cache.Ping(ctx); err != nil {
		s.log.Warn().Err(err).Msg("render cache ping failed")
		return "unavailable"
	}
	return "ok"
}

func (s *DashboardService) cached(ctx context.Context, key string) (dashboard.View, bool) {
	var v dashboard.View
	if s.cache == nil {
		return v, false
	}

	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("render cache read failed")
		return v, false
	}
	if !ok {
		return v, false
	}
	if err := json.Unmarshal(data, &v); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("discarding unreadable cached view")
		return v, false
	}
	return v, true
}

func (s *DashboardService) store(ctx context.Context, key string, v dashboard.View) {
	if s.cache == nil {
		return
	}

	// Table rows are derived from the flag on every read.
	data, err := json.Marshal(dashboard.WithTable(v, false))
	if err != nil {
		s.log.Warn().Err(err).Msg("marshal view for cache")
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("render cache write failed")
	}
}
