package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/academic-dashboard/internal/config"
	"github.com/stemsi/academic-dashboard/internal/dashboard"
	"github.com/stemsi/academic-dashboard/internal/model"
	"github.com/stemsi/academic-dashboard/internal/repository"
)

// --- SETUP HELPERS ---

type mockViewCache struct {
	mock.Mock
}

func (m *mockViewCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	data, _ := args.Get(0).([]byte)
	return data, args.Bool(1), args.Error(2)
}

func (m *mockViewCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return m.Called(ctx, key, data, ttl).Error(0)
}

func (m *mockViewCache) Flush(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockViewCache) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func testConfig() *config.Config {
	return &config.Config{RenderCacheTTL: time.Minute, ChartWidth: 800, ChartHeight: 500}
}

func newTestService(cache ViewCache) *DashboardService {
	return NewDashboardService(repository.NewSchoolRepository(), cache, testConfig(), zerolog.Nop())
}

// --- TEST CASES ---

func TestNormalize(t *testing.T) {
	svc := newTestService(nil)

	t.Run("defaults sort key", func(t *testing.T) {
		state, err := svc.Normalize(model.ViewState{})
		require.NoError(t, err)
		assert.Equal(t, model.SortByEnrolled, state.SortKey)
		assert.Empty(t, state.Selected)
	})

	t.Run("drops duplicates", func(t *testing.T) {
		state, err := svc.Normalize(model.ViewState{Selected: []string{"Medicina", "Educación", "Medicina"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"Medicina", "Educación"}, state.Selected)
	})

	t.Run("rejects unknown school", func(t *testing.T) {
		_, err := svc.Normalize(model.ViewState{Selected: []string{"Medicina", "Arquitectura"}})
		assert.ErrorIs(t, err, ErrUnknownSchool)
		assert.Contains(t, err.Error(), "Arquitectura")
	})

	t.Run("rejects unknown sort key", func(t *testing.T) {
		_, err := svc.Normalize(model.ViewState{SortKey: "name"})
		assert.ErrorIs(t, err, ErrInvalidSortKey)
	})
}

func TestRender_WithoutCache(t *testing.T) {
	svc := newTestService(nil)

	v, err := svc.Render(context.Background(), model.ViewState{
		Selected: []string{"Medicina", "Derecho y Ciencia Política"},
		SortKey:  model.SortByPassed,
	})
	require.NoError(t, err)

	require.Len(t, v.Rows, 2)
	assert.Equal(t, "Derecho y Ciencia Política", v.Rows[0].Name)
	assert.Equal(t, 2245, v.Totals.Passed)
}

func TestRender_EmptySelectionEqualsAll(t *testing.T) {
	svc := newTestService(nil)
	ctx := context.Background()

	all, err := svc.Render(ctx, model.ViewState{Selected: svc.Schools(ctx).Schools})
	require.NoError(t, err)
	empty, err := svc.Render(ctx, model.ViewState{})
	require.NoError(t, err)

	assert.Equal(t, all.Rows, empty.Rows)
	assert.Equal(t, all.Totals, empty.Totals)
}

func TestRender_CacheMissStoresViewWithoutTable(t *testing.T) {
	cache := new(mockViewCache)
	svc := newTestService(cache)
	state := model.ViewState{Selected: []string{"Medicina"}, SortKey: model.SortByFailed, ShowTable: true}
	key := config.CacheKey.DashboardViewKey("failed", []string{"Medicina"})

	var stored []byte
	cache.On("Get", mock.Anything, key).Return(nil, false, nil)
	cache.On("Set", mock.Anything, key, mock.Anything, time.Minute).
		Run(func(args mock.Arguments) { stored = args.Get(2).([]byte) }).
		Return(nil)

	v, err := svc.Render(context.Background(), state)
	require.NoError(t, err)
	assert.Len(t, v.Table, 1)

	var cached dashboard.View
	require.NoError(t, json.Unmarshal(stored, &cached))
	assert.Nil(t, cached.Table)
	assert.Equal(t, v.Rows, cached.Rows)
	cache.AssertExpectations(t)
}

func TestRender_CacheHit(t *testing.T) {
	cache := new(mockViewCache)
	svc := newTestService(cache)
	records := repository.NewSchoolRepository().All()

	fresh := dashboard.Render(records, model.ViewState{Selected: []string{"Odontología", "Medicina"}, SortKey: model.SortByPctPassed})
	data, err := json.Marshal(fresh)
	require.NoError(t, err)

	// Selection order differs from the cached one but maps to the same key.
	state := model.ViewState{Selected: []string{"Medicina", "Odontología"}, SortKey: model.SortByPctPassed, ShowTable: true}
	key := config.CacheKey.DashboardViewKey("pctPassed", state.Selected)
	cache.On("Get", mock.Anything, key).Return(data, true, nil)

	v, err := svc.Render(context.Background(), state)
	require.NoError(t, err)

	assert.Equal(t, fresh.Rows, v.Rows)
	assert.Equal(t, state.Selected, v.State.Selected)
	assert.True(t, v.State.ShowTable)
	assert.Equal(t, v.Rows, v.Table)
	require.Len(t, v.Figure.Data, 5)

	want, err := json.Marshal(fresh.Figure)
	require.NoError(t, err)
	got, err := json.Marshal(v.Figure)
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(got))
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRender_CacheFailuresAreNotFatal(t *testing.T) {
	cache := new(mockViewCache)
	svc := newTestService(cache)

	cache.On("Get", mock.Anything, mock.Anything).Return(nil, false, errors.New("connection refused"))
	cache.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	v, err := svc.Render(context.Background(), model.DefaultViewState())
	require.NoError(t, err)
	assert.Len(t, v.Rows, 20)
}

func TestRender_CorruptCacheEntryIsRecomputed(t *testing.T) {
	cache := new(mockViewCache)
	svc := newTestService(cache)

	cache.On("Get", mock.Anything, mock.Anything).Return([]byte("{not json"), true, nil)
	cache.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	v, err := svc.Render(context.Background(), model.DefaultViewState())
	require.NoError(t, err)
	assert.Len(t, v.Rows, 20)
	cache.AssertCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRender_InvalidStateSkipsCache(t *testing.T) {
	cache := new(mockViewCache)
	svc := newTestService(cache)

	_, err := svc.Render(context.Background(), model.ViewState{Selected: []string{"Arquitectura"}})
	assert.ErrorIs(t, err, ErrUnknownSchool)
	cache.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestCacheStatus(t *testing.T) {
	assert.Equal(t, "disabled", newTestService(nil).CacheStatus(context.Background()))

	healthy := new(mockViewCache)
	healthy.On("Ping", mock.Anything).Return(nil)
	assert.Equal(t, "ok", newTestService(healthy).CacheStatus(context.Background()))

	broken := new(mockViewCache)
	broken.On("Ping", mock.Anything).Return(errors.New("timeout"))
	assert.Equal(t, "unavailable", newTestService(broken).CacheStatus(context.Background()))
}

func TestFlushCache(t *testing.T) {
	n, err := newTestService(nil).FlushCache(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	cache := new(mockViewCache)
	cache.On("Flush", mock.Anything).Return(int64(3), nil)
	n, err = newTestService(cache).FlushCache(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestSchools(t *testing.T) {
	data := newTestService(nil).Schools(context.Background())

	assert.Len(t, data.Schools, 20)
	require.Len(t, data.SortKeys, 5)
	assert.Equal(t, SortOption{Key: model.SortByEnrolled, Label: "Matriculados"}, data.SortKeys[0])
	assert.Equal(t, SortOption{Key: model.SortByPctFailed, Label: "% Desaprobados"}, data.SortKeys[4])
}

func TestPrewarmCache(t *testing.T) {
	assert.Zero(t, newTestService(nil).PrewarmCache(context.Background()))

	t.Run("writes one view per sort key", func(t *testing.T) {
		cache := new(mockViewCache)
		cache.On("Set", mock.Anything, mock.Anything, mock.Anything, time.Minute).Return(nil)

		assert.Equal(t, 5, newTestService(cache).PrewarmCache(context.Background()))
		cache.AssertNumberOfCalls(t, "Set", 5)
	})

	t.Run("skips failed writes", func(t *testing.T) {
		cache := new(mockViewCache)
		failing := config.CacheKey.DashboardViewKey(string(model.SortByPassed), nil)
		cache.On("Set", mock.Anything, failing, mock.Anything, mock.Anything).Return(errors.New("connection refused"))
		cache.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

		assert.Equal(t, 4, newTestService(cache).PrewarmCache(context.Background()))
	})

	t.Run("prewarmed view serves the unfiltered request", func(t *testing.T) {
		cache := new(mockViewCache)
		key := config.CacheKey.DashboardViewKey(string(model.SortByEnrolled), nil)

		var stored []byte
		cache.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				if args.String(1) == key {
					stored = args.Get(2).([]byte)
				}
			}).
			Return(nil)

		svc := newTestService(cache)
		svc.PrewarmCache(context.Background())
		require.NotNil(t, stored)

		cache.On("Get", mock.Anything, key).Return(stored, true, nil)
		v, err := svc.Render(context.Background(), model.DefaultViewState())
		require.NoError(t, err)
		assert.Equal(t, 31849, v.Totals.Enrolled)
		assert.Equal(t, "Ciencias Contables", v.Rows[0].Name)
	})
}
