package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"SERVER_PORT", "GIN_MODE", "LOG_LEVEL", "LOG_FORMAT", "REDIS_URL",
		"RENDER_CACHE_TTL_SECONDS", "ALLOWED_ORIGINS", "RATE_LIMIT_PER_MINUTE",
		"CHART_WIDTH", "CHART_HEIGHT",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "debug", cfg.GinMode)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "auto", cfg.LogFormat)
	assert.Equal(t, 5*time.Minute, cfg.RenderCacheTTL)
	assert.Equal(t, 120, cfg.RateLimitPerMinute)
	assert.Equal(t, 1600, cfg.ChartWidth)
	assert.Equal(t, 700, cfg.ChartHeight)
	assert.Nil(t, cfg.AllowedOrigins)
	assert.False(t, cfg.CacheEnabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("RENDER_CACHE_TTL_SECONDS", "30")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "0")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg := Load()

	assert.True(t, cfg.CacheEnabled())
	assert.Equal(t, 30*time.Second, cfg.RenderCacheTTL)
	assert.Equal(t, 0, cfg.RateLimitPerMinute)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  int
	}{
		{"unset", "", 7},
		{"valid", "42", 42},
		{"zero", "0", 0},
		{"negative falls back", "-1", 7},
		{"garbage falls back", "many", 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_INT", tt.value)
			assert.Equal(t, tt.want, getEnvInt("TEST_INT", 7))
		})
	}
}

func TestParseOrigins(t *testing.T) {
	assert.Nil(t, parseOrigins(""))
	assert.Equal(t, []string{"https://a.example"}, parseOrigins(" https://a.example ,, "))
}

func TestDashboardViewKey(t *testing.T) {
	a := CacheKey.DashboardViewKey("passed", []string{"Medicina", "Educación"})
	b := CacheKey.DashboardViewKey("passed", []string{"Educación", "Medicina"})
	assert.Equal(t, a, b, "selection order must not change the key")
	assert.Regexp(t, `^dashboard:view:passed:[0-9a-f]{16}$`, a)

	assert.NotEqual(t, a, CacheKey.DashboardViewKey("failed", []string{"Medicina", "Educación"}))
	assert.NotEqual(t, a, CacheKey.DashboardViewKey("passed", []string{"Medicina"}))
	assert.NotEqual(t,
		CacheKey.DashboardViewKey("passed", []string{"ab", "c"}),
		CacheKey.DashboardViewKey("passed", []string{"a", "bc"}),
	)
}

func TestDashboardViewKey_DoesNotMutateInput(t *testing.T) {
	selected := []string{"Medicina", "Educación"}
	CacheKey.DashboardViewKey("enrolled", selected)
	assert.Equal(t, []string{"Medicina", "Educación"}, selected)
}
