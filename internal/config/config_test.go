package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://project.supabase.co")
	t.Setenv("SUPABASE_ANON_KEY", "anon-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "niko-auth-gateway", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, 10*time.Second, cfg.Supabase.RequestTimeout())
	assert.Equal(t, "nikobathrooms.ie", cfg.Webflow.ProductionHost)
	assert.Equal(t, "https://nikobathrooms.webflow.io", cfg.Webflow.StagingOrigin)
	assert.Equal(t, "/dev/app/auth/log-in", cfg.Routes.Login)
	assert.Equal(t, "/dev/app/customer/dashboard", cfg.Routes.CustomerDashboard)
	assert.Equal(t, "127.0.0.1:6379", cfg.Redis.Addr)
	assert.True(t, cfg.Gating.FinsweetIntegration)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://project.supabase.co")
	t.Setenv("SUPABASE_ANON_KEY", "anon-key")
	t.Setenv("SUPABASE_REQUEST_TIMEOUT_MS", "2500")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("GATING_FINSWEET_INTEGRATION", "false")
	t.Setenv("ROUTE_RETAILER_DASHBOARD", "/app/retailer/home")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2500*time.Millisecond, cfg.Supabase.RequestTimeout())
	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.False(t, cfg.Gating.FinsweetIntegration)
	assert.Equal(t, "/app/retailer/home", cfg.Routes.RetailerDashboard)
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_ANON_KEY", "anon-key")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SUPABASE_URL")

	t.Setenv("SUPABASE_URL", "https://project.supabase.co")
	t.Setenv("SUPABASE_ANON_KEY", "")

	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SUPABASE_ANON_KEY")
}

func TestLoadInvalidRedisDB(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://project.supabase.co")
	t.Setenv("SUPABASE_ANON_KEY", "anon-key")
	t.Setenv("REDIS_DB", "not-a-number")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_DB")
}
