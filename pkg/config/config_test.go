package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViperAppliesDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)
	require.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, "smk_cms", cfg.Database.Name)
	assert.Equal(t, time.Hour, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, 5, cfg.Database.ConnectAttempts)
	assert.Equal(t, 5*time.Minute, cfg.Dashboard.CacheTTL)
	assert.Equal(t, "PPDB", cfg.Admissions.RegistrationPrefix)
	assert.Equal(t, "10-M", cfg.Admissions.IntakeRate)
	assert.Equal(t, 5000, cfg.Admissions.ExportMaxRows)
	assert.Nil(t, cfg.CORS.AllowedOrigins)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("DASHBOARD_CACHE_TTL", "not-a-duration")
	v.Set("ALLOWED_ORIGINS", " https://smk.sch.id/ , ,https://admin.smk.sch.id")
	v.Set("PPDB_REGISTRATION_PREFIX", " spmb ")
	v.Set("PPDB_EXPORT_MAX_ROWS", -1)
	v.Set("REDIS_URL", " redis://cache:6379/2 ")
	v.Set("DB_CONN_MAX_LIFETIME", "15m")

	cfg := fromViper(v)
	assert.Equal(t, 5*time.Minute, cfg.Dashboard.CacheTTL)
	assert.Equal(t, []string{"https://smk.sch.id/", "https://admin.smk.sch.id"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "SPMB", cfg.Admissions.RegistrationPrefix)
	assert.Equal(t, 5000, cfg.Admissions.ExportMaxRows)
	assert.Equal(t, "redis://cache:6379/2", cfg.Redis.URL)
	assert.Equal(t, 15*time.Minute, cfg.Database.ConnMaxLifetime)
}
