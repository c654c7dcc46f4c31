package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
	}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, BackendUpstream, cfg.CatalogBackend)
	assert.Equal(t, BackendUpstream, cfg.SearchBackend)
	assert.Equal(t, 60*time.Second, cfg.CodesCacheTTL)
	assert.Equal(t, 20*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, "partlens", cfg.Mongo.Database)
	assert.Equal(t, "recognition-api", cfg.Mongo.AppName)
	assert.Equal(t, 5*time.Second, cfg.Mongo.ServerSelectionTimeout)
	assert.Equal(t, uint64(50), cfg.Mongo.MaxPoolSize)
	assert.Empty(t, cfg.Redis.Password)
	assert.Equal(t, 10, cfg.Redis.PoolSize)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.UsesBigQuery())
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	assert.Error(t, err)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":                     "s3cret",
		"ENV":                            "production",
		"CATALOG_BACKEND":                "BigQuery",
		"GCP_PROJECT_ID":                 "proj",
		"UPSTREAM_TIMEOUT":               "5s",
		"CORS_ORIGINS":                   "https://a.example,https://b.example",
		"MINIO_USE_SSL":                  "true",
		"REDIS_PASSWORD":                 "hunter2",
		"MONGO_APP_NAME":                 "recognition-api-eu",
		"MONGO_SERVER_SELECTION_TIMEOUT": "1500ms",
	}))
	require.NoError(t, err)

	assert.Equal(t, BackendBigQuery, cfg.CatalogBackend)
	assert.True(t, cfg.UsesBigQuery())
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 5*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, "hunter2", cfg.Redis.Password)
	assert.Equal(t, "recognition-api-eu", cfg.Mongo.AppName)
	assert.Equal(t, 1500*time.Millisecond, cfg.Mongo.ServerSelectionTimeout)
}

func TestLoad_InvalidBackend(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":     "s3cret",
		"SEARCH_BACKEND": "elastic",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SEARCH_BACKEND")
}

func TestLoad_BigQueryNeedsProject(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":     "s3cret",
		"SEARCH_BACKEND": "bigquery",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GCP_PROJECT_ID")
}
