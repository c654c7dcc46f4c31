package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Backend names accepted by CATALOG_BACKEND and SEARCH_BACKEND.
const (
	BackendUpstream = "upstream"
	BackendBigQuery = "bigquery"
)

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`
	JWTSecret string        `env:"JWT_SECRET, required"`
	JWTTTL    time.Duration `env:"JWT_TTL,   default=24h"`

	CatalogBackend string        `env:"CATALOG_BACKEND, default=upstream"`
	SearchBackend  string        `env:"SEARCH_BACKEND,  default=upstream"`
	CodesCacheTTL  time.Duration `env:"CODES_CACHE_TTL, default=60s"`

	CORSOrigins     []string `env:"CORS_ORIGINS,       default=*"`
	LoginRatePerMin int      `env:"LOGIN_RATE_PER_MIN, default=20"`

	Mongo    MongoConfig
	Redis    RedisConfig
	Upstream UpstreamConfig
	GCP      GCPConfig
	MinIO    MinIOConfig
	Admin    AdminConfig
}

type MongoConfig struct {
	URI                    string        `env:"MONGO_URI,                      default=mongodb://localhost:27017"`
	Database               string        `env:"MONGO_DB,                       default=partlens"`
	AppName                string        `env:"MONGO_APP_NAME,                 default=recognition-api"`
	ServerSelectionTimeout time.Duration `env:"MONGO_SERVER_SELECTION_TIMEOUT, default=5s"`
	MaxPoolSize            uint64        `env:"MONGO_MAX_POOL_SIZE,            default=50"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,      default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,        default=0"`
	PoolSize int    `env:"REDIS_POOL_SIZE, default=10"`
}

type UpstreamConfig struct {
	BaseURL string        `env:"UPSTREAM_BASE_URL, default=http://localhost:8000"`
	Timeout time.Duration `env:"UPSTREAM_TIMEOUT,  default=20s"`
}

type GCPConfig struct {
	ProjectID       string `env:"GCP_PROJECT_ID"`
	CredentialsJSON string `env:"GCP_CREDENTIALS_JSON"`
	CredentialsFile string `env:"GCP_CREDENTIALS_FILE"`
	Dataset         string `env:"BQ_DATASET,      default=sku_dataset"`
	MasterTable     string `env:"BQ_MASTER_TABLE, default=master_table"`
	ImagesTable     string `env:"BQ_IMAGES_TABLE, default=sku_images"`
}

type MinIOConfig struct {
	Endpoint  string        `env:"MINIO_ENDPOINT,   default=localhost:9000"`
	AccessKey string        `env:"MINIO_ACCESS_KEY"`
	SecretKey string        `env:"MINIO_SECRET_KEY"`
	Bucket    string        `env:"MINIO_BUCKET,     default=feedback-images"`
	Region    string        `env:"MINIO_REGION,     default=us-east-1"`
	UseSSL    bool          `env:"MINIO_USE_SSL,    default=false"`
	URLExpiry time.Duration `env:"MINIO_URL_EXPIRY, default=1h"`
}

// AdminConfig seeds the first Admin account at startup when both are set.
type AdminConfig struct {
	Username string `env:"ADMIN_USERNAME"`
	Password string `env:"ADMIN_PASSWORD"`
}

// IsDevelopment reports whether pretty console logging should be used.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// UsesBigQuery reports whether any backend toggle needs a BigQuery client.
func (c *Config) UsesBigQuery() bool {
	return c.CatalogBackend == BackendBigQuery || c.SearchBackend == BackendBigQuery
}

// Load reads an optional .env file, then environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints envconfig cannot express.
func (c *Config) Validate() error {
	c.CatalogBackend = strings.ToLower(strings.TrimSpace(c.CatalogBackend))
	c.SearchBackend = strings.ToLower(strings.TrimSpace(c.SearchBackend))

	for name, v := range map[string]string{"CATALOG_BACKEND": c.CatalogBackend, "SEARCH_BACKEND": c.SearchBackend} {
		if v != BackendUpstream && v != BackendBigQuery {
			return fmt.Errorf("config: %s must be %q or %q, got %q", name, BackendUpstream, BackendBigQuery, v)
		}
	}
	if c.UsesBigQuery() && strings.TrimSpace(c.GCP.ProjectID) == "" {
		return errors.New("config: GCP_PROJECT_ID is required for the bigquery backend")
	}
	if c.CodesCacheTTL < 0 {
		return errors.New("config: CODES_CACHE_TTL must not be negative")
	}
	if c.Mongo.ServerSelectionTimeout <= 0 {
		return errors.New("config: MONGO_SERVER_SELECTION_TIMEOUT must be positive")
	}
	if c.LoginRatePerMin <= 0 {
		return errors.New("config: LOGIN_RATE_PER_MIN must be positive")
	}
	return nil
}
