package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	LogLevel        string `env:"LOG_LEVEL" envDefault:"info"`
	APIServerAddr   string `env:"API_SERVER_ADDR" envDefault:":8080"`
	AdminServerAddr string `env:"ADMIN_SERVER_ADDR" envDefault:":9091"`

	StoreDriver  string `env:"STORE_DRIVER" envDefault:"file"` // memory, file, sqlite, postgres, redis
	StoreDir     string `env:"STORE_DIR" envDefault:"./data"`
	SQLitePath   string `env:"SQLITE_PATH" envDefault:"./data/brokerdesk.db"`
	PostgresURL  string `env:"POSTGRES_URL"`
	RedisURL     string `env:"REDIS_URL"`
	LeadStoreKey string `env:"LEAD_STORE_KEY" envDefault:"leads"`

	LeadIDStrategy string `env:"LEAD_ID_STRATEGY" envDefault:"sequence"` // sequence, uuid
	LeadIDPrefix   string `env:"LEAD_ID_PREFIX" envDefault:"LEAD"`

	IdentityDriver string            `env:"IDENTITY_DRIVER" envDefault:"static"` // static, postgres
	APIKeys        map[string]string `env:"API_KEYS" envKeyValSeparator:"="`     // key=username,key=username
	APIKeyCacheTTL time.Duration     `env:"API_KEY_CACHE_TTL" envDefault:"5m"`

	BlobDriver        string `env:"BLOB_DRIVER" envDefault:"fs"` // fs, s3
	BlobDir           string `env:"BLOB_DIR" envDefault:"./data/blobs"`
	BlobPublicBaseURL string `env:"BLOB_PUBLIC_BASE_URL" envDefault:"http://localhost:8080/files"`
	S3Bucket          string `env:"S3_BUCKET"`
	S3Region          string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Endpoint        string `env:"S3_ENDPOINT"`
	S3PathStyle       bool   `env:"S3_PATH_STYLE" envDefault:"false"`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`     // optional, default credential chain otherwise
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
	S3PublicBaseURL   string `env:"S3_PUBLIC_BASE_URL"` // optional CDN or bucket website in front of S3
	UploadMaxBytes    int64  `env:"UPLOAD_MAX_BYTES" envDefault:"10485760"` // 10MB

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"50"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"100"`

	PIIRedactionFields []string `env:"PII_REDACTION_FIELDS" envSeparator:"," envDefault:"phone_number,name"`
	BackupCron         string   `env:"BACKUP_CRON"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Attempt to load .env file for local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
