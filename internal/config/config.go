package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Storage   StorageConfig
	Tracing   TracingConfig   `mapstructure:"tracing"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Source    SourceConfig    `mapstructure:"source"`
	Scoring   ScoringConfig   `mapstructure:"scoring"`
	Knowledge KnowledgeConfig `mapstructure:"knowledge"`
	Cache     CacheConfig     `mapstructure:"cache"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
}

type StorageConfig struct {
	Type          string `mapstructure:"type"`
	LocalPath     string `mapstructure:"local_path"`
	MinioEndpoint string `mapstructure:"minio_endpoint"`
	MinioAccessID string `mapstructure:"minio_access_key"`
	MinioSecret   string `mapstructure:"minio_secret_key"`
	MinioBucket   string `mapstructure:"minio_bucket"`
	OSSEndpoint   string `mapstructure:"oss_endpoint"`
	OSSAccessKey  string `mapstructure:"oss_access_key"`
	OSSSecretKey  string `mapstructure:"oss_secret_key"`
	OSSBucket     string `mapstructure:"oss_bucket"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// SourceConfig 成绩表来源。远程表格地址只在这里配置，不写死在代码里。
type SourceConfig struct {
	Timeout     time.Duration  `mapstructure:"timeout_seconds"`
	MaxUploadMB int64          `mapstructure:"max_upload_mb"`
	Remotes     []RemoteSource `mapstructure:"remotes"`
}

type RemoteSource struct {
	Name   string `mapstructure:"name"`
	URL    string `mapstructure:"url"`
	Kind   string `mapstructure:"kind"`
	Format string `mapstructure:"format"`
}

type ScoringConfig struct {
	NameColumn      string   `mapstructure:"name_column"`
	IDColumns       []string `mapstructure:"id_columns"`
	TotalColumn     string   `mapstructure:"total_column"`
	ExcludedColumns []string `mapstructure:"excluded_columns"`
	Policy          string   `mapstructure:"policy"`
	PassLine        float64  `mapstructure:"pass_line"`
	TopRank         int      `mapstructure:"top_rank"`
	HistogramBins   int      `mapstructure:"histogram_bins"`
}

type KnowledgeConfig struct {
	NameKeywords []string `mapstructure:"name_keywords"`
	IDKeywords   []string `mapstructure:"id_keywords"`
	WeakLine     float64  `mapstructure:"weak_line"`
}

type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl_minutes"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parsetime", true)
	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_path", "uploads")
	v.SetDefault("rate_limit.max_requests", 600)
	v.SetDefault("rate_limit.window_minutes", 1)

	v.SetDefault("source.timeout_seconds", 15)
	v.SetDefault("source.max_upload_mb", 20)

	v.SetDefault("scoring.name_column", "姓名")
	v.SetDefault("scoring.id_columns", []string{"考号", "学号"})
	v.SetDefault("scoring.total_column", "总分赋分")
	v.SetDefault("scoring.excluded_columns", []string{"序号", "班级", "性别", "总分", "班级排名", "年级排名", "班次", "校次"})
	v.SetDefault("scoring.policy", "positive")
	v.SetDefault("scoring.pass_line", 360)
	v.SetDefault("scoring.top_rank", 10)
	v.SetDefault("scoring.histogram_bins", 20)

	v.SetDefault("knowledge.name_keywords", []string{"姓名", "name"})
	v.SetDefault("knowledge.id_keywords", []string{"考号", "学号", "id"})
	v.SetDefault("knowledge.weak_line", 60)

	v.SetDefault("cache.ttl_minutes", 30)
}

func LoadConfig(path string) (*Config, error) {
	// .env 只用于本地开发，不存在时忽略
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	setDefaults(v)

	v.SetEnvPrefix("SCORE")
	v.AutomaticEnv()

	// Database
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "DATABASE_NAME")

	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	v.BindEnv("server.mode", "SERVER_MODE")

	// Storage
	v.BindEnv("storage.type", "STORAGE_TYPE")
	v.BindEnv("storage.oss_endpoint", "OSS_ENDPOINT")
	v.BindEnv("storage.oss_access_key", "OSS_ACCESS_KEY")
	v.BindEnv("storage.oss_secret_key", "OSS_SECRET_KEY")
	v.BindEnv("storage.oss_bucket", "OSS_BUCKET")
	v.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	v.BindEnv("storage.minio_access_key", "MINIO_ACCESS_KEY")
	v.BindEnv("storage.minio_secret_key", "MINIO_SECRET_KEY")
	v.BindEnv("storage.minio_bucket", "MINIO_BUCKET")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.Source.Timeout = cfg.Source.Timeout * time.Second
	cfg.Cache.TTL = cfg.Cache.TTL * time.Minute

	if len(cfg.Scoring.IDColumns) == 0 {
		return nil, fmt.Errorf("scoring.id_columns must not be empty")
	}
	for _, r := range cfg.Source.Remotes {
		if r.Name == "" || r.URL == "" {
			return nil, fmt.Errorf("remote source requires name and url: %+v", r)
		}
	}

	if cfg.Storage.Type == "local" {
		if _, err := os.Stat(cfg.Storage.LocalPath); os.IsNotExist(err) {
			os.MkdirAll(cfg.Storage.LocalPath, 0755)
		}
	}

	return &cfg, nil
}
