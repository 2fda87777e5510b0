package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Profiles ProfilesConfig
}

type AppConfig struct {
	AppName        string `env:"APP_NAME" env-default:"profile-api"`
	Environment    string `env:"APP_ENV" env-default:"production"`
	HTTPPort       string `env:"HTTP_PORT" env-default:"8000"`
	APIPrefix      string `env:"API_PREFIX"`
	AdminEndpoints bool   `env:"ADMIN_ENDPOINTS" env-default:"false"`
}

type DatabaseConfig struct {
	DBHost     string `env:"DB_HOST" env-required:"true"`
	DBPort     string `env:"DB_PORT" env-default:"5432"`
	DBName     string `env:"DB_NAME" env-required:"true"`
	DBUser     string `env:"DB_USER" env-required:"true"`
	DBPassword string `env:"DB_PASSWORD"`
	DBSSLMode  string `env:"DB_SSL_MODE" env-default:"disable"`

	ConnectTimeout      time.Duration `env:"DB_CONNECT_TIMEOUT" env-default:"5s"`
	PoolMaxConns        int32         `env:"DB_POOL_MAX_CONNS"`
	PoolMinConns        int32         `env:"DB_POOL_MIN_CONNS"`
	PoolMaxConnLifetime time.Duration `env:"DB_POOL_MAX_CONN_LIFETIME"`
	PoolMaxConnIdleTime time.Duration `env:"DB_POOL_MAX_CONN_IDLE_TIME"`

	MigrationsDir string `env:"DB_MIGRATIONS_DIR"`
}

type RedisConfig struct {
	Host     string `env:"REDIS_HOST" env-default:"localhost"`
	Port     string `env:"REDIS_PORT" env-default:"6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" env-default:"0"`
}

func (r RedisConfig) Addr() string {
	return strings.TrimSpace(r.Host) + ":" + strings.TrimSpace(r.Port)
}

type ProfilesConfig struct {
	MaxPageSize     int `env:"PROFILES_MAX_PAGE_SIZE" env-default:"100"`
	DefaultPageSize int `env:"PROFILES_DEFAULT_PAGE_SIZE" env-default:"10"`
	MaxSeedCount    int `env:"PROFILES_MAX_SEED_COUNT" env-default:"10000"`
}

var errInvalidConfig = errors.New("invalid config")

// Load reads an optional .env file (ENV_FILE overrides the path) and then the
// process environment.
func Load() (Config, error) {
	envFile := strings.TrimSpace(os.Getenv("ENV_FILE"))
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var problems []string
	if c.Profiles.MaxPageSize <= 0 {
		problems = append(problems, "PROFILES_MAX_PAGE_SIZE must be positive")
	}
	if c.Profiles.DefaultPageSize <= 0 || c.Profiles.DefaultPageSize > c.Profiles.MaxPageSize {
		problems = append(problems, "PROFILES_DEFAULT_PAGE_SIZE must be in 1..PROFILES_MAX_PAGE_SIZE")
	}
	if c.Profiles.MaxSeedCount <= 0 {
		problems = append(problems, "PROFILES_MAX_SEED_COUNT must be positive")
	}
	if p := strings.TrimSpace(c.App.APIPrefix); p != "" && !strings.HasPrefix(p, "/") {
		problems = append(problems, "API_PREFIX must start with /")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", errInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

func (c AppConfig) IsDevelopment() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "development")
}
