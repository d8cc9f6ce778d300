package config

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config represents the application configuration
type Config struct {
	App      AppConfig      `json:"app"`
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Redis    RedisConfig    `json:"redis"`
	Drafts   DraftsConfig   `json:"drafts"`
	Assets   AssetsConfig   `json:"assets"`
	MinIO    MinIOConfig    `json:"minio"`
	Session  SessionConfig  `json:"session"`
	Creation CreationConfig `json:"creation"`
	Catalog  CatalogConfig  `json:"catalog"`
}

// AppConfig contains process wide settings
type AppConfig struct {
	Env      string `json:"env"`
	LogLevel string `json:"log_level"`
}

// ServerConfig contains server related configurations
type ServerConfig struct {
	Port                   int      `json:"port"`
	ReadTimeoutSeconds     int      `json:"read_timeout_seconds"`
	WriteTimeoutSeconds    int      `json:"write_timeout_seconds"`
	IdleTimeoutSeconds     int      `json:"idle_timeout_seconds"`
	ShutdownTimeoutSeconds int      `json:"shutdown_timeout_seconds"`
	AllowedOrigins         []string `json:"allowed_origins"`
}

// DatabaseConfig contains database related configurations
type DatabaseConfig struct {
	Enabled  bool   `json:"enabled"`
	Driver   string `json:"driver"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Name     string `json:"name"`
	SSLMode  string `json:"ssl_mode"`
}

// RedisConfig contains redis connection settings
type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// Draft storage backends
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// DraftsConfig selects the key-value store for drafts and favorites
type DraftsConfig struct {
	Backend  string `json:"backend"`
	TTLHours int    `json:"ttl_hours"` // 0 keeps drafts forever
}

// Asset storage backends
const (
	AssetsLocal = "local"
	AssetsMinIO = "minio"
)

// AssetsConfig selects where submitted files are stored
type AssetsConfig struct {
	Backend       string `json:"backend"`
	LocalDir      string `json:"local_dir"`
	PublicBaseURL string `json:"public_base_url"`
}

// MinIOConfig contains object storage settings
type MinIOConfig struct {
	Endpoint      string `json:"endpoint"`
	AccessKey     string `json:"access_key"`
	SecretKey     string `json:"secret_key"`
	Bucket        string `json:"bucket"`
	UseSSL        bool   `json:"use_ssl"`
	PublicBaseURL string `json:"public_base_url"`
}

// SessionConfig contains session token settings
type SessionConfig struct {
	TokenSecret        string `json:"token_secret"`
	TTLHours           int    `json:"ttl_hours"`
	Issuer             string `json:"issuer"`
	IdleTimeoutMinutes int    `json:"idle_timeout_minutes"`
}

// CreationConfig tunes the creation workflow
type CreationConfig struct {
	SubmitDelayMillis int    `json:"submit_delay_millis"`
	PreviewBaseURL    string `json:"preview_base_url"`
}

// CatalogConfig points at an optional catalog seed file
type CatalogConfig struct {
	SeedFile string `json:"seed_file"`
}

// Default returns the built in configuration
func Default() *Config {
	return &Config{
		App: AppConfig{
			Env:      "development",
			LogLevel: "info",
		},
		Server: ServerConfig{
			Port:                   8080,
			ReadTimeoutSeconds:     15,
			WriteTimeoutSeconds:    30,
			IdleTimeoutSeconds:     60,
			ShutdownTimeoutSeconds: 10,
			AllowedOrigins:         []string{"*"},
		},
		Database: DatabaseConfig{
			Driver:  "postgres",
			Host:    "localhost",
			Port:    5432,
			Name:    "satonic",
			SSLMode: "disable",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Drafts: DraftsConfig{
			Backend: BackendMemory,
		},
		Assets: AssetsConfig{
			Backend:       AssetsLocal,
			LocalDir:      "data/assets",
			PublicBaseURL: "http://localhost:8080/static",
		},
		MinIO: MinIOConfig{
			Endpoint: "localhost:9000",
			Bucket:   "nft-assets",
		},
		Session: SessionConfig{
			TTLHours:           24,
			Issuer:             "satonic-storefront",
			IdleTimeoutMinutes: 120,
		},
		Creation: CreationConfig{
			SubmitDelayMillis: 2000,
			PreviewBaseURL:    "/v1/previews",
		},
	}
}

// Load loads the configuration from file and environment
func Load() (*Config, error) {
	cfg := Default()

	// Look for config file
	configFile := os.Getenv("CONFIG_FILE")
	if configFile == "" {
		configFile = filepath.Join("configs", "config.json")
	}

	if _, err := os.Stat(configFile); err == nil {
		file, err := os.Open(configFile)
		if err != nil {
			return nil, err
		}
		defer file.Close()

		if err := json.NewDecoder(file).Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", configFile, err)
		}
	}

	// Override with environment variables if present
	cfg.App.Env = getEnv("APP_ENV", cfg.App.Env)
	cfg.App.LogLevel = getEnv("LOG_LEVEL", cfg.App.LogLevel)

	cfg.Server.Port = getEnvInt("SERVER_PORT", cfg.Server.Port)
	cfg.Server.ReadTimeoutSeconds = getEnvInt("HTTP_READ_TIMEOUT_SECONDS", cfg.Server.ReadTimeoutSeconds)
	cfg.Server.WriteTimeoutSeconds = getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", cfg.Server.WriteTimeoutSeconds)
	cfg.Server.IdleTimeoutSeconds = getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", cfg.Server.IdleTimeoutSeconds)
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		cfg.Server.AllowedOrigins = splitList(origins)
	}

	cfg.Database.Enabled = getEnvBool("DB_ENABLED", cfg.Database.Enabled)
	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnvInt("DB_PORT", cfg.Database.Port)
	cfg.Database.User = getEnv("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.Name = getEnv("DB_NAME", cfg.Database.Name)
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", cfg.Database.SSLMode)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvInt("REDIS_DB", cfg.Redis.DB)

	cfg.Drafts.Backend = strings.ToLower(getEnv("DRAFTS_BACKEND", cfg.Drafts.Backend))
	cfg.Drafts.TTLHours = getEnvInt("DRAFTS_TTL_HOURS", cfg.Drafts.TTLHours)

	cfg.Assets.Backend = strings.ToLower(getEnv("ASSETS_BACKEND", cfg.Assets.Backend))
	cfg.Assets.LocalDir = getEnv("ASSETS_LOCAL_DIR", cfg.Assets.LocalDir)
	cfg.Assets.PublicBaseURL = getEnv("ASSETS_PUBLIC_BASE_URL", cfg.Assets.PublicBaseURL)

	cfg.MinIO.Endpoint = getEnv("MINIO_ENDPOINT", cfg.MinIO.Endpoint)
	cfg.MinIO.AccessKey = getEnv("MINIO_ACCESS_KEY", cfg.MinIO.AccessKey)
	cfg.MinIO.SecretKey = getEnv("MINIO_SECRET_KEY", cfg.MinIO.SecretKey)
	cfg.MinIO.Bucket = getEnv("MINIO_BUCKET", cfg.MinIO.Bucket)
	cfg.MinIO.UseSSL = getEnvBool("MINIO_USE_SSL", cfg.MinIO.UseSSL)
	cfg.MinIO.PublicBaseURL = getEnv("MINIO_PUBLIC_BASE_URL", cfg.MinIO.PublicBaseURL)

	cfg.Session.TTLHours = getEnvInt("SESSION_TTL_HOURS", cfg.Session.TTLHours)
	cfg.Session.Issuer = getEnv("SESSION_ISSUER", cfg.Session.Issuer)
	cfg.Session.IdleTimeoutMinutes = getEnvInt("SESSION_IDLE_TIMEOUT_MINUTES", cfg.Session.IdleTimeoutMinutes)

	cfg.Creation.SubmitDelayMillis = getEnvInt("CREATION_SUBMIT_DELAY_MILLIS", cfg.Creation.SubmitDelayMillis)
	cfg.Creation.PreviewBaseURL = getEnv("CREATION_PREVIEW_BASE_URL", cfg.Creation.PreviewBaseURL)

	cfg.Catalog.SeedFile = getEnv("CATALOG_SEED_FILE", cfg.Catalog.SeedFile)

	if secret := os.Getenv("SESSION_TOKEN_SECRET"); secret != "" {
		cfg.Session.TokenSecret = secret
	} else if cfg.Session.TokenSecret == "" {
		// Generate a random secret if not provided
		randomBytes := make([]byte, 32)
		if _, err := rand.Read(randomBytes); err != nil {
			return nil, err
		}
		cfg.Session.TokenSecret = base64.StdEncoding.EncodeToString(randomBytes)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Drafts.Backend {
	case BackendMemory, BackendRedis:
	case BackendPostgres:
		if !c.Database.Enabled {
			return fmt.Errorf("drafts backend %q requires DB_ENABLED", c.Drafts.Backend)
		}
	default:
		return fmt.Errorf("unknown drafts backend %q", c.Drafts.Backend)
	}

	switch c.Assets.Backend {
	case AssetsLocal, AssetsMinIO:
	default:
		return fmt.Errorf("unknown assets backend %q", c.Assets.Backend)
	}

	if c.Server.Port <= 0 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Session.TTLHours <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
