package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is the central typed configuration struct.
// Embed or extend it in your app's own config.
type Config struct {
	App       AppConfig
	Log       LogConfig
	Container ContainerConfig
}

type AppConfig struct {
	Name  string
	Env   string // local | production | testing
	Debug bool
}

type LogConfig struct {
	Level  string // debug | info | warn | error
	Format string // console | json
}

type ContainerConfig struct {
	// Manifest is a YAML binding manifest registered at bootstrap.
	// Empty means none.
	Manifest string
	// Metrics enables the Prometheus collectors.
	Metrics bool
}

// Load reads .env (if present) and populates a Config from environment variables.
// Call once at bootstrap: cfg := config.Load()
func Load(envFiles ...string) *Config {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)

	appEnv := env("APP_ENV", "local")
	return &Config{
		App: AppConfig{
			Name:  env("APP_NAME", "GoIoC"),
			Env:   appEnv,
			Debug: envBool("APP_DEBUG", appEnv == "local"),
		},
		Log: LogConfig{
			Level:  env("LOG_LEVEL", "info"),
			Format: env("LOG_FORMAT", defaultFormat(appEnv)),
		},
		Container: ContainerConfig{
			Manifest: env("CONTAINER_MANIFEST", ""),
			Metrics:  envBool("CONTAINER_METRICS", true),
		},
	}
}

// Get returns a raw env value, falling back to defaultVal.
func Get(key, defaultVal string) string {
	return env(key, defaultVal)
}

// GetInt returns an int env value.
func GetInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

// GetBool returns a bool env value.
func GetBool(key string, defaultVal bool) bool {
	return envBool(key, defaultVal)
}

// ── helpers ─────────────────────────────────────────────────────────────────

func defaultFormat(appEnv string) string {
	if appEnv == "production" {
		return "json"
	}
	return "console"
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
