package config_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/km-arc/go-ioc/framework/config"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func setEnv(t *testing.T, key, val string) {
	t.Helper()
	t.Setenv(key, val) // automatically restored after test
}

// unsetEnv clears key for the duration of the test so .env files may set it.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

// ── Load ─────────────────────────────────────────────────────────────────────

func TestLoad_Defaults(t *testing.T) {
	unsetEnv(t, "APP_NAME", "APP_ENV", "APP_DEBUG", "LOG_LEVEL", "LOG_FORMAT",
		"CONTAINER_MANIFEST", "CONTAINER_METRICS")

	cfg := config.Load("testdata/empty.env")

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"App.Name", cfg.App.Name, "GoIoC"},
		{"App.Env", cfg.App.Env, "local"},
		{"App.Debug", cfg.App.Debug, true},
		{"Log.Level", cfg.Log.Level, "info"},
		{"Log.Format", cfg.Log.Format, "console"},
		{"Container.Manifest", cfg.Container.Manifest, ""},
		{"Container.Metrics", cfg.Container.Metrics, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestLoad_EnvFile(t *testing.T) {
	unsetEnv(t, "APP_NAME", "APP_ENV", "APP_DEBUG", "LOG_LEVEL", "LOG_FORMAT",
		"CONTAINER_MANIFEST")

	cfg := config.Load("testdata/app.env")

	assert.Equal(t, "Roastery", cfg.App.Name)
	assert.Equal(t, "production", cfg.App.Env)
	assert.False(t, cfg.App.Debug, "debug defaults off outside local")
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format, "production defaults to json logs")
	assert.Equal(t, "testdata/bindings.yaml", cfg.Container.Manifest)
}

func TestLoad_EnvOverridesEnvFile(t *testing.T) {
	unsetEnv(t, "APP_ENV", "APP_DEBUG", "LOG_FORMAT", "CONTAINER_MANIFEST")
	setEnv(t, "APP_NAME", "MyApp")
	setEnv(t, "LOG_LEVEL", "debug")

	cfg := config.Load("testdata/app.env")

	assert.Equal(t, "MyApp", cfg.App.Name)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_MissingEnvFileIsNotFatal(t *testing.T) {
	setEnv(t, "APP_NAME", "NoFile")

	cfg := config.Load("testdata/does-not-exist.env")
	assert.Equal(t, "NoFile", cfg.App.Name)
}

func TestLoad_AppDebugExplicit(t *testing.T) {
	setEnv(t, "APP_ENV", "production")
	setEnv(t, "APP_DEBUG", "true")
	assert.True(t, config.Load().App.Debug)

	setEnv(t, "APP_ENV", "local")
	setEnv(t, "APP_DEBUG", "false")
	assert.False(t, config.Load().App.Debug)
}

func TestLoad_MetricsToggle(t *testing.T) {
	setEnv(t, "CONTAINER_METRICS", "false")
	assert.False(t, config.Load().Container.Metrics)
}

// ── Get / GetInt / GetBool ───────────────────────────────────────────────────

func TestGet_ReturnsValue(t *testing.T) {
	setEnv(t, "CUSTOM_KEY", "hello")
	assert.Equal(t, "hello", config.Get("CUSTOM_KEY", "default"))
}

func TestGet_ReturnsFallback(t *testing.T) {
	unsetEnv(t, "MISSING_KEY")
	assert.Equal(t, "fallback", config.Get("MISSING_KEY", "fallback"))
}

func TestGetInt_ReturnsInt(t *testing.T) {
	setEnv(t, "SOME_INT", "42")
	assert.Equal(t, 42, config.GetInt("SOME_INT", 0))
}

func TestGetInt_ReturnsFallbackOnInvalid(t *testing.T) {
	setEnv(t, "SOME_INT", "notanint")
	assert.Equal(t, 99, config.GetInt("SOME_INT", 99))
}

func TestGetBool_True(t *testing.T) {
	for _, val := range []string{"true", "1", "True", "TRUE"} {
		setEnv(t, "BOOL_KEY", val)
		assert.True(t, config.GetBool("BOOL_KEY", false), "value %q", val)
	}
}

func TestGetBool_False(t *testing.T) {
	setEnv(t, "BOOL_KEY", "false")
	assert.False(t, config.GetBool("BOOL_KEY", true))
}

func TestGetBool_ReturnsFallbackOnInvalid(t *testing.T) {
	setEnv(t, "BOOL_KEY", "notabool")
	assert.True(t, config.GetBool("BOOL_KEY", true))
}
