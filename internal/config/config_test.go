package config_test

import (
	"os"
	"path/filepath"
	"testing"

	infraconfig "github.com/Davis1233798/note/infrastructure/config"
	"github.com/Davis1233798/note/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// missingPath points at a file that does not exist so only defaults and the
// environment apply.
func missingPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "absent.yml")
}

// isolateEnv clears every variable the config reads and points ENV_FILE at an
// empty file so no .env in the working directory leaks in.
func isolateEnv(t *testing.T) {
	t.Helper()

	for _, name := range []string{
		"PORT", "HOST", "APP_DEBUG", "STATIC_DIR", "STATIC_FALLBACK",
		"CORS_ALLOWED_ORIGINS", "OPS_ENABLED", "OPS_HOST", "OPS_PORT",
		"ENABLE_PROFILING", "LOG_LEVEL", "LOG_FORMAT",
		"ENABLE_CONTINUOUS_PROFILING", "PYROSCOPE_SERVER_URL", "PYROSCOPE_ENVIRONMENT",
	} {
		t.Setenv(name, "")
	}

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, nil, 0o600))
	t.Setenv("ENV_FILE", envFile)
}

func TestLoad_Defaults(t *testing.T) {
	isolateEnv(t)

	cfg, err := config.Load(missingPath(t))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, config.ServiceName, cfg.Service.Name)
	assert.Equal(t, config.ServiceVersion, cfg.Service.Version)
	assert.Equal(t, 8080, cfg.Service.Port)
	assert.Equal(t, ":8080", cfg.Address())
	assert.Equal(t, "static", cfg.Static.Root)
	assert.Equal(t, filepath.Join("static", "index.html"), cfg.Static.FallbackPath())
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, []string{"GET", "POST", "PUT", "DELETE", "PATCH"}, cfg.CORS.AllowedMethods)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedHeaders)
	assert.False(t, cfg.Ops.Enabled)
	assert.Equal(t, "localhost:9090", cfg.OpsAddress())
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_PortFromEnv(t *testing.T) {
	isolateEnv(t)
	t.Setenv("PORT", "3000")

	cfg, err := config.Load(missingPath(t))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 3000, cfg.Service.Port)
	assert.Equal(t, ":3000", cfg.Address())
}

func TestLoad_EmptyPortMeansDefault(t *testing.T) {
	isolateEnv(t)
	t.Setenv("PORT", "")

	cfg, err := config.Load(missingPath(t))
	require.NoError(t, err)

	assert.Equal(t, config.DefaultPort, cfg.Service.Port)
}

func TestLoad_NonIntegerPortFails(t *testing.T) {
	for _, value := range []string{"notanumber", "80.5", "8080abc", "0x1F90"} {
		t.Run(value, func(t *testing.T) {
			isolateEnv(t)
			t.Setenv("PORT", value)

			cfg, err := config.Load(missingPath(t))
			require.Error(t, err)
			assert.Nil(t, cfg)

			var envErr *infraconfig.EnvError
			require.ErrorAs(t, err, &envErr)
			assert.Equal(t, "PORT", envErr.Var)
			assert.Equal(t, value, envErr.Value)
		})
	}
}

func TestValidate_PortOutOfRange(t *testing.T) {
	for _, value := range []string{"0", "-1", "65536", "70000"} {
		t.Run(value, func(t *testing.T) {
			isolateEnv(t)
			t.Setenv("PORT", value)

			cfg, err := config.Load(missingPath(t))
			require.NoError(t, err)

			err = cfg.Validate()
			var valErr *infraconfig.ValidationError
			require.ErrorAs(t, err, &valErr)
			assert.Equal(t, "service.port", valErr.Field)
		})
	}
}

func TestLoad_YAMLWithEnvPrecedence(t *testing.T) {
	isolateEnv(t)

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
service:
  port: 9000
  debug: true
static:
  root: /srv/www
  fallback: app.html
cors:
  allowed_origins:
    - https://notes.example.com
ops:
  enabled: true
  port: 9191
logging:
  level: debug
  format: console
`), 0o600))

	t.Setenv("PORT", "9001")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 9001, cfg.Service.Port)
	assert.True(t, cfg.Service.Debug)
	assert.Equal(t, "/srv/www", cfg.Static.Root)
	assert.Equal(t, filepath.Join("/srv/www", "app.html"), cfg.Static.FallbackPath())
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.Ops.Enabled)
	assert.Equal(t, 9191, cfg.Ops.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoad_InvalidBooleanFails(t *testing.T) {
	isolateEnv(t)
	t.Setenv("OPS_ENABLED", "maybe")

	_, err := config.Load(missingPath(t))

	var envErr *infraconfig.EnvError
	require.ErrorAs(t, err, &envErr)
	assert.Equal(t, "OPS_ENABLED", envErr.Var)
}

func TestValidate(t *testing.T) {
	isolateEnv(t)

	tests := []struct {
		name   string
		mutate func(*config.Config)
		field  string
	}{
		{
			name:   "absolute fallback",
			mutate: func(c *config.Config) { c.Static.Fallback = "/etc/passwd" },
			field:  "static.fallback",
		},
		{
			name:   "unknown log level",
			mutate: func(c *config.Config) { c.Logging.Level = "verbose" },
			field:  "logging.level",
		},
		{
			name: "ops port collides with service port",
			mutate: func(c *config.Config) {
				c.Ops.Enabled = true
				c.Ops.Port = c.Service.Port
			},
			field: "ops.port",
		},
		{
			name: "ops port out of range",
			mutate: func(c *config.Config) {
				c.Ops.Enabled = true
				c.Ops.Port = 70000
			},
			field: "ops.port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.Load(missingPath(t))
			require.NoError(t, err)
			tt.mutate(cfg)

			var valErr *infraconfig.ValidationError
			require.ErrorAs(t, cfg.Validate(), &valErr)
			assert.Equal(t, tt.field, valErr.Field)
		})
	}
}

func TestValidate_DisabledOpsIgnoresPort(t *testing.T) {
	isolateEnv(t)

	cfg, err := config.Load(missingPath(t))
	require.NoError(t, err)
	cfg.Ops.Port = cfg.Service.Port

	assert.NoError(t, cfg.Validate())
}
