package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetops/distance-report/internal/config"
)

// chdir changes the working directory for the duration of the test,
// restoring it on cleanup (equivalent of testing.T.Chdir on older Go).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

// setRequired sets the mandatory keys and blanks the optional ones so
// values from the host environment do not leak into assertions.
func setRequired(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/reports")
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	for _, key := range []string{
		"APP_ENV",
		"HTTP_HOST",
		"HTTP_PORT",
		"CORS_ALLOWED_ORIGINS",
		"UPLOAD_MAX_BYTES",
		"DB_MAX_OPEN_CONNS",
		"DB_MAX_IDLE_CONNS",
		"DB_CONN_MAX_LIFETIME",
		"REPORT_TITLE",
		"REPORT_LOGO_PATH",
		"REPORT_PUBLIC_BASE_URL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_defaults(t *testing.T) {
	chdir(t, t.TempDir())
	setRequired(t)

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "0.0.0.0", cfg.HTTP.Host)
	assert.Equal(t, 7089, cfg.HTTP.Port)
	assert.Equal(t, []string{"*"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, int64(10<<20), cfg.HTTP.UploadMaxBytes)
	assert.Equal(t, 10, cfg.DB.MaxOpenConns)
	assert.Equal(t, 5, cfg.DB.MaxIdleConns)
	assert.Equal(t, 30*time.Minute, cfg.DB.ConnMaxLifetime)
	assert.Equal(t, "Daily Distance Report", cfg.Report.Title)
	assert.Equal(t, "./assets/logo.png", cfg.Report.LogoPath)
	assert.Equal(t, "http://localhost:7089", cfg.Report.PublicBaseURL)
}

func TestLoad_overrides(t *testing.T) {
	chdir(t, t.TempDir())
	setRequired(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, ,https://b.example.com")
	t.Setenv("DB_CONN_MAX_LIFETIME", "5m")
	t.Setenv("REPORT_TITLE", "Fleet Distance")
	t.Setenv("REPORT_PUBLIC_BASE_URL", "https://reports.example.com/")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, 9000, cfg.HTTP.Port)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, 5*time.Minute, cfg.DB.ConnMaxLifetime)
	assert.Equal(t, "Fleet Distance", cfg.Report.Title)
	assert.Equal(t, "https://reports.example.com", cfg.Report.PublicBaseURL)
}

func TestLoad_validation(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{name: "missing dsn", env: map[string]string{"JWT_ACCESS_SECRET": "s"}, want: "DB_DSN"},
		{name: "missing secret", env: map[string]string{"DB_DSN": "postgres://x"}, want: "JWT_ACCESS_SECRET"},
		{
			name: "relative base url",
			env:  map[string]string{"DB_DSN": "postgres://x", "JWT_ACCESS_SECRET": "s", "REPORT_PUBLIC_BASE_URL": "reports.local"},
			want: "REPORT_PUBLIC_BASE_URL",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			chdir(t, t.TempDir())
			setRequired(t)
			t.Setenv("DB_DSN", "")
			t.Setenv("JWT_ACCESS_SECRET", "")
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			_, err := config.Load()

			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
