package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("OTP_TTL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 3*time.Minute, cfg.OTPTTL)
	assert.Equal(t, 50.0, cfg.NearbyMaxRadiusKm)
	assert.Equal(t, "local", cfg.StorageDriver)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"db_host: db.internal\nOTP_TTL: 5m\nmax_upload_files: 4\nsmtp_port: 587\n"), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("OTP_TTL", "")
	t.Setenv("DB_HOST", "")
	t.Setenv("SMTP_PORT", "2525")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.DBHost)
	assert.Equal(t, 5*time.Minute, cfg.OTPTTL)
	assert.Equal(t, 4, cfg.MaxUploadFiles)
	assert.Equal(t, "2525", cfg.SMTPPort)
	assert.Contains(t, cfg.DSN(), "host=db.internal")
}

func TestLoadBadFile(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed", "a: [unclosed"},
		{"not a mapping", "- db_host\n- db_port\n"},
		{"scalar", "just some text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o600))
			t.Setenv("CONFIG_FILE", path)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o600))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8000", cfg.Port)
}

func TestNearbyRadiusIsCapped(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")

	t.Setenv("NEARBY_MAX_RADIUS_KM", "500")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 50.0, cfg.NearbyMaxRadiusKm)

	t.Setenv("NEARBY_MAX_RADIUS_KM", "10")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, 10.0, cfg.NearbyMaxRadiusKm)
}

func TestInvalidDurationFallsBack(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("SESSION_TTL", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8*time.Hour, cfg.SessionTTL)
}
