package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// clearEnv unsets keys for the duration of a test; t.Setenv registers the
// restore, since setting a key to "" is not the same as unsetting it.
func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t, "PORT", "DATABASE_PATH", "UPLOAD_ROOT", "STORAGE_BACKEND",
		"CORS_ORIGIN", "SWEEP_SCHEDULE")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.ServerPort)
	require.Equal(t, "./uploads", cfg.UploadRoot)
	require.Equal(t, BackendLocal, cfg.StorageBackend)
	require.Equal(t, "@hourly", cfg.SweepSchedule)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("UPLOAD_ROOT", "/srv/uploads")
	t.Setenv("STORAGE_BACKEND", "s3")
	t.Setenv("S3_BUCKET", "attachments")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.ServerPort)
	require.Equal(t, "/srv/uploads", cfg.UploadRoot)
	require.Equal(t, BackendS3, cfg.StorageBackend)
	require.Equal(t, "attachments", cfg.S3Bucket)
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	_, err := Load()
	require.Error(t, err)
}

func TestLoad_UnknownBackend(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "ftp")
	_, err := Load()
	require.Error(t, err)
}
