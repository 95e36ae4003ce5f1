package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("API_KEY", "")

	_, err := Load("")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("API_KEY", "secret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "secret", cfg.APIKey)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	assert.Equal(t, 60*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 4, cfg.BatchConcurrency)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, BackendLocal, cfg.Storage.Backend)
	assert.Equal(t, filepath.Join("./data", "journal.db"), cfg.JournalPath())
	assert.NotEmpty(t, cfg.UploadsDir)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("API_KEY", "secret")
	t.Setenv("PORT", "8081")
	t.Setenv("UPLOADS_DIR", "/srv/uploads")
	t.Setenv("PUBLIC_BASE_URL", "https://img.example.com/")
	t.Setenv("MAX_UPLOAD_MB", "5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("STORAGE_BACKEND", "S3")
	t.Setenv("S3_BUCKET", "images")
	t.Setenv("S3_REGION", "eu-west-1")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, "/srv/uploads", cfg.UploadsDir)
	assert.Equal(t, "https://img.example.com", cfg.PublicBaseURL)
	assert.Equal(t, int64(5<<20), cfg.MaxUploadBytes)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, BackendS3, cfg.Storage.Backend)
	assert.Equal(t, "images", cfg.Storage.S3.Bucket)
	assert.Equal(t, "eu-west-1", cfg.Storage.S3.Region)
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("API_KEY=from-dotenv\n"), 0o600))

	// godotenv never overrides variables that are already set
	os.Unsetenv("API_KEY")
	t.Cleanup(func() { os.Unsetenv("API_KEY") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.APIKey)
}

func TestValidateBackends(t *testing.T) {
	base := Config{APIKey: "k", MaxUploadBytes: 1, BatchConcurrency: 1, UploadsDir: "u"}

	tests := []struct {
		name    string
		storage StorageConfig
		wantErr bool
	}{
		{"local", StorageConfig{Backend: BackendLocal}, false},
		{"s3 without bucket", StorageConfig{Backend: BackendS3}, true},
		{"gcs without bucket", StorageConfig{Backend: BackendGCS}, true},
		{"sftp complete", StorageConfig{Backend: BackendSFTP, SFTP: SFTPConfig{Host: "h", User: "u"}}, false},
		{"minio without endpoint", StorageConfig{Backend: BackendMinio, Minio: MinioConfig{Bucket: "b"}}, true},
		{"unknown", StorageConfig{Backend: "ftp"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			cfg.Storage = tt.storage
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
