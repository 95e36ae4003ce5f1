// Package config loads the service configuration once at start-up.
//
// Values come from an optional .env file, an optional config file and the
// process environment, in increasing order of precedence. The resulting
// Config is never mutated and is handed explicitly to every component.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage backend names accepted by STORAGE_BACKEND.
const (
	BackendLocal = "local"
	BackendS3    = "s3"
	BackendGCS   = "gcs"
	BackendSFTP  = "sftp"
	BackendMinio = "minio"
)

// ErrMissingAPIKey is returned by Load when no shared secret is configured.
var ErrMissingAPIKey = errors.New("API_KEY is not set in the environment variables")

// Config holds all runtime configuration for the service.
type Config struct {
	Port          string
	APIKey        string
	UploadsDir    string
	DataDir       string
	PublicBaseURL string // e.g. "https://img.example.com"; derived from the request when empty
	Environment   string

	MaxUploadBytes   int64
	RequestTimeout   time.Duration
	BatchConcurrency int
	JournalRetention time.Duration
	TokenTTL         time.Duration

	CORSAllowedOrigins []string

	LogLevel string
	LogFile  string

	Storage StorageConfig
}

// StorageConfig selects and configures the artifact backend.
type StorageConfig struct {
	Backend string
	S3      S3Config
	GCS     GCSConfig
	SFTP    SFTPConfig
	Minio   MinioConfig
}

// S3Config holds AWS S3 (or S3-compatible) settings.
type S3Config struct {
	Region    string
	Bucket    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// GCSConfig holds Google Cloud Storage settings.
type GCSConfig struct {
	Bucket          string
	CredentialsFile string
}

// SFTPConfig holds settings for a remote SFTP target.
type SFTPConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	PrivateKey     string // base64 or raw PEM
	KnownHostsFile string // host key checking is skipped when empty
	Root           string
}

// MinioConfig holds MinIO settings.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Load reads configuration from a .env file (if present), the optional
// config file at path and environment variables.
func Load(path string) (*Config, error) {
	// A missing .env file is normal outside development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		Port:               v.GetString("port"),
		APIKey:             v.GetString("api_key"),
		UploadsDir:         v.GetString("uploads_dir"),
		DataDir:            v.GetString("data_dir"),
		PublicBaseURL:      strings.TrimRight(v.GetString("public_base_url"), "/"),
		Environment:        v.GetString("app_env"),
		MaxUploadBytes:     v.GetInt64("max_upload_mb") << 20,
		RequestTimeout:     v.GetDuration("request_timeout"),
		BatchConcurrency:   v.GetInt("batch_concurrency"),
		JournalRetention:   v.GetDuration("journal_retention"),
		TokenTTL:           v.GetDuration("token_ttl"),
		CORSAllowedOrigins: splitList(v.GetString("cors_allowed_origins")),
		LogLevel:           v.GetString("log_level"),
		LogFile:            v.GetString("log_file"),
		Storage: StorageConfig{
			Backend: strings.ToLower(v.GetString("storage_backend")),
			S3: S3Config{
				Region:    v.GetString("s3.region"),
				Bucket:    v.GetString("s3.bucket"),
				Endpoint:  v.GetString("s3.endpoint"),
				AccessKey: v.GetString("s3.access_key"),
				SecretKey: v.GetString("s3.secret_key"),
			},
			GCS: GCSConfig{
				Bucket:          v.GetString("gcs.bucket"),
				CredentialsFile: v.GetString("gcs.credentials_file"),
			},
			SFTP: SFTPConfig{
				Host:           v.GetString("sftp.host"),
				Port:           v.GetString("sftp.port"),
				User:           v.GetString("sftp.user"),
				Password:       v.GetString("sftp.password"),
				PrivateKey:     v.GetString("sftp.private_key"),
				KnownHostsFile: v.GetString("sftp.known_hosts"),
				Root:           v.GetString("sftp.root"),
			},
			Minio: MinioConfig{
				Endpoint:  v.GetString("minio.endpoint"),
				AccessKey: v.GetString("minio.access_key"),
				SecretKey: v.GetString("minio.secret_key"),
				Bucket:    v.GetString("minio.bucket"),
				UseSSL:    v.GetBool("minio.use_ssl"),
			},
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "3000")
	v.SetDefault("uploads_dir", defaultUploadsDir())
	v.SetDefault("data_dir", "./data")
	v.SetDefault("public_base_url", "")
	v.SetDefault("app_env", "development")
	v.SetDefault("max_upload_mb", 10)
	v.SetDefault("request_timeout", "60s")
	v.SetDefault("batch_concurrency", 4)
	v.SetDefault("journal_retention", "720h")
	v.SetDefault("token_ttl", "1h")
	v.SetDefault("cors_allowed_origins", "*")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("storage_backend", BackendLocal)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("sftp.port", "22")
	v.SetDefault("sftp.root", "/uploads")
	v.SetDefault("minio.use_ssl", false)
}

// Validate checks the invariants the rest of the service relies on.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive")
	}
	if c.BatchConcurrency < 1 {
		return fmt.Errorf("BATCH_CONCURRENCY must be at least 1")
	}
	switch c.Storage.Backend {
	case BackendLocal:
		if c.UploadsDir == "" {
			return fmt.Errorf("UPLOADS_DIR must not be empty")
		}
	case BackendS3:
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required for the s3 backend")
		}
	case BackendGCS:
		if c.Storage.GCS.Bucket == "" {
			return fmt.Errorf("GCS_BUCKET is required for the gcs backend")
		}
	case BackendSFTP:
		if c.Storage.SFTP.Host == "" || c.Storage.SFTP.User == "" {
			return fmt.Errorf("SFTP_HOST and SFTP_USER are required for the sftp backend")
		}
	case BackendMinio:
		if c.Storage.Minio.Endpoint == "" || c.Storage.Minio.Bucket == "" {
			return fmt.Errorf("MINIO_ENDPOINT and MINIO_BUCKET are required for the minio backend")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend)
	}
	return nil
}

// IsProduction returns true when the app is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// JournalPath returns the full path to the activity journal database.
// Path: {DATA_DIR}/journal.db
func (c *Config) JournalPath() string {
	return filepath.Join(c.DataDir, "journal.db")
}

// defaultUploadsDir places uploads next to the installed binary.
func defaultUploadsDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "./uploads"
	}
	return filepath.Join(filepath.Dir(exe), "uploads")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
