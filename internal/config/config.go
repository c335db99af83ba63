package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Backend   BackendConfig   `yaml:"backend"`
	Upload    UploadConfig    `yaml:"upload"`
	Transport TransportConfig `yaml:"transport"`
	Archive   ArchiveConfig   `yaml:"archive"`
	Auth      AuthConfig      `yaml:"auth"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

// BackendConfig points at the AI backend.
type BackendConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// UploadConfig limits uploads. IngestDelay is the pause between the last
// upload of a batch and the automatic summary scan.
type UploadConfig struct {
	MaxFileSize int64         `yaml:"max_file_size"`
	IngestDelay time.Duration `yaml:"ingest_delay"`
}

// TransportConfig selects how the MCP server is exposed: "http" or "stdio".
type TransportConfig struct {
	Mode string `yaml:"mode"`
}

// ArchiveConfig configures the optional S3 document archive. An empty
// endpoint disables it.
type ArchiveConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// AuthConfig protects the HTTP surfaces with a static bearer token. An empty
// token disables authentication.
type AuthConfig struct {
	Token string `yaml:"token"`
}

// Enabled reports whether an archive endpoint is configured.
func (a ArchiveConfig) Enabled() bool {
	return a.Endpoint != ""
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		DB: DBConfig{
			Path: "estimator.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Backend: BackendConfig{
			URL:     "https://estimator-gpt-backend.onrender.com",
			Timeout: 30 * time.Second,
		},
		Upload: UploadConfig{
			MaxFileSize: 50 * 1024 * 1024,
			IngestDelay: 3 * time.Second,
		},
		Transport: TransportConfig{
			Mode: "http",
		},
		Archive: ArchiveConfig{
			Bucket: "estimator-documents",
		},
	}
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("ESTIMATOR_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("ESTIMATOR_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("ESTIMATOR_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid ESTIMATOR_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if dbPath := os.Getenv("ESTIMATOR_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("ESTIMATOR_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if logPath := os.Getenv("ESTIMATOR_LOG_PATH"); logPath != "" {
		cfg.Log.Path = logPath
	}
	if url := os.Getenv("ESTIMATOR_BACKEND_URL"); url != "" {
		cfg.Backend.URL = url
	}
	if v := os.Getenv("ESTIMATOR_BACKEND_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid ESTIMATOR_BACKEND_TIMEOUT: %w", err)
		}
		cfg.Backend.Timeout = d
	}
	if v := os.Getenv("ESTIMATOR_UPLOAD_MAX_SIZE"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid ESTIMATOR_UPLOAD_MAX_SIZE: %w", err)
		}
		cfg.Upload.MaxFileSize = n
	}
	if v := os.Getenv("ESTIMATOR_INGEST_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid ESTIMATOR_INGEST_DELAY: %w", err)
		}
		cfg.Upload.IngestDelay = d
	}
	if mode := os.Getenv("ESTIMATOR_TRANSPORT_MODE"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if v := os.Getenv("ESTIMATOR_ARCHIVE_ENDPOINT"); v != "" {
		cfg.Archive.Endpoint = v
	}
	if v := os.Getenv("ESTIMATOR_ARCHIVE_ACCESS_KEY"); v != "" {
		cfg.Archive.AccessKey = v
	}
	if v := os.Getenv("ESTIMATOR_ARCHIVE_SECRET_KEY"); v != "" {
		cfg.Archive.SecretKey = v
	}
	if v := os.Getenv("ESTIMATOR_ARCHIVE_BUCKET"); v != "" {
		cfg.Archive.Bucket = v
	}
	if v := os.Getenv("ESTIMATOR_ARCHIVE_USE_SSL"); v != "" {
		useSSL, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid ESTIMATOR_ARCHIVE_USE_SSL: %w", err)
		}
		cfg.Archive.UseSSL = useSSL
	}

	if v := os.Getenv("ESTIMATOR_API_TOKEN"); v != "" {
		cfg.Auth.Token = v
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	switch c.Transport.Mode {
	case "http", "stdio":
	default:
		return fmt.Errorf("invalid transport mode %q: must be http or stdio", c.Transport.Mode)
	}
	if c.Backend.URL == "" {
		return fmt.Errorf("backend url is required")
	}
	if c.Backend.Timeout < 0 || c.Upload.IngestDelay < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
