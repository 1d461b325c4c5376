package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration. The flat keys mirror the
// settings file shipped inside the engine tree; absent keys stay empty
// strings and are passed through to the backend adapters untouched.
type Config struct {
	DefaultClient     string `mapstructure:"default_client"`
	AccessKey         string `mapstructure:"access_key"`
	SecretKey         string `mapstructure:"secret_key"`
	EndpointURL       string `mapstructure:"endpoint_url"`
	Region            string `mapstructure:"region"`
	BucketName        string `mapstructure:"bucket_name"`
	VersionBucketName string `mapstructure:"version_bucket_name"`
	VersionFile       string `mapstructure:"version_file"`
	VersionFileURL    string `mapstructure:"version_file_url"`
	Provider          string `mapstructure:"provider"`
	ACL               string `mapstructure:"acl"`
	RegistryKey       string `mapstructure:"registry_key"`

	Metrics MetricsConfig `mapstructure:"metrics"`
	Apprise AppriseConfig `mapstructure:"apprise"`
	Log     LogConfig     `mapstructure:"log"`
}

// MetricsConfig holds Prometheus metrics configuration.
type MetricsConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	PushgatewayURL string `mapstructure:"pushgateway_url"`
}

// AppriseConfig holds Apprise notification configuration.
type AppriseConfig struct {
	Enabled bool        `mapstructure:"enabled"`
	URL     string      `mapstructure:"url"`
	Key     string      `mapstructure:"key"`
	Notify  NotifyLevel `mapstructure:"notify"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level     string `mapstructure:"level"`
	Output    string `mapstructure:"output"`
	MaxSizeMB int    `mapstructure:"max_size_mb"`
}

// MarkerPath returns the local version marker location for an engine
// root: the configured marker file name in the engine root's parent
// directory.
func (c *Config) MarkerPath(enginePath string) string {
	return filepath.Join(filepath.Dir(enginePath), c.VersionFile)
}

// Loader handles configuration loading from multiple sources.
type Loader struct {
	v          *viper.Viper
	configPath string
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{
		v: viper.New(),
	}
}

// WithConfigPath sets a specific config file path.
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// Load reads configuration from all sources and returns the merged config.
// Precedence (highest to lowest): CLI flags > environment > config file > defaults.
func (l *Loader) Load() (*Config, error) {
	loadDotEnv()

	l.setDefaults()
	l.setupEnvBindings()

	if err := l.loadConfigFile(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Set default log path if not specified.
	if cfg.Log.Output == "" {
		logPath, err := DefaultLogPath()
		if err == nil {
			cfg.Log.Output = logPath
		}
		// If we can't determine the default path, leave it empty (will log to stderr)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// loadDotEnv reads an optional .env beside the binary, then one in the
// working directory. Variables already present in the environment win.
func loadDotEnv() {
	if dir, err := InstallDir(); err == nil {
		_ = godotenv.Load(filepath.Join(dir, ".env"))
	}
	_ = godotenv.Load()
}

// setDefaults sets default values for all configuration options.
func (l *Loader) setDefaults() {
	l.v.SetDefault("default_client", DefaultClient)
	l.v.SetDefault("access_key", "")
	l.v.SetDefault("secret_key", "")
	l.v.SetDefault("endpoint_url", "")
	l.v.SetDefault("region", "")
	l.v.SetDefault("bucket_name", "")
	l.v.SetDefault("version_bucket_name", "")
	l.v.SetDefault("version_file", DefaultVersionFile)
	l.v.SetDefault("version_file_url", "")
	l.v.SetDefault("provider", DefaultProvider)
	l.v.SetDefault("acl", DefaultACL)
	l.v.SetDefault("registry_key", DefaultRegistryKey)

	l.v.SetDefault("metrics.enabled", DefaultMetricsEnabled)
	l.v.SetDefault("metrics.pushgateway_url", DefaultMetricsPushgatewayURL)

	l.v.SetDefault("apprise.enabled", DefaultAppriseEnabled)
	l.v.SetDefault("apprise.url", DefaultAppriseURL)
	l.v.SetDefault("apprise.key", DefaultAppriseKey)
	l.v.SetDefault("apprise.notify", string(DefaultAppriseNotify))

	l.v.SetDefault("log.level", DefaultLogLevel)
	l.v.SetDefault("log.output", "")
	l.v.SetDefault("log.max_size_mb", DefaultLogMaxSizeMB)
}

// setupEnvBindings configures environment variable bindings.
func (l *Loader) setupEnvBindings() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()
}

// loadConfigFile loads configuration from a file.
func (l *Loader) loadConfigFile() error {
	if l.configPath != "" {
		// Specific config file provided
		l.v.SetConfigFile(l.configPath)
	} else {
		// The primary location is the executable's own directory; the
		// working directory is a fallback for development checkouts.
		l.v.SetConfigName(AppName)
		l.v.SetConfigType("toml")
		if installDir, err := InstallDir(); err == nil {
			l.v.AddConfigPath(installDir)
		}
		l.v.AddConfigPath(".")
	}

	if err := l.v.ReadInConfig(); err != nil {
		// Config file not found is not an error - use defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	return nil
}

// Set sets a configuration value (for CLI flag overrides).
func (l *Loader) Set(key string, value interface{}) {
	l.v.Set(key, value)
}

// ConfigFileUsed returns the path of the config file used, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// Validate checks if the configuration is valid. Only the tool's own
// settings are validated; domain values such as bucket names are allowed
// to be empty and surface later as backend CLI errors.
func (c *Config) Validate() error {
	if c.Metrics.Enabled {
		if c.Metrics.PushgatewayURL == "" {
			return fmt.Errorf("metrics.pushgateway_url is required when metrics is enabled")
		}
	}

	if c.Apprise.Enabled {
		if c.Apprise.URL == "" {
			return fmt.Errorf("apprise.url is required when apprise is enabled")
		}
		if c.Apprise.Key == "" {
			return fmt.Errorf("apprise.key is required when apprise is enabled")
		}
		if !c.Apprise.Notify.IsValid() {
			return fmt.Errorf("apprise.notify must be one of: error, always")
		}
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("log.level must be one of: debug, info, warn, error")
	}

	if c.Log.MaxSizeMB < 1 {
		return fmt.Errorf("log.max_size_mb must be at least 1")
	}

	return nil
}

// WriteExampleConfig writes an example config file to the given path.
func WriteExampleConfig(path string) error {
	content := `# EngineSync Configuration
# Place this file next to the enginesync binary.

# Backend CLI used when --backend is not given: "aws" or "rclone"
default_client = "aws"

# Object storage credentials and endpoint (S3-compatible)
access_key = ""
secret_key = ""
endpoint_url = ""
region = ""

# Buckets: the engine tree mirror and the published version marker
bucket_name = ""
version_bucket_name = ""

# Version marker file name and the public URL it is served from
version_file = "engine-version.txt"
version_file_url = ""

# rclone S3 provider name (e.g. "AWS", "Minio", "Wasabi")
provider = ""

# Canned ACL applied to uploads (optional)
acl = ""

# Name the engine is registered under after a download
registry_key = ""

# Prometheus metrics (optional, disabled by default)
[metrics]
enabled = false
pushgateway_url = "http://pushgateway:9091"

# Apprise notifications (optional, disabled by default)
[apprise]
enabled = false
url = "http://localhost:8000"
key = "enginesync"
# Notification level: "error", "always"
notify = "error"

# Logging configuration
[log]
# Level: debug, info, warn, error
level = "info"
# Output file path (defaults to enginesync.log in the state directory)
# output = ""
# Max log file size before rotation (MB)
max_size_mb = 10
`
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(path, []byte(content), 0600)
}
