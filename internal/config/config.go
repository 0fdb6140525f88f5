package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// SchemaVersion is the config file schema this build writes and understands.
const SchemaVersion = "1.0.0"

const (
	outputTypeFile = "file"

	defaultAddr            = ":8000"
	defaultReadTimeout     = 15 * time.Second
	defaultWriteTimeout    = 60 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultRatePerSecond   = 20
	defaultRateBurst       = 40
	defaultCacheTTLSeconds = 86400
	defaultProviderTimeout = 10 * time.Second
	defaultDateLayout      = "1/2/2006"
	defaultPrecision       = 2
	defaultCarbonKitURL    = "https://api.carbonkit.net/3.6/categories/Great_Circle_flight_methodology/calculation"
	maxPrecision           = 10
)

// ErrUnknownKey is returned by Get and Set for keys outside the schema.
var ErrUnknownKey = errors.New("unknown configuration key")

// Config is the full openfootprint configuration.
type Config struct {
	Version  string         `yaml:"version"`
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Display  DisplayConfig  `yaml:"display"`
	Output   OutputConfig   `yaml:"output"`
	Cache    CacheConfig    `yaml:"cache"`
	Provider ProviderConfig `yaml:"provider"`
	Logging  LoggingConfig  `yaml:"logging"`

	configPath string
}

// ServerConfig configures the HTTP API and web UI listener.
type ServerConfig struct {
	Addr            string          `yaml:"addr"`
	ReadTimeout     time.Duration   `yaml:"read_timeout"`
	WriteTimeout    time.Duration   `yaml:"write_timeout"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout"`
	AllowedOrigins  []string        `yaml:"allowed_origins"`
	RateLimit       RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig is a token bucket applied to every API request.
type RateLimitConfig struct {
	Enabled           bool    `yaml:"enabled"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// StorageConfig locates the record database.
type StorageConfig struct {
	Path      string        `yaml:"path"`
	MockDelay time.Duration `yaml:"mock_delay"`
	Seed      bool          `yaml:"seed"`
}

// DisplayConfig controls how dates and numbers are rendered.
type DisplayConfig struct {
	DateLayout string `yaml:"date_layout"`
	Precision  int    `yaml:"precision"`
}

// OutputConfig holds CLI output defaults.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
}

// CacheConfig configures the file cache used for provider responses and
// generated documents.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled"`
	TTLSeconds int    `yaml:"ttl_seconds"`
	Directory  string `yaml:"directory"`
}

// ProviderConfig configures the CarbonKit flight calculation endpoint.
type ProviderConfig struct {
	CarbonKitURL string        `yaml:"carbonkit_url"`
	Username     string        `yaml:"username"`
	Password     string        `yaml:"password"`
	Timeout      time.Duration `yaml:"timeout"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Default returns a Config populated with built-in defaults rooted at dir.
func Default(dir string) *Config {
	return &Config{
		Version: SchemaVersion,
		Server: ServerConfig{
			Addr:            defaultAddr,
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
			AllowedOrigins:  []string{"*"},
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerSecond: defaultRatePerSecond,
				Burst:             defaultRateBurst,
			},
		},
		Storage: StorageConfig{
			Path: filepath.Join(dir, "openfootprint.db"),
			Seed: true,
		},
		Display: DisplayConfig{
			DateLayout: defaultDateLayout,
			Precision:  defaultPrecision,
		},
		Output: OutputConfig{DefaultFormat: "table"},
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: defaultCacheTTLSeconds,
			Directory:  filepath.Join(dir, "cache"),
		},
		Provider: ProviderConfig{
			CarbonKitURL: defaultCarbonKitURL,
			Timeout:      defaultProviderTimeout,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			File:   filepath.Join(dir, "logs", "openfootprint.log"),
		},
		configPath: filepath.Join(dir, "config.yaml"),
	}
}

// New loads the global configuration: defaults, then $OPENFOOTPRINT_HOME/config.yaml
// when present, then environment overrides. A config file that fails to parse is
// ignored and defaults are used.
func New() *Config {
	dir, err := GetConfigDir()
	if err != nil {
		dir = filepath.Join(os.TempDir(), ".openfootprint")
	}
	cfg := Default(dir)
	_ = cfg.Load()
	cfg.applyEnvOverrides()
	return cfg
}

// ConfigPath returns the file the config is loaded from and saved to.
func (c *Config) ConfigPath() string {
	return c.configPath
}

// SetConfigPath changes the file Save writes to.
func (c *Config) SetConfigPath(path string) {
	c.configPath = path
}

// Load reads the config file over the current values. A missing file is not an error.
func (c *Config) Load() error {
	data, err := os.ReadFile(c.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config %s: %w", c.configPath, err)
	}
	if err = yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", c.configPath, err)
	}
	return nil
}

// Save writes the config as YAML, creating the parent directory.
func (c *Config) Save() error {
	if err := os.MkdirAll(filepath.Dir(c.configPath), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err = os.WriteFile(c.configPath, data, 0o600); err != nil {
		return fmt.Errorf("writing config %s: %w", c.configPath, err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("OPENFOOTPRINT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("OPENFOOTPRINT_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("OPENFOOTPRINT_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("OPENFOOTPRINT_DB"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("OPENFOOTPRINT_OUTPUT_FORMAT"); v != "" {
		c.Output.DefaultFormat = v
	}
	if v := os.Getenv("OPENFOOTPRINT_CARBONKIT_USERNAME"); v != "" {
		c.Provider.Username = v
	}
	if v := os.Getenv("OPENFOOTPRINT_CARBONKIT_PASSWORD"); v != "" {
		c.Provider.Password = v
	}
}

// Validate checks the configuration for values the application cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if err := checkSchemaVersion(c.Version); err != nil {
		errs = append(errs, err)
	}
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr must not be empty"))
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 || c.Server.ShutdownTimeout < 0 {
		errs = append(errs, errors.New("server timeouts must not be negative"))
	}
	if rl := c.Server.RateLimit; rl.Enabled && (rl.RequestsPerSecond <= 0 || rl.Burst < 1) {
		errs = append(errs, errors.New("server.rate_limit needs requests_per_second > 0 and burst >= 1 when enabled"))
	}
	if c.Storage.Path == "" {
		errs = append(errs, errors.New("storage.path must not be empty"))
	}
	if c.Storage.MockDelay < 0 {
		errs = append(errs, errors.New("storage.mock_delay must not be negative"))
	}
	if c.Display.Precision < 0 || c.Display.Precision > maxPrecision {
		errs = append(errs, fmt.Errorf("display.precision must be between 0 and %d", maxPrecision))
	}
	switch c.Output.DefaultFormat {
	case "table", "json", "ndjson":
	default:
		errs = append(errs, fmt.Errorf("output.default_format %q must be table, json or ndjson", c.Output.DefaultFormat))
	}
	if c.Cache.Enabled && c.Cache.TTLSeconds <= 0 {
		errs = append(errs, errors.New("cache.ttl_seconds must be positive when the cache is enabled"))
	}
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level %q is not a valid level", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "json", "console", "text":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q must be json or console", c.Logging.Format))
	}

	return errors.Join(errs...)
}

// checkSchemaVersion rejects config files written by a newer major schema.
func checkSchemaVersion(v string) error {
	if v == "" {
		return nil
	}
	fileVer, err := semver.NewVersion(v)
	if err != nil {
		return fmt.Errorf("version %q is not a semantic version: %w", v, err)
	}
	current := semver.MustParse(SchemaVersion)
	if fileVer.Major() > current.Major() {
		return fmt.Errorf("config schema %s is newer than supported %s", fileVer, current)
	}
	return nil
}

// Keys returns every key Get accepts, in file order. The provider password
// is write-only and not listed.
func Keys() []string {
	return []string{
		"version",
		"server.addr",
		"server.read_timeout",
		"server.write_timeout",
		"server.shutdown_timeout",
		"server.allowed_origins",
		"server.rate_limit.enabled",
		"server.rate_limit.requests_per_second",
		"server.rate_limit.burst",
		"storage.path",
		"storage.mock_delay",
		"storage.seed",
		"display.date_layout",
		"display.precision",
		"output.default_format",
		"cache.enabled",
		"cache.ttl_seconds",
		"cache.directory",
		"provider.carbonkit_url",
		"provider.username",
		"provider.timeout",
		"logging.level",
		"logging.format",
		"logging.file",
	}
}

// Get returns the string form of a dotted key such as "server.addr".
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "version":
		return c.Version, nil
	case "server.addr":
		return c.Server.Addr, nil
	case "server.read_timeout":
		return c.Server.ReadTimeout.String(), nil
	case "server.write_timeout":
		return c.Server.WriteTimeout.String(), nil
	case "server.shutdown_timeout":
		return c.Server.ShutdownTimeout.String(), nil
	case "server.allowed_origins":
		return strings.Join(c.Server.AllowedOrigins, ","), nil
	case "server.rate_limit.enabled":
		return strconv.FormatBool(c.Server.RateLimit.Enabled), nil
	case "server.rate_limit.requests_per_second":
		return strconv.FormatFloat(c.Server.RateLimit.RequestsPerSecond, 'f', -1, 64), nil
	case "server.rate_limit.burst":
		return strconv.Itoa(c.Server.RateLimit.Burst), nil
	case "storage.path":
		return c.Storage.Path, nil
	case "storage.mock_delay":
		return c.Storage.MockDelay.String(), nil
	case "storage.seed":
		return strconv.FormatBool(c.Storage.Seed), nil
	case "display.date_layout":
		return c.Display.DateLayout, nil
	case "display.precision":
		return strconv.Itoa(c.Display.Precision), nil
	case "output.default_format":
		return c.Output.DefaultFormat, nil
	case "cache.enabled":
		return strconv.FormatBool(c.Cache.Enabled), nil
	case "cache.ttl_seconds":
		return strconv.Itoa(c.Cache.TTLSeconds), nil
	case "cache.directory":
		return c.Cache.Directory, nil
	case "provider.carbonkit_url":
		return c.Provider.CarbonKitURL, nil
	case "provider.username":
		return c.Provider.Username, nil
	case "provider.timeout":
		return c.Provider.Timeout.String(), nil
	case "logging.level":
		return c.Logging.Level, nil
	case "logging.format":
		return c.Logging.Format, nil
	case "logging.file":
		return c.Logging.File, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
}

// Set parses value into the field named by a dotted key.
func (c *Config) Set(key, value string) error {
	var err error
	switch key {
	case "server.addr":
		c.Server.Addr = value
	case "server.read_timeout":
		c.Server.ReadTimeout, err = time.ParseDuration(value)
	case "server.write_timeout":
		c.Server.WriteTimeout, err = time.ParseDuration(value)
	case "server.shutdown_timeout":
		c.Server.ShutdownTimeout, err = time.ParseDuration(value)
	case "server.allowed_origins":
		c.Server.AllowedOrigins = splitList(value)
	case "server.rate_limit.enabled":
		c.Server.RateLimit.Enabled, err = strconv.ParseBool(value)
	case "server.rate_limit.requests_per_second":
		c.Server.RateLimit.RequestsPerSecond, err = strconv.ParseFloat(value, 64)
	case "server.rate_limit.burst":
		c.Server.RateLimit.Burst, err = strconv.Atoi(value)
	case "storage.path":
		c.Storage.Path = value
	case "storage.mock_delay":
		c.Storage.MockDelay, err = time.ParseDuration(value)
	case "storage.seed":
		c.Storage.Seed, err = strconv.ParseBool(value)
	case "display.date_layout":
		c.Display.DateLayout = value
	case "display.precision":
		c.Display.Precision, err = strconv.Atoi(value)
	case "output.default_format":
		c.Output.DefaultFormat = value
	case "cache.enabled":
		c.Cache.Enabled, err = strconv.ParseBool(value)
	case "cache.ttl_seconds":
		c.Cache.TTLSeconds, err = strconv.Atoi(value)
	case "cache.directory":
		c.Cache.Directory = value
	case "provider.carbonkit_url":
		c.Provider.CarbonKitURL = value
	case "provider.username":
		c.Provider.Username = value
	case "provider.password":
		c.Provider.Password = value
	case "provider.timeout":
		c.Provider.Timeout, err = time.ParseDuration(value)
	case "logging.level":
		c.Logging.Level = value
	case "logging.format":
		c.Logging.Format = value
	case "logging.file":
		c.Logging.File = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if err != nil {
		return fmt.Errorf("invalid value %q for %s: %w", value, key, err)
	}
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
