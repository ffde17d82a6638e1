package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Log      LogConfig      `yaml:"log"`
	DB       DBConfig       `yaml:"db"`
	Geocode  GeocodeConfig  `yaml:"geocode"`
	Events   EventsConfig   `yaml:"events"`
	Scan     ScanConfig     `yaml:"scan"`
	Organize OrganizeConfig `yaml:"organize"`
}

// GeocodeConfig holds settings for the reverse-geocoding provider and its cache.
type GeocodeConfig struct {
	Endpoint    string        `yaml:"endpoint"`     // Nominatim base URL
	Email       string        `yaml:"email"`        // Contact e-mail sent to the provider
	Language    string        `yaml:"language"`     // Accept-Language for place names
	Precision   int           `yaml:"precision"`    // Decimal places for coordinate quantization
	MinInterval Duration      `yaml:"min_interval"` // Minimum spacing between provider calls
	Timeout     Duration      `yaml:"timeout"`
	Retries     int           `yaml:"retries"`
	Backoff     BackoffConfig `yaml:"backoff"`
	CachePath   string        `yaml:"cache_path"` // JSON cache file location
}

// BackoffConfig holds exponential backoff settings for HTTP retries.
type BackoffConfig struct {
	BaseDelay Duration `yaml:"base_delay"`
	MaxDelay  Duration `yaml:"max_delay"`
}

// EventsConfig holds settings for event segmentation.
type EventsConfig struct {
	GapDays          int    `yaml:"gap_days"`          // Calendar-day gap that always starts a new event
	SentinelAdmin    string `yaml:"sentinel_admin"`    // Admin code used when a record has no place data
	SentinelPostcode string `yaml:"sentinel_postcode"` // Postcode used when a record has no place data
}

// ScanConfig holds settings for the media scanner.
type ScanConfig struct {
	MaxFiles int `yaml:"max_files"` // 0 = unlimited
}

// OrganizeConfig holds settings for file placement.
type OrganizeConfig struct {
	Mode string `yaml:"mode"` // "move" or "copy"
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server   LogSettings `yaml:"server"`
	Requests LogSettings `yaml:"requests"`
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// DBConfig holds catalog database settings.
type DBConfig struct {
	Path string `yaml:"path"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Server: LogSettings{
				Path:  "./logs/snapsort.log",
				Level: "INFO",
			},
			Requests: LogSettings{
				Path:  "./logs/requests.log",
				Level: "INFO",
			},
		},
		DB: DBConfig{
			Path: "./data/snapsort.db",
		},
		Geocode: GeocodeConfig{
			Endpoint:    "https://nominatim.openstreetmap.org",
			Language:    "en",
			Precision:   2,
			MinInterval: Duration(100 * time.Millisecond),
			Timeout:     Duration(10 * time.Second),
			Retries:     3,
			Backoff: BackoffConfig{
				BaseDelay: Duration(500 * time.Millisecond),
				MaxDelay:  Duration(10 * time.Second),
			},
			CachePath: "./data/geocache.json",
		},
		Events: EventsConfig{
			GapDays:          7,
			SentinelAdmin:    "RO",
			SentinelPostcode: "no_gps",
		},
		Scan: ScanConfig{
			MaxFiles: 0,
		},
		Organize: OrganizeConfig{
			Mode: "move",
		},
	}
}

// Load loads the configuration from the given path.
// If the file does not exist, it creates it with default values.
// If the file exists, it merges defaults with existing values but does NOT
// save back to disk (to preserve user formatting and comments).
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}

		// Env fallback, not saved back to disk
		if cfg.Geocode.Email == "" {
			if email := os.Getenv("NOMINATIM_EMAIL"); email != "" {
				cfg.Geocode.Email = email
			}
		}

		if err := cfg.validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	// If file does not exist, save defaults
	if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Geocode.Precision < 0 || c.Geocode.Precision > 8 {
		return fmt.Errorf("invalid geocode precision %d: must be 0-8", c.Geocode.Precision)
	}
	if c.Events.GapDays < 1 {
		return fmt.Errorf("invalid events gap_days %d: must be >= 1", c.Events.GapDays)
	}
	if c.Organize.Mode != "move" && c.Organize.Mode != "copy" {
		return fmt.Errorf("invalid organize mode %q: must be 'move' or 'copy'", c.Organize.Mode)
	}
	return nil
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# Snapsort Configuration
# ---------------------
# Supported Duration units: ns, us, ms, s, m, h, d (day), w (week)

`)
	data = append(header, data...)

	// Inject comments for enum fields
	reMode := regexp.MustCompile(`(?m)^(\s+)mode:`)
	data = reMode.ReplaceAll(data, []byte("${1}# Options: move, copy\n${1}mode:"))

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil // File exists, do nothing
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return Save(path, DefaultConfig())
}
