package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultPaths are searched in order when no explicit path is given.
var DefaultPaths = []string{"config.yml", "config.yaml", "config.toml"}

// Default returns the configuration used when no file overrides a field.
// The yard defaults to the Elwood, IL terminal.
func Default() AppConfig {
	return AppConfig{
		Server: ServerConfig{Port: 8000},
		Yard: YardConfig{
			Lat:         41.43063,
			Lon:         -88.19651,
			RadiusMiles: 0.5,
		},
		Samsara: SamsaraConfig{
			BaseURL:   "https://api.samsara.com",
			MaxPages:  10,
			TimeoutMS: 10000,
		},
		SkyBitz: SkyBitzConfig{
			BaseURL:   "https://xml.skybitz.com",
			Version:   "2.76",
			TimeoutMS: 10000,
		},
		Retry:   RetryConfig{MaxAttempts: 3, BaseDelayMS: 500},
		Refresh: RefreshConfig{IntervalMS: 10 * 60 * 1000, OnStart: true},
		Storage: StorageConfig{Driver: "memory"},
		Logging: LoggingConfig{Level: "info"},
	}
}

// LoadAppConfig loads, overlays and validates the application configuration.
// An explicit path must exist. With an empty path the DefaultPaths are
// tried and, if none exists, defaults plus environment are used.
func LoadAppConfig(path string) (*AppConfig, error) {
	cfg := Default()
	if path == "" {
		for _, p := range DefaultPaths {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}
	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct tags on the whole configuration.
func Validate(cfg *AppConfig) error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("config: %s failed %q validation: %w", verrs[0].Namespace(), verrs[0].Tag(), err)
		}
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func decodeFile(path string, cfg *AppConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: reading %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("config: decoding %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("config: decoding %s: %w", path, err)
		}
	}
	return nil
}

// applyEnv overlays the deployment environment. Credentials normally only
// arrive this way.
func applyEnv(cfg *AppConfig) error {
	floats := []struct {
		key string
		dst *float64
	}{
		{"YARD_LAT", &cfg.Yard.Lat},
		{"YARD_LON", &cfg.Yard.Lon},
		{"YARD_RADIUS_MI", &cfg.Yard.RadiusMiles},
	}
	for _, f := range floats {
		raw := strings.TrimSpace(os.Getenv(f.key))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("config: %s=%q: %w", f.key, raw, err)
		}
		*f.dst = v
	}
	if raw := strings.TrimSpace(os.Getenv("PORT")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("config: PORT=%q: %w", raw, err)
		}
		cfg.Server.Port = v
	}
	strs := []struct {
		key string
		dst *string
	}{
		{"SAMSARA_TOKEN", &cfg.Samsara.Token},
		{"SKYBITZ_USERNAME", &cfg.SkyBitz.Username},
		{"SKYBITZ_PASSWORD", &cfg.SkyBitz.Password},
		{"STORAGE_DRIVER", &cfg.Storage.Driver},
		{"STORAGE_PATH", &cfg.Storage.Path},
		{"DATABASE_URL", &cfg.Storage.DSN},
	}
	for _, s := range strs {
		if v := os.Getenv(s.key); v != "" {
			*s.dst = v
		}
	}
	return nil
}

// BaseDelay is the unit of the linear backoff schedule.
func (r RetryConfig) BaseDelay() time.Duration {
	return time.Duration(r.BaseDelayMS) * time.Millisecond
}

// Interval is the period between scheduled passes.
func (r RefreshConfig) Interval() time.Duration {
	return time.Duration(r.IntervalMS) * time.Millisecond
}

// Timeout returns the per-request timeout, zero meaning none.
func (s SamsaraConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutMS) * time.Millisecond
}

// Timeout returns the per-request timeout, zero meaning none.
func (s SkyBitzConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutMS) * time.Millisecond
}

// PassBudget bounds one refresh pass when every upstream attempt runs to
// its timeout. Both providers are polled concurrently, so the slower one
// decides. Zero means unbounded: a provider has no request timeout.
func (c AppConfig) PassBudget() time.Duration {
	if c.Samsara.Timeout() <= 0 || c.SkyBitz.Timeout() <= 0 {
		return 0
	}
	attempts := max(c.Retry.MaxAttempts, 1)
	var backoff time.Duration
	for n := 2; n <= attempts; n++ {
		backoff += time.Duration(n-1) * c.Retry.BaseDelay()
	}
	request := func(timeout time.Duration) time.Duration {
		return time.Duration(attempts)*timeout + backoff
	}
	pages := max(c.Samsara.MaxPages, 1)
	return max(time.Duration(pages)*request(c.Samsara.Timeout()), request(c.SkyBitz.Timeout()))
}
