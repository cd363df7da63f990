package config

// ServerConfig contains server configuration
type ServerConfig struct {
	Port int `yaml:"port" toml:"port" validate:"gt=0,lte=65535"`
}

// YardConfig is the circular geofence whose trailers are never paired.
type YardConfig struct {
	Lat         float64 `yaml:"lat" toml:"lat" validate:"gte=-90,lte=90"`
	Lon         float64 `yaml:"lon" toml:"lon" validate:"gte=-180,lte=180"`
	RadiusMiles float64 `yaml:"radiusMiles" toml:"radiusMiles" validate:"gte=0"`
}

// SamsaraConfig configures the truck feed.
type SamsaraConfig struct {
	BaseURL  string `yaml:"baseURL" toml:"baseURL" validate:"omitempty,url"`
	Token    string `yaml:"token" toml:"token"`
	MaxPages int    `yaml:"maxPages" toml:"maxPages" validate:"gte=0"`
	// ShortIDs derives 3/4 digit tags for trucks the way trailers are tagged.
	ShortIDs  bool     `yaml:"shortIds" toml:"shortIds"`
	TagFields []string `yaml:"tagFields" toml:"tagFields"`
	TimeoutMS int      `yaml:"timeoutMS" toml:"timeoutMS" validate:"gte=0"`
}

// SkyBitzConfig configures the trailer feed.
type SkyBitzConfig struct {
	BaseURL   string   `yaml:"baseURL" toml:"baseURL" validate:"omitempty,url"`
	Username  string   `yaml:"username" toml:"username"`
	Password  string   `yaml:"password" toml:"password"`
	Version   string   `yaml:"version" toml:"version"`
	TagFields []string `yaml:"tagFields" toml:"tagFields"`
	TimeoutMS int      `yaml:"timeoutMS" toml:"timeoutMS" validate:"gte=0"`
}

// RetryConfig bounds the per-adapter retry loop.
type RetryConfig struct {
	MaxAttempts int `yaml:"maxAttempts" toml:"maxAttempts" validate:"gte=1,lte=10"`
	BaseDelayMS int `yaml:"baseDelayMS" toml:"baseDelayMS" validate:"gte=0"`
}

// RefreshConfig drives the periodic pass.
type RefreshConfig struct {
	// IntervalMS of zero disables the periodic trigger.
	IntervalMS int  `yaml:"intervalMS" toml:"intervalMS" validate:"gte=0"`
	OnStart    bool `yaml:"onStart" toml:"onStart"`
}

// StorageConfig selects the key-value backend.
type StorageConfig struct {
	Driver string `yaml:"driver" toml:"driver" validate:"oneof=memory sqlite postgres"`
	Path   string `yaml:"path" toml:"path" validate:"required_if=Driver sqlite"`
	DSN    string `yaml:"dsn" toml:"dsn" validate:"required_if=Driver postgres"`
}

// LoggingConfig controls the zerolog output.
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level" validate:"omitempty,oneof=trace debug info warn warning error disabled off none"`
	Pretty bool   `yaml:"pretty" toml:"pretty"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Server  ServerConfig  `yaml:"server" toml:"server" validate:"required"`
	Yard    YardConfig    `yaml:"yard" toml:"yard"`
	Samsara SamsaraConfig `yaml:"samsara" toml:"samsara"`
	SkyBitz SkyBitzConfig `yaml:"skybitz" toml:"skybitz"`
	Retry   RetryConfig   `yaml:"retry" toml:"retry"`
	Refresh RefreshConfig `yaml:"refresh" toml:"refresh"`
	Storage StorageConfig `yaml:"storage" toml:"storage"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}
