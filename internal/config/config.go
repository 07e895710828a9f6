package config

import "time"

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Bluesky   BlueskyConfig   `yaml:"bluesky"`
	Poll      PollConfig      `yaml:"poll"`
	Jetstream JetstreamConfig `yaml:"jetstream"`
	Admin     AdminConfig     `yaml:"admin"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// BlueskyConfig holds the AppView endpoint and account credentials.
// AppPassword is a Bluesky app password, not the account's main password.
type BlueskyConfig struct {
	ServiceURL  string        `yaml:"service_url"  env:"BSKY_SERVICE_URL"  env-default:"https://bsky.social"`
	Identifier  string        `yaml:"identifier"   env:"BSKY_IDENTIFIER"   env-required:"true"`
	AppPassword string        `yaml:"app_password" env:"BSKY_APP_PASSWORD" env-required:"true"`
	Timeout     time.Duration `yaml:"timeout"      env:"BSKY_TIMEOUT"      env-default:"15s"`
}

// PollConfig controls the background notification refresh loop.
type PollConfig struct {
	Enabled  bool          `yaml:"enabled"   env:"POLL_ENABLED"   env-default:"true"`
	Interval time.Duration `yaml:"interval"  env:"POLL_INTERVAL"  env-default:"2m"`
	// MaxPages bounds the pagination depth of one refresh pass.
	MaxPages int `yaml:"max_pages" env:"POLL_MAX_PAGES" env-default:"5"`
	// PageSize is the listNotifications page size (AppView max 100).
	PageSize int `yaml:"page_size" env:"POLL_PAGE_SIZE" env-default:"50"`
}

// JetstreamConfig controls the optional live post ingest that warms the
// post cache from the jetstream firehose.
type JetstreamConfig struct {
	Enabled bool   `yaml:"enabled" env:"JETSTREAM_ENABLED" env-default:"false"`
	URL     string `yaml:"url"     env:"JETSTREAM_URL"     env-default:"wss://jetstream2.us-east.bsky.network/subscribe"`
}

// AdminConfig guards the mutating HTTP endpoints.
type AdminConfig struct {
	// Token, when set, is required as a Bearer token on /api/v1/refresh
	// and /api/v1/seen. Empty disables those endpoints.
	Token string `yaml:"token" env:"ADMIN_TOKEN"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}
