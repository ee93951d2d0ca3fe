package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Billing    BillingConfig    `yaml:"billing"`
	Power      PowerConfig      `yaml:"power"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RequestIPHeader string  `yaml:"request_ip_header"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string        `yaml:"dsn"`
	MaxOpenConns           int           `yaml:"max_open_conns"`
	MaxIdleConns           int           `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int           `yaml:"conn_max_lifetime_minutes"`
	OpTimeoutSeconds       int           `yaml:"op_timeout_seconds"`
	OpTimeout              time.Duration `yaml:"-"` // Ignored by YAML parser
}

// BillingConfig holds the session pricing policy knobs.
type BillingConfig struct {
	// MaxControllers caps how many controllers a single session may hold.
	MaxControllers int `yaml:"max_controllers"`
	// RequireGame rejects session starts without a game when true.
	RequireGame bool `yaml:"require_game"`
	// DiscountType selects which configured discount applies to session time.
	DiscountType string `yaml:"discount_type"`
}

// PowerConfig holds the display power-control sidecar settings.
type PowerConfig struct {
	BaseURL        string        `yaml:"base_url"`
	TimeoutSeconds int           `yaml:"timeout_seconds"`
	Timeout        time.Duration `yaml:"-"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Database.OpTimeoutSeconds <= 0 {
		cfg.Database.OpTimeoutSeconds = 5
	}
	cfg.Database.OpTimeout = time.Duration(cfg.Database.OpTimeoutSeconds) * time.Second

	if cfg.Billing.MaxControllers <= 0 {
		cfg.Billing.MaxControllers = 2
	}
	if cfg.Billing.DiscountType == "" {
		cfg.Billing.DiscountType = "session_time"
	}

	if cfg.Power.TimeoutSeconds <= 0 {
		cfg.Power.TimeoutSeconds = 3
	}
	cfg.Power.Timeout = time.Duration(cfg.Power.TimeoutSeconds) * time.Second

	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 30
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	return &cfg, nil
}
