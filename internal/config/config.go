package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Server         ServerConfig         `yaml:"server"`
	Database       DatabaseConfig       `yaml:"database"`
	Auction        AuctionConfig        `yaml:"auction"`
	Import         ImportConfig         `yaml:"import"`
	Telemetry      TelemetryConfig      `yaml:"telemetry"`
	LeaderElection LeaderElectionConfig `yaml:"leader_election"`
	Discord        DiscordConfig        `yaml:"discord"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes"`
}

// DatabaseConfig selects the roster source. The memory driver reads
// SeedPath; the postgres driver uses the connection fields.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // "memory" or "postgres"
	SeedPath string `yaml:"seed_path"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the Postgres connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// AuctionConfig holds the bidding rules and result display timings.
type AuctionConfig struct {
	BidIncrement        int64         `yaml:"bid_increment"`
	CelebrationDuration time.Duration `yaml:"celebration_duration"`
	UnsoldDuration      time.Duration `yaml:"unsold_duration"`
}

// ImportConfig holds roster import defaults.
type ImportConfig struct {
	DefaultBasePrice int64  `yaml:"default_base_price"`
	PlaceholderPhoto string `yaml:"placeholder_photo"`
}

// TelemetryConfig holds OpenTelemetry settings.
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name"`
	ServiceVersion string `yaml:"service_version"`
	OTLPEndpoint   string `yaml:"otlp_endpoint"`
	Insecure       bool   `yaml:"insecure"`
}

// LeaderElectionConfig holds Kubernetes leader election settings.
type LeaderElectionConfig struct {
	Enabled        bool          `yaml:"enabled"`
	LeaseName      string        `yaml:"lease_name"`
	LeaseNamespace string        `yaml:"lease_namespace"`
	LeaseDuration  time.Duration `yaml:"lease_duration"`
	RenewDeadline  time.Duration `yaml:"renew_deadline"`
	RetryPeriod    time.Duration `yaml:"retry_period"`
}

// DiscordConfig holds settings for announcing results to a Discord channel.
type DiscordConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Token     string `yaml:"token"`
	ChannelID string `yaml:"channel_id"`
}

// Default returns the configuration used when a file leaves a field unset.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ShutdownTimeout: 15 * time.Second,
			MaxUploadBytes:  10 << 20,
		},
		Database: DatabaseConfig{
			Driver:  "memory",
			Host:    "localhost",
			Port:    5432,
			SSLMode: "disable",
		},
		Auction: AuctionConfig{
			BidIncrement:        500_000,
			CelebrationDuration: 4 * time.Second,
			UnsoldDuration:      2 * time.Second,
		},
		Import: ImportConfig{
			DefaultBasePrice: 1_000_000,
			PlaceholderPhoto: "/placeholder.svg",
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "auctiond",
			ServiceVersion: "0.1.0",
		},
		LeaderElection: LeaderElectionConfig{
			Enabled:        false,
			LeaseName:      "auctiond-leader",
			LeaseNamespace: "default",
			LeaseDuration:  15 * time.Second,
			RenewDeadline:  10 * time.Second,
			RetryPeriod:    2 * time.Second,
		},
	}
}

// Load reads a YAML configuration file from the given path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	var errs []error

	switch c.Database.Driver {
	case "memory", "postgres":
		// valid
	default:
		errs = append(errs, fmt.Errorf("unsupported database driver %q: must be \"memory\" or \"postgres\"", c.Database.Driver))
	}
	if c.Auction.BidIncrement <= 0 {
		errs = append(errs, fmt.Errorf("auction.bid_increment must be positive, got %d", c.Auction.BidIncrement))
	}
	if c.Auction.CelebrationDuration < 0 || c.Auction.UnsoldDuration < 0 {
		errs = append(errs, errors.New("auction durations must not be negative"))
	}
	if c.Import.DefaultBasePrice < 0 {
		errs = append(errs, fmt.Errorf("import.default_base_price must not be negative, got %d", c.Import.DefaultBasePrice))
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("server.max_upload_bytes must be positive"))
	}
	if c.Discord.Enabled && (c.Discord.Token == "" || c.Discord.ChannelID == "") {
		errs = append(errs, errors.New("discord.token and discord.channel_id are required when discord is enabled"))
	}
	return errors.Join(errs...)
}
