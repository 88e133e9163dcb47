package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from a YAML string like "30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = dur
	return nil
}

// HealthPage describes the okcomputer-style health endpoint polled by
// check_okcomputer_health.
type HealthPage struct {
	Hostname string
	Port     int
	TLS      bool
	Path     string
	// Exclude lists check names dropped before aggregation.
	Exclude []string
	Headers map[string]string
	// Timeout of zero leaves the request unbounded.
	Timeout time.Duration
}

// DefaultExclude is always excluded from aggregation.
const DefaultExclude = "stub"

// DefaultHealthPage returns the plugin defaults.
func DefaultHealthPage() HealthPage {
	return HealthPage{
		Hostname: "localhost",
		Port:     80,
		Path:     "/health_checks",
		Exclude:  []string{DefaultExclude},
	}
}

// URL assembles the address polled for hp.
func (hp HealthPage) URL() string {
	scheme := "http"
	if hp.TLS {
		scheme = "https"
	}
	path := hp.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return scheme + "://" + net.JoinHostPort(hp.Hostname, strconv.Itoa(hp.Port)) + path
}

// Validate reports the first invalid field of hp.
func (hp HealthPage) Validate() error {
	if hp.Hostname == "" {
		return fmt.Errorf("hostname is required")
	}
	if hp.Port < 1 || hp.Port > 65535 {
		return fmt.Errorf("invalid port %d", hp.Port)
	}
	if _, err := url.Parse(hp.URL()); err != nil {
		return fmt.Errorf("invalid health page url: %w", err)
	}
	return nil
}

// SMTPConfig holds mail transport settings.
type SMTPConfig struct {
	Host     string   `yaml:"host"`
	Port     int      `yaml:"port"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	TLSMode  string   `yaml:"tls_mode"`
	Timeout  Duration `yaml:"timeout"`
}

// GraphConfig holds Graphite render settings.
type GraphConfig struct {
	URL      string   `yaml:"url"`
	Interval string   `yaml:"interval"`
	Width    int      `yaml:"width"`
	Height   int      `yaml:"height"`
	Timeout  Duration `yaml:"timeout"`
}

// Config is the sendgraph configuration.
type Config struct {
	SMTP  SMTPConfig  `yaml:"smtp"`
	Graph GraphConfig `yaml:"graph"`
	From  string      `yaml:"from"`
}

var validTLSModes = map[string]bool{
	"none":     true,
	"starttls": true,
	"smtps":    true,
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads, parses, and validates the config file at path. An empty path
// yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.SMTP.Host == "" {
		cfg.SMTP.Host = "localhost"
	}
	if cfg.SMTP.TLSMode == "" {
		cfg.SMTP.TLSMode = "none"
	}
	if cfg.SMTP.Port == 0 {
		switch cfg.SMTP.TLSMode {
		case "smtps":
			cfg.SMTP.Port = 465
		case "starttls":
			cfg.SMTP.Port = 587
		default:
			cfg.SMTP.Port = 25
		}
	}
	if cfg.Graph.Interval == "" {
		cfg.Graph.Interval = "6hours"
	}
	if cfg.Graph.Width == 0 {
		cfg.Graph.Width = 800
	}
}

// Validate checks cfg after defaults and flag overrides are applied.
func (cfg *Config) Validate() error {
	if !validTLSModes[cfg.SMTP.TLSMode] {
		return fmt.Errorf("smtp: invalid tls_mode %q (must be none, starttls, or smtps)", cfg.SMTP.TLSMode)
	}
	if cfg.SMTP.Port < 1 || cfg.SMTP.Port > 65535 {
		return fmt.Errorf("smtp: invalid port %d", cfg.SMTP.Port)
	}
	if cfg.Graph.Width <= 0 {
		return fmt.Errorf("graph: width must be positive, got %d", cfg.Graph.Width)
	}
	if cfg.Graph.Height < 0 {
		return fmt.Errorf("graph: height must not be negative, got %d", cfg.Graph.Height)
	}
	if cfg.Graph.URL != "" {
		u, err := url.Parse(cfg.Graph.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("graph: invalid url %q", cfg.Graph.URL)
		}
	}
	return nil
}
