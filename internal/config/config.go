package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Default endpoints of the card and transactions services.
const (
	DefaultCardURL         = "https://www.bakarcompany.somee.com/api/IssueCard/get-card-data"
	DefaultTransactionsURL = "https://my-json-server.typicode.com/Sherif-El-Sheikh/Transactions-Information-Backend/transactions"
)

// Config represents the top-level cardview.yaml configuration.
type Config struct {
	Endpoints EndpointsConfig `yaml:"endpoints"`
	HTTP      HTTPConfig      `yaml:"http"`
	CVV       CVVConfig       `yaml:"cvv"`
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
}

// EndpointsConfig locates the two remote collections. file:// URLs read local fixtures.
type EndpointsConfig struct {
	Card         string `yaml:"card"`
	Transactions string `yaml:"transactions"`
}

// HTTPConfig controls the fetch client.
type HTTPConfig struct {
	Timeout Duration `yaml:"timeout"`
}

// CVVConfig controls the security code reveal.
type CVVConfig struct {
	RevealTimeout Duration `yaml:"reveal_timeout"`
}

// ServerConfig controls the dashboard server.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Duration is a time.Duration written as "30s" in YAML.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("duration: %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Load reads a cardview.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault reads path, falling back to Default when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config pointing at the public endpoints.
func Default() *Config {
	return &Config{
		Endpoints: EndpointsConfig{
			Card:         DefaultCardURL,
			Transactions: DefaultTransactionsURL,
		},
		HTTP: HTTPConfig{
			Timeout: Duration(30 * time.Second),
		},
		CVV: CVVConfig{
			RevealTimeout: Duration(10 * time.Second),
		},
		Server: ServerConfig{
			Addr: "localhost:8080",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Environment variables overriding the file.
const (
	EnvCardURL         = "CARDVIEW_CARD_URL"
	EnvTransactionsURL = "CARDVIEW_TRANSACTIONS_URL"
	EnvHTTPTimeout     = "CARDVIEW_HTTP_TIMEOUT"
	EnvRevealTimeout   = "CARDVIEW_CVV_REVEAL_TIMEOUT"
	EnvAddr            = "CARDVIEW_ADDR"
	EnvLogLevel        = "CARDVIEW_LOG_LEVEL"
	EnvLogFormat       = "CARDVIEW_LOG_FORMAT"
)

// LoadDotEnv loads the given .env files into the process environment,
// skipping files that do not exist. Variables already set win.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides cfg with any CARDVIEW_* variables found through lookup
// (usually os.LookupEnv).
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *Duration) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = Duration(d)
		return nil
	}

	str(EnvCardURL, &cfg.Endpoints.Card)
	str(EnvTransactionsURL, &cfg.Endpoints.Transactions)
	str(EnvAddr, &cfg.Server.Addr)
	str(EnvLogLevel, &cfg.Log.Level)
	str(EnvLogFormat, &cfg.Log.Format)
	if err := dur(EnvHTTPTimeout, &cfg.HTTP.Timeout); err != nil {
		return err
	}
	return dur(EnvRevealTimeout, &cfg.CVV.RevealTimeout)
}
