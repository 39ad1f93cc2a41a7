package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all quickcollect configuration.
type Config struct {
	Storage   StorageConfig   `yaml:"storage"`
	Enhancer  EnhancerConfig  `yaml:"enhancer"`
	Export    ExportConfig    `yaml:"export"`
	Clipboard ClipboardConfig `yaml:"clipboard"`
	UI        UIConfig        `yaml:"ui"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// StorageConfig selects where the collection is persisted.
type StorageConfig struct {
	Backend string `yaml:"backend"` // json, sqlite
	Dir     string `yaml:"dir"`
}

// EnhancerConfig configures the description rewriter.
type EnhancerConfig struct {
	Provider string `yaml:"provider"` // gemini
	APIKey   string `yaml:"api_key,omitempty"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url,omitempty"`
	Timeout  string `yaml:"timeout"`
}

type ExportConfig struct {
	Locale           string `yaml:"locale"` // en, zh
	FlattenSingleRow bool   `yaml:"flatten_single_row"`
}

type ClipboardConfig struct {
	Mode string `yaml:"mode"` // system, osc52, tmux
}

type UIConfig struct {
	Theme     string `yaml:"theme"` // classic, neon, mono
	NoticeTTL string `yaml:"notice_ttl"`
}

type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: "json",
			Dir:     DefaultDataDir(),
		},
		Enhancer: EnhancerConfig{
			Provider: "gemini",
			Model:    "gemini-3-flash-preview",
			Timeout:  "60s",
		},
		Export: ExportConfig{
			Locale: "en",
		},
		Clipboard: ClipboardConfig{
			Mode: "system",
		},
		UI: UIConfig{
			Theme:     "classic",
			NoticeTTL: "2s",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultDataDir is where items, logs and credentials live.
func DefaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".quickcollect")
	}
	return ".quickcollect"
}

// DefaultPath is the config file location.
func DefaultPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "quickcollect", "config.yaml")
	}
	return filepath.Join(DefaultDataDir(), "config.yaml")
}

// Load reads a YAML config. A missing file yields defaults.
// Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate rejects values the rest of the program cannot act on.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "json", "sqlite":
	default:
		return fmt.Errorf("storage.backend: unknown backend %q (want json or sqlite)", c.Storage.Backend)
	}
	if _, err := c.EnhancerTimeout(); err != nil {
		return err
	}
	if _, err := c.NoticeTTL(); err != nil {
		return err
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if dir := os.Getenv("QUICKCOLLECT_DATA_DIR"); dir != "" {
		c.Storage.Dir = dir
	}
	if b := os.Getenv("QUICKCOLLECT_STORAGE"); b != "" {
		c.Storage.Backend = strings.ToLower(b)
	}
	if m := os.Getenv("QUICKCOLLECT_MODEL"); m != "" {
		c.Enhancer.Model = m
	}
	// API key from environment (lowest priority first)
	for _, name := range []string{"API_KEY", "GEMINI_API_KEY", "QUICKCOLLECT_API_KEY"} {
		if key := strings.TrimSpace(os.Getenv(name)); key != "" {
			c.Enhancer.APIKey = key
		}
	}
}

// EnhancerTimeout parses enhancer.timeout. Empty means no timeout.
func (c *Config) EnhancerTimeout() (time.Duration, error) {
	return parseDuration("enhancer.timeout", c.Enhancer.Timeout)
}

// NoticeTTL parses ui.notice_ttl, defaulting to two seconds.
func (c *Config) NoticeTTL() (time.Duration, error) {
	d, err := parseDuration("ui.notice_ttl", c.UI.NoticeTTL)
	if err == nil && d == 0 {
		d = 2 * time.Second
	}
	return d, err
}

func parseDuration(field, s string) (time.Duration, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: negative duration %s", field, s)
	}
	return d, nil
}

// LogPath is where the log file goes when logging.file is unset.
func (c *Config) LogPath() string {
	if c.Logging.File != "" {
		return c.Logging.File
	}
	return filepath.Join(c.Storage.Dir, "quickcollect.log")
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() *Config {
	cp := *c
	if cp.Enhancer.APIKey != "" {
		cp.Enhancer.APIKey = "****"
	}
	return &cp
}
