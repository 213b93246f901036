package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the application's configuration model.
// It captures the content API endpoint, credentials, snapshot storage,
// export locations, and recommendation defaults.
type Config struct {
	API       APIConfig       `yaml:"api"`
	Account   AccountConfig   `yaml:"account"`
	Recommend RecommendConfig `yaml:"recommend"`
	Storage   StorageConfig   `yaml:"storage"`
	Export    ExportConfig    `yaml:"export"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

type APIConfig struct {
	BaseURL string `yaml:"baseUrl"`
	// Flic-Token header value. If empty, read from env FLIC_TOKEN.
	FlicToken string `yaml:"flicToken"`
	// Resonance algorithm key appended to the interaction feeds.
	Algorithm string `yaml:"algorithm"`
	// Page sizes per feed; the interaction feeds page much smaller
	// than the catalog feeds upstream.
	PageSizes PageSizes `yaml:"pageSizes"`
	// MaxPages caps pagination per feed.
	MaxPages int `yaml:"maxPages"`
}

type PageSizes struct {
	Viewed  int `yaml:"viewed"`
	Liked   int `yaml:"liked"`
	Ratings int `yaml:"ratings"`
	Posts   int `yaml:"posts"`
	Users   int `yaml:"users"`
}

type AccountConfig struct {
	// Username recommendations are computed for when -user is not given.
	Username string `yaml:"username"`
}

type RecommendConfig struct {
	TopN int `yaml:"topN"`
}

type StorageConfig struct {
	// SQLite snapshot path. If empty, read from env RESONANCE_DB.
	DBPath string `yaml:"dbPath"`
}

type ExportConfig struct {
	// Directory for per-feed CSV exports; empty disables export.
	Dir string `yaml:"dir"`
}

type MetricsConfig struct {
	// Prometheus listen address, e.g. ":9090". If empty, read METRICS_ADDR.
	Addr string `yaml:"addr"`
}

// Default returns a sensible default configuration.
func Default() Config {
	return Config{
		API: APIConfig{
			BaseURL:   "https://api.socialverseapp.com",
			FlicToken: "",
			Algorithm: "resonance_algorithm_cjsvervb7dbhss8bdrj89s44jfjdbsjd0xnjkbvuire8zcjwerui3njfbvsujc5if",
			PageSizes: PageSizes{Viewed: 1000, Liked: 5, Ratings: 5, Posts: 1000, Users: 1000},
			MaxPages:  10,
		},
		Account:   AccountConfig{Username: "maya"},
		Recommend: RecommendConfig{TopN: 5},
		Storage:   StorageConfig{DBPath: "./resonance.db"},
		Export:    ExportConfig{Dir: "./data"},
		Metrics:   MetricsConfig{Addr: ""},
	}
}

// ResolveEnv fills in config fields from environment variables if not set.
func (c *Config) ResolveEnv() {
	if c.API.FlicToken == "" {
		c.API.FlicToken = os.Getenv("FLIC_TOKEN")
	}
	if c.Storage.DBPath == "" {
		c.Storage.DBPath = os.Getenv("RESONANCE_DB")
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = os.Getenv("METRICS_ADDR")
	}
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	cfg.ResolveEnv()
	return cfg, nil
}

// Save writes YAML config to path, creating directories as needed.
func Save(path string, cfg Config) error {
	if path == "" {
		return errors.New("empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
