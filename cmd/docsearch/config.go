package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/docsearch/fs"
	"github.com/ilyakaznacheev/cleanenv"
)

// Logging environments selected by DOCSEARCH_ENV.
const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

// Config holds the runtime settings read from the environment and,
// optionally, a YAML file.
type Config struct {
	Env    string `yaml:"env" env:"DOCSEARCH_ENV" env-default:"local"`
	Addr   string `yaml:"addr" env:"DOCSEARCH_ADDR" env-default:":3001"`
	Assets string `yaml:"assets" env:"DOCSEARCH_ASSETS" env-default:"./assets"`

	// DB is a SQLite path or a mongodb:// connection string.
	DB            string `yaml:"db" env:"DOCSEARCH_DB"`
	MongoDatabase string `yaml:"mongo_database" env:"DOCSEARCH_MONGO_DATABASE" env-default:"docsearch"`

	Solr      SolrConfig `yaml:"solr"`
	IndexPath string     `yaml:"index_path" env:"DOCSEARCH_INDEX_PATH"`

	Fetch FetchConfig `yaml:"fetch"`

	InstrumentationSrc string `yaml:"instrumentation_src" env:"DOCSEARCH_INSTRUMENTATION_SRC"`

	// Trace writes acquisition spans to stderr.
	Trace bool `yaml:"trace" env:"DOCSEARCH_TRACE" env-default:"false"`
}

// SolrConfig locates the external index. An empty Host selects the
// embedded index.
type SolrConfig struct {
	Host string `yaml:"host" env:"DOCSEARCH_SOLR_HOST"`
	Port int    `yaml:"port" env:"DOCSEARCH_SOLR_PORT" env-default:"8983"`
	Core string `yaml:"core" env:"DOCSEARCH_SOLR_CORE" env-default:"neurone"`
}

type FetchConfig struct {
	Timeout          time.Duration `yaml:"timeout" env:"DOCSEARCH_FETCH_TIMEOUT" env-default:"30s"`
	RPS              float64       `yaml:"rps" env:"DOCSEARCH_FETCH_RPS" env-default:"4"`
	AssetConcurrency int           `yaml:"asset_concurrency" env:"DOCSEARCH_ASSET_CONCURRENCY" env-default:"4"`
	Browser          bool          `yaml:"browser" env:"DOCSEARCH_BROWSER" env-default:"false"`
	Retry            bool          `yaml:"retry" env:"DOCSEARCH_FETCH_RETRY" env-default:"false"`
}

// LoadConfig reads the configuration from path when set, otherwise from
// the environment alone. Environment variables override file values.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config %q: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// IsMongo reports whether DB is a MongoDB connection string.
func (c *Config) IsMongo() bool {
	return strings.HasPrefix(c.DB, "mongodb://") || strings.HasPrefix(c.DB, "mongodb+srv://")
}

func (c *Config) validate() error {
	switch c.Env {
	case envLocal, envDev, envProd:
	default:
		return fmt.Errorf("unknown environment %q", c.Env)
	}
	if c.Fetch.RPS <= 0 {
		return fmt.Errorf("fetch rps must be positive")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.DB == "" {
		c.DB = dataPath("docsearch.db")
	}
	if c.IndexPath == "" {
		c.IndexPath = dataPath("index")
	}
	if c.InstrumentationSrc == "" {
		c.InstrumentationSrc = fs.DefaultInstrumentationSrc
	}
}

// dataPath returns name inside ~/.docsearch, creating the directory.
func dataPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	dir := filepath.Join(home, ".docsearch")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, name)
}

// NewLogger returns the logger for env writing to w.
func NewLogger(env string, w io.Writer) *slog.Logger {
	switch env {
	case envDev:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
