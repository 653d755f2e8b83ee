// Package config loads treeseq settings from defaults, a TOML config file,
// TREESEQ_* environment variables and command-line flags, in increasing order
// of precedence.
//
//	[search]
//	labels = 3
//	workers = 8
//
//	[cache]
//	backend = "badger"
package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"github.com/matzehuels/treeseq/pkg/cache"
	treeerrors "github.com/matzehuels/treeseq/pkg/errors"
)

// AppName names the config and cache directories.
const AppName = "treeseq"

// EnvPrefix prefixes environment overrides, e.g. TREESEQ_SEARCH_LABELS.
const EnvPrefix = "TREESEQ"

// Config is the complete treeseq configuration.
type Config struct {
	Search     SearchConfig     `mapstructure:"search"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Checkpoint CheckpointConfig `mapstructure:"checkpoint"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Log        LogConfig        `mapstructure:"log"`
}

// SearchConfig controls the bad-sequence search.
type SearchConfig struct {
	// Labels is the alphabet size n.
	Labels int `mapstructure:"labels"`
	// Workers is the embedding pool size.
	Workers int `mapstructure:"workers"`
	// MaxSize bounds candidate tree sizes (0 = unbounded).
	MaxSize int `mapstructure:"max_size"`
	// MaxDepth bounds the sequence length (0 = unbounded).
	MaxDepth int `mapstructure:"max_depth"`
	// Resume starts cursors at the largest cached size.
	Resume bool `mapstructure:"resume"`
}

// CacheConfig selects the tree cache backend.
type CacheConfig struct {
	Backend       string `mapstructure:"backend"`
	Dir           string `mapstructure:"dir"`
	RedisAddr     string `mapstructure:"redis_addr"`
	MongoURI      string `mapstructure:"mongo_uri"`
	MongoDatabase string `mapstructure:"mongo_database"`
	Namespace     string `mapstructure:"namespace"`
}

// CheckpointConfig controls best-sequence checkpoints.
type CheckpointConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	// Addr is the listen address; empty disables the endpoint.
	Addr string `mapstructure:"addr"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Search: SearchConfig{
			Labels:  3,
			Workers: runtime.NumCPU(),
			Resume:  true,
		},
		Cache: CacheConfig{
			Backend:       cache.BackendFile,
			Dir:           CacheDir(),
			MongoDatabase: AppName,
			Namespace:     cache.DefaultNamespace,
		},
		Checkpoint: CheckpointConfig{
			Path: filepath.Join(StateDir(), "checkpoint.toml"),
		},
		Log: LogConfig{Level: "info"},
	}
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("search.labels", d.Search.Labels)
	v.SetDefault("search.workers", d.Search.Workers)
	v.SetDefault("search.max_size", d.Search.MaxSize)
	v.SetDefault("search.max_depth", d.Search.MaxDepth)
	v.SetDefault("search.resume", d.Search.Resume)

	v.SetDefault("cache.backend", d.Cache.Backend)
	v.SetDefault("cache.dir", d.Cache.Dir)
	v.SetDefault("cache.redis_addr", d.Cache.RedisAddr)
	v.SetDefault("cache.mongo_uri", d.Cache.MongoURI)
	v.SetDefault("cache.mongo_database", d.Cache.MongoDatabase)
	v.SetDefault("cache.namespace", d.Cache.Namespace)

	v.SetDefault("checkpoint.enabled", d.Checkpoint.Enabled)
	v.SetDefault("checkpoint.path", d.Checkpoint.Path)

	v.SetDefault("metrics.addr", d.Metrics.Addr)

	v.SetDefault("log.level", d.Log.Level)
}

// New returns a viper instance with defaults, environment binding and the
// config file loaded. An empty cfgFile looks for config.toml in [Dir]; a
// missing default file is not an error.
func New(cfgFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(Dir())
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, treeerrors.Wrap(treeerrors.ErrCodeInvalidConfig, err, "read config")
		}
	}
	return v, nil
}

// Load reads the configuration from v and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, treeerrors.Wrap(treeerrors.ErrCodeInvalidConfig, err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings no command can run with.
func (c *Config) Validate() error {
	if err := treeerrors.ValidateLabels(c.Search.Labels); err != nil {
		return treeerrors.Wrap(treeerrors.ErrCodeInvalidConfig, err, "search.labels")
	}
	if c.Search.Workers < 0 {
		return treeerrors.New(treeerrors.ErrCodeInvalidConfig, "search.workers must be >= 0, got %d", c.Search.Workers)
	}
	if err := treeerrors.ValidateBound("search.max_size", c.Search.MaxSize); err != nil {
		return treeerrors.Wrap(treeerrors.ErrCodeInvalidConfig, err, "search.max_size")
	}
	if err := treeerrors.ValidateBound("search.max_depth", c.Search.MaxDepth); err != nil {
		return treeerrors.Wrap(treeerrors.ErrCodeInvalidConfig, err, "search.max_depth")
	}
	if !slices.Contains(cache.Backends, c.Cache.Backend) {
		return treeerrors.New(treeerrors.ErrCodeInvalidConfig, "cache.backend must be one of %s, got %q",
			strings.Join(cache.Backends, ", "), c.Cache.Backend)
	}
	if c.Checkpoint.Enabled && c.Checkpoint.Path == "" {
		return treeerrors.New(treeerrors.ErrCodeInvalidConfig, "checkpoint.path is required when checkpoints are enabled")
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return treeerrors.New(treeerrors.ErrCodeInvalidConfig, "log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	return nil
}

// CacheOptions converts the cache section into backend options.
func (c *CacheConfig) CacheOptions() cache.Options {
	return cache.Options{
		Backend:       c.Backend,
		Dir:           c.Dir,
		RedisAddr:     c.RedisAddr,
		MongoURI:      c.MongoURI,
		MongoDatabase: c.MongoDatabase,
	}
}

// Dir returns the config directory ($XDG_CONFIG_HOME/treeseq or
// ~/.config/treeseq).
func Dir() string {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// CacheDir returns the default cache directory ($XDG_CACHE_HOME/treeseq or
// ~/.cache/treeseq).
func CacheDir() string {
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

// StateDir returns the directory for checkpoints ($XDG_STATE_HOME/treeseq or
// ~/.local/state/treeseq).
func StateDir() string {
	return xdgDir("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

func xdgDir(env, fallback string) string {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "." + AppName
	}
	return filepath.Join(home, fallback, AppName)
}
