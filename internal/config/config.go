package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Storage StorageConfig
	Server  ServerConfig
	Log     LogConfig
}

// StorageConfig selects and configures the durable snapshot backend.
type StorageConfig struct {
	Backend string // file, sqlite, redis or memory
	Key     string
	Dir     string // file backend
	Path    string // sqlite backend
	Redis   RedisConfig

	// BusyTimeout bounds how long a sqlite write waits on another process.
	BusyTimeout time.Duration `mapstructure:"busy_timeout"`
}

// RedisConfig holds redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// ServerConfig holds the local HTTP bridge settings.
type ServerConfig struct {
	Addr string
}

// LogConfig holds logrus settings.
type LogConfig struct {
	Level  string
	Format string // text or json
}

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Load reads configuration from file and env. Env var overrides use prefix KANBAN_.
func Load() (Config, error) {
	v := viper.New()

	dataDir := defaultDataDir()
	v.SetDefault("storage.backend", BackendFile)
	v.SetDefault("storage.key", "tasks")
	v.SetDefault("storage.dir", dataDir)
	v.SetDefault("storage.path", filepath.Join(dataDir, "kanban.db"))
	v.SetDefault("storage.busy_timeout", "5s")
	v.SetDefault("storage.redis.addr", "127.0.0.1:6379")
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.prefix", "kanban:")
	v.SetDefault("server.addr", "127.0.0.1:7070")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("KANBAN_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "kanban"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("KANBAN")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects settings the storage layer cannot act on.
func (c Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Storage.Backend)) {
	case BackendFile:
		if c.Storage.Dir == "" {
			return fmt.Errorf("config: storage.dir required for file backend")
		}
	case BackendSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("config: storage.path required for sqlite backend")
		}
	case BackendRedis:
		if c.Storage.Redis.Addr == "" {
			return fmt.Errorf("config: storage.redis.addr required for redis backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("config: unknown storage backend %q", c.Storage.Backend)
	}
	if strings.TrimSpace(c.Storage.Key) == "" {
		return fmt.Errorf("config: storage.key must not be empty")
	}
	return nil
}

// Save writes the provided config to disk, creating the config directory if needed.
// The redis password is stored in plain text; prefer KANBAN_STORAGE_REDIS_PASSWORD.
func Save(cfg Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("storage.backend", cfg.Storage.Backend)
	v.Set("storage.key", cfg.Storage.Key)
	v.Set("storage.dir", cfg.Storage.Dir)
	v.Set("storage.path", cfg.Storage.Path)
	v.Set("storage.busy_timeout", cfg.Storage.BusyTimeout.String())
	v.Set("storage.redis.addr", cfg.Storage.Redis.Addr)
	v.Set("storage.redis.password", cfg.Storage.Redis.Password)
	v.Set("storage.redis.db", cfg.Storage.Redis.DB)
	v.Set("storage.redis.prefix", cfg.Storage.Redis.Prefix)
	v.Set("server.addr", cfg.Server.Addr)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.format", cfg.Log.Format)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Path returns the config file location: KANBAN_CONFIG when set, otherwise
// ~/.config/kanban/config.toml.
func Path() string {
	if p := os.Getenv("KANBAN_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "kanban", "config.toml")
}

func defaultDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "kanban")
	}
	return filepath.Join(os.Getenv("HOME"), ".local", "share", "kanban")
}
