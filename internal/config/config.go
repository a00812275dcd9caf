package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// DefaultUserAgent is the User-Agent sent by the page inspector.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:147.0) Gecko/20100101 Firefox/147.0"

// AppName names the application data directory.
const AppName = "media-downloader"

type Config struct {
	BinDir        string `mapstructure:"bin_dir"`      // Directory holding the downloader executables
	DownloadDir   string `mapstructure:"download_dir"` // Default workspace when none is stored
	ClientTimeout string `mapstructure:"client_timeout"`
	ShutdownGrace string `mapstructure:"shutdown_grace"` // how long shutdown waits for running downloads
	UserAgent     string `mapstructure:"user_agent"`
	Server        struct {
		Port    int    `mapstructure:"port"`
		Address string `mapstructure:"address"`
	} `mapstructure:"server"`
	Bridge struct {
		Address string `mapstructure:"address"` // host:port the CLI client dials
	} `mapstructure:"bridge"`
	LogLevel string `mapstructure:"log_level"`
	Metrics  struct {
		Enabled bool `mapstructure:"enabled"`
		Port    int  `mapstructure:"port"`
	} `mapstructure:"metrics"`
	Store struct {
		Provider string `mapstructure:"provider"` // sqlite, redis or memory
		Path     string `mapstructure:"path"`     // sqlite database file
		Redis    struct {
			Address  string `mapstructure:"address"`
			Password string `mapstructure:"password"`
			DB       int    `mapstructure:"db"`
		} `mapstructure:"redis"`
		Cache struct {
			Size int    `mapstructure:"size"` // 0 disables the read cache
			TTL  string `mapstructure:"ttl"`  // Go duration string like "10m"
		} `mapstructure:"cache"`
	} `mapstructure:"store"`
	Sentry struct {
		DSN         string `mapstructure:"dsn"`
		Environment string `mapstructure:"environment"`
	} `mapstructure:"sentry"`
}

var (
	globalConfig *Config
	logger       zerolog.Logger
)

func init() {
	// Initialize zerolog with console writer for human-readable output
	logger = zerolog.New(zerolog.ConsoleWriter{
		Out:     os.Stdout,
		NoColor: false,
	}).With().Timestamp().Logger()

	config, err := LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load config")
	}

	level := zerolog.InfoLevel
	if config.LogLevel != "" {
		if parsedLevel, err := zerolog.ParseLevel(config.LogLevel); err == nil {
			level = parsedLevel
		} else {
			logger.Warn().Str("invalid_level", config.LogLevel).Msg("Invalid log level, using default 'info'")
		}
	}

	zerolog.SetGlobalLevel(level)
	logger = logger.Level(level)

	logger.Debug().Str("level", level.String()).Msg("Logging configured")
	globalConfig = config
}

func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variable support
	v.AutomaticEnv()
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	_ = v.BindEnv("log_level", "LOG_LEVEL")

	v.SetDefault("server.address", "localhost")
	v.SetDefault("server.port", 7790)
	v.SetDefault("bridge.address", "localhost:7790")
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("store.provider", "sqlite")
	v.SetDefault("store.cache.size", 0)
	v.SetDefault("store.cache.ttl", "10m")
	v.SetDefault("client_timeout", "30s")
	v.SetDefault("shutdown_grace", "30s")
	// Keys without a meaningful default still need registering so env overrides reach Unmarshal.
	for _, key := range []string{
		"bin_dir", "download_dir", "user_agent", "log_level", "store.path",
		"store.redis.address", "store.redis.password", "sentry.dsn", "sentry.environment",
	} {
		v.SetDefault(key, "")
	}
	v.SetDefault("store.redis.db", 0)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}
	if config.BinDir == "" {
		config.BinDir = defaultBinDir()
	}
	if config.DownloadDir == "" {
		config.DownloadDir = defaultDownloadDir()
	}
	if config.Store.Path == "" {
		config.Store.Path = filepath.Join(AppDataDir(), "store.db")
	}

	return &config, nil
}

func GetConfig() *Config {
	return globalConfig
}

func GetUserAgent() string {
	if globalConfig != nil && globalConfig.UserAgent != "" {
		return globalConfig.UserAgent
	}

	return DefaultUserAgent
}

func GetLogger() zerolog.Logger {
	return logger
}

// AppDataDir returns the per-user directory holding the store and logs.
func AppDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, AppName)
}

// defaultBinDir is the "bin" directory next to the running executable.
func defaultBinDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "bin"
	}
	return filepath.Join(filepath.Dir(exe), "bin")
}

func defaultDownloadDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), AppName)
	}
	return filepath.Join(home, "Downloads", AppName)
}
