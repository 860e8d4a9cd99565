package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	GitHub  GitHubConfig  `mapstructure:"github"`
	Storage StorageConfig `mapstructure:"storage"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Sync    SyncConfig    `mapstructure:"sync"`
}

type GitHubConfig struct {
	Owner      string `mapstructure:"owner" validate:"required"`
	Repository string `mapstructure:"repository" validate:"required"`
	APIBaseURL string `mapstructure:"api_base_url" validate:"required,url"`
	Token      string `mapstructure:"token"`
}

type StorageConfig struct {
	Directory string `mapstructure:"directory" validate:"required"`
}

type CacheConfig struct {
	Version      string `mapstructure:"version" validate:"required"`
	Directory    string `mapstructure:"directory" validate:"required"`
	ManifestPath string `mapstructure:"manifest_path" validate:"required"`
	ShellURL     string `mapstructure:"shell_url" validate:"required,url"`
}

type SyncConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval" validate:"required"`
}

// DatabasePath is the location of the local key-value store.
func (c StorageConfig) DatabasePath() string {
	return filepath.Join(c.Directory, "dictsync.db")
}

func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigType("yaml")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/dictsync")
	}

	v.SetDefault("github.owner", "amharic-dictionary")
	v.SetDefault("github.repository", "amharic-arabic-dictionary")
	v.SetDefault("github.api_base_url", "https://api.github.com")
	v.SetDefault("storage.directory", filepath.Join("data", "store"))
	v.SetDefault("cache.version", "2.0.0")
	v.SetDefault("cache.directory", filepath.Join("data", "cache"))
	v.SetDefault("cache.manifest_path", filepath.Join("assets", "precache.yaml"))
	v.SetDefault("cache.shell_url", "https://amharic-dictionary.github.io/enhanced-dictionary.html")
	v.SetDefault("sync.poll_interval", 30*time.Second)

	// Bind the token to the environment only (not from config file)
	if err := v.BindEnv("github.token", "GITHUB_TOKEN"); err != nil {
		return nil, fmt.Errorf("failed to bind GITHUB_TOKEN environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
