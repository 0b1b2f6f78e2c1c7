package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	TimeoutMS int    `mapstructure:"timeout_ms"`
}

type ChatConfig struct {
	// VisionEnabled 控制启动时视觉模式的默认开关
	// VisionEnabled controls whether vision mode starts enabled.
	VisionEnabled     bool   `mapstructure:"vision_enabled"`
	TokenEncoding     string `mapstructure:"token_encoding"`
	ContextTokenLimit int    `mapstructure:"context_token_limit"`
}

type StorageConfig struct {
	// BaseDir holds the sqlite cache, the cookie jar and the log file.
	BaseDir string `mapstructure:"base_dir"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Chat    ChatConfig    `mapstructure:"chat"`
	Storage StorageConfig `mapstructure:"storage"`
	Log     LogConfig     `mapstructure:"log"`
	Locale  string        `mapstructure:"locale"`
}

const (
	configName = "config"
	configType = "toml"
	configDir  = ".moia"
	envPrefix  = "MOIA"
)

// Load reads ~/.moia/config.toml (or an explicit path) over built-in
// defaults, with MOIA_* environment overrides. A missing config file is not
// an error; defaults apply.
func Load(path string) (Config, error) {
	v := viper.New()

	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("resolve home directory: %w", err)
	}
	baseDir := filepath.Join(home, configDir)

	v.SetDefault("server.base_url", "http://localhost:4000")
	v.SetDefault("server.timeout_ms", 120000)
	v.SetDefault("chat.vision_enabled", false)
	v.SetDefault("chat.token_encoding", "cl100k_base")
	v.SetDefault("chat.context_token_limit", 24000)
	v.SetDefault("storage.base_dir", baseDir)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", filepath.Join(baseDir, "moia.log"))
	v.SetDefault("locale", "")

	if strings.TrimSpace(path) != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		v.AddConfigPath(baseDir)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.Server.BaseURL) == "" {
		return fmt.Errorf("server.base_url is empty")
	}
	if c.Server.TimeoutMS < 0 {
		return fmt.Errorf("server.timeout_ms must be >= 0, got %d", c.Server.TimeoutMS)
	}
	if strings.TrimSpace(c.Storage.BaseDir) == "" {
		return fmt.Errorf("storage.base_dir is empty")
	}
	return nil
}
