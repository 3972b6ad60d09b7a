package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variable overrides (ANKIDECK_LOG_LEVEL, ...)
const EnvPrefix = "ANKIDECK"

// Config represents the application configuration
type Config struct {
	LogLevel    string `toml:"log_level" mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	Seed        uint64 `toml:"seed" mapstructure:"seed"`                                   // Deck id seed, 0 picks one at random
	Description string `toml:"description" mapstructure:"description" validate:"max=4096"` // Deck description
}

// flagKeys maps config keys to the command-line flags that override them
var flagKeys = map[string]string{
	"log_level":   "log-level",
	"seed":        "seed",
	"description": "description",
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		LogLevel: "info",
	}
}

// GetXDGConfigHome returns XDG_CONFIG_HOME or default path
func GetXDGConfigHome() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return xdgConfig
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config")
}

// GetConfigFilePath returns the path to the config file
func GetConfigFilePath() string {
	return filepath.Join(GetXDGConfigHome(), "ankideck", "config.toml")
}

// LoadFile loads the config file at path. A missing file yields the defaults.
func LoadFile(path string) (*Config, error) {
	config := Default()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config, nil
	}

	if _, err := toml.DecodeFile(path, config); err != nil {
		return nil, fmt.Errorf("error decoding config file: %w", err)
	}

	return config, nil
}

// Load builds the effective configuration. Values from the config file are
// overridden by ANKIDECK_* environment variables, which are overridden by
// flags that were set explicitly.
func Load(flags *pflag.FlagSet) (*Config, error) {
	file, err := LoadFile(GetConfigFilePath())
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetDefault("log_level", file.LogLevel)
	v.SetDefault("seed", file.Seed)
	v.SetDefault("description", file.Description)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("error binding flag %s: %w", name, err)
				}
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error reading configuration: %w", err)
	}

	if err := Validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks config values
func Validate(config *Config) error {
	if err := validator.New().Struct(config); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// Init creates a config file with default values unless one exists. It
// reports whether a file was created.
func Init() (string, bool, error) {
	configPath := GetConfigFilePath()
	if _, err := os.Stat(configPath); err == nil {
		return configPath, false, nil
	}

	if err := Save(configPath, Default()); err != nil {
		return "", false, err
	}
	return configPath, true, nil
}

// Save writes config to path as TOML
func Save(path string, config *Config) error {
	// Ensure the config directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating config file: %w", err)
	}
	defer file.Close()

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}

	return nil
}
