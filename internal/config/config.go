// Package config loads formctl settings from a config file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. FORMCTL_STORE_DRIVER.
const EnvPrefix = "FORMCTL"

var validate = validator.New()

// Config holds formctl configuration.
type Config struct {
	Documents []string          `mapstructure:"documents"`
	Vars      map[string]string `mapstructure:"vars"`
	Store     StoreConfig       `mapstructure:"store"`
	Principal PrincipalConfig   `mapstructure:"principal"`
	Server    ServerConfig      `mapstructure:"server"`
	Log       LogConfig         `mapstructure:"log"`
	Strict    bool              `mapstructure:"strict"`
}

// StoreConfig selects where field values live.
type StoreConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=memory yaml sqlite"`
	Path   string `mapstructure:"path" validate:"required_unless=Driver memory"`
}

// PrincipalConfig names the principal whose grants gate visibility.
type PrincipalConfig struct {
	GrantsFile string `mapstructure:"grants_file"`
	Name       string `mapstructure:"name" validate:"required_with=GrantsFile"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr string `mapstructure:"addr" validate:"required"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
}

// Source configures Load. Flags bound with Bind override file and
// environment values.
type Source struct {
	File  string
	Binds map[string]any
}

// Load reads configuration from file and env. Env var overrides use prefix FORMCTL_.
func Load(src Source) (Config, error) {
	v := viper.New()

	v.SetDefault("documents", []string{})
	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.path", "")
	v.SetDefault("principal.grants_file", "")
	v.SetDefault("principal.name", "")
	v.SetDefault("server.addr", "127.0.0.1:8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("strict", false)

	v.SetConfigType("yaml")

	cfgPath := src.File
	if cfgPath == "" {
		cfgPath = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "formctl"))
		v.AddConfigPath(".")
		v.SetConfigName("formctl")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgPath != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	for key, val := range src.Binds {
		v.Set(key, val)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validate.Struct(c); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}
	return c, nil
}

// Level parses the configured log level.
func (c Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// TemplateVars converts Vars for the declaration template engine.
func (c Config) TemplateVars() map[string]any {
	out := make(map[string]any, len(c.Vars))
	for k, v := range c.Vars {
		out[k] = v
	}
	return out
}
