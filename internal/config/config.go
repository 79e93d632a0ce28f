package config

import (
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/spf13/viper"

	"github.com/tuannm99/novarow/internal/dsv"
	"github.com/tuannm99/novarow/internal/sortkey"
)

type NovaRowConfig struct {
	AppName  string `mapstructure:"app_name"`
	LogLevel string `mapstructure:"log_level"`

	// Aliases maps database alias to directory, allocated at startup.
	Aliases map[string]string `mapstructure:"aliases"`

	Text struct {
		Delimiter string `mapstructure:"delimiter"`
		NullToken string `mapstructure:"null_token"`
	} `mapstructure:"text"`

	// SortKey extends sortkey.Default; it never removes the built-in tokens.
	SortKey struct {
		FieldDelimiters     string   `mapstructure:"field_delimiters"`
		DirectionDelimiters string   `mapstructure:"direction_delimiters"`
		Ascending           []string `mapstructure:"ascending"`
		Descending          []string `mapstructure:"descending"`
	} `mapstructure:"sort_key"`

	Fetch struct {
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"fetch"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "novarow")
	v.SetDefault("log_level", "info")
	v.SetDefault("text.delimiter", ",")
	v.SetDefault("text.null_token", dsv.DefaultNullToken)
	v.SetDefault("fetch.timeout", 30*time.Second)
}

// LoadConfig reads a YAML file. An empty path yields the defaults.
func LoadConfig(path string) (*NovaRowConfig, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg NovaRowConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if _, err := cfg.Delimiter(); err != nil {
		return nil, err
	}
	if _, err := cfg.SlogLevel(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Delimiter returns the text delimiter, which must be a single character.
func (c *NovaRowConfig) Delimiter() (rune, error) {
	r, size := utf8.DecodeRuneInString(c.Text.Delimiter)
	if r == utf8.RuneError || size != len(c.Text.Delimiter) {
		return 0, fmt.Errorf("config: text.delimiter must be one character, got %q", c.Text.Delimiter)
	}
	return r, nil
}

func (c *NovaRowConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("config: log_level: %w", err)
	}
	return lvl, nil
}

func (c *NovaRowConfig) SortFactory() sortkey.Factory {
	return sortkey.Default.
		WithFieldDelimiters([]rune(c.SortKey.FieldDelimiters)...).
		WithDirectionDelimiters([]rune(c.SortKey.DirectionDelimiters)...).
		WithAscendingTokens(c.SortKey.Ascending...).
		WithDescendingTokens(c.SortKey.Descending...)
}
