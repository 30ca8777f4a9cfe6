// SPDX-License-Identifier: AGPL-3.0-only

// Package config loads tool configuration from an optional TOML file and
// the environment. Credentials are environment-only and never written to
// disk by this tool.
package config

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

type ApifyConfig struct {
	Token   string `mapstructure:"token"`
	BaseURL string `mapstructure:"base_url"`
}

type TelegramConfig struct {
	AppID       int    `mapstructure:"app_id"`
	AppHash     string `mapstructure:"app_hash"`
	SessionFile string `mapstructure:"session_file"`
	Phone       string `mapstructure:"phone"`
}

type HistoryConfig struct {
	Path string `mapstructure:"path"`
}

// TargetsConfig holds default target lists used when a command gets none on
// the command line.
type TargetsConfig struct {
	Telegram []string `mapstructure:"telegram"`
	X        []string `mapstructure:"x"`
	LinkedIn []string `mapstructure:"linkedin"`
}

type Config struct {
	Apify    ApifyConfig    `mapstructure:"apify"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	History  HistoryConfig  `mapstructure:"history"`
	Targets  TargetsConfig  `mapstructure:"targets"`
}

// DefaultTargets returns the configured default target list for a platform.
func (c *Config) DefaultTargets(platform string) []string {
	switch platform {
	case "telegram":
		return c.Targets.Telegram
	case "x":
		return c.Targets.X
	case "linkedin":
		return c.Targets.LinkedIn
	}
	return nil
}

// HasApify reports whether the cloud backend is usable.
func (c *Config) HasApify() bool {
	return c.Apify.Token != ""
}

// HasTelegramSession reports whether the personal-account backend is usable.
func (c *Config) HasTelegramSession() bool {
	return c.Telegram.AppID != 0 && c.Telegram.AppHash != ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("apify.base_url", "https://api.apify.com/v2")
	v.SetDefault("telegram.session_file", "postharvest_session.json")
	v.SetDefault("history.path", "postharvest.db")

	// Env-only keys need a registered default for Unmarshal to see them.
	v.SetDefault("apify.token", "")
	v.SetDefault("telegram.app_id", 0)
	v.SetDefault("telegram.app_hash", "")
	v.SetDefault("telegram.phone", "")
}

func bindEnv(v *viper.Viper) {
	v.BindEnv("apify.token", "APIFY_API_TOKEN")
	v.BindEnv("telegram.app_id", "TELEGRAM_API_ID")
	v.BindEnv("telegram.app_hash", "TELEGRAM_API_HASH")
	v.BindEnv("telegram.session_file", "TELEGRAM_SESSION")
	v.BindEnv("telegram.phone", "TELEGRAM_PHONE")
}

// Load reads configuration. When path is empty, a postharvest.toml in the
// working directory is used if present; a missing config file is not an
// error since the environment alone can carry everything needed.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	bindEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "reading config file %s", path)
		}
	} else {
		v.SetConfigName("postharvest")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.Wrap(err, "reading config file")
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}

	return &cfg, nil
}
