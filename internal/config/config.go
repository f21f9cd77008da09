// Package config loads server configuration from a YAML file with
// environment variable expansion, falling back to environment
// variables alone when no file is given.
package config

import (
	"errors"
	"os"
	"time"
)

// Config is the root configuration for a teamline server.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Redis  RedisConfig  `yaml:"redis"`
	Limits LimitsConfig `yaml:"limits"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// RedisConfig holds the optional Redis backend for message history.
// An empty address keeps history in memory.
type RedisConfig struct {
	Addr string `yaml:"addr"`
}

// LimitsConfig holds connection and retention limits.
type LimitsConfig struct {
	// MaxConns caps concurrent WebSocket connections (0 = unlimited).
	MaxConns int `yaml:"max_conns"`

	// IdleTimeout closes connections idle longer than this (0 = never).
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// History is the number of messages retained per channel.
	History int `yaml:"history"`

	// UpgradesPerMinute caps WebSocket upgrades per client IP.
	UpgradesPerMinute int `yaml:"upgrades_per_minute"`
}

// Default returns the configuration used when no file is present,
// honoring the LISTEN_ADDR and REDIS_ADDR environment variables.
func Default() Config {
	cfg := Config{}
	cfg.applyDefaults()
	if addr := os.Getenv("LISTEN_ADDR"); addr != "" {
		cfg.Server.ListenAddr = addr
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = ":8080"
	}
	if c.Limits.History == 0 {
		c.Limits.History = 500
	}
	if c.Limits.UpgradesPerMinute == 0 {
		c.Limits.UpgradesPerMinute = 60
	}
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.ListenAddr == "" {
		return errors.New("config: server.listen_addr is required")
	}
	if c.Limits.MaxConns < 0 {
		return errors.New("config: limits.max_conns must not be negative")
	}
	if c.Limits.IdleTimeout < 0 {
		return errors.New("config: limits.idle_timeout must not be negative")
	}
	if c.Limits.History < 0 {
		return errors.New("config: limits.history must not be negative")
	}
	if c.Limits.UpgradesPerMinute < 0 {
		return errors.New("config: limits.upgrades_per_minute must not be negative")
	}
	return nil
}
