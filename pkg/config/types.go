package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Config represents the persistent inlay configuration stored as config.toml
// in the .inlay/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version int           `toml:"version"`
	Storage StorageConfig `toml:"storage"`
	API     APIConfig     `toml:"api"`
	Client  ClientConfig  `toml:"client"`
	Host    HostConfig    `toml:"host"`
	Events  EventsConfig  `toml:"events"`
}

// StorageConfig holds attribution store settings for the API server.
type StorageConfig struct {
	Provider    string `toml:"provider,omitempty"`
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresDSN string `toml:"postgres_dsn,omitempty"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// ClientConfig holds settings for processes that connect to the running
// API server (the editor host and inspection commands). Values are full
// URLs (scheme + host + port).
type ClientConfig struct {
	APITarget string `toml:"api_target,omitempty"`
}

// HostConfig holds editor host settings.
type HostConfig struct {
	// WatchPaths are directories whose file writes synthesize save events
	// for editors that do not forward them.
	WatchPaths []string `toml:"watch_paths,omitempty"`

	// Prefetch enables background cache warming for documents the editor
	// opens but has not yet selected in.
	Prefetch bool `toml:"prefetch,omitempty"`

	// PrefetchWorkers bounds concurrent low-priority fetches.
	PrefetchWorkers uint `toml:"prefetch_workers,omitempty"`

	// LogFile, when set, receives a JSON copy of the host's lifecycle log
	// alongside the pretty stderr output.
	LogFile string `toml:"log_file,omitempty"`
}

// EventsConfig holds fetch telemetry publishing settings.
type EventsConfig struct {
	Provider string   `toml:"provider,omitempty"`
	Brokers  []string `toml:"brokers,omitempty"`
	Topic    string   `toml:"topic,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"storage.provider": {
		get: func(c *Config) string { return c.Storage.Provider },
		set: func(c *Config, v string) error { c.Storage.Provider = v; return nil },
	},
	"storage.sqlite_path": {
		get: func(c *Config) string { return c.Storage.SQLitePath },
		set: func(c *Config, v string) error { c.Storage.SQLitePath = v; return nil },
	},
	"storage.postgres_dsn": {
		get: func(c *Config) string { return c.Storage.PostgresDSN },
		set: func(c *Config, v string) error { c.Storage.PostgresDSN = v; return nil },
	},
	"api.listen": {
		get: func(c *Config) string { return c.API.Listen },
		set: func(c *Config, v string) error { c.API.Listen = v; return nil },
	},
	"client.api_target": {
		get: func(c *Config) string { return c.Client.APITarget },
		set: func(c *Config, v string) error { c.Client.APITarget = v; return nil },
	},
	"host.watch_paths": {
		get: func(c *Config) string { return strings.Join(c.Host.WatchPaths, ",") },
		set: func(c *Config, v string) error {
			if v == "" {
				c.Host.WatchPaths = nil
				return nil
			}
			c.Host.WatchPaths = strings.Split(v, ",")
			return nil
		},
	},
	"host.prefetch": {
		get: func(c *Config) string { return strconv.FormatBool(c.Host.Prefetch) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for host.prefetch: %w", err)
			}
			c.Host.Prefetch = b
			return nil
		},
	},
	"host.prefetch_workers": {
		get: func(c *Config) string {
			if c.Host.PrefetchWorkers == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Host.PrefetchWorkers), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for host.prefetch_workers: %w", err)
			}
			c.Host.PrefetchWorkers = uint(n)
			return nil
		},
	},
	"host.log_file": {
		get: func(c *Config) string { return c.Host.LogFile },
		set: func(c *Config, v string) error { c.Host.LogFile = v; return nil },
	},
	"events.provider": {
		get: func(c *Config) string { return c.Events.Provider },
		set: func(c *Config, v string) error { c.Events.Provider = v; return nil },
	},
	"events.brokers": {
		get: func(c *Config) string { return strings.Join(c.Events.Brokers, ",") },
		set: func(c *Config, v string) error {
			if v == "" {
				c.Events.Brokers = nil
				return nil
			}
			c.Events.Brokers = strings.Split(v, ",")
			return nil
		},
	},
	"events.topic": {
		get: func(c *Config) string { return c.Events.Topic },
		set: func(c *Config, v string) error { c.Events.Topic = v; return nil },
	},
}
