// Package watch runs the sidecar ingest loop: it watches a drop directory
// for run sidecar files and produces a verdict for each artifact exactly
// once.
package watch

import (
	"fmt"
	"os"

	yamlv3 "gopkg.in/yaml.v3"
)

// Config is the observer.yaml watch-mode configuration.
type Config struct {
	Hub     HubConfig     `yaml:"hub"`
	Watcher WatcherConfig `yaml:"watcher"`
	Logging LoggingConfig `yaml:"logging"`
}

type HubConfig struct {
	Path string `yaml:"path"`
}

type WatcherConfig struct {
	DropDir            string  `yaml:"drop_dir"`
	DebounceSec        float64 `yaml:"debounce_sec"`
	ScanIntervalSec    int     `yaml:"scan_interval_sec"`
	ShutdownTimeoutSec int     `yaml:"shutdown_timeout_sec"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the configuration used when observer.yaml is absent.
func DefaultConfig(hubPath string) Config {
	return Config{
		Hub: HubConfig{Path: hubPath},
		Watcher: WatcherConfig{
			DropDir:            "incoming",
			DebounceSec:        0.5,
			ScanIntervalSec:    10,
			ShutdownTimeoutSec: 30,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// LoadConfig reads observer.yaml, filling unset fields from defaults.
func LoadConfig(path, hubPath string) (Config, error) {
	cfg := DefaultConfig(hubPath)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yamlv3.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.Hub.Path == "" {
		cfg.Hub.Path = hubPath
	}
	if cfg.Watcher.DropDir == "" {
		cfg.Watcher.DropDir = "incoming"
	}
	if cfg.Watcher.DebounceSec <= 0 {
		cfg.Watcher.DebounceSec = 0.5
	}
	if cfg.Watcher.ScanIntervalSec <= 0 {
		cfg.Watcher.ScanIntervalSec = 10
	}
	if cfg.Watcher.ShutdownTimeoutSec <= 0 {
		cfg.Watcher.ShutdownTimeoutSec = 30
	}
	return cfg, nil
}
