package main

import (
	"fmt"
	"io/ioutil"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bodgit/lsb"
	"github.com/bodgit/lsb/carrier"
	"gopkg.in/yaml.v2"
)

type config struct {
	DB      string
	Format  string
	Workers int
	Verbose bool
}

type fileConfig struct {
	DB      string `toml:"db" yaml:"db"`
	Format  string `toml:"format" yaml:"format"`
	Workers *int   `toml:"workers" yaml:"workers"`
	Verbose *bool  `toml:"verbose" yaml:"verbose"`
}

func defaultConfig(db string) config {
	return config{
		DB:      db,
		Workers: lsb.DefaultWorkers,
	}
}

func decodeConfigFile(path string, raw *fileConfig) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.DecodeFile(path, raw); err != nil {
			return err
		}
	case ".yaml", ".yml":
		b, err := ioutil.ReadFile(path)
		if err != nil {
			return err
		}
		if err := yaml.UnmarshalStrict(b, raw); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown config file type %q", filepath.Ext(path))
	}
	return nil
}

func supportedFormat(format string) bool {
	for _, f := range carrier.Formats {
		if f == format {
			return true
		}
	}
	return false
}

// loadConfig applies the settings found in path on top of cfg.
func loadConfig(path string, cfg config) (config, error) {
	var raw fileConfig
	if err := decodeConfigFile(path, &raw); err != nil {
		return config{}, fmt.Errorf("load config: %w", err)
	}

	if v := strings.TrimSpace(raw.DB); v != "" {
		if !filepath.IsAbs(v) {
			v = filepath.Join(filepath.Dir(path), v)
		}
		cfg.DB = v
	}

	if v := strings.ToLower(strings.TrimSpace(raw.Format)); v != "" {
		if !supportedFormat(v) {
			return config{}, fmt.Errorf("load config: unsupported format %q", raw.Format)
		}
		cfg.Format = v
	}

	if raw.Workers != nil {
		if *raw.Workers < 1 {
			return config{}, fmt.Errorf("load config: workers must be positive, got %d", *raw.Workers)
		}
		cfg.Workers = *raw.Workers
	}

	if raw.Verbose != nil {
		cfg.Verbose = *raw.Verbose
	}

	return cfg, nil
}
