package main

import (
	"fmt"
	"os"

	"dario.cat/mergo"
	yaml "github.com/goccy/go-yaml"
)

// config holds the options every subcommand shares, layered from (lowest to
// highest precedence) built-in defaults, an optional --config file, and
// explicit command-line flags.
type config struct {
	Format          string `yaml:"format" json:"format"`
	Pretty          bool   `yaml:"pretty" json:"pretty"`
	ObjClassDefault string `yaml:"objClassDefault" json:"objClassDefault"`
}

func defaultConfig() config {
	return config{Format: "json", Pretty: true}
}

// loadConfigFile reads a YAML or JSON config file (both go through the YAML
// decoder, which also accepts JSON text) into a config, leaving
// every field not mentioned in the file at its Go zero value so mergo only
// overlays what was actually set.
func loadConfigFile(path string) (config, error) {
	var c config
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return c, nil
}

// resolveConfig layers file over defaults, then flags over the result.
// mergo.WithOverride lets a later, non-zero-valued layer win; flags are
// passed through unconditionally since cobra leaves an unset flag at its
// already-applied default, so "explicit default" and "inherited default"
// read the same here - both yield the default, which is the correct result
// either way.
func resolveConfig(configPath string, flags config) (config, error) {
	merged := defaultConfig()
	if configPath != "" {
		fileCfg, err := loadConfigFile(configPath)
		if err != nil {
			return config{}, err
		}
		if err := mergo.Merge(&merged, fileCfg, mergo.WithOverride); err != nil {
			return config{}, fmt.Errorf("layering config file: %w", err)
		}
	}
	if err := mergo.Merge(&merged, flags, mergo.WithOverride); err != nil {
		return config{}, fmt.Errorf("layering flags: %w", err)
	}
	return merged, nil
}
