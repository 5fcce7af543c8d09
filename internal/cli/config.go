// Package cli backs the command-line frontend: configuration file loading,
// logger setup and the convert/serve entry points shared by the commands.
package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the optional crossflow.yaml configuration file. Flags override
// whatever it sets.
type Config struct {
	// User overrides the "user.name" seed of the configuration mapping.
	User string `yaml:"user"`
	// DAGName overrides the artifact DAG name; default is the workflow's
	// name attribute.
	DAGName string `yaml:"dag_name"`
	// TemplateDir points at a directory of *.tpl files layered over the
	// built-in rendering templates.
	TemplateDir string `yaml:"template_dir"`
	// Schedule is the artifact schedule interval in days.
	Schedule int `yaml:"schedule"`
	// StartDaysAgo is the artifact start date offset in days.
	StartDaysAgo int `yaml:"start_days_ago"`
	// Properties are extra configuration entries applied after the
	// properties files.
	Properties map[string]string `yaml:"properties"`
	// Redis enables the artifact cache in serve mode.
	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig points the serve mode at a Redis instance.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// DefaultConfigName is looked up in the working directory when no explicit
// config path is given.
const DefaultConfigName = "crossflow.yaml"

// LoadConfig reads a YAML configuration file. A missing file at the default
// location is not an error; an explicitly named missing file is.
func LoadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigName
	}

	cfg := &Config{
		Schedule:     3,
		StartDaysAgo: 3,
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}
