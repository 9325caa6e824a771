// Package config loads the nodeflow configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-nodeflow/pkg/logging"
	"github.com/dd0wney/cluso-nodeflow/pkg/tags"
	"github.com/dd0wney/cluso-nodeflow/pkg/validation"
)

// Config holds every setting of the nodeflow tool.
type Config struct {
	Tags    TagsConfig    `yaml:"tags"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
	GraphQL GraphQLConfig `yaml:"graphql"`
}

// TagsConfig sizes the tag registry. Names are registered at startup so the
// REPL can apply them by name.
type TagsConfig struct {
	Capacity int      `yaml:"capacity" validate:"min=1,max=64"`
	Names    []string `yaml:"names" validate:"max=64,dive,required,max=64"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json text"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// GraphQLConfig configures the read-only query endpoint. An empty Addr
// disables it.
type GraphQLConfig struct {
	Addr        string        `yaml:"addr"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
}

var structValidator = validator.New()

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Tags: TagsConfig{
			Capacity: tags.MaxTags,
			Names:    []string{"int", "float", "string", "bool"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Addr: ":9100",
		},
		GraphQL: GraphQLConfig{
			ReadTimeout: 5 * time.Second,
		},
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	cfg.ApplyDefaults()
	if err := validation.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyDefaults fills zero-valued fields from Default.
func (c *Config) ApplyDefaults() {
	defaults := Default()

	c.Tags.Capacity = validation.DefaultOr(c.Tags.Capacity, defaults.Tags.Capacity)
	c.Log.Level = validation.DefaultOr(c.Log.Level, defaults.Log.Level)
	c.Log.Format = validation.DefaultOr(c.Log.Format, defaults.Log.Format)
	c.GraphQL.ReadTimeout = validation.DefaultOr(c.GraphQL.ReadTimeout, defaults.GraphQL.ReadTimeout)
}

// Validate checks struct tags first, then the cross-field rules.
func (c *Config) Validate() error {
	var errs []error
	if err := structValidator.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				errs = append(errs, fmt.Errorf("%s failed on '%s'", fe.Namespace(), fe.Tag()))
			}
		} else {
			errs = append(errs, err)
		}
	}

	v := validation.NewConfigValidator("Config")
	v.When(c.Metrics.Enabled, func(cv *validation.ConfigValidator) {
		cv.Required("Metrics.Addr", c.Metrics.Addr)
	})
	v.When(c.GraphQL.Addr != "", func(cv *validation.ConfigValidator) {
		cv.RangeDuration("GraphQL.ReadTimeout", c.GraphQL.ReadTimeout, 100*time.Millisecond, time.Minute)
	})
	v.Custom("Tags.Names", func() error {
		if len(c.Tags.Names) > c.Tags.Capacity {
			return fmt.Errorf("%d names exceed capacity %d", len(c.Tags.Names), c.Tags.Capacity)
		}
		for _, name := range c.Tags.Names {
			if err := validation.ValidateName(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err := v.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// LogLevel converts Log.Level for the logging package.
func (c *Config) LogLevel() logging.Level {
	return logging.ParseLevel(c.Log.Level)
}
