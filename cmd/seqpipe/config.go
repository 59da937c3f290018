package main

import (
	"fmt"

	"github.com/kbukum/lazyseq/config"
	"github.com/kbukum/lazyseq/observability"
	"github.com/kbukum/lazyseq/validation"
	"github.com/kbukum/lazyseq/version"
)

// AppConfig is the seqpipe configuration.
type AppConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	// Plan is the path of the plan file to run.
	Plan string `yaml:"plan" mapstructure:"plan"`
	// PlanDirs are searched for included plans after the plan's own directory.
	PlanDirs []string                   `yaml:"plan_dirs" mapstructure:"plan_dirs"`
	Tracing  observability.TracerConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics  observability.MeterConfig  `yaml:"metrics" mapstructure:"metrics"`
}

// ApplyDefaults fills the service identity and copies it into the telemetry
// sections.
func (c *AppConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	if c.Version == "" {
		c.Version = version.Get().Short()
	}
	c.ServiceConfig.ApplyDefaults()

	c.Tracing.ServiceName = c.Name
	c.Tracing.ServiceVersion = c.Version
	c.Tracing.Environment = c.Environment
	if c.Tracing.Endpoint == "" {
		c.Tracing.Endpoint = observability.DefaultTracerConfig(c.Name).Endpoint
	}
	if c.Tracing.SampleRate == 0 {
		c.Tracing.SampleRate = 1.0
	}

	c.Metrics.ServiceName = c.Name
	c.Metrics.ServiceVersion = c.Version
	c.Metrics.Environment = c.Environment
	if c.Metrics.Endpoint == "" {
		c.Metrics.Endpoint = observability.DefaultMeterConfig(c.Name).Endpoint
	}
}

// Validate checks the service section, then the seqpipe fields.
func (c *AppConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	v := validation.New()
	v.Custom(c.Tracing.SampleRate >= 0 && c.Tracing.SampleRate <= 1, "tracing.sample_rate", "must be between 0 and 1")
	v.Custom(c.Metrics.Interval >= 0, "metrics.interval", "must not be negative")
	for i, dir := range c.PlanDirs {
		v.Required(fmt.Sprintf("plan_dirs[%d]", i), dir)
	}
	return v.Err()
}

func (c *AppConfig) telemetryEnabled() bool {
	return c.Tracing.Enabled || c.Metrics.Enabled
}
