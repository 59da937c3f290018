package bootstrap

import (
	"github.com/kbukum/lazyseq/config"
)

// Config is satisfied by any struct embedding config.ServiceConfig by value:
//
//	type AppConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Plan string `yaml:"plan" mapstructure:"plan"`
//	}
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
