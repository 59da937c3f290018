// Package config loads seqpipe configuration from a YAML file, an optional
// .env file and the process environment.
//
// Files are looked up in the usual places for a service (./cmd/<name>,
// ./config, the working directory) unless given explicitly:
//
//	var cfg AppConfig
//	err := config.LoadConfig("seqpipe", &cfg, config.WithConfigFile("seqpipe.yml"))
//
// Environment variables prefixed with the upper-cased service name override
// file values, so SEQPIPE_LOGGING_LEVEL=debug sets logging.level.
package config
