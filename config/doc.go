// Package config provides configuration loading for services that embed
// authkit.
//
// It uses Viper to load a config.yml plus .env files and environment
// variables, then unmarshals the merged result into the caller's struct.
// Environment variables override file values.
//
// # Usage
//
//	type AppConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    OIDC oidc.Config `yaml:"oidc" mapstructure:"oidc"`
//	}
//
//	var cfg AppConfig
//	err := config.LoadConfig("my-api", &cfg)
//	cfg.ApplyDefaults()
//	err = cfg.Validate()
//
// An OIDC_ISSUER_URL variable binds to the oidc.issuer_url key, so
// deployments can configure the provider without a config file.
package config
