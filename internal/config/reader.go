package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
	_ "github.com/joho/godotenv/autoload"
)

type Reader interface {
	Read() (*Config, error)
}

type EnvReader struct{}

func NewEnvReader() EnvReader {
	return EnvReader{}
}

func (EnvReader) Read() (*Config, error) {
	cfg := new(Config)
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read env config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FileReader reads a yaml/json/toml/env file, letting the environment
// override anything it sets.
type FileReader struct {
	Path string
}

func (r FileReader) Read() (*Config, error) {
	cfg := new(Config)
	if err := cleanenv.ReadConfig(r.Path, cfg); err != nil {
		return nil, fmt.Errorf("read config file %s: %w", r.Path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Env {
	case EnvDev, EnvProd, EnvLocal:
	default:
		return fmt.Errorf("unknown env %q (supported: local, dev, prod)", c.Env)
	}
	if c.StoreShards < 1 {
		return fmt.Errorf("store shards must be positive, got %d", c.StoreShards)
	}
	return nil
}
