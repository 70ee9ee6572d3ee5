package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/adanyl0v/sprintsync/internal/models"
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
	err := cleanenv.ReadEnv(cfg)
	if err != nil {
		return nil, err
	}

	switch cfg.Env {
	case EnvDev, EnvProd, EnvLocal:
	default:
		return nil, fmt.Errorf("unknown env: %s", cfg.Env)
	}

	if _, err = models.PolicyByName(cfg.TransitionPolicy); err != nil {
		return nil, err
	}
	return cfg, nil
}
