package cmd

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
	"github.com/sirupsen/logrus"
)

const (
	defaultListen   = ":8545"
	defaultLogLevel = "info"
)

// Env holds process settings. Flags take precedence over it. A variable
// exported empty counts as unset.
type Env struct {
	Listen     string `env:"CHAINSIM_LISTEN,default=:8545"`
	ConfigPath string `env:"CHAINSIM_CONFIG"`
	LogLevel   string `env:"LOG_LEVEL,default=info"`
}

func loadEnv(ctx context.Context, envpath string) (*Env, error) {
	if envpath != "" {
		logrus.Infof("loading env from file: %s", envpath)
		if err := godotenv.Load(envpath); err != nil {
			return nil, err
		}
	}

	env := &Env{}
	if err := envconfig.Process(ctx, env); err != nil {
		return nil, err
	}

	if env.Listen == "" {
		env.Listen = defaultListen
	}

	if env.LogLevel == "" {
		env.LogLevel = defaultLogLevel
	}

	return env, nil
}
