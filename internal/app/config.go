package app

import (
	_ "github.com/joho/godotenv/autoload"

	"github.com/adanyl0v/sprintsync/internal/config"
)

func MustReadEnv() {
	cfg, err := config.NewEnvReader().Read()
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to read env")
		panic(err)
	}
	globalLogger.Info().
		Str("env", cfg.Env).
		Str("transition_policy", cfg.TransitionPolicy).
		Bool("openai", cfg.OpenAI.APIKey != "").
		Msg("read env")

	config.SetGlobal(cfg)
}
