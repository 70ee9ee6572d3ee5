package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/adanyl0v/sprintsync/internal/config"
	"github.com/adanyl0v/sprintsync/internal/delivery/http/v1"
	"github.com/adanyl0v/sprintsync/internal/models"
	"github.com/adanyl0v/sprintsync/internal/services"
)

func MustListenAndServeHTTP() {
	cfg := config.Global()
	if cfg.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	httpCfg := cfg.HTTP

	router := gin.New()
	router.Use(gin.Recovery())
	mustRegisterRoutes(router)

	server := &http.Server{
		Addr:    net.JoinHostPort(httpCfg.Host, httpCfg.Port),
		Handler: router,
	}

	go func() {
		globalLogger.Info().
			Str("host", httpCfg.Host).
			Str("port", httpCfg.Port).
			Msg("setting up http server")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			globalLogger.Error().
				Err(err).
				Msg("failed to listen and serve http")
			panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	globalLogger.Info().
		Msg("shutting down http server")

	ctx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
	defer cancel()

	err := server.Shutdown(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to shutdown http server")
		panic(err)
	}
	globalLogger.Info().Msg("shut down http server")
}

func mustRegisterRoutes(router gin.IRouter) {
	cfg := config.Global()

	policy, err := models.PolicyByName(cfg.TransitionPolicy)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to resolve transition policy")
		panic(err)
	}

	var llm services.LLMClient
	if cfg.OpenAI.APIKey != "" {
		llm = services.NewOpenAIClient(componentLogger("llm"), services.OpenAIClientParams{
			APIKey:      cfg.OpenAI.APIKey,
			BaseURL:     cfg.OpenAI.BaseURL,
			Model:       cfg.OpenAI.Model,
			MaxTokens:   cfg.OpenAI.MaxTokens,
			Temperature: cfg.OpenAI.Temperature,
		})
	}

	v1Handler := v1.New(v1.Params{
		Logger: componentLogger("http"),
		Auth: services.NewAuthService(
			componentLogger("auth"),
			globalPostgresPool,
			cfg.JWT.Issuer,
			[]byte(cfg.JWT.SigningKey),
			cfg.JWT.AccessTokenTTL,
		),
		Users:          services.NewUserService(componentLogger("users"), globalPostgresPool),
		Tasks:          services.NewTaskService(componentLogger("tasks"), globalPostgresPool, policy),
		AI:             services.NewAIService(componentLogger("ai"), llm, cfg.OpenAI.Timeout),
		Stats:          services.NewStatsService(componentLogger("stats"), globalPostgresPool),
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		LoginRateLimit: cfg.HTTP.LoginRateLimit,
		LoginRateBurst: cfg.HTTP.LoginRateBurst,
		Registerer:     prometheus.DefaultRegisterer,
		Gatherer:       prometheus.DefaultGatherer,
	})
	v1Handler.RegisterRoutes(router)
}
