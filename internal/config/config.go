package config

import "time"

const (
	EnvDev   = "dev"
	EnvProd  = "prod"
	EnvLocal = "local"
)

var globalConfig *Config

func Global() *Config {
	return globalConfig
}

func SetGlobal(cfg *Config) {
	globalConfig = cfg
}

type Config struct {
	Env              string `env:"ENV" env-required:"true"`
	TransitionPolicy string `env:"TRANSITION_POLICY" env-default:"free"`
	HTTP             HTTPConfig
	Postgres         PostgresConfig
	JWT              JWTConfig
	OpenAI           OpenAIConfig
	Seed             SeedConfig
}

type HTTPConfig struct {
	Host            string        `env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port            string        `env:"HTTP_PORT" env-default:"8000"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
	AllowedOrigins  []string      `env:"HTTP_ALLOWED_ORIGINS" env-separator:"," env-default:"http://localhost:3000,http://localhost:8000"`
	// Login attempts per second per client IP.
	LoginRateLimit float64 `env:"HTTP_LOGIN_RATE_LIMIT" env-default:"1"`
	LoginRateBurst int     `env:"HTTP_LOGIN_RATE_BURST" env-default:"5"`
}

type PostgresConfig struct {
	Host           string        `env:"POSTGRES_HOST" env-required:"true"`
	Port           int           `env:"POSTGRES_PORT" env-default:"5432"`
	Username       string        `env:"POSTGRES_USERNAME" env-required:"true"`
	Password       string        `env:"POSTGRES_PASSWORD" env-required:"true"`
	Database       string        `env:"POSTGRES_DATABASE" env-required:"true"`
	SSLMode        string        `env:"POSTGRES_SSL_MODE" env-default:"disable"`
	ConnectTimeout time.Duration `env:"POSTGRES_CONNECT_TIMEOUT" env-default:"10s"`
	PingTimeout    time.Duration `env:"POSTGRES_PING_TIMEOUT" env-default:"10s"`
}

type JWTConfig struct {
	Issuer         string        `env:"JWT_ISSUER" env-default:"sprintsync"`
	SigningKey     string        `env:"JWT_SIGNING_KEY" env-required:"true"`
	AccessTokenTTL time.Duration `env:"JWT_ACCESS_TOKEN_TTL" env-default:"24h"`
}

// OpenAIConfig leaves the API key empty by default, in which case the AI
// endpoints answer with template fallbacks.
type OpenAIConfig struct {
	APIKey      string        `env:"OPENAI_API_KEY"`
	BaseURL     string        `env:"OPENAI_BASE_URL"`
	Model       string        `env:"OPENAI_MODEL" env-default:"gpt-4"`
	MaxTokens   int           `env:"OPENAI_MAX_TOKENS" env-default:"1000"`
	Temperature float32       `env:"OPENAI_TEMPERATURE" env-default:"0.7"`
	Timeout     time.Duration `env:"OPENAI_TIMEOUT" env-default:"30s"`
}

type SeedConfig struct {
	Enabled       bool   `env:"SEED_DEMO_DATA" env-default:"false"`
	AdminEmail    string `env:"ADMIN_EMAIL" env-default:"admin@sprintsync.com"`
	AdminPassword string `env:"ADMIN_PASSWORD" env-default:"admin123"`
	AdminFullName string `env:"ADMIN_FULL_NAME" env-default:"Admin User"`
	DemoEmail     string `env:"DEMO_EMAIL" env-default:"demo@sprintsync.com"`
	DemoPassword  string `env:"DEMO_PASSWORD" env-default:"demo123"`
	DemoFullName  string `env:"DEMO_FULL_NAME" env-default:"Demo User"`
}
