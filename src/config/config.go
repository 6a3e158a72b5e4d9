package config

import (
	"os"
	"strconv"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
)

// The one and only instance of the config, populated from the environment
// when the process starts. Nothing should mutate this after init.
var Config = NextDevConfig{
	Env:      Environment(env("NEXTDEV_ENV", string(Dev))),
	Addr:     env("ADDR", ":9001"),
	BaseUrl:  env("BASE_URL", "http://localhost:9001"),
	LogLevel: zerolog.InfoLevel,

	Postgres: PostgresConfig{
		User:     env("POSTGRES_USER", "nextdev"),
		Password: env("POSTGRES_PASSWORD", "password"),
		Hostname: env("POSTGRES_HOST", "localhost"),
		Port:     envInt("POSTGRES_PORT", 5432),
		DbName:   env("POSTGRES_DB", "nextdev"),
		LogLevel: tracelog.LogLevelWarn,
		MinConn:  2,
		MaxConn:  10,
	},

	Auth: AuthConfig{
		SecretKey:    env("SECRET_KEY", "dev-secret-change-me"),
		CookieDomain: env("COOKIE_DOMAIN", "localhost"),
		CookieSecure: env("COOKIE_SECURE", "") != "",
	},

	Spaces: SpacesConfig{
		Key:      env("SPACES_KEY", ""),
		Secret:   env("SPACES_SECRET", ""),
		Region:   env("SPACES_REGION", "us-east-1"),
		Endpoint: env("SPACES_ENDPOINT", "http://localhost:9003"),
		Bucket:   env("SPACES_BUCKET", "nextdev"),
	},
}

func env(name, def string) string {
	if val := os.Getenv(name); val != "" {
		return val
	}
	return def
}

func envInt(name string, def int) int {
	if val, err := strconv.Atoi(os.Getenv(name)); err == nil {
		return val
	}
	return def
}
