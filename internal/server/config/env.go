package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays values from the process environment. A .env file in the
// working directory is loaded first; variables already set win over it.
//
//	PORT                   HTTP port (bound on all interfaces)
//	HTTP_ADDRESS           HTTP bind address, wins over PORT
//	GRPC_ADDRESS           gRPC bind address
//	DATABASE_URL           database DSN
//	JWT_SECRET             token signing secret
//	PASSWORD_HASHER        bcrypt | argon2id
//	ALLOW_ANONYMOUS_TODOS  true | false
//	LOGIN_MAX_ATTEMPTS     integer
//	LOGIN_WINDOW           Go duration, e.g. "15m"
//	LOGGER                 slog | zerolog
//	LOG_LEVEL              debug | info | warn | error
//
// Malformed numeric, boolean or duration values are ignored.
func parseEnv(config *Config) {
	_ = godotenv.Load()

	if v, ok := lookup("PORT"); ok {
		config.EndpointAddrHTTP = ":" + strings.TrimPrefix(v, ":")
	}
	if v, ok := lookup("HTTP_ADDRESS"); ok {
		config.EndpointAddrHTTP = v
	}
	if v, ok := lookup("GRPC_ADDRESS"); ok {
		config.EndpointAddrGRPC = v
	}
	if v, ok := lookup("DATABASE_URL"); ok {
		config.DatabaseDSN = v
	}
	if v, ok := lookup("JWT_SECRET"); ok {
		config.SecretKey = v
	}
	if v, ok := lookup("PASSWORD_HASHER"); ok {
		config.PasswordHasher = v
	}
	if v, ok := lookup("ALLOW_ANONYMOUS_TODOS"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			config.AllowAnonymousTodos = b
		}
	}
	if v, ok := lookup("LOGIN_MAX_ATTEMPTS"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			config.LoginMaxAttempts = n
		}
	}
	if v, ok := lookup("LOGIN_WINDOW"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			config.LoginWindow = d
		}
	}
	if v, ok := lookup("LOGGER"); ok {
		config.Logger = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		config.LogLevel = v
	}
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}
