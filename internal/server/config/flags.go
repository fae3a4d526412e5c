package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/todokeeper/internal/flagx"
)

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string    HTTP bind address (e.g., ":3000")
//	-g string    gRPC bind address (e.g., ":50051")
//	-d string    database DSN, or "memory"
//	-s string    token signing secret
//	-p string    password hasher (bcrypt | argon2id)
//	-n bool      allow anonymous todos (use -n=true)
//	-m int       failed logins allowed per window, 0 disables throttling
//	-w duration  login throttling window (e.g., "15m")
//	-i duration  database health check interval
//	-l string    logger (slog | zerolog)
//	-v string    log level (debug | info | warn | error)
//
// os.Args is first filtered with flagx.FilterArgs so -c/-config and other
// components' flags do not collide.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-g", "-d", "-s", "-p", "-n", "-m", "-w", "-i", "-l", "-v"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port to run server")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "gRPC address and port for health checks")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.PasswordHasher, "p", config.PasswordHasher, "password hasher")
	fs.BoolVar(&config.AllowAnonymousTodos, "n", config.AllowAnonymousTodos, "allow anonymous todos")
	fs.IntVar(&config.LoginMaxAttempts, "m", config.LoginMaxAttempts, "failed logins allowed per window")
	fs.DurationVar(&config.LoginWindow, "w", config.LoginWindow, "login throttling window")
	fs.DurationVar(&config.HealthCheckInterval, "i", config.HealthCheckInterval, "database health check interval")
	fs.StringVar(&config.Logger, "l", config.Logger, "logger (slog, zerolog)")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
