package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/todokeeper/internal/flagx"
	"github.com/dmitrijs2005/todokeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration, so both "15m" and integer nanoseconds are accepted.
// Absent fields leave the current value untouched.
type JsonConfig struct {
	EndpointAddrHTTP    string          `json:"endpoint_addr_http"`
	EndpointAddrGRPC    string          `json:"endpoint_addr_grpc"`
	DatabaseDSN         string          `json:"database_dsn"`
	SecretKey           string          `json:"secret_key"`
	PasswordHasher      string          `json:"password_hasher"`
	AllowAnonymousTodos *bool           `json:"allow_anonymous_todos"`
	LoginMaxAttempts    *int            `json:"login_max_attempts"`
	LoginWindow         *timex.Duration `json:"login_window"`
	HealthCheckInterval *timex.Duration `json:"health_check_interval"`
	Logger              string          `json:"logger"`
	LogLevel            string          `json:"log_level"`
}

// parseJson loads the file named by -c or -config into config. Nothing
// happens when neither flag is given. An unreadable file or invalid JSON
// panics, like a bad flag does.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.PasswordHasher, c.PasswordHasher)
	setString(&config.Logger, c.Logger)
	setString(&config.LogLevel, c.LogLevel)

	if c.AllowAnonymousTodos != nil {
		config.AllowAnonymousTodos = *c.AllowAnonymousTodos
	}
	if c.LoginMaxAttempts != nil {
		config.LoginMaxAttempts = *c.LoginMaxAttempts
	}
	if c.LoginWindow != nil {
		config.LoginWindow = c.LoginWindow.Duration
	}
	if c.HealthCheckInterval != nil {
		config.HealthCheckInterval = c.HealthCheckInterval.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
