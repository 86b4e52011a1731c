package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

const (
	portEnvVar          = "PORT"
	accessSecretEnvVar  = "ACCESS_TOKEN_SECRET"
	refreshSecretEnvVar = "REFRESH_TOKEN_SECRET"
	accessTTLEnvVar     = "ACCESS_TOKEN_TTL"
	refreshTTLEnvVar    = "REFRESH_TOKEN_TTL"
	passwordCostEnvVar  = "PASSWORD_HASH_COST"
	rotateEnvVar        = "ROTATE_REFRESH_TOKENS"
	redisAddrEnvVar     = "REDIS_ADDR"
)

// Config holds everything the daemon reads from the environment. Loaded once
// at startup.
type Config struct {
	Addr                string
	AccessTokenSecret   string
	RefreshTokenSecret  string
	AccessTokenTTL      time.Duration
	RefreshTokenTTL     time.Duration
	PasswordHashCost    int
	RotateRefreshTokens bool
	RedisAddr           string
}

// Load reads the configuration from environment variables, applying defaults
// for everything except the token secrets.
func Load() (*Config, error) {
	cfg := &Config{
		Addr:                listenAddr(GetEnv(portEnvVar, "8080")),
		AccessTokenSecret:   GetEnv(accessSecretEnvVar, ""),
		RefreshTokenSecret:  GetEnv(refreshSecretEnvVar, ""),
		PasswordHashCost:    bcrypt.DefaultCost,
		RotateRefreshTokens: GetEnv(rotateEnvVar, "") == "true",
		RedisAddr:           GetEnv(redisAddrEnvVar, ""),
	}

	var err error
	if cfg.AccessTokenTTL, err = time.ParseDuration(GetEnv(accessTTLEnvVar, "15m")); err != nil {
		return nil, errors.Wrapf(err, "invalid %s", accessTTLEnvVar)
	}
	if cfg.RefreshTokenTTL, err = time.ParseDuration(GetEnv(refreshTTLEnvVar, "168h")); err != nil {
		return nil, errors.Wrapf(err, "invalid %s", refreshTTLEnvVar)
	}
	if raw := GetEnv(passwordCostEnvVar, ""); raw != "" {
		if cfg.PasswordHashCost, err = strconv.Atoi(raw); err != nil {
			return nil, errors.Wrapf(err, "invalid %s", passwordCostEnvVar)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks invariants that would otherwise surface as confusing
// runtime failures.
func (c *Config) Validate() error {
	if c.AccessTokenSecret == "" {
		return errors.Errorf("%s is required", accessSecretEnvVar)
	}
	if c.RefreshTokenSecret == "" {
		return errors.Errorf("%s is required", refreshSecretEnvVar)
	}
	if c.AccessTokenSecret == c.RefreshTokenSecret {
		return errors.New("access and refresh token secrets must differ")
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return errors.New("token lifetimes must be positive")
	}
	if c.PasswordHashCost < bcrypt.MinCost || c.PasswordHashCost > bcrypt.MaxCost {
		return errors.Errorf("%s must be between %d and %d", passwordCostEnvVar, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return nil
}

func listenAddr(port string) string {
	if port != "" && port[0] != ':' {
		return fmt.Sprintf(":%s", port)
	}
	return port
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
