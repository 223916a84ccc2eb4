package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"numgate/internal/auth"
)

type Config struct {
	JWTSecret      string
	Port           string
	Environment    string
	SentryDSN      string
	LogLevel       string
	BcryptCost     int
	AccessTokenTTL time.Duration
	MetricsEnabled bool
	AdminUsername  string
	AdminPassword  string
}

// LoadConfig reads the process environment. JWT_SECRET is the only
// required variable.
func LoadConfig() (Config, error) {
	return loadConfig(os.Getenv)
}

func loadConfig(getenv func(string) string) (Config, error) {
	env := envSource(getenv)

	jwtSecret := env.text("JWT_SECRET", "")
	if jwtSecret == "" {
		return Config{}, errors.New("missing required env: JWT_SECRET")
	}
	if len(jwtSecret) < auth.MinSecretBytes {
		return Config{}, fmt.Errorf("JWT_SECRET must be at least %d bytes", auth.MinSecretBytes)
	}

	// Credentials are used verbatim, so they are not trimmed.
	adminUsername := getenv("ADMIN_USERNAME")
	adminPassword := getenv("ADMIN_PASSWORD")
	if adminUsername != "" || adminPassword != "" {
		if adminUsername == "" || adminPassword == "" {
			return Config{}, errors.New("ADMIN_USERNAME and ADMIN_PASSWORD must be set together")
		}
		if err := auth.ValidateCredentials(adminUsername, adminPassword); err != nil {
			return Config{}, fmt.Errorf("admin credentials: %w", err)
		}
	}

	return Config{
		JWTSecret:      jwtSecret,
		Port:           env.text("PORT", "8080"),
		Environment:    env.text("APP_ENV", "development"),
		SentryDSN:      env.text("SENTRY_DSN", ""),
		LogLevel:       env.text("LOG_LEVEL", "info"),
		BcryptCost:     env.positive("BCRYPT_COST", bcrypt.DefaultCost),
		AccessTokenTTL: time.Duration(env.positive("ACCESS_TOKEN_TTL_MINUTES", 30)) * time.Minute,
		MetricsEnabled: env.flag("METRICS_ENABLED", true),
		AdminUsername:  adminUsername,
		AdminPassword:  adminPassword,
	}, nil
}

// envSource reads trimmed values; unset, blank and unparsable values all
// mean the fallback.
type envSource func(string) string

func (e envSource) text(name, fallback string) string {
	if value := strings.TrimSpace(e(name)); value != "" {
		return value
	}
	return fallback
}

func (e envSource) positive(name string, fallback int) int {
	parsed, err := strconv.Atoi(e.text(name, ""))
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func (e envSource) flag(name string, fallback bool) bool {
	switch strings.ToLower(e.text(name, "")) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return fallback
}
