package logger

import (
	"log/slog"
	"strings"
)

// Env names the deployment environment the process runs in.
type Env string

// Supported environments.
const (
	EnvDevelopment Env = "development"
	EnvStaging     Env = "staging"
	EnvProduction  Env = "production"
)

// ParseEnv normalizes s into an Env. Unknown or empty values map to development.
func ParseEnv(s string) Env {
	switch Env(strings.ToLower(strings.TrimSpace(s))) {
	case EnvProduction, "prod":
		return EnvProduction
	case EnvStaging, "stage":
		return EnvStaging
	default:
		return EnvDevelopment
	}
}

// IsDevelopment reports whether verbose logging is enabled.
func (e Env) IsDevelopment() bool { return e == EnvDevelopment || e == "" }

// IsProduction reports whether e is the production environment.
func (e Env) IsProduction() bool { return e == EnvProduction }

// Level returns the minimum level logged in e.
// Development logs everything; other environments keep only errors.
func (e Env) Level() slog.Level {
	if e.IsDevelopment() {
		return slog.LevelDebug
	}
	return slog.LevelError
}

func (e Env) String() string {
	if e == "" {
		return string(EnvDevelopment)
	}
	return string(e)
}
