// Package logging builds the application logger and keeps secrets out of
// log output.
package logging

import (
	"fmt"
	"regexp"

	"go.uber.org/zap"
)

const redactedText = "[REDACTED]"

// user:pass@host credentials inside a connection URL.
var connStringPattern = regexp.MustCompile(`://[^:/]+:[^@]+@`)

// NewLogger builds a zap logger for the given environment. Local
// environments get the human-readable development config at debug level;
// everything else gets production JSON output.
func NewLogger(env string) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error

	if env == "local" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return logger.With(zap.String("env", env)), nil
}

// SanitizeConnectionString redacts credentials from a connection URL so it
// can be logged at startup.
func SanitizeConnectionString(connStr string) string {
	return connStringPattern.ReplaceAllString(connStr, "://"+redactedText+"@")
}
