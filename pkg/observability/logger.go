package observability

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/bookshelf/pkg/contextkeys"
)

// ParseLevel parses a log level string, falling back to info
func ParseLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return logrus.DebugLevel
	case "info", "":
		return logrus.InfoLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// NewLogger creates a structured JSON logger
func NewLogger(level logrus.Level, output io.Writer) *logrus.Logger {
	if output == nil {
		output = os.Stdout
	}

	logger := logrus.New()
	logger.SetOutput(output)
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	return logger
}

// FromContext returns an entry carrying the request ID and user ID found in ctx
func FromContext(ctx context.Context, logger *logrus.Logger) *logrus.Entry {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	fields := logrus.Fields{}
	if requestID := contextkeys.GetRequestID(ctx); requestID != "" {
		fields["request_id"] = requestID
	}
	if userID, ok := contextkeys.GetUserID(ctx); ok {
		fields["user_id"] = userID
	}

	return logger.WithFields(fields)
}
