package auth

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/bookshelf/pkg/httputil"
)

// AuditLogger writes security events as structured log lines
type AuditLogger struct {
	logger *logrus.Logger
}

// NewAuditLogger creates a new audit logger. A nil logger uses the logrus standard logger.
func NewAuditLogger(logger *logrus.Logger) *AuditLogger {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &AuditLogger{logger: logger}
}

// AuditEvent is a single security-relevant action
type AuditEvent struct {
	Action    string
	UserID    int64
	Email     string
	Status    string
	Detail    string
	IPAddress string
	UserAgent string
}

// Log writes an audit event. Denied and failed events log at warn level.
func (al *AuditLogger) Log(event AuditEvent) {
	fields := logrus.Fields{
		"audit":  true,
		"action": event.Action,
		"status": event.Status,
	}
	if event.UserID != 0 {
		fields["user_id"] = event.UserID
	}
	if event.Email != "" {
		fields["email"] = event.Email
	}
	if event.Detail != "" {
		fields["detail"] = event.Detail
	}
	if event.IPAddress != "" {
		fields["ip"] = event.IPAddress
	}
	if event.UserAgent != "" {
		fields["user_agent"] = event.UserAgent
	}

	entry := al.logger.WithFields(fields)
	if event.Status == StatusSuccess {
		entry.Info("audit event")
		return
	}
	entry.Warn("audit event")
}

// LogFromRequest fills client details from the request and writes the event
func (al *AuditLogger) LogFromRequest(r *http.Request, event AuditEvent) {
	event.IPAddress = httputil.ClientIP(r)
	event.UserAgent = r.UserAgent()
	al.Log(event)
}

// Common audit action constants
const (
	ActionRegister     = "auth.register"
	ActionLogin        = "auth.login"
	ActionLogout       = "auth.logout"
	ActionLogoutAll    = "auth.logout_all"
	ActionAuthFailure  = "auth.failure"
	ActionAccessDenied = "auth.access_denied"
	ActionRateLimitHit = "ratelimit.exceeded"
	ActionSeedRootUser = "seed.root_user"
)

// Status constants
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
	StatusDenied  = "denied"
)
