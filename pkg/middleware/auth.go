package middleware

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/bookshelf/pkg/auth"
	"github.com/platinummonkey/bookshelf/pkg/contextkeys"
	"github.com/platinummonkey/bookshelf/pkg/httputil"
	"github.com/platinummonkey/bookshelf/pkg/observability"
)

// AuthMiddleware rejects requests without a live session and attaches the caller to the context
type AuthMiddleware struct {
	store   auth.SessionStore
	users   auth.UserFinder
	logger  *logrus.Logger
	audit   *auth.AuditLogger
	metrics *observability.Metrics
	opts    []auth.AuthenticatorOption
}

// NewAuthMiddleware creates a new authentication middleware. metrics may be nil.
func NewAuthMiddleware(store auth.SessionStore, users auth.UserFinder, logger *logrus.Logger, metrics *observability.Metrics, opts ...auth.AuthenticatorOption) *AuthMiddleware {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &AuthMiddleware{
		store:   store,
		users:   users,
		logger:  logger,
		audit:   auth.NewAuditLogger(logger),
		metrics: metrics,
		opts:    opts,
	}
}

// Handler wraps an HTTP handler with authentication
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		res, err := auth.NewAuthenticator(r, m.store, m.users, m.opts...).Authenticate(ctx)

		if err != nil {
			m.record("error", res.Reason)
			observability.FromContext(ctx, m.logger).WithError(err).
				WithField("detail", res.Detail).
				Error("authentication failed on a dependency")
			httputil.WriteInternalError(w)
			return
		}

		if !res.Authenticated {
			m.record("failure", res.Reason)
			// Anonymous requests are routine; only presented tokens are audited.
			if _, presented := auth.BearerToken(r); presented {
				m.audit.LogFromRequest(r, auth.AuditEvent{
					Action: auth.ActionAuthFailure,
					Status: auth.StatusFailure,
					Detail: res.Detail,
				})
			}
			httputil.WriteUnauthorized(w)
			return
		}

		m.record("success", res.Reason)
		ctx = contextkeys.WithAuth(ctx, &auth.AuthContext{User: res.User, Token: res.Token})
		ctx = contextkeys.WithUserID(ctx, res.User.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) record(result string, reason auth.FailureReason) {
	if m.metrics == nil {
		return
	}
	label := string(reason)
	if label == "" {
		label = "none"
	}
	m.metrics.AuthAttemptsTotal.WithLabelValues(result, label).Inc()
}

// GetAuthContext extracts auth context from request
func GetAuthContext(r *http.Request) *auth.AuthContext {
	ctx := r.Context().Value(contextkeys.AuthKey)
	if ctx == nil {
		return nil
	}
	authCtx, ok := ctx.(*auth.AuthContext)
	if !ok {
		return nil
	}
	return authCtx
}

// RequireRole creates middleware that checks the caller's group grants a role.
// It must run after Handler.
func (m *AuthMiddleware) RequireRole(role auth.RoleName) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authCtx := GetAuthContext(r)
			if authCtx == nil || authCtx.User == nil {
				httputil.WriteUnauthorized(w)
				return
			}

			if !authCtx.HasRole(role) {
				m.audit.LogFromRequest(r, auth.AuditEvent{
					Action: auth.ActionAccessDenied,
					UserID: authCtx.User.ID,
					Status: auth.StatusDenied,
					Detail: string(role),
				})
				httputil.WriteForbidden(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
