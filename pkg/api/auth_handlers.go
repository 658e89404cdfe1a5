package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/bookshelf/pkg/auth"
	"github.com/platinummonkey/bookshelf/pkg/httputil"
	"github.com/platinummonkey/bookshelf/pkg/middleware"
	"github.com/platinummonkey/bookshelf/pkg/observability"
	"github.com/platinummonkey/bookshelf/pkg/session"
	"github.com/platinummonkey/bookshelf/pkg/users"
)

// UserRepository is the account access the auth handlers need
type UserRepository interface {
	auth.UserFinder
	VerifyCredentials(ctx context.Context, email, password string) (*auth.User, error)
	Create(ctx context.Context, account users.NewAccount) (*auth.User, error)
}

var _ UserRepository = (*users.Repository)(nil)

// AuthHandlers handles registration, login, logout and session introspection
type AuthHandlers struct {
	store   session.TokenStore
	users   UserRepository
	logger  *logrus.Logger
	audit   *auth.AuditLogger
	metrics *observability.Metrics
}

// NewAuthHandlers creates a new auth handlers instance. metrics may be nil.
func NewAuthHandlers(store session.TokenStore, repo UserRepository, logger *logrus.Logger, metrics *observability.Metrics) *AuthHandlers {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &AuthHandlers{
		store:   store,
		users:   repo,
		logger:  logger,
		audit:   auth.NewAuditLogger(logger),
		metrics: metrics,
	}
}

// login handles POST /login
func (h *AuthHandlers) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireFields(w, []string{"email", "password"}, map[string]string{
		"email":    req.Email,
		"password": req.Password,
	}) {
		return
	}

	ctx := r.Context()
	user, err := h.users.VerifyCredentials(ctx, req.Email, req.Password)
	switch {
	case errors.Is(err, users.ErrAccountNotFound):
		h.loginFailed(r, req.Email, "account_not_found")
		httputil.WriteBadRequest(w, httputil.MsgAccountNotFound)
		return
	case errors.Is(err, users.ErrInvalidCredentials):
		h.loginFailed(r, req.Email, "invalid_credentials")
		httputil.WriteBadRequest(w, httputil.MsgInvalidCredentials)
		return
	case err != nil:
		h.countLogin("error")
		observability.FromContext(ctx, h.logger).WithError(err).Error("failed to verify credentials")
		httputil.WriteInternalError(w)
		return
	}

	rec, err := h.store.Issue(ctx, user.ID)
	if err != nil {
		h.countLogin("error")
		observability.FromContext(ctx, h.logger).WithError(err).
			WithField("user_id", user.ID).
			Error("failed to issue session")
		httputil.WriteInternalError(w)
		return
	}

	h.countLogin("success")
	h.audit.LogFromRequest(r, auth.AuditEvent{
		Action: auth.ActionLogin,
		UserID: user.ID,
		Email:  user.Email,
		Status: auth.StatusSuccess,
	})

	httputil.WriteSuccess(w, LoginResponse{
		Token:     rec.Token,
		ExpiresAt: rec.ExpiresAt,
		User:      newUserResponse(user),
	})
}

func (h *AuthHandlers) loginFailed(r *http.Request, email, result string) {
	h.countLogin(result)
	h.audit.LogFromRequest(r, auth.AuditEvent{
		Action: auth.ActionLogin,
		Email:  email,
		Status: auth.StatusFailure,
		Detail: result,
	})
}

func (h *AuthHandlers) countLogin(result string) {
	if h.metrics != nil {
		h.metrics.LoginAttemptsTotal.WithLabelValues(result).Inc()
	}
}

// register handles POST /user/register. New accounts join the CONSUMER group.
func (h *AuthHandlers) register(w http.ResponseWriter, r *http.Request) {
	h.createAccount(w, r, auth.GroupConsumer)
}

// createRootUser handles POST /user/root, guarded by CREATE_ROOT_USER
func (h *AuthHandlers) createRootUser(w http.ResponseWriter, r *http.Request) {
	h.createAccount(w, r, auth.GroupRoot)
}

func (h *AuthHandlers) createAccount(w http.ResponseWriter, r *http.Request, group auth.GroupName) {
	var req RegisterRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireFields(w, []string{"email", "password", "first_name", "last_name"}, map[string]string{
		"email":      req.Email,
		"password":   req.Password,
		"first_name": req.FirstName,
		"last_name":  req.LastName,
	}) {
		return
	}

	event := auth.AuditEvent{Action: auth.ActionRegister, Email: req.Email, Detail: string(group)}
	if authCtx := middleware.GetAuthContext(r); authCtx != nil {
		event.UserID = authCtx.User.ID
	}

	ctx := r.Context()
	user, err := h.users.Create(ctx, users.NewAccount{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Group:     group,
	})
	if errors.Is(err, users.ErrEmailTaken) {
		event.Status = auth.StatusFailure
		h.audit.LogFromRequest(r, event)
		httputil.WriteBadRequest(w, httputil.MsgEmailTaken)
		return
	}
	if err != nil {
		observability.FromContext(ctx, h.logger).WithError(err).
			WithField("group", group).
			Error("failed to create user")
		httputil.WriteInternalError(w)
		return
	}

	event.Status = auth.StatusSuccess
	if event.UserID == 0 {
		event.UserID = user.ID
	}
	h.audit.LogFromRequest(r, event)
	httputil.WriteSuccess(w, newUserResponse(user))
}

// logout handles GET /logout
func (h *AuthHandlers) logout(w http.ResponseWriter, r *http.Request) {
	authCtx := middleware.GetAuthContext(r)
	ctx := r.Context()

	if err := h.store.Revoke(ctx, authCtx.User.ID, authCtx.Token); err != nil {
		observability.FromContext(ctx, h.logger).WithError(err).Error("failed to revoke session")
		httputil.WriteInternalError(w)
		return
	}

	h.audit.LogFromRequest(r, auth.AuditEvent{
		Action: auth.ActionLogout,
		UserID: authCtx.User.ID,
		Status: auth.StatusSuccess,
	})
	httputil.WriteSuccess(w, StatusResponse{Status: "logged_out"})
}

// logoutAll handles POST /logout/all
func (h *AuthHandlers) logoutAll(w http.ResponseWriter, r *http.Request) {
	authCtx := middleware.GetAuthContext(r)
	ctx := r.Context()

	n, err := h.store.RevokeAllForUser(ctx, authCtx.User.ID)
	if err != nil {
		observability.FromContext(ctx, h.logger).WithError(err).Error("failed to revoke sessions")
		httputil.WriteInternalError(w)
		return
	}

	h.audit.LogFromRequest(r, auth.AuditEvent{
		Action: auth.ActionLogoutAll,
		UserID: authCtx.User.ID,
		Status: auth.StatusSuccess,
	})
	httputil.WriteSuccess(w, RevokedResponse{Revoked: n})
}

// check handles GET /check
func (h *AuthHandlers) check(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, StatusResponse{Status: "ok"})
}

// me handles GET /user/me
func (h *AuthHandlers) me(w http.ResponseWriter, r *http.Request) {
	authCtx := middleware.GetAuthContext(r)
	httputil.WriteSuccess(w, newUserResponse(authCtx.User))
}

// sessions handles GET /user/sessions
func (h *AuthHandlers) sessions(w http.ResponseWriter, r *http.Request) {
	authCtx := middleware.GetAuthContext(r)
	ctx := r.Context()

	records, err := h.store.Sessions(ctx, authCtx.User.ID)
	if err != nil {
		observability.FromContext(ctx, h.logger).WithError(err).Error("failed to list sessions")
		httputil.WriteInternalError(w)
		return
	}

	httputil.WriteSuccess(w, newSessionResponses(records, authCtx.Token))
}
