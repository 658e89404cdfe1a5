package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/bookshelf/pkg/auth"
	"github.com/platinummonkey/bookshelf/pkg/httputil"
	"github.com/platinummonkey/bookshelf/pkg/middleware"
	"github.com/platinummonkey/bookshelf/pkg/observability"
	"github.com/platinummonkey/bookshelf/pkg/session"
)

// maxCredentialBodyBytes caps the size of login and registration bodies
const maxCredentialBodyBytes = 1 << 16

// Options wires the server's dependencies. Store, Users and Logger are required.
type Options struct {
	Store  session.TokenStore
	Users  UserRepository
	Logger *logrus.Logger

	// Metrics instruments HTTP and auth outcomes; Registry serves them on /metrics
	Metrics  *observability.Metrics
	Registry *prometheus.Registry

	// Health registers /health, /health/live and /health/ready
	Health *observability.HealthChecker

	// LoginLimiter throttles POST /login and POST /user/register per client IP
	LoginLimiter *middleware.RateLimiter

	// TrustedProxies may report the client address through forwarding headers
	TrustedProxies httputil.TrustedProxies

	AuthOptions []auth.AuthenticatorOption
}

// Server represents our API server
type Server struct {
	router       *mux.Router
	handler      http.Handler
	authMW       *middleware.AuthMiddleware
	authHandlers *AuthHandlers
	opts         Options
}

// NewServer creates a new API server
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}

	s := &Server{
		router:       mux.NewRouter(),
		authMW:       middleware.NewAuthMiddleware(opts.Store, opts.Users, opts.Logger, opts.Metrics, opts.AuthOptions...),
		authHandlers: NewAuthHandlers(opts.Store, opts.Users, opts.Logger, opts.Metrics),
		opts:         opts,
	}

	s.router.NotFoundHandler = httputil.NotFoundHandler()
	s.router.MethodNotAllowedHandler = httputil.MethodNotAllowedHandler()
	if opts.Metrics != nil {
		s.router.Use(observability.HTTPMetricsMiddleware(opts.Metrics))
	}

	s.setupRoutes()

	// Wrapped outside the router so unmatched routes are logged too
	s.handler = httputil.Chain(
		httputil.RequestIDMiddleware,
		httputil.ClientIPMiddleware(opts.TrustedProxies),
		httputil.LoggingMiddleware(opts.Logger),
		httputil.RecoveryMiddleware(opts.Logger),
	)(s.router)

	return s
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes() {
	s.router.Handle("/login", s.credentials("login", s.authHandlers.login)).Methods(http.MethodPost)
	s.router.Handle("/user/register", s.credentials("register", s.authHandlers.register)).Methods(http.MethodPost)

	// Session routes
	s.router.Handle("/logout", s.authenticated(s.authHandlers.logout)).Methods(http.MethodGet)
	s.router.Handle("/logout/all", s.authenticated(s.authHandlers.logoutAll)).Methods(http.MethodPost)
	s.router.Handle("/check", s.authenticated(s.authHandlers.check)).Methods(http.MethodGet)

	// User routes
	s.router.Handle("/user/me", s.authenticated(s.authHandlers.me)).Methods(http.MethodGet)
	s.router.Handle("/user/sessions", s.authenticated(s.authHandlers.sessions)).Methods(http.MethodGet)

	// Account administration
	s.router.Handle("/user/root", s.authMW.Handler(httputil.Chain(
		s.authMW.RequireRole(auth.RoleCreateRootUser),
		httputil.ContentTypeMiddleware,
		httputil.MaxBytesMiddleware(maxCredentialBodyBytes),
	)(http.HandlerFunc(s.authHandlers.createRootUser)))).Methods(http.MethodPost)

	if s.opts.Health != nil {
		observability.RegisterHealthRoutes(s.router, s.opts.Health)
	}
	if s.opts.Registry != nil {
		observability.RegisterMetricsEndpoint(s.router, s.opts.Registry)
	}
}

// credentials wraps an endpoint that accepts a password. Both endpoints share the
// limiter, so each client IP has one budget across login and registration.
func (s *Server) credentials(name string, fn http.HandlerFunc) http.Handler {
	h := httputil.Chain(
		httputil.ContentTypeMiddleware,
		httputil.MaxBytesMiddleware(maxCredentialBodyBytes),
	)(fn)
	if s.opts.LoginLimiter != nil {
		h = middleware.NewRateLimitMiddleware(s.opts.LoginLimiter, name, s.opts.Logger, s.opts.Metrics).Handler(h)
	}
	return h
}

func (s *Server) authenticated(fn http.HandlerFunc) http.Handler {
	return s.authMW.Handler(fn)
}

// Router exposes the route table for registering further routes
func (s *Server) Router() *mux.Router {
	return s.router
}

// AuthMiddleware returns the middleware guarding authenticated routes
func (s *Server) AuthMiddleware() *middleware.AuthMiddleware {
	return s.authMW
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}
