package server

import (
	"net/http"

	"github.com/clipstream/authcore/auth"
	"github.com/clipstream/authcore/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Server exposes the auth service over a JSON HTTP API.
type Server struct {
	mux    *http.ServeMux
	auth   *auth.Service
	logger zerolog.Logger
	secure bool // mark cookies Secure; disable for local HTTP development
}

// ServerOption defines a function type to modify the Server instance.
type ServerOption func(*Server)

// WithServerLogger sets the request logger
func WithServerLogger(logger zerolog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithInsecureCookies drops the Secure cookie attribute for plain-HTTP
// development setups.
func WithInsecureCookies() ServerOption {
	return func(s *Server) {
		s.secure = false
	}
}

func New(authService *auth.Service, options ...ServerOption) (*Server, error) {
	if authService == nil {
		return nil, errors.New("[Server New] auth service is nil")
	}

	s := &Server{
		mux:    http.NewServeMux(),
		auth:   authService,
		logger: zerolog.Nop(),
		secure: true,
	}
	for _, opt := range options {
		opt(s)
	}

	s.initRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) initRoutes() {
	requireAuth := middleware.RequireAuth(s.auth)
	base := []func(http.HandlerFunc) http.HandlerFunc{
		s.LoggingMiddleware,
		s.RecoverMiddleware,
	}

	s.mux.HandleFunc("POST /api/v1/auth/register", ChainMiddleware(s.RegisterHandler(), base...))
	s.mux.HandleFunc("POST /api/v1/auth/login", ChainMiddleware(s.LoginHandler(), base...))
	s.mux.HandleFunc("POST /api/v1/auth/refresh", ChainMiddleware(s.RefreshHandler(), base...))

	s.mux.HandleFunc("POST /api/v1/auth/logout", ChainMiddleware(s.LogoutHandler(), append(base, requireAuth)...))
	s.mux.HandleFunc("POST /api/v1/auth/change-password", ChainMiddleware(s.ChangePasswordHandler(), append(base, requireAuth)...))
	s.mux.HandleFunc("GET /api/v1/auth/me", ChainMiddleware(s.CurrentUserHandler(), append(base, requireAuth)...))
}

// ChainMiddleware wraps a handler with middleware, applied outermost first.
func ChainMiddleware(routeFunction http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	chainedHandler := routeFunction
	for i := len(mw) - 1; i >= 0; i-- {
		chainedHandler = mw[i](chainedHandler)
	}
	return chainedHandler
}

func (s *Server) LoggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("request")
		next(w, r)
	}
}

func (s *Server) RecoverMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("handler panicked")
				writeJSON(w, http.StatusInternalServerError, errorBody{
					Error:   "internal_error",
					Message: "internal server error",
				})
			}
		}()
		next(w, r)
	}
}
