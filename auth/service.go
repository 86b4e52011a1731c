package auth

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/clipstream/authcore/sessions"
	"github.com/clipstream/authcore/token"
	"github.com/clipstream/authcore/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// dummyPasswordHash is compared against when the account does not exist,
// keeping the failure path's timing close to a real password check.
const dummyPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Repos aggregates the persistence dependencies of the Service.
type Repos struct {
	Users    users.UserRepo
	Sessions sessions.Store
}

// Service owns the credential and session lifecycle: registration, login,
// token refresh, logout, and password changes.
type Service struct {
	repos         Repos
	issuer        *token.Issuer
	verifier      *token.Verifier
	logger        zerolog.Logger
	nowFunc       func() time.Time // injectable for testing
	passwordCost  int
	rotateRefresh bool
}

// Option defines a function type to modify the Service instance.
type Option func(*Service)

// WithNowFunc sets the now time function (primarily for testing)
func WithNowFunc(now func() time.Time) Option {
	return func(s *Service) {
		s.nowFunc = now
	}
}

// WithLogger sets the service logger
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithPasswordCost sets the bcrypt cost used when hashing new passwords
func WithPasswordCost(cost int) Option {
	return func(s *Service) {
		s.passwordCost = cost
	}
}

// WithRefreshRotation enables single-use refresh tokens: every successful
// refresh replaces the session slot with a newly minted token.
func WithRefreshRotation(rotate bool) Option {
	return func(s *Service) {
		s.rotateRefresh = rotate
	}
}

// NewService creates the auth Service. All dependencies are required.
func NewService(repos Repos, issuer *token.Issuer, verifier *token.Verifier, options ...Option) (*Service, error) {
	if repos.Users == nil {
		return nil, errors.New("[NewService] users repo is nil")
	}
	if repos.Sessions == nil {
		return nil, errors.New("[NewService] sessions store is nil")
	}
	if issuer == nil {
		return nil, errors.New("[NewService] issuer is nil")
	}
	if verifier == nil {
		return nil, errors.New("[NewService] verifier is nil")
	}
	s := &Service{
		repos:    repos,
		issuer:   issuer,
		verifier: verifier,
		logger:   zerolog.Nop(),
		nowFunc:  time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// RegisterRequest carries the fields needed to create an account.
type RegisterRequest struct {
	Handle    string
	Email     string
	FullName  string
	Password  string
	AvatarURL string
	CoverURL  string
}

// LoginRequest identifies the account by handle or email plus password.
type LoginRequest struct {
	Handle   string
	Email    string
	Password string
}

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	User         *users.User
	AccessToken  string
	RefreshToken string
}

// RefreshResult is the outcome of a successful token refresh. RefreshToken
// equals the presented token unless rotation is enabled.
type RefreshResult struct {
	AccessToken  string
	RefreshToken string
}

// Register creates a new account. The handle and email must both be unused.
// The returned user has its secret fields zeroed.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*users.User, error) {
	req.Handle = normalizeHandle(req.Handle)
	req.Email = normalizeEmail(req.Email)
	if err := validateRegistration(req); err != nil {
		return nil, err
	}

	_, err := s.repos.Users.FindByHandleOrEmail(ctx, req.Handle, req.Email)
	if err == nil {
		return nil, conflictError("handle or email already in use")
	}
	if !errors.Is(err, users.ErrNotFound) {
		return nil, dependencyError("user lookup failed", errors.Wrap(err, "[Service.Register] FindByHandleOrEmail"))
	}

	hash, err := users.HashPassword(req.Password, s.passwordCost)
	if err != nil {
		return nil, dependencyError("password hashing failed", errors.Wrap(err, "[Service.Register] HashPassword"))
	}

	created, err := s.repos.Users.Create(ctx, &users.User{
		Handle:       req.Handle,
		Email:        req.Email,
		FullName:     req.FullName,
		AvatarURL:    req.AvatarURL,
		CoverURL:     req.CoverURL,
		PasswordHash: hash,
		DateJoined:   s.nowFunc(),
	})
	if err != nil {
		return nil, dependencyError("user creation failed", errors.Wrap(err, "[Service.Register] Create"))
	}

	s.logger.Info().Str("userId", created.ID).Str("handle", created.Handle).Msg("user registered")
	return created.Sanitized(), nil
}

// Login verifies credentials and establishes a session. Every credential
// failure returns the same authentication error so an attacker cannot probe
// for registered handles.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	handle := normalizeHandle(req.Handle)
	email := normalizeEmail(req.Email)
	if handle == "" && email == "" {
		return nil, validationError("handle or email is required")
	}
	if req.Password == "" {
		return nil, validationError("password is required")
	}

	user, err := s.repos.Users.FindByHandleOrEmail(ctx, handle, email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			// Burn a hash comparison so unknown handles take as long as
			// wrong passwords.
			users.CheckPasswordHash(req.Password, dummyPasswordHash)
			return nil, authenticationError(invalidCredentialsMessage)
		}
		return nil, dependencyError("user lookup failed", errors.Wrap(err, "[Service.Login] FindByHandleOrEmail"))
	}

	if !users.CheckPasswordHash(req.Password, user.PasswordHash) {
		s.logger.Warn().Str("userId", user.ID).Msg("login rejected")
		return nil, authenticationError(invalidCredentialsMessage)
	}

	accessToken, err := s.issuer.IssueAccessToken(user)
	if err != nil {
		return nil, dependencyError("token issuance failed", errors.Wrap(err, "[Service.Login] IssueAccessToken"))
	}
	refreshToken, err := s.issuer.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, dependencyError("token issuance failed", errors.Wrap(err, "[Service.Login] IssueRefreshToken"))
	}

	if err := s.repos.Sessions.Set(ctx, user.ID, refreshToken); err != nil {
		return nil, dependencyError("session persistence failed", errors.Wrap(err, "[Service.Login] Set"))
	}
	s.touchLastAuthenticated(ctx, user.ID)

	s.logger.Info().Str("userId", user.ID).Msg("user logged in")
	return &LoginResult{
		User:         user.Sanitized(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh exchanges a valid refresh token for a new access token. The
// presented token must match the session slot byte for byte; a signature
// alone is not enough.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	if refreshToken == "" {
		return nil, authenticationError("refresh token is required")
	}

	claims, err := s.verifier.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, authenticationError("refresh token is invalid or expired")
	}

	stored, err := s.repos.Sessions.Get(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, sessions.ErrNoSession) {
			return nil, authenticationError("session has ended")
		}
		return nil, dependencyError("session lookup failed", errors.Wrap(err, "[Service.Refresh] Get"))
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(refreshToken)) != 1 {
		s.logger.Warn().Str("userId", claims.Subject).Msg("stale refresh token presented")
		return nil, authenticationError("refresh token has been superseded")
	}

	user, err := s.repos.Users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, authenticationError("session has ended")
		}
		return nil, dependencyError("user lookup failed", errors.Wrap(err, "[Service.Refresh] GetByID"))
	}

	accessToken, err := s.issuer.IssueAccessToken(user)
	if err != nil {
		return nil, dependencyError("token issuance failed", errors.Wrap(err, "[Service.Refresh] IssueAccessToken"))
	}

	nextRefresh := refreshToken
	if s.rotateRefresh {
		nextRefresh, err = s.issuer.IssueRefreshToken(user.ID)
		if err != nil {
			return nil, dependencyError("token issuance failed", errors.Wrap(err, "[Service.Refresh] IssueRefreshToken"))
		}
		if err := s.replaceSession(ctx, user.ID, refreshToken, nextRefresh); err != nil {
			return nil, err
		}
	}
	s.touchLastAuthenticated(ctx, user.ID)

	return &RefreshResult{
		AccessToken:  accessToken,
		RefreshToken: nextRefresh,
	}, nil
}

// replaceSession swaps the slot atomically when the store supports it, so two
// concurrent refreshes with the same token cannot both rotate.
func (s *Service) replaceSession(ctx context.Context, userID, expected, next string) error {
	if cs, ok := s.repos.Sessions.(sessions.ConditionalStore); ok {
		err := cs.CompareAndSwap(ctx, userID, expected, next)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, sessions.ErrNoSession), errors.Is(err, sessions.ErrTokenMismatch):
			return authenticationError("refresh token has been superseded")
		default:
			return dependencyError("session persistence failed", errors.Wrap(err, "[Service.replaceSession] CompareAndSwap"))
		}
	}
	if err := s.repos.Sessions.Set(ctx, userID, next); err != nil {
		return dependencyError("session persistence failed", errors.Wrap(err, "[Service.replaceSession] Set"))
	}
	return nil
}

// Logout ends the user's session. Logging out with no active session
// succeeds, so retries and double-clicks are harmless.
func (s *Service) Logout(ctx context.Context, userID string) error {
	if userID == "" {
		return validationError("user id is required")
	}
	if err := s.repos.Sessions.Clear(ctx, userID); err != nil {
		return dependencyError("session clearing failed", errors.Wrap(err, "[Service.Logout] Clear"))
	}
	s.touchLastAuthenticated(ctx, userID)
	s.logger.Info().Str("userId", userID).Msg("user logged out")
	return nil
}

// ChangePassword replaces the user's password after verifying the current
// one, then ends the active session so outstanding refresh tokens stop
// working.
func (s *Service) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if userID == "" {
		return validationError("user id is required")
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return authenticationError("account not found")
		}
		return dependencyError("user lookup failed", errors.Wrap(err, "[Service.ChangePassword] GetByID"))
	}
	if !users.CheckPasswordHash(oldPassword, user.PasswordHash) {
		return authenticationError("current password is incorrect")
	}

	hash, err := users.HashPassword(newPassword, s.passwordCost)
	if err != nil {
		return dependencyError("password hashing failed", errors.Wrap(err, "[Service.ChangePassword] HashPassword"))
	}
	if _, err := s.repos.Users.Update(ctx, userID, users.Update{PasswordHash: &hash}); err != nil {
		return dependencyError("user update failed", errors.Wrap(err, "[Service.ChangePassword] Update"))
	}

	// Old refresh tokens must die with the old password.
	if err := s.repos.Sessions.Clear(ctx, userID); err != nil {
		return dependencyError("session clearing failed", errors.Wrap(err, "[Service.ChangePassword] Clear"))
	}

	s.logger.Info().Str("userId", userID).Msg("password changed")
	return nil
}

// CurrentUser returns the account for an authenticated user id with secret
// fields zeroed.
func (s *Service) CurrentUser(ctx context.Context, userID string) (*users.User, error) {
	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, authenticationError("account not found")
		}
		return nil, dependencyError("user lookup failed", errors.Wrap(err, "[Service.CurrentUser] GetByID"))
	}
	return user.Sanitized(), nil
}

// VerifyAccessToken validates a bearer token without touching any store.
// Middleware calls this on every protected request.
func (s *Service) VerifyAccessToken(raw string) (*token.AccessClaims, error) {
	claims, err := s.verifier.VerifyAccessToken(raw)
	if err != nil {
		return nil, authenticationError("access token is invalid or expired")
	}
	return claims, nil
}

// touchLastAuthenticated is best-effort bookkeeping and never fails the
// calling operation.
func (s *Service) touchLastAuthenticated(ctx context.Context, userID string) {
	now := s.nowFunc()
	if _, err := s.repos.Users.Update(ctx, userID, users.Update{LastAuthenticatedAt: &now}); err != nil {
		s.logger.Warn().Err(err).Str("userId", userID).Msg("failed to record authentication time")
	}
}
