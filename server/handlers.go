package server

import (
	"encoding/json"
	"net/http"

	"github.com/clipstream/authcore/auth"
	"github.com/clipstream/authcore/middleware"
	"github.com/clipstream/authcore/users"
)

const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"
)

type registerRequest struct {
	Handle    string `json:"handle"`
	Email     string `json:"email"`
	FullName  string `json:"fullName"`
	Password  string `json:"password"`
	AvatarURL string `json:"avatarUrl"`
	CoverURL  string `json:"coverUrl"`
}

type loginRequest struct {
	Handle   string `json:"handle"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User         *users.User `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// RegisterHandler creates a new account
func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: string(auth.KindValidation), Message: "request body is not valid JSON"})
			return
		}

		user, err := s.auth.Register(r.Context(), auth.RegisterRequest{
			Handle:    req.Handle,
			Email:     req.Email,
			FullName:  req.FullName,
			Password:  req.Password,
			AvatarURL: req.AvatarURL,
			CoverURL:  req.CoverURL,
		})
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, user)
	}
}

// LoginHandler verifies credentials and establishes a session. Tokens are
// returned in the body and mirrored as cookies for browser clients.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: string(auth.KindValidation), Message: "request body is not valid JSON"})
			return
		}

		result, err := s.auth.Login(r.Context(), auth.LoginRequest{
			Handle:   req.Handle,
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			s.writeError(w, err)
			return
		}

		s.setTokenCookies(w, result.AccessToken, result.RefreshToken)
		writeJSON(w, http.StatusOK, loginResponse{
			User:         result.User,
			AccessToken:  result.AccessToken,
			RefreshToken: result.RefreshToken,
		})
	}
}

// RefreshHandler exchanges a refresh token for a new access token. The token
// is read from the body, falling back to the refresh cookie.
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refreshRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.RefreshToken == "" {
			if cookie, err := r.Cookie(refreshTokenCookie); err == nil {
				req.RefreshToken = cookie.Value
			}
		}

		result, err := s.auth.Refresh(r.Context(), req.RefreshToken)
		if err != nil {
			s.writeError(w, err)
			return
		}

		s.setTokenCookies(w, result.AccessToken, result.RefreshToken)
		writeJSON(w, http.StatusOK, refreshResponse{
			AccessToken:  result.AccessToken,
			RefreshToken: result.RefreshToken,
		})
	}
}

// LogoutHandler ends the session and clears token cookies
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserIDFromContext(r.Context())
		if !ok {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: string(auth.KindAuthentication), Message: "authentication required"})
			return
		}

		if err := s.auth.Logout(r.Context(), userID); err != nil {
			s.writeError(w, err)
			return
		}

		s.clearTokenCookies(w)
		writeJSON(w, http.StatusOK, messageResponse{Message: "logged out"})
	}
}

// ChangePasswordHandler replaces the password and ends the session
func (s *Server) ChangePasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserIDFromContext(r.Context())
		if !ok {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: string(auth.KindAuthentication), Message: "authentication required"})
			return
		}

		var req changePasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: string(auth.KindValidation), Message: "request body is not valid JSON"})
			return
		}

		if err := s.auth.ChangePassword(r.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
			s.writeError(w, err)
			return
		}

		s.clearTokenCookies(w)
		writeJSON(w, http.StatusOK, messageResponse{Message: "password changed"})
	}
}

// CurrentUserHandler returns the authenticated user's account
func (s *Server) CurrentUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserIDFromContext(r.Context())
		if !ok {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: string(auth.KindAuthentication), Message: "authentication required"})
			return
		}

		user, err := s.auth.CurrentUser(r.Context(), userID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

func (s *Server) setTokenCookies(w http.ResponseWriter, accessToken, refreshToken string) {
	http.SetCookie(w, s.tokenCookie(accessTokenCookie, accessToken))
	http.SetCookie(w, s.tokenCookie(refreshTokenCookie, refreshToken))
}

func (s *Server) clearTokenCookies(w http.ResponseWriter) {
	access := s.tokenCookie(accessTokenCookie, "")
	access.MaxAge = -1
	refresh := s.tokenCookie(refreshTokenCookie, "")
	refresh.MaxAge = -1
	http.SetCookie(w, access)
	http.SetCookie(w, refresh)
}

func (s *Server) tokenCookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteStrictMode,
	}
}
