package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/gracechapel/roster-engine/pkg/auth"
	"github.com/gracechapel/roster-engine/pkg/models"
	"github.com/gracechapel/roster-engine/pkg/services"
)

// LoginRequest for POST /api/auth/login
type LoginRequest struct {
	Initials string `json:"initials" validate:"required"`
	PIN      string `json:"pin" validate:"required"`
}

// LoginResponse carries the session token and the logged-in user. The token
// is also set as an HttpOnly cookie for browser clients.
type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// ChangePINRequest for POST /api/auth/change-pin
type ChangePINRequest struct {
	CurrentPIN string `json:"current_pin" validate:"required"`
	NewPIN     string `json:"new_pin" validate:"required,min=4"`
}

// AuthHandler handles PIN login and PIN changes.
type AuthHandler struct {
	userService  services.UserService
	issuer       *auth.TokenIssuer
	secureCookie bool
	logger       *zap.Logger
}

// NewAuthHandler creates a new auth handler. secureCookie should be true
// everywhere except plain-HTTP local development.
func NewAuthHandler(userService services.UserService, issuer *auth.TokenIssuer, secureCookie bool, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		userService:  userService,
		issuer:       issuer,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

// RegisterRoutes registers the auth handler's routes on the given mux.
func (h *AuthHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.HandleFunc("POST /api/auth/logout", h.Logout)
	mux.HandleFunc("POST /api/auth/change-pin", authMiddleware.RequireAuth(h.ChangePIN))
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, h.logger, &req) {
		return
	}

	user, err := h.userService.Authenticate(r.Context(), req.Initials, req.PIN)
	if err != nil {
		ServiceError(w, h.logger, err)
		return
	}

	token, err := h.issuer.Issue(user)
	if err != nil {
		h.logger.Error("Failed to issue session token", zap.Error(err))
		ServiceError(w, h.logger, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.issuer.TTL().Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})

	h.logger.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("initials", user.Initials))

	if err := WriteJSON(w, http.StatusOK, LoginResponse{Token: token, User: user}); err != nil {
		h.logger.Error("Failed to write login response", zap.Error(err))
	}
}

// Logout handles POST /api/auth/logout by expiring the session cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true}); err != nil {
		h.logger.Error("Failed to write logout response", zap.Error(err))
	}
}

// ChangePIN handles POST /api/auth/change-pin
func (h *AuthHandler) ChangePIN(w http.ResponseWriter, r *http.Request) {
	var req ChangePINRequest
	if !decodeAndValidate(w, r, h.logger, &req) {
		return
	}

	userID := auth.GetUserID(r.Context())
	if err := h.userService.ChangePIN(r.Context(), userID, req.CurrentPIN, req.NewPIN); err != nil {
		ServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true}); err != nil {
		h.logger.Error("Failed to write change-pin response", zap.Error(err))
	}
}
