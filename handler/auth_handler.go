// file: handler/auth_handler.go

package handler

import (
	"encoding/json"
	"net"
	"net/http"
	"nutritrack-api/common"
	"nutritrack-api/model"
	"nutritrack-api/service"
)

// accessTokenCookie is the short-lived cookie mirroring the access token so
// server-rendered route gating can redirect unauthenticated navigation
// without a round trip. The Authorization header stays the source of truth
// for API calls.
const accessTokenCookie = "access_token"

type AuthHandler struct {
	authService service.IAuthService
	tokens      service.ITokenService
}

func NewAuthHandler(authService service.IAuthService, tokens service.ITokenService) *AuthHandler {
	return &AuthHandler{authService: authService, tokens: tokens}
}

type authResponse struct {
	User   *model.User      `json:"user"`
	Tokens *model.TokenPair `json:"tokens"`
}

func (h *AuthHandler) setTokenCookie(w http.ResponseWriter, accessToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    accessToken,
		Path:     "/",
		MaxAge:   int(h.tokens.AccessTTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Register godoc
// @Summary  Register a new user
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    request body model.RegisterRequest true "registration payload"
// @Success  201 {object} authResponse
// @Failure  409 {object} common.AppError
// @Router   /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RegisterRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	user, tokens, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		return common.AsAppError(err)
	}

	h.setTokenCookie(w, tokens.AccessToken)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(authResponse{User: user, Tokens: tokens})
	return nil
}

// Login godoc
// @Summary  Authenticate with email and password
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    request body model.LoginRequest true "login payload"
// @Success  200 {object} authResponse
// @Failure  401 {object} common.AppError
// @Failure  429 {object} common.AppError
// @Router   /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.LoginRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	user, tokens, err := h.authService.Login(r.Context(), &req, loginIdentifier(req.Email, r))
	if err != nil {
		return common.AsAppError(err)
	}

	h.setTokenCookie(w, tokens.AccessToken)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	json.NewEncoder(w).Encode(authResponse{User: user, Tokens: tokens})
	return nil
}

// Refresh godoc
// @Summary  Redeem a refresh token for a new token pair
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    request body model.RefreshRequest true "refresh payload"
// @Success  200 {object} model.TokenPair
// @Failure  401 {object} common.AppError
// @Router   /auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RefreshRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	tokens, err := h.authService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		return common.AsAppError(err)
	}

	h.setTokenCookie(w, tokens.AccessToken)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	json.NewEncoder(w).Encode(tokens)
	return nil
}

// Logout godoc
// @Summary  Revoke a refresh token
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    request body model.LogoutRequest true "logout payload"
// @Success  200 {object} map[string]string
// @Router   /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.LogoutRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	if err := h.authService.Logout(r.Context(), req.RefreshToken); err != nil {
		return common.AsAppError(err)
	}

	clearTokenCookie(w)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	json.NewEncoder(w).Encode(map[string]string{"status": "logged out"})
	return nil
}

// loginIdentifier keys the login rate limit by email plus client address, so
// a single address hammering many accounts and many addresses hammering one
// account are both throttled.
func loginIdentifier(email string, r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return email + "|" + host
}
