package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/bkinvest/botboard/internal/crypto"
)

// CookieName is the session cookie the dashboard presents on every request.
const CookieName = "bk-auth"

// cookieMaxAge keeps the session for 30 days.
const cookieMaxAge = 60 * 60 * 24 * 30

// AuthHandler serves the login and logout endpoints.
type AuthHandler struct {
	signer *crypto.SessionSigner
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler with the provided signer and logger.
func NewAuthHandler(signer *crypto.SessionSigner, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		signer: signer,
		logger: logHandler(logger, "auth"),
	}
}

// Login checks the submitted site password and sets the session cookie.
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, ok := h.signer.Login(req.Password)
	if !ok {
		h.logger.WarnContext(r.Context(), "login rejected",
			slog.String("remote_addr", r.RemoteAddr),
		)
		writeError(w, http.StatusUnauthorized, "invalid password")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   cookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Logout clears the session cookie.
// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
