package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"argus-sod/config"
	"argus-sod/core/auth"
	"argus-sod/core/store"
	"argus-sod/core/utils"
)

type AuthHandler struct {
	cfg            *config.AppConfig
	users          store.UsersStore
	sessions       store.SessionStore
	authSvc        *auth.Service
	sessionManager *auth.SessionManager
	audits         store.AuditStore
	logger         *utils.Logger
}

func NewAuthHandler(cfg *config.AppConfig, users store.UsersStore, sessions store.SessionStore, authSvc *auth.Service, sm *auth.SessionManager, audits store.AuditStore, logger *utils.Logger) *AuthHandler {
	return &AuthHandler{cfg: cfg, users: users, sessions: sessions, authSvc: authSvc, sessionManager: sm, audits: audits, logger: logger}
}

// Login verifies credentials and opens a session. An unknown username and a
// wrong password produce the same response so the endpoint cannot be used to
// enumerate accounts.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var cred auth.Credentials
	if err := json.NewDecoder(r.Body).Decode(&cred); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	cred.Username = strings.ToLower(strings.TrimSpace(cred.Username))
	if err := utils.ValidateUsername(cred.Username); err != nil {
		http.Error(w, "invalid username", http.StatusBadRequest)
		return
	}
	role, err := h.authSvc.Verify(r.Context(), cred.Username, cred.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) || errors.Is(err, auth.ErrInvalidPassword) {
			h.audits.Log(r.Context(), cred.Username, "auth.login_failed", "")
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		h.logger.Errorf("auth login verify failed for %s: %v", cred.Username, err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	user, err := h.users.FindByUsername(r.Context(), cred.Username)
	if err != nil || user == nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	sess, err := h.sessionManager.Create(r.Context(), user, []string{role}, clientIP(r), r.UserAgent())
	if err != nil {
		h.logger.Errorf("auth login session create failed for %s: %v", cred.Username, err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	h.audits.Log(r.Context(), user.Username, "auth.login_success", "")
	cookieSecure := isSecureRequest(r)
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   cookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  sess.ExpiresAt,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    sess.CSRFToken,
		Path:     "/",
		HttpOnly: false,
		Secure:   cookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  sess.ExpiresAt,
	})
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user": map[string]interface{}{
			"id":       user.ID,
			"username": user.Username,
			"role":     user.Role,
		},
		"csrf_token": sess.CSRFToken,
		"session":    sess,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	actor := ""
	if v := r.Context().Value(auth.SessionContextKey); v != nil {
		actor = v.(*store.SessionRecord).Username
	}
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		_ = h.sessionManager.Delete(r.Context(), cookie.Value)
	}
	cookieSecure := isSecureRequest(r)
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	h.audits.Log(r.Context(), actor, "auth.logout", "")
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	sess, _ := r.Context().Value(auth.SessionContextKey).(*store.SessionRecord)
	if sess == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"username":  sess.Username,
		"roles":     sess.Roles,
		"expires":   sess.ExpiresAt,
		"last_seen": sess.LastSeenAt,
	})
}
