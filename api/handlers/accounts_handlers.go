package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"argus-sod/core/auth"
	"argus-sod/core/store"
	"argus-sod/core/utils"
)

type AccountsHandler struct {
	users   store.UsersStore
	authSvc *auth.Service
	audits  store.AuditStore
	logger  *utils.Logger
}

func NewAccountsHandler(users store.UsersStore, authSvc *auth.Service, audits store.AuditStore, logger *utils.Logger) *AccountsHandler {
	return &AccountsHandler{users: users, authSvc: authSvc, audits: audits, logger: logger}
}

func (h *AccountsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.users.List(r.Context())
	if err != nil {
		h.logger.Errorf("accounts list: %v", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *AccountsHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	actor := actorName(r)
	err := h.authSvc.Register(r.Context(), req.Username, req.Password, req.Role)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrDuplicateUsername):
		http.Error(w, "username already taken", http.StatusConflict)
		return
	case errors.Is(err, auth.ErrInvalidRole):
		http.Error(w, "invalid role", http.StatusBadRequest)
		return
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.audits.Log(r.Context(), actor, "accounts.register", "user="+req.Username)
	user, err := h.users.FindByUsername(r.Context(), req.Username)
	if err != nil || user == nil {
		writeJSON(w, http.StatusCreated, map[string]interface{}{"ok": true})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"user": user})
}

func (h *AccountsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(urlParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}
	sess, _ := r.Context().Value(auth.SessionContextKey).(*store.SessionRecord)
	if sess != nil && sess.UserID == id {
		http.Error(w, "cannot delete own account", http.StatusBadRequest)
		return
	}
	target, err := h.users.Get(r.Context(), id)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if target == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err := h.users.Delete(r.Context(), id); err != nil {
		h.logger.Errorf("accounts delete id=%d: %v", id, err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	h.audits.Log(r.Context(), actorName(r), "accounts.delete", "user="+target.Username)
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

func actorName(r *http.Request) string {
	if v := r.Context().Value(auth.SessionContextKey); v != nil {
		return v.(*store.SessionRecord).Username
	}
	return ""
}
