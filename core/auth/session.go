package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"time"

	"argus-sod/config"
	"argus-sod/core/store"
	"argus-sod/core/utils"

	"github.com/gofrs/uuid/v5"
)

type contextKey string

// SessionContextKey carries the verified *store.SessionRecord through the
// request context; gated operations read the caller's role from it rather
// than from any ambient global state.
const SessionContextKey contextKey = "argus-session"

type Session struct {
	ID         string    `json:"id"`
	UserID     int64     `json:"user_id"`
	Username   string    `json:"username"`
	Roles      []string  `json:"roles"`
	IP         string    `json:"ip"`
	UserAgent  string    `json:"user_agent"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	CSRFToken  string    `json:"csrf_token"`
}

type SessionManager struct {
	store  store.SessionStore
	cfg    *config.AppConfig
	logger *utils.Logger
}

func NewSessionManager(store store.SessionStore, cfg *config.AppConfig, logger *utils.Logger) *SessionManager {
	return &SessionManager{store: store, cfg: cfg, logger: logger}
}

func (m *SessionManager) Create(ctx context.Context, user *store.User, roles []string, ip, userAgent string) (*Session, error) {
	id := uuid.Must(uuid.NewV4()).String()
	var csrf string
	var err error
	if m.cfg != nil && m.cfg.CSRFKey != "" {
		csrf = GenerateCSRF(m.cfg.CSRFKey, id)
	} else {
		csrf, err = utils.RandString(32)
		if err != nil {
			return nil, err
		}
	}
	now := utils.NowUTC()
	ttl := m.cfg.EffectiveSessionTTL()
	sess := &Session{
		ID:         id,
		UserID:     user.ID,
		Username:   user.Username,
		Roles:      roles,
		IP:         ip,
		UserAgent:  userAgent,
		CreatedAt:  now,
		LastSeenAt: now,
		ExpiresAt:  now.Add(ttl),
		CSRFToken:  csrf,
	}
	if err := m.store.SaveSession(ctx, &store.SessionRecord{
		ID:         sess.ID,
		UserID:     sess.UserID,
		Username:   sess.Username,
		Roles:      sess.Roles,
		CSRFToken:  sess.CSRFToken,
		IP:         sess.IP,
		UserAgent:  sess.UserAgent,
		CreatedAt:  sess.CreatedAt,
		LastSeenAt: sess.LastSeenAt,
		ExpiresAt:  sess.ExpiresAt,
	}); err != nil {
		return nil, err
	}
	return sess, nil
}

func (m *SessionManager) Refresh(ctx context.Context, sessID string) error {
	return m.store.UpdateActivity(ctx, sessID, utils.NowUTC(), m.cfg.EffectiveSessionTTL())
}

func (m *SessionManager) Delete(ctx context.Context, sessID string) error {
	return m.store.DeleteSession(ctx, sessID)
}

// GenerateCSRF derives a stable per-session token from the configured key.
func GenerateCSRF(key, sessionID string) string {
	mac := hmac.New(sha256.New, []byte(key))
	_, _ = mac.Write([]byte(sessionID))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
