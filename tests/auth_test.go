package tests

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"argus-sod/api/handlers"
	"argus-sod/core/auth"
	"argus-sod/core/store"
)

func TestRegisterVerifyRoundTrip(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	if err := e.authSvc.Register(ctx, "alice", "password123", "analyst"); err != nil {
		t.Fatalf("register: %v", err)
	}
	role, err := e.authSvc.Verify(ctx, "alice", "password123")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if role != "analyst" {
		t.Fatalf("role: got %q", role)
	}
	// Stored credential must be the legacy digest, never the plaintext.
	user, err := e.users.FindByUsername(ctx, "alice")
	if err != nil || user == nil {
		t.Fatalf("find: %v", err)
	}
	if user.PasswordHash != auth.PasswordDigest("password123") {
		t.Fatalf("stored credential is not the sha256 hex digest")
	}
	if strings.Contains(user.PasswordHash, "password123") {
		t.Fatalf("plaintext leaked into stored credential")
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	if err := e.authSvc.Register(ctx, "bob", "password123", "admin"); err != nil {
		t.Fatalf("register: %v", err)
	}
	err := e.authSvc.Register(ctx, "bob", "different456", "analyst")
	if !errors.Is(err, store.ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
	n, err := e.users.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected exactly 1 user after duplicate attempt, got %d", n)
	}
	// The original credential still verifies.
	if _, err := e.authSvc.Verify(ctx, "bob", "password123"); err != nil {
		t.Fatalf("original credential broken: %v", err)
	}
}

func TestVerifyFailures(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	if err := e.authSvc.Register(ctx, "carol", "password123", ""); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := e.authSvc.Verify(ctx, "carol", "wrongpass99"); !errors.Is(err, auth.ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
	if _, err := e.authSvc.Verify(ctx, "nobody", "password123"); !errors.Is(err, auth.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestRegisterDefaultsAndRejects(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	if err := e.authSvc.Register(ctx, "dave", "password123", ""); err != nil {
		t.Fatalf("register: %v", err)
	}
	u, _ := e.users.FindByUsername(ctx, "dave")
	if u.Role != store.RoleAnalyst {
		t.Fatalf("blank role should default to analyst, got %q", u.Role)
	}
	if err := e.authSvc.Register(ctx, "erin", "password123", "superuser"); !errors.Is(err, auth.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
	if err := e.authSvc.Register(ctx, "frank", "short", ""); err == nil {
		t.Fatalf("expected short password to be rejected")
	}
}

// Login must answer identically for an unknown user and a wrong password so
// the endpoint cannot be used to probe which accounts exist.
func TestLoginDoesNotEnumerateUsers(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	if err := e.authSvc.Register(ctx, "alice", "password123", "analyst"); err != nil {
		t.Fatalf("register: %v", err)
	}
	h := handlers.NewAuthHandler(e.cfg, e.users, e.sessions, e.authSvc, e.sm, e.audits, e.logger)

	do := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
		rr := httptest.NewRecorder()
		h.Login(rr, req)
		return rr
	}
	unknown := do(`{"username":"ghost","password":"password123"}`)
	wrongPw := do(`{"username":"alice","password":"wrongpass99"}`)
	if unknown.Code != http.StatusUnauthorized || wrongPw.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401/401, got %d/%d", unknown.Code, wrongPw.Code)
	}
	if unknown.Body.String() != wrongPw.Body.String() {
		t.Fatalf("responses differ: %q vs %q", unknown.Body.String(), wrongPw.Body.String())
	}
}

func TestLoginCreatesSessionWithCSRF(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	if err := e.authSvc.Register(ctx, "alice", "password123", "admin"); err != nil {
		t.Fatalf("register: %v", err)
	}
	h := handlers.NewAuthHandler(e.cfg, e.users, e.sessions, e.authSvc, e.sm, e.audits, e.logger)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"username":"alice","password":"password123"}`))
	rr := httptest.NewRecorder()
	h.Login(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("login: %d %s", rr.Code, rr.Body.String())
	}
	var sessID string
	for _, c := range rr.Result().Cookies() {
		if c.Name == handlers.SessionCookieName {
			sessID = c.Value
		}
	}
	if sessID == "" {
		t.Fatalf("session cookie not set")
	}
	rec, err := e.sessions.GetSession(ctx, sessID)
	if err != nil || rec == nil {
		t.Fatalf("session not persisted: %v", err)
	}
	if rec.Username != "alice" || len(rec.Roles) != 1 || rec.Roles[0] != "admin" {
		t.Fatalf("unexpected session record: %+v", rec)
	}
	if rec.CSRFToken != auth.GenerateCSRF(e.cfg.CSRFKey, sessID) {
		t.Fatalf("csrf token not derived from configured key")
	}
}

func TestExpiredSessionRejected(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	if err := e.authSvc.Register(ctx, "alice", "password123", "analyst"); err != nil {
		t.Fatalf("register: %v", err)
	}
	user, _ := e.users.FindByUsername(ctx, "alice")
	sess, err := e.sm.Create(ctx, user, []string{"analyst"}, "127.0.0.1", "test-agent")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	// Force expiry in the past.
	if _, err := e.db.ExecContext(ctx, `UPDATE sessions SET expires_at=? WHERE id=?`, timePast(), sess.ID); err != nil {
		t.Fatalf("expire: %v", err)
	}
	rec, err := e.sessions.GetSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec != nil {
		t.Fatalf("expired session should resolve to nil")
	}
}

func TestDeleteExpiredSweepsOnlyStaleSessions(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	if err := e.authSvc.Register(ctx, "alice", "password123", "analyst"); err != nil {
		t.Fatalf("register: %v", err)
	}
	user, _ := e.users.FindByUsername(ctx, "alice")
	stale, err := e.sm.Create(ctx, user, []string{"analyst"}, "127.0.0.1", "test-agent")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	live, err := e.sm.Create(ctx, user, []string{"analyst"}, "127.0.0.1", "test-agent")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := e.db.ExecContext(ctx, `UPDATE sessions SET expires_at=? WHERE id=?`, timePast(), stale.ID); err != nil {
		t.Fatalf("expire: %v", err)
	}
	n, err := e.sessions.DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 swept session, got %d", n)
	}
	rec, err := e.sessions.GetSession(ctx, live.ID)
	if err != nil || rec == nil {
		t.Fatalf("live session must survive the sweep: %v", err)
	}
}

func TestRefreshExtendsExpiry(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	if err := e.authSvc.Register(ctx, "alice", "password123", "analyst"); err != nil {
		t.Fatalf("register: %v", err)
	}
	user, _ := e.users.FindByUsername(ctx, "alice")
	sess, err := e.sm.Create(ctx, user, []string{"analyst"}, "127.0.0.1", "test-agent")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// Shrink the window, then confirm Refresh pushes it back out.
	nearExpiry := time.Now().UTC().Add(time.Minute)
	if _, err := e.db.ExecContext(ctx, `UPDATE sessions SET expires_at=? WHERE id=?`, nearExpiry, sess.ID); err != nil {
		t.Fatalf("shrink: %v", err)
	}
	if err := e.sm.Refresh(ctx, sess.ID); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	rec, err := e.sessions.GetSession(ctx, sess.ID)
	if err != nil || rec == nil {
		t.Fatalf("get: %v", err)
	}
	if !rec.ExpiresAt.After(nearExpiry.Add(30 * time.Minute)) {
		t.Fatalf("refresh did not extend expiry: %v", rec.ExpiresAt)
	}
}
