package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"argus-sod/api"
	"argus-sod/api/handlers"
	"argus-sod/core/rbac"
)

func newTestServer(t *testing.T, e *env) *httptest.Server {
	t.Helper()
	srv := api.NewServer(e.cfg, api.ServerDeps{
		Users:          e.users,
		Sessions:       e.sessions,
		Audits:         e.audits,
		IncidentsStore: e.incidents,
		TicketsStore:   e.tickets,
		DatasetsStore:  e.datasets,
		Loader:         e.loader,
		AuthService:    e.authSvc,
		SessionManager: e.sm,
		Policy:         rbac.MustNewPolicy(),
	}, e.logger)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

type loginResult struct {
	sessionCookie *http.Cookie
	csrfToken     string
}

func login(t *testing.T, ts *httptest.Server, username, password string) loginResult {
	t.Helper()
	body := `{"username":"` + username + `","password":"` + password + `"}`
	resp, err := http.Post(ts.URL+"/api/auth/login", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: %d", resp.StatusCode)
	}
	var res loginResult
	for _, c := range resp.Cookies() {
		if c.Name == handlers.SessionCookieName {
			res.sessionCookie = c
		}
	}
	var payload struct {
		CSRFToken string `json:"csrf_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("login payload: %v", err)
	}
	res.csrfToken = payload.CSRFToken
	if res.sessionCookie == nil || res.csrfToken == "" {
		t.Fatalf("login did not yield session and csrf token")
	}
	return res
}

func doRequest(t *testing.T, ts *httptest.Server, method, path string, body string, lr *loginResult) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, ts.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if lr != nil {
		req.AddCookie(lr.sessionCookie)
		if method != http.MethodGet {
			req.Header.Set("X-CSRF-Token", lr.csrfToken)
		}
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	return resp
}

func TestRoutesRequireSession(t *testing.T) {
	e := setupEnv(t)
	ts := newTestServer(t, e)
	paths := []struct {
		method, path string
	}{
		{http.MethodGet, "/api/incidents"},
		{http.MethodGet, "/api/tickets"},
		{http.MethodGet, "/api/datasets"},
		{http.MethodGet, "/api/summary"},
		{http.MethodGet, "/api/accounts"},
		{http.MethodPost, "/api/imports/run"},
		{http.MethodGet, "/api/auth/me"},
	}
	for _, p := range paths {
		resp := doRequest(t, ts, p.method, p.path, "", nil)
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("%s %s without session: got %d, want 401", p.method, p.path, resp.StatusCode)
		}
	}
}

func TestAnalystRoleGates(t *testing.T) {
	e := setupEnv(t)
	if err := e.authSvc.Register(context.Background(), "ana", "password123", "analyst"); err != nil {
		t.Fatalf("register: %v", err)
	}
	ts := newTestServer(t, e)
	lr := login(t, ts, "ana", "password123")

	// Views the base role holds.
	for _, path := range []string{"/api/incidents", "/api/tickets", "/api/datasets"} {
		resp := doRequest(t, ts, http.MethodGet, path, "", &lr)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s as analyst: got %d, want 200", path, resp.StatusCode)
		}
	}
	// Admin-only surfaces.
	for _, p := range []struct{ method, path string }{
		{http.MethodGet, "/api/accounts"},
		{http.MethodGet, "/api/summary"},
		{http.MethodPost, "/api/imports/run"},
	} {
		resp := doRequest(t, ts, p.method, p.path, "", &lr)
		resp.Body.Close()
		if resp.StatusCode != http.StatusForbidden {
			t.Errorf("%s %s as analyst: got %d, want 403", p.method, p.path, resp.StatusCode)
		}
	}
	// An analyst may create incidents but not delete them.
	resp := doRequest(t, ts, http.MethodPost, "/api/incidents", `{"date_reported":"2024-11-05","incident_type":"Phishing","severity":"High","status":"Open","description":"x"}`, &lr)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("POST /api/incidents as analyst: got %d, want 201", resp.StatusCode)
	}
	resp = doRequest(t, ts, http.MethodDelete, "/api/incidents/1", "", &lr)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("DELETE /api/incidents/1 as analyst: got %d, want 403", resp.StatusCode)
	}
}

func TestCSRFRequiredOnMutations(t *testing.T) {
	e := setupEnv(t)
	if err := e.authSvc.Register(context.Background(), "root", "password123", "admin"); err != nil {
		t.Fatalf("register: %v", err)
	}
	ts := newTestServer(t, e)
	lr := login(t, ts, "root", "password123")

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/imports/run", strings.NewReader(""))
	req.AddCookie(lr.sessionCookie)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("mutation without csrf header: got %d, want 403", resp.StatusCode)
	}
}

func TestAdminAccountLifecycle(t *testing.T) {
	e := setupEnv(t)
	if err := e.authSvc.Register(context.Background(), "root", "password123", "admin"); err != nil {
		t.Fatalf("register: %v", err)
	}
	ts := newTestServer(t, e)
	lr := login(t, ts, "root", "password123")

	resp := doRequest(t, ts, http.MethodPost, "/api/accounts", `{"username":"newbie","password":"password123","role":"analyst"}`, &lr)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create account: got %d", resp.StatusCode)
	}
	var created struct {
		User struct {
			ID int64 `json:"id"`
		} `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	resp.Body.Close()

	// Duplicate registration conflicts without disturbing the first row.
	resp = doRequest(t, ts, http.MethodPost, "/api/accounts", `{"username":"newbie","password":"other45678","role":"analyst"}`, &lr)
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate account: got %d, want 409", resp.StatusCode)
	}

	resp = doRequest(t, ts, http.MethodDelete, "/api/accounts/"+strconv.FormatInt(created.User.ID, 10), "", &lr)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete account: got %d", resp.StatusCode)
	}
	n, _ := e.users.Count(context.Background())
	if n != 1 {
		t.Fatalf("expected only admin left, got %d users", n)
	}
}

// A manual import produces exactly one audit entry, attributed to the acting
// user, and the audit endpoint is admin-only.
func TestAuditTrailForImports(t *testing.T) {
	e := setupEnv(t)
	if err := e.authSvc.Register(context.Background(), "root", "password123", "admin"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := e.authSvc.Register(context.Background(), "ana", "password123", "analyst"); err != nil {
		t.Fatalf("register: %v", err)
	}
	ts := newTestServer(t, e)
	lr := login(t, ts, "root", "password123")

	resp := doRequest(t, ts, http.MethodPost, "/api/imports/run", "", &lr)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("imports run: got %d", resp.StatusCode)
	}

	resp = doRequest(t, ts, http.MethodGet, "/api/audit", "", &lr)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("audit as admin: got %d", resp.StatusCode)
	}
	var payload struct {
		Items []struct {
			Username string `json:"username"`
			Action   string `json:"action"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode audit: %v", err)
	}
	resp.Body.Close()
	runs := 0
	for _, it := range payload.Items {
		if it.Action == "imports.run" {
			runs++
			if it.Username != "root" {
				t.Fatalf("imports.run attributed to %q, want root", it.Username)
			}
		}
	}
	if runs != 1 {
		t.Fatalf("expected exactly one imports.run audit entry, got %d", runs)
	}

	anaLr := login(t, ts, "ana", "password123")
	resp = doRequest(t, ts, http.MethodGet, "/api/audit", "", &anaLr)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("audit as analyst: got %d, want 403", resp.StatusCode)
	}
}
