package handlers

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

const (
	SessionCookieName = "argus_session"
	CSRFCookieName    = "argus_csrf"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func urlParam(r *http.Request, key string) string {
	if v := chi.URLParam(r, key); v != "" {
		return v
	}
	// Fallback for direct handler tests without chi route context.
	segments := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	for i := 0; i < len(segments)-1; i++ {
		if segments[i] == "accounts" || segments[i] == "incidents" {
			return segments[i+1]
		}
	}
	return ""
}

func clientIP(r *http.Request) string {
	ip, _, _ := net.SplitHostPort(r.RemoteAddr)
	if ip == "" {
		ip = r.RemoteAddr
	}
	return strings.TrimSpace(ip)
}

func isSecureRequest(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
