// Package portaltest runs an in-process imitation of the alarm portal for tests.
package portaltest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

const (
	DefaultUsername      = "user@example.com"
	DefaultPassword      = "secret-password"
	DefaultPanelCode     = "1234"
	DefaultPanelID       = "123"
	DefaultPreAuthCookie = "__RequestVerificationToken_L0=preauth-token; path=/; HttpOnly"
	DefaultSessionCookie = ".ASPXAUTH=session-token; path=/; HttpOnly"

	kLoginErrorPage = `<!DOCTYPE html><html><body>
<form action="/User/Login" method="post">
<div class="validation-summary-errors"><ul><li>Invalid username or password.</li></ul></div>
</form></body></html>`
)

// Options configures the fake portal. Zero values take the Default* constants.
type Options struct {
	Username  string
	Password  string
	PanelCode string
	PanelID   string

	// PreAuthCookie is the Set-Cookie value of the probe response. Empty uses the
	// default; set NoPreAuthCookie to omit it entirely.
	PreAuthCookie   string
	NoPreAuthCookie bool

	// SessionCookie is the Set-Cookie value of a successful login.
	SessionCookie string

	// LogoffStatus overrides the logoff response status (default 302).
	LogoffStatus int

	// PanelList overrides the GetPanelList body.
	PanelList string
}

// Recorded is one request the portal received.
type Recorded struct {
	Method   string
	Path     string
	RawQuery string
	Header   http.Header
	Body     string
}

// Portal is a running fake portal.
type Portal struct {
	*httptest.Server

	opts Options

	mu          sync.Mutex
	requests    []Recorded
	armedStatus string
}

// New starts a portal and registers its shutdown with t.Cleanup.
func New(t testing.TB, opts Options) *Portal {
	t.Helper()

	p := &Portal{opts: withDefaults(opts), armedStatus: "disarmed"}
	p.Server = httptest.NewServer(p.router())
	t.Cleanup(p.Server.Close)
	return p
}

// Requests returns a copy of everything received so far, in arrival order.
func (p *Portal) Requests() []Recorded {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Recorded(nil), p.requests...)
}

// Last returns the most recent request for method and path.
func (p *Portal) Last(method, path string) (Recorded, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := len(p.requests) - 1; i >= 0; i-- {
		r := p.requests[i]
		if r.Method == method && r.Path == path {
			return r, true
		}
	}
	return Recorded{}, false
}

// ArmedStatus is the state the last successful ArmPanel call left the panel in.
func (p *Portal) ArmedStatus() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.armedStatus
}

func (p *Portal) Options() Options { return p.opts }

func withDefaults(o Options) Options {
	if o.Username == "" {
		o.Username = DefaultUsername
	}
	if o.Password == "" {
		o.Password = DefaultPassword
	}
	if o.PanelCode == "" {
		o.PanelCode = DefaultPanelCode
	}
	if o.PanelID == "" {
		o.PanelID = DefaultPanelID
	}
	if o.PreAuthCookie == "" {
		o.PreAuthCookie = DefaultPreAuthCookie
	}
	if o.SessionCookie == "" {
		o.SessionCookie = DefaultSessionCookie
	}
	if o.LogoffStatus == 0 {
		o.LogoffStatus = http.StatusFound
	}
	if o.PanelList == "" {
		o.PanelList = fmt.Sprintf(`[{"PanelId":%q,"DisplayName":"Home","ArmedStatus":"disarmed"}]`, o.PanelID)
	}
	return o
}

func (p *Portal) router() http.Handler {
	r := chi.NewRouter()
	r.Use(p.record)

	r.Head("/User/Login", p.handleProbe)
	r.Post("/User/Login", p.handleLogin)
	r.Get("/user/logoff", p.handleLogoff)

	r.Group(func(r chi.Router) {
		r.Use(p.requireSession)
		r.Get("/Panel/GetPanelList", p.handlePanelList)
		r.Post("/Panel/GetOverview", p.handleOverview)
		r.Get("/Panel/GetPanelHistory/{panelID}", p.handleHistory)
		r.Post("/Panel/ArmPanel", p.handleArm)
	})
	return r
}

// record buffers the body so handlers can still read it.
func (p *Portal) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		r.Body = io.NopCloser(strings.NewReader(string(b)))

		p.mu.Lock()
		p.requests = append(p.requests, Recorded{
			Method:   r.Method,
			Path:     r.URL.Path,
			RawQuery: r.URL.RawQuery,
			Header:   r.Header.Clone(),
			Body:     string(b),
		})
		p.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (p *Portal) handleProbe(w http.ResponseWriter, r *http.Request) {
	if !p.opts.NoPreAuthCookie {
		w.Header().Set("Set-Cookie", p.opts.PreAuthCookie)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
}

func (p *Portal) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("ReturnUrl") != "/" {
		http.Error(w, "missing ReturnUrl", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	preName, preValue := cookiePair(p.opts.PreAuthCookie)
	c, err := r.Cookie(preName)
	tokenOK := err == nil && c.Value == preValue && r.PostForm.Get("__RequestVerificationToken") == preValue
	credsOK := r.PostForm.Get("userID") == p.opts.Username && r.PostForm.Get("password") == p.opts.Password

	if !tokenOK || !credsOK {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, kLoginErrorPage)
		return
	}

	w.Header().Set("Set-Cookie", p.opts.SessionCookie)
	w.Header().Set("Location", "/")
	w.WriteHeader(http.StatusFound)
}

func (p *Portal) handleLogoff(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Location", "/User/Login")
	w.WriteHeader(p.opts.LogoffStatus)
}

func (p *Portal) requireSession(next http.Handler) http.Handler {
	name, value := cookiePair(p.opts.SessionCookie)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(name)
		if err != nil || c.Value != value {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
			http.Error(w, "unsupported content type", http.StatusUnsupportedMediaType)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (p *Portal) handlePanelList(w http.ResponseWriter, r *http.Request) {
	writeJSONText(w, p.opts.PanelList)
}

func (p *Portal) handleOverview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PanelID string `json:"panelId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PanelID != p.opts.PanelID {
		http.Error(w, "unknown panel", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{
		"Panel": map[string]any{
			"PanelId":          p.opts.PanelID,
			"PanelDisplayName": "Home",
			"ArmedStatus":      p.ArmedStatus(),
		},
		"Temperatures": []any{},
	})
}

func (p *Portal) handleHistory(w http.ResponseWriter, r *http.Request) {
	if chi.URLParam(r, "panelID") != p.opts.PanelID {
		http.Error(w, "unknown panel", http.StatusNotFound)
		return
	}
	writeJSON(w, []map[string]any{
		{"Time": "2026-10-14T07:30:00", "EventType": "disarmed", "User": "Owner", "Channel": "App"},
		{"Time": "2026-10-13T22:10:00", "EventType": "partialarmed", "User": "Owner", "Channel": "Keypad"},
	})
}

func (p *Portal) handleArm(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ArmCmd    string `json:"ArmCmd"`
		ID        string `json:"id"`
		HasLocks  bool   `json:"HasLocks"`
		PanelCode string `json:"PanelCode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.ID != p.opts.PanelID {
		http.Error(w, "unknown panel", http.StatusNotFound)
		return
	}

	status := map[string]string{
		"Partial": "partialarmed",
		"Total":   "armed",
		"Disarm":  "disarmed",
	}[req.ArmCmd]
	if status == "" {
		http.Error(w, "unknown command", http.StatusBadRequest)
		return
	}
	if req.PanelCode != p.opts.PanelCode {
		writeJSON(w, map[string]any{
			"status":    "wrong_code",
			"panelData": map[string]any{"PanelId": p.opts.PanelID, "ArmedStatus": p.ArmedStatus()},
		})
		return
	}

	p.mu.Lock()
	p.armedStatus = status
	p.mu.Unlock()

	writeJSON(w, map[string]any{
		"status":    "success",
		"panelData": map[string]any{"PanelId": p.opts.PanelID, "ArmedStatus": status},
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONText(w http.ResponseWriter, s string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = io.WriteString(w, s)
}

func cookiePair(setCookie string) (name, value string) {
	first, _, _ := strings.Cut(setCookie, ";")
	name, value, _ = strings.Cut(first, "=")
	return strings.TrimSpace(name), strings.TrimSpace(value)
}
