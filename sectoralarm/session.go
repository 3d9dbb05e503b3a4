package sectoralarm

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"github.com/google/uuid"
)

const (
	kLoginPath     = "/User/Login"
	kLoginPostPath = "/User/Login?ReturnUrl=%2f"
	kLogoffPath    = "/user/logoff"

	kFieldUserID            = "userID"
	kFieldPassword          = "password"
	kFieldVerificationToken = "__RequestVerificationToken"

	// StatusOK is the Result status of a completed login or logoff.
	StatusOK = "OK"
)

// SessionState is the observable state of a Session. The pre-auth phase of the handshake
// lives only inside a single Login call and is never stored.
type SessionState int

const (
	StateUnauthenticated SessionState = iota
	StateAuthenticated
)

func (s SessionState) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("SessionState(%d)", int(s))
	}
}

// Result is returned by Login and Logoff on success.
type Result struct {
	Status string `json:"status"`
}

// Session owns the portal session token for one account.
//
// Login and Logoff are the only operations that change the token. Concurrent use is
// memory-safe, but callers must serialize them: when two logins race, the last one to
// complete wins, and a request racing Logoff uses whatever token it read when its
// headers were built. Treat the token as a secret; Session never logs it.
type Session struct {
	exec RequestExecutor
	log  *slog.Logger

	mu    sync.RWMutex
	token string
}

type SessionOptions struct {
	Executor RequestExecutor
	Logger   *slog.Logger
}

func NewSession(opts SessionOptions) *Session {
	s := &Session{
		exec: opts.Executor,
		log:  opts.Logger,
	}
	if s.exec == nil {
		s.exec = NewHTTPExecutor(HTTPExecutorOptions{})
	}
	if s.log == nil {
		s.log = slog.New(slog.DiscardHandler)
	}
	return s
}

// Login performs the two-step handshake: a HEAD probe that issues the anti-forgery
// cookie, then the credential POST. Only a 302 from the POST counts as success. On any
// failure the session is left unauthenticated.
func (s *Session) Login(ctx context.Context, username, password string) (Result, error) {
	log := s.log.With(slog.String("op", "login"), slog.String("login_id", uuid.NewString()))

	token, err := s.handshake(ctx, log, username, password)
	if err != nil {
		s.setToken("")
		log.DebugContext(ctx, "login failed", slog.Any("error", err))
		return Result{}, err
	}

	s.setToken(token)
	log.DebugContext(ctx, "login succeeded")
	return Result{Status: StatusOK}, nil
}

func (s *Session) handshake(ctx context.Context, log *slog.Logger, username, password string) (string, error) {
	probe, err := s.exec.Do(ctx, Request{
		Method: http.MethodHead,
		Path:   kLoginPath,
		Header: probeHeaders(),
	})
	if err != nil {
		return "", fmt.Errorf("login probe: %w", err)
	}
	log.DebugContext(ctx, "login probe done", slog.Int("status", probe.StatusCode))

	cookies := nonEmpty(probe.Header.Values(kHeaderSetCookie))
	if len(cookies) == 0 {
		return "", &AuthError{Op: "login probe", Kind: ErrNoCookieIssued, StatusCode: probe.StatusCode}
	}

	verification, err := ExtractVerificationToken(cookies[0])
	if err != nil {
		return "", &AuthError{Op: "login probe", Kind: ErrTokenParseFailed, Err: err}
	}

	body := loginBody(username, password, verification)
	resp, err := s.exec.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   kLoginPostPath,
		Header: FormHeaders(joinCookies(cookies), body),
		Body:   body,
	})
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	log.DebugContext(ctx, "credentials submitted", slog.Int("status", resp.StatusCode))

	if resp.StatusCode != http.StatusFound {
		return "", &AuthError{
			Op:         "login",
			Kind:       ErrLoginRejected,
			StatusCode: resp.StatusCode,
			Detail:     loginFailureReason(resp.Header.Get(kHeaderContentType), resp.Body),
		}
	}

	token := joinCookies(resp.Header.Values(kHeaderSetCookie))
	if token == "" {
		return "", &AuthError{Op: "login", Kind: ErrNoCookieIssued, StatusCode: resp.StatusCode}
	}
	return token, nil
}

// Logoff discards the local token before contacting the portal, so the token is never
// presented again even if the server call fails. A 302 confirms the server side.
func (s *Session) Logoff(ctx context.Context) (Result, error) {
	log := s.log.With(slog.String("op", "logoff"), slog.String("logoff_id", uuid.NewString()))

	token := s.swapToken("")

	resp, err := s.exec.Do(ctx, Request{
		Method: http.MethodGet,
		Path:   kLogoffPath,
		Header: FormHeaders(token, nil),
	})
	if err != nil {
		log.DebugContext(ctx, "logoff failed", slog.Any("error", err))
		return Result{}, fmt.Errorf("logoff: %w", err)
	}
	if resp.StatusCode != http.StatusFound {
		log.DebugContext(ctx, "logoff rejected", slog.Int("status", resp.StatusCode))
		return Result{}, &AuthError{Op: "logoff", Kind: ErrLogoffRejected, StatusCode: resp.StatusCode}
	}

	log.DebugContext(ctx, "logoff succeeded")
	return Result{Status: StatusOK}, nil
}

// CurrentToken returns the session cookie value, or "" when unauthenticated.
func (s *Session) CurrentToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) State() SessionState {
	if s.CurrentToken() == "" {
		return StateUnauthenticated
	}
	return StateAuthenticated
}

func (s *Session) Authenticated() bool { return s.State() == StateAuthenticated }

func (s *Session) setToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

func (s *Session) swapToken(token string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.token
	s.token = token
	return old
}

// loginBody keeps the field order the login form uses; url.Values.Encode would sort it.
func loginBody(username, password, verification string) []byte {
	return []byte(kFieldUserID + "=" + url.QueryEscape(username) +
		"&" + kFieldPassword + "=" + url.QueryEscape(password) +
		"&" + kFieldVerificationToken + "=" + url.QueryEscape(verification))
}

func probeHeaders() http.Header {
	h := make(http.Header, 2)
	h.Set(kHeaderUserAgent, DefaultUserAgent)
	h.Set(kHeaderAccept, kAcceptForm)
	return h
}

func nonEmpty(values []string) []string {
	out := values[:0:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
