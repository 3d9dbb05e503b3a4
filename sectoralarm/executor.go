package sectoralarm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the portal host.
	DefaultBaseURL = "https://minside.sectoralarm.no"

	kDefaultMaxBodyBytes = 4 << 20
	kMaxErrorSnippet     = 512
)

// Request is one call to the portal. Path is relative to the executor's base URL and may
// carry a query string.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// Response is a fully buffered portal response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       string
}

// RequestExecutor performs a single request and returns the buffered response.
// Transport failures are reported as *NetworkError.
type RequestExecutor interface {
	Do(ctx context.Context, req Request) (Response, error)
}

// HTTPExecutor is a RequestExecutor backed by net/http. It never follows redirects and
// never stores cookies; both are part of the session protocol.
type HTTPExecutor struct {
	BaseURL string

	// Timeout bounds each call, including reading the body. Zero means no bound other
	// than the caller's context.
	Timeout time.Duration

	// MaxBodyBytes caps the buffered response body. Zero means 4 MiB.
	MaxBodyBytes int64

	Http *http.Client
}

type HTTPExecutorOptions struct {
	BaseURL      string
	Timeout      time.Duration
	MaxBodyBytes int64
	Http         *http.Client
}

func NewHTTPExecutor(opts HTTPExecutorOptions) *HTTPExecutor {
	e := &HTTPExecutor{
		BaseURL:      normalizedBaseURL(opts.BaseURL),
		Timeout:      opts.Timeout,
		MaxBodyBytes: opts.MaxBodyBytes,
	}
	if e.MaxBodyBytes <= 0 {
		e.MaxBodyBytes = kDefaultMaxBodyBytes
	}

	// Copy the caller's client so the redirect and jar policy stays local to the executor.
	var hc http.Client
	if opts.Http != nil {
		hc = *opts.Http
	}
	hc.Jar = nil
	hc.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}
	e.Http = &hc
	return e
}

func (e *HTTPExecutor) Do(ctx context.Context, req Request) (Response, error) {
	op := req.Method + " " + pathOnly(req.Path)
	if err := ctx.Err(); err != nil {
		return Response{}, &NetworkError{Op: op, Err: err}
	}

	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, e.BaseURL+req.Path, body)
	if err != nil {
		return Response{}, fmt.Errorf("create %s request: %w", op, err)
	}
	for k, vs := range req.Header {
		// net/http derives the wire Content-Length from ContentLength.
		if http.CanonicalHeaderKey(k) == kHeaderContentLength {
			continue
		}
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.ContentLength = int64(len(req.Body))

	resp, err := e.Http.Do(httpReq)
	if err != nil {
		return Response{}, &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, e.MaxBodyBytes))
	if err != nil {
		return Response{}, &NetworkError{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}

	return Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       string(b),
	}, nil
}

func normalizedBaseURL(baseURL string) string {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return DefaultBaseURL
	}
	return base
}

func pathOnly(p string) string {
	if i := strings.IndexByte(p, '?'); i >= 0 {
		return p[:i]
	}
	return p
}
