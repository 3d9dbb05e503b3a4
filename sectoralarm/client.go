// Package sectoralarm is a client for the Sector Alarm customer portal: session login
// via the portal's anti-forgery cookie handshake, and the panel list, overview, history
// and arm endpoints built on top of it.
package sectoralarm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	kPanelListPath          = "/Panel/GetPanelList"
	kOverviewPath           = "/Panel/GetOverview"
	kPanelHistoryPathFormat = "/Panel/GetPanelHistory/%s"
	kArmPanelPath           = "/Panel/ArmPanel"
)

// Portal is the public client contract.
type Portal interface {
	Login(ctx context.Context, username, password string) (Result, error)
	Logoff(ctx context.Context) (Result, error)
	System(ctx context.Context) ([]Panel, error)
	Status(ctx context.Context, panelID string) (Overview, error)
	History(ctx context.Context, panelID string) ([]HistoryEvent, error)
	Arm(ctx context.Context, mode ArmMode, panelID, code string) (ArmResult, error)
}

// Client talks to the panel endpoints on behalf of one Session.
type Client struct {
	session *Session
	exec    RequestExecutor
	log     *slog.Logger
}

type ClientOptions struct {
	BaseURL string
	Timeout time.Duration
	Http    *http.Client
	Logger  *slog.Logger

	// Executor overrides the net/http executor built from BaseURL, Timeout and Http.
	Executor RequestExecutor
}

func NewClient(opts ClientOptions) *Client {
	exec := opts.Executor
	if exec == nil {
		exec = NewHTTPExecutor(HTTPExecutorOptions{
			BaseURL: opts.BaseURL,
			Timeout: opts.Timeout,
			Http:    opts.Http,
		})
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Client{
		session: NewSession(SessionOptions{Executor: exec, Logger: log}),
		exec:    exec,
		log:     log,
	}
}

// Session returns the session the client authenticates with.
func (c *Client) Session() *Session { return c.session }

func (c *Client) Login(ctx context.Context, username, password string) (Result, error) {
	return c.session.Login(ctx, username, password)
}

func (c *Client) Logoff(ctx context.Context) (Result, error) {
	return c.session.Logoff(ctx)
}

// System lists the panels on the account.
func (c *Client) System(ctx context.Context) ([]Panel, error) {
	var panels []Panel
	if err := c.doJSON(ctx, "panel list", http.MethodGet, kPanelListPath, nil, &panels); err != nil {
		return nil, err
	}
	return panels, nil
}

// Status fetches the overview of one panel.
func (c *Client) Status(ctx context.Context, panelID string) (Overview, error) {
	if strings.TrimSpace(panelID) == "" {
		return Overview{}, fmt.Errorf("panelID is required")
	}
	var o Overview
	if err := c.doJSON(ctx, "panel overview", http.MethodPost, kOverviewPath, overviewRequest{PanelID: panelID}, &o); err != nil {
		return Overview{}, err
	}
	return o, nil
}

// History fetches the event log of one panel.
func (c *Client) History(ctx context.Context, panelID string) ([]HistoryEvent, error) {
	if strings.TrimSpace(panelID) == "" {
		return nil, fmt.Errorf("panelID is required")
	}
	var events []HistoryEvent
	path := fmt.Sprintf(kPanelHistoryPathFormat, url.PathEscape(panelID))
	if err := c.doJSON(ctx, "panel history", http.MethodGet, path, nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *Client) ArmPartial(ctx context.Context, panelID, code string) (ArmResult, error) {
	return c.Arm(ctx, ArmPartial, panelID, code)
}

func (c *Client) ArmTotal(ctx context.Context, panelID, code string) (ArmResult, error) {
	return c.Arm(ctx, ArmTotal, panelID, code)
}

func (c *Client) Disarm(ctx context.Context, panelID, code string) (ArmResult, error) {
	return c.Arm(ctx, ArmDisarm, panelID, code)
}

// Arm sends an ArmCmd for a panel. code is the panel PIN; it is never logged.
func (c *Client) Arm(ctx context.Context, mode ArmMode, panelID, code string) (ArmResult, error) {
	if strings.TrimSpace(panelID) == "" {
		return ArmResult{}, fmt.Errorf("panelID is required")
	}
	switch mode {
	case ArmPartial, ArmTotal, ArmDisarm:
	default:
		return ArmResult{}, fmt.Errorf("unsupported arm mode: %q", mode)
	}

	req := armRequest{ArmCmd: mode, ID: panelID, HasLocks: false, PanelCode: code}
	var r ArmResult
	op := "arm panel (" + strings.ToLower(string(mode)) + ")"
	if err := c.doJSON(ctx, op, http.MethodPost, kArmPanelPath, req, &r); err != nil {
		return ArmResult{}, err
	}
	return r, nil
}

// doJSON is the shared path for every panel endpoint: JSON headers carrying the current
// token, a 200 status, and a JSON body decoded into out.
func (c *Client) doJSON(ctx context.Context, op, method, path string, in any, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	token := c.session.CurrentToken()
	if token == "" {
		return fmt.Errorf("%s: %w", op, ErrNotAuthenticated)
	}

	var body []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", op, err)
		}
		body = b
	}

	log := c.log.With(slog.String("op", op), slog.String("request_id", uuid.NewString()))
	resp, err := c.exec.Do(ctx, Request{
		Method: method,
		Path:   path,
		Header: JSONHeaders(token, body),
		Body:   body,
	})
	if err != nil {
		log.DebugContext(ctx, "request failed", slog.Any("error", err))
		return err
	}
	log.DebugContext(ctx, "request done", slog.String("path", path), slog.Int("status", resp.StatusCode))

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Op: op, Expected: http.StatusOK, Actual: resp.StatusCode, Body: resp.Body}
	}
	if err := json.Unmarshal([]byte(resp.Body), out); err != nil {
		return &JSONError{Op: op, Body: resp.Body, Err: err}
	}
	return nil
}
