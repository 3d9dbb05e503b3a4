package sectoralarm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sectorctl/internal/portaltest"
)

func newPortalClient(t *testing.T, opts portaltest.Options) (*Client, *portaltest.Portal) {
	t.Helper()
	p := portaltest.New(t, opts)
	return NewClient(ClientOptions{BaseURL: p.URL, Http: p.Client()}), p
}

func TestClient_LoginThenSystem_UsesSessionCookie(t *testing.T) {
	t.Parallel()

	c, p := newPortalClient(t, portaltest.Options{
		PreAuthCookie: "preauth=xyz;",
		SessionCookie: "sess=tok1;",
		PanelList:     `[{"PanelId":"123"}]`,
	})

	res, err := c.Login(context.Background(), portaltest.DefaultUsername, portaltest.DefaultPassword)
	require.NoError(t, err)
	assert.Equal(t, StatusOK, res.Status)

	panels, err := c.System(context.Background())
	require.NoError(t, err)
	require.Len(t, panels, 1)
	assert.Equal(t, "123", panels[0].PanelID)
	assert.JSONEq(t, `{"PanelId":"123"}`, string(panels[0].Raw))

	list, ok := p.Last(http.MethodGet, "/Panel/GetPanelList")
	require.True(t, ok)
	assert.Equal(t, "sess=tok1;", list.Header.Get("Cookie"))
	assert.Equal(t, kContentTypeJSON, list.Header.Get("Content-Type"))

	login, ok := p.Last(http.MethodPost, "/User/Login")
	require.True(t, ok)
	assert.Equal(t, "preauth=xyz;", login.Header.Get("Cookie"))
}

func TestClient_RequiresLogin(t *testing.T) {
	t.Parallel()

	c, p := newPortalClient(t, portaltest.Options{})

	_, err := c.System(context.Background())
	require.ErrorIs(t, err, ErrNotAuthenticated)
	_, err = c.Status(context.Background(), "123")
	require.ErrorIs(t, err, ErrNotAuthenticated)
	_, err = c.ArmPartial(context.Background(), "123", "1234")
	require.ErrorIs(t, err, ErrNotAuthenticated)

	assert.Empty(t, p.Requests())
}

func TestClient_PanelEndpoints(t *testing.T) {
	t.Parallel()

	c, p := newPortalClient(t, portaltest.Options{})
	ctx := context.Background()

	_, err := c.Login(ctx, portaltest.DefaultUsername, portaltest.DefaultPassword)
	require.NoError(t, err)

	o, err := c.Status(ctx, portaltest.DefaultPanelID)
	require.NoError(t, err)
	assert.Equal(t, portaltest.DefaultPanelID, o.Panel.PanelID)
	assert.Equal(t, "disarmed", o.Panel.ArmedStatus)
	assert.Contains(t, string(o.Raw), "Temperatures")

	overview, ok := p.Last(http.MethodPost, "/Panel/GetOverview")
	require.True(t, ok)
	assert.JSONEq(t, `{"panelId":"123"}`, overview.Body)

	events, err := c.History(ctx, portaltest.DefaultPanelID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "disarmed", events[0].EventType)
	assert.Equal(t, "Keypad", events[1].Channel)

	armed, err := c.ArmPartial(ctx, portaltest.DefaultPanelID, portaltest.DefaultPanelCode)
	require.NoError(t, err)
	assert.Equal(t, "partialarmed", armed.PanelData.ArmedStatus)
	assert.Equal(t, "success", armed.Status)

	arm, ok := p.Last(http.MethodPost, "/Panel/ArmPanel")
	require.True(t, ok)
	assert.Equal(t, `{"ArmCmd":"Partial","id":"123","HasLocks":false,"PanelCode":"1234"}`, arm.Body)

	armed, err = c.ArmTotal(ctx, portaltest.DefaultPanelID, portaltest.DefaultPanelCode)
	require.NoError(t, err)
	assert.Equal(t, "armed", armed.PanelData.ArmedStatus)

	disarmed, err := c.Disarm(ctx, portaltest.DefaultPanelID, portaltest.DefaultPanelCode)
	require.NoError(t, err)
	assert.Equal(t, "disarmed", disarmed.PanelData.ArmedStatus)
	assert.Equal(t, "disarmed", p.ArmedStatus())

	arm, ok = p.Last(http.MethodPost, "/Panel/ArmPanel")
	require.True(t, ok)
	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(arm.Body), &body))
	assert.Equal(t, "Disarm", body["ArmCmd"])
	assert.Equal(t, false, body["HasLocks"])
}

func TestClient_AfterLogoff_RequestsAreRefused(t *testing.T) {
	t.Parallel()

	c, p := newPortalClient(t, portaltest.Options{})
	ctx := context.Background()

	_, err := c.Login(ctx, portaltest.DefaultUsername, portaltest.DefaultPassword)
	require.NoError(t, err)
	_, err = c.Logoff(ctx)
	require.NoError(t, err)

	n := len(p.Requests())
	_, err = c.System(ctx)
	require.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Len(t, p.Requests(), n)
}

func TestClient_UnexpectedStatus(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("server exploded"))
	}))
	t.Cleanup(ts.Close)

	c := NewClient(ClientOptions{BaseURL: ts.URL, Http: ts.Client()})
	c.Session().setToken("sess=tok1;")

	_, err := c.History(context.Background(), "123")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusOK, se.Expected)
	assert.Equal(t, http.StatusInternalServerError, se.Actual)
	assert.Equal(t, "server exploded", se.Body)
	assert.Contains(t, err.Error(), "status 500")
}

func TestClient_InvalidJSONIncludesBody(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>maintenance</html>"))
	}))
	t.Cleanup(ts.Close)

	c := NewClient(ClientOptions{BaseURL: ts.URL, Http: ts.Client()})
	c.Session().setToken("sess=tok1;")

	_, err := c.System(context.Background())
	var je *JSONError
	require.ErrorAs(t, err, &je)
	assert.Equal(t, "<html>maintenance</html>", je.Body)
	assert.Contains(t, err.Error(), "<html>maintenance</html>")
}

func TestClient_HistoryEscapesPanelID(t *testing.T) {
	t.Parallel()

	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(ts.Close)

	c := NewClient(ClientOptions{BaseURL: ts.URL, Http: ts.Client()})
	c.Session().setToken("sess=tok1;")

	events, err := c.History(context.Background(), "12/3")
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, "/Panel/GetPanelHistory/12%2F3", gotPath)
}

func TestClient_ArmRejectsUnknownMode(t *testing.T) {
	t.Parallel()

	c := NewClient(ClientOptions{Executor: &scriptedExecutor{}})
	c.Session().setToken("sess=tok1;")

	_, err := c.Arm(context.Background(), ArmMode("Panic"), "123", "0000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported arm mode")
}

func TestParseArmMode(t *testing.T) {
	t.Parallel()

	info, err := ParseArmMode("Partial")
	require.NoError(t, err)
	assert.Equal(t, ArmPartial, info.Mode)

	info, err = ParseArmMode(" total ")
	require.NoError(t, err)
	assert.Equal(t, ArmTotal, info.Mode)

	_, err = ParseArmMode("")
	require.Error(t, err)
	_, err = ParseArmMode("panic")
	require.Error(t, err)
}
