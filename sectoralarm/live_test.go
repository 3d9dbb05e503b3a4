//go:build live

// Live portal tests.
//
// These tests log into the real portal with the account given in the environment and
// only perform read-only calls (panel list, overview, history), then log off. They are
// excluded from the default test run. To run them explicitly:
//
//	SECTORALARM_LIVE_USERNAME=... SECTORALARM_LIVE_PASSWORD=... \
//	  go test -tags=live ./sectoralarm -run TestLive -count=1
//
// Optional:
//   - Override the portal base URL:
//     SECTORALARM_LIVE_BASE_URL=https://minside.sectoralarm.no ...
package sectoralarm

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"
)

const (
	kEnvLiveUsername = "SECTORALARM_LIVE_USERNAME"
	kEnvLivePassword = "SECTORALARM_LIVE_PASSWORD"
	kEnvLiveBaseURL  = "SECTORALARM_LIVE_BASE_URL"
)

func TestLive_LoginListLogoff(t *testing.T) {
	username := strings.TrimSpace(os.Getenv(kEnvLiveUsername))
	password := os.Getenv(kEnvLivePassword)
	if username == "" || password == "" {
		t.Skipf("%s and %s must be set", kEnvLiveUsername, kEnvLivePassword)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	c := NewClient(ClientOptions{
		BaseURL: os.Getenv(kEnvLiveBaseURL),
		Timeout: 20 * time.Second,
	})

	if _, err := c.Login(ctx, username, password); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	t.Cleanup(func() {
		if _, err := c.Logoff(context.Background()); err != nil {
			t.Errorf("Logoff() error = %v", err)
		}
	})

	panels, err := c.System(ctx)
	if err != nil {
		t.Fatalf("System() error = %v", err)
	}
	if len(panels) == 0 {
		t.Fatalf("System() returned no panels")
	}
	if panels[0].PanelID == "" {
		t.Fatalf("first panel has no PanelId; raw: %s", panels[0].Raw)
	}

	if _, err := c.Status(ctx, panels[0].PanelID); err != nil {
		t.Fatalf("Status(%q) error = %v", panels[0].PanelID, err)
	}
	if _, err := c.History(ctx, panels[0].PanelID); err != nil {
		t.Fatalf("History(%q) error = %v", panels[0].PanelID, err)
	}
}
