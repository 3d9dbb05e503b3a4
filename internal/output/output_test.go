package output

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"sectorctl/sectoralarm"
)

func TestStdPrinter_PrintPanels_JSONKeepsPortalFields(t *testing.T) {
	var panels []sectoralarm.Panel
	if err := json.Unmarshal([]byte(`[{"PanelId":"123","Extra":{"a":1}}]`), &panels); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	var out bytes.Buffer
	p := NewStdPrinter(&out, &out, true)
	if err := p.PrintPanels(context.Background(), panels); err != nil {
		t.Fatalf("PrintPanels() error = %v", err)
	}

	var got []map[string]any
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if len(got) != 1 || got[0]["PanelId"] != "123" || got[0]["Extra"] == nil {
		t.Fatalf("output = %v, want portal object echoed", got)
	}
}

func TestStdPrinter_PrintHistory_Human(t *testing.T) {
	var out bytes.Buffer
	p := NewStdPrinter(&out, &out, false)
	err := p.PrintHistory(context.Background(), []sectoralarm.HistoryEvent{
		{Time: "07:30", EventType: "disarmed", User: "Owner"},
	})
	if err != nil {
		t.Fatalf("PrintHistory() error = %v", err)
	}
	s := out.String()
	if !strings.Contains(s, "TIME") || !strings.Contains(s, "disarmed") {
		t.Fatalf("unexpected output:\n%s", s)
	}
	// Missing channel is shown as a dash.
	if !strings.Contains(s, "-") {
		t.Fatalf("expected placeholder for empty channel:\n%s", s)
	}
}

func TestStdPrinter_PrintArmResult(t *testing.T) {
	var out bytes.Buffer
	p := NewStdPrinter(&out, &out, false)
	mode, err := sectoralarm.ParseArmMode("partial")
	if err != nil {
		t.Fatalf("ParseArmMode() error = %v", err)
	}
	if err := p.PrintArmResult(context.Background(), mode, sectoralarm.ArmResult{
		Status:    "success",
		PanelData: sectoralarm.PanelData{PanelID: "123", ArmedStatus: "partialarmed"},
	}); err != nil {
		t.Fatalf("PrintArmResult() error = %v", err)
	}
	if !strings.Contains(out.String(), "Status: partialarmed") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
}

func TestStdPrinter_PrintError(t *testing.T) {
	var stdout, stderr bytes.Buffer
	p := NewStdPrinter(&stdout, &stderr, false)
	if err := p.PrintError(context.Background(), errors.New("boom")); err != nil {
		t.Fatalf("PrintError() error = %v", err)
	}
	if stdout.Len() != 0 {
		t.Fatalf("stdout = %q, want empty", stdout.String())
	}
	if stderr.String() != "error: boom\n" {
		t.Fatalf("stderr = %q", stderr.String())
	}
}
