package output

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"sectorctl/sectoralarm"
)

// Printer renders user-facing output (human and/or JSON).
type Printer interface {
	PrintPanels(ctx context.Context, panels []sectoralarm.Panel) error
	PrintOverview(ctx context.Context, o sectoralarm.Overview) error
	PrintHistory(ctx context.Context, events []sectoralarm.HistoryEvent) error
	PrintArmResult(ctx context.Context, mode sectoralarm.ArmInfo, r sectoralarm.ArmResult) error
	PrintError(ctx context.Context, err error) error
}

// StdPrinter is a simple stdout/stderr printer. In JSON mode it echoes the portal's
// own JSON so no field is lost.
type StdPrinter struct {
	Out  io.Writer
	Err  io.Writer
	JSON bool
}

func NewStdPrinter(out io.Writer, err io.Writer, asJSON bool) *StdPrinter {
	return &StdPrinter{Out: out, Err: err, JSON: asJSON}
}

func (p *StdPrinter) PrintPanels(ctx context.Context, panels []sectoralarm.Panel) error {
	if p.JSON {
		raws := make([]json.RawMessage, 0, len(panels))
		for _, pn := range panels {
			raws = append(raws, rawOr(pn.Raw, pn))
		}
		return p.encode(raws)
	}

	if len(panels) == 0 {
		_, err := fmt.Fprintln(p.Out, "No panels on this account.")
		return err
	}
	tw := tabwriter.NewWriter(p.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PANEL ID\tNAME\tSTATUS")
	for _, pn := range panels {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", pn.PanelID, dash(pn.DisplayName), dash(pn.ArmedStatus))
	}
	return tw.Flush()
}

func (p *StdPrinter) PrintOverview(ctx context.Context, o sectoralarm.Overview) error {
	if p.JSON {
		return p.encode(rawOr(o.Raw, o))
	}
	if _, err := fmt.Fprintf(p.Out, "Panel: %s\n", o.Panel.PanelID); err != nil {
		return err
	}
	if o.Panel.DisplayName != "" {
		if _, err := fmt.Fprintf(p.Out, "Name: %s\n", o.Panel.DisplayName); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(p.Out, "Status: %s\n", dash(o.Panel.ArmedStatus))
	return err
}

func (p *StdPrinter) PrintHistory(ctx context.Context, events []sectoralarm.HistoryEvent) error {
	if p.JSON {
		raws := make([]json.RawMessage, 0, len(events))
		for _, e := range events {
			raws = append(raws, rawOr(e.Raw, e))
		}
		return p.encode(raws)
	}

	if len(events) == 0 {
		_, err := fmt.Fprintln(p.Out, "No events.")
		return err
	}
	tw := tabwriter.NewWriter(p.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tEVENT\tUSER\tCHANNEL")
	for _, e := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", dash(e.Time), dash(e.EventType), dash(e.User), dash(e.Channel))
	}
	return tw.Flush()
}

func (p *StdPrinter) PrintArmResult(ctx context.Context, mode sectoralarm.ArmInfo, r sectoralarm.ArmResult) error {
	if p.JSON {
		return p.encode(rawOr(r.Raw, r))
	}
	if _, err := fmt.Fprintf(p.Out, "Requested: %s\n", mode.Verb); err != nil {
		return err
	}
	if r.Status != "" {
		if _, err := fmt.Fprintf(p.Out, "Result: %s\n", r.Status); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(p.Out, "Status: %s\n", dash(r.PanelData.ArmedStatus))
	return err
}

func (p *StdPrinter) PrintError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	_, werr := fmt.Fprintf(p.Err, "error: %v\n", err)
	return werr
}

func (p *StdPrinter) encode(v any) error {
	enc := json.NewEncoder(p.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// rawOr returns the portal's JSON when present, else a re-encoding of v.
func rawOr(raw json.RawMessage, v any) json.RawMessage {
	if len(raw) > 0 {
		return raw
	}
	b, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("null")
	}
	return b
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
