package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"sectorctl/internal/config"
	"sectorctl/internal/errx"
	"sectorctl/internal/output"
	"sectorctl/sectoralarm"
)

// App runs one panel command inside a portal session: login, command, logoff.
type App struct {
	Config config.Config
	Portal sectoralarm.Portal
	Output output.Printer
	Logger *slog.Logger
}

type PanelOptions struct {
	PanelID string // default: config panel_id, else the first panel on the account
}

type ArmOptions struct {
	PanelID string
	Code    string // default: config panel_code
	Mode    sectoralarm.ArmInfo
}

func New(deps App) *App {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}
	return &deps
}

// Panels prints every panel on the account.
func (a *App) Panels(ctx context.Context) error {
	return a.withSession(ctx, func(ctx context.Context) error {
		panels, err := a.Portal.System(ctx)
		if err != nil {
			return err
		}
		return a.Output.PrintPanels(ctx, panels)
	})
}

// Status prints the overview of one panel.
func (a *App) Status(ctx context.Context, opts PanelOptions) error {
	return a.withSession(ctx, func(ctx context.Context) error {
		panelID, err := a.resolvePanelID(ctx, opts.PanelID)
		if err != nil {
			return err
		}
		o, err := a.Portal.Status(ctx, panelID)
		if err != nil {
			return err
		}
		return a.Output.PrintOverview(ctx, o)
	})
}

// History prints the event log of one panel.
func (a *App) History(ctx context.Context, opts PanelOptions) error {
	return a.withSession(ctx, func(ctx context.Context) error {
		panelID, err := a.resolvePanelID(ctx, opts.PanelID)
		if err != nil {
			return err
		}
		events, err := a.Portal.History(ctx, panelID)
		if err != nil {
			return err
		}
		return a.Output.PrintHistory(ctx, events)
	})
}

// Arm sends an arm or disarm command. The portal reports a wrong PIN in the response
// body rather than the status, so a non-success result is returned as an error after
// it is printed.
func (a *App) Arm(ctx context.Context, opts ArmOptions) error {
	code := opts.Code
	if code == "" {
		code = a.Config.PanelCode
	}
	if code == "" {
		return errx.Usage("panel code is required (use --code, panel_code in config, or %s)", config.EnvPanelCode)
	}
	if opts.Mode.Mode == "" {
		return errx.Usage("arm mode is required")
	}

	return a.withSession(ctx, func(ctx context.Context) error {
		panelID, err := a.resolvePanelID(ctx, opts.PanelID)
		if err != nil {
			return err
		}
		a.Logger.InfoContext(ctx, "sending arm command", slog.String("panel_id", panelID), slog.String("mode", string(opts.Mode.Mode)))

		r, err := a.Portal.Arm(ctx, opts.Mode.Mode, panelID, code)
		if err != nil {
			return err
		}
		if err := a.Output.PrintArmResult(ctx, opts.Mode, r); err != nil {
			return err
		}
		if r.Status != "" && !strings.EqualFold(r.Status, "success") {
			return fmt.Errorf("arm panel %s: portal answered %q", panelID, r.Status)
		}
		return nil
	})
}

// withSession logs in, runs fn, and always attempts to log off. A logoff failure is
// returned only when fn itself succeeded.
func (a *App) withSession(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if err := a.Config.ValidateLogin(); err != nil {
		return err
	}
	if _, err := a.Portal.Login(ctx, a.Config.Username, a.Config.Password); err != nil {
		return err
	}
	a.Logger.DebugContext(ctx, "logged in")

	defer func() {
		// Log off even when ctx was canceled so the server session does not linger.
		_, lerr := a.Portal.Logoff(context.WithoutCancel(ctx))
		if lerr != nil {
			a.Logger.WarnContext(ctx, "logoff failed", slog.Any("error", lerr))
			if err == nil {
				err = lerr
			}
			return
		}
		a.Logger.DebugContext(ctx, "logged off")
	}()

	return fn(ctx)
}

func (a *App) resolvePanelID(ctx context.Context, explicit string) (string, error) {
	if id := strings.TrimSpace(explicit); id != "" {
		return id, nil
	}
	if id := strings.TrimSpace(a.Config.PanelID); id != "" {
		return id, nil
	}

	panels, err := a.Portal.System(ctx)
	if err != nil {
		return "", err
	}
	if len(panels) == 0 || panels[0].PanelID == "" {
		return "", fmt.Errorf("no panels found on this account")
	}
	if len(panels) > 1 {
		a.Logger.InfoContext(ctx, "account has several panels; using the first", slog.String("panel_id", panels[0].PanelID))
	}
	return panels[0].PanelID, nil
}
