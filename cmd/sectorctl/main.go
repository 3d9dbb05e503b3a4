package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"sectorctl/internal/app"
	"sectorctl/internal/config"
	"sectorctl/internal/errx"
	"sectorctl/internal/logging"
	"sectorctl/internal/output"
	"sectorctl/sectoralarm"
)

const kVersion = "0.1.0"

func main() {
	os.Exit(realMain(os.Args))
}

func validateArgs(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("missing command")
	}

	switch args[1] {
	case "panels":
	case "status":
	case "history":
	case "arm":
	case "disarm":
	case "config":
	case "version":
	case "help", "-h", "--help":
		break
	default:
		return fmt.Errorf("unknown command: %s", args[1])
	}

	return nil
}

func realMain(args []string) int {
	if err := validateArgs(args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		usage(os.Stderr)
		return 2
	}

	switch args[1] {
	case "help", "-h", "--help":
		usage(os.Stdout)
		return 0
	case "version":
		fmt.Fprintf(os.Stdout, "sectorctl %s\n", kVersion)
		return 0
	}

	ctx := context.Background()
	pr := output.NewStdPrinter(os.Stdout, os.Stderr, false)

	if err := config.LoadDotEnv(); err != nil {
		_ = pr.PrintError(ctx, err)
		return 1
	}

	cfgPath := strings.TrimSpace(os.Getenv(config.EnvConfigPath))
	if cfgPath == "" {
		var err error
		cfgPath, err = config.DefaultConfigPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: resolve config path: %v\n", err)
			return 1
		}
	}
	cfgStore := config.NewFileStore(cfgPath)

	cmd := args[1]
	var runErr error
	if cmd == "config" {
		runErr = runConfig(ctx, cfgStore, pr, args[2:])
	} else {
		runErr = runPanelCommand(ctx, cmd, cfgStore, pr, args[2:])
	}

	if runErr == nil {
		return 0
	}

	_ = pr.PrintError(ctx, runErr)
	if errx.IsUsage(runErr) {
		return 2
	}
	return 1
}

// loadConfig reads the config file (absent is fine) and overlays the environment.
func loadConfig(ctx context.Context, store *config.FileStore) (config.Config, error) {
	cfg, err := store.Load(ctx)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return config.Config{}, err
		}
		cfg = config.Config{}
	}
	cfg, err = config.ApplyEnv(cfg)
	if err != nil {
		return config.Config{}, err
	}
	return cfg.WithDefaults(), nil
}

func newLogger(cfg config.Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	return logging.New(
		logging.WithLevel(level),
		logging.WithFormat(format),
		logging.WithOutput(os.Stderr),
		logging.WithAttr(slog.String("app", "sectorctl")),
	), nil
}

func runPanelCommand(ctx context.Context, cmd string, store *config.FileStore, pr *output.StdPrinter, argv []string) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var panelID, code, mode string
	var asJSON bool
	fs.BoolVar(&asJSON, "json", false, "emit JSON output")
	if cmd != "panels" {
		fs.StringVar(&panelID, "panel", "", "panel id (default: panel_id from config, else the first panel)")
	}
	if cmd == "arm" || cmd == "disarm" {
		fs.StringVar(&code, "code", "", "panel PIN (default: panel_code from config)")
	}
	if cmd == "arm" {
		fs.StringVar(&mode, "mode", "partial", "arm mode: partial|total")
	}

	if err := fs.Parse(argv); err != nil {
		return errx.Usage("%s: %v", cmd, err)
	}
	if fs.NArg() > 0 {
		return errx.Usage("%s: unexpected argument %q", cmd, fs.Arg(0))
	}
	pr.JSON = asJSON

	var armInfo sectoralarm.ArmInfo
	switch cmd {
	case "arm":
		info, err := sectoralarm.ParseArmMode(mode)
		if err != nil || info.Mode == sectoralarm.ArmDisarm {
			return errx.Usage("arm: --mode must be partial or total, got %q", mode)
		}
		armInfo = info
	case "disarm":
		armInfo, _ = sectoralarm.ParseArmMode("disarm")
	}

	cfg, err := loadConfig(ctx, store)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	client := sectoralarm.NewClient(sectoralarm.ClientOptions{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Logger:  logger,
	})
	a := app.New(app.App{
		Config: cfg,
		Portal: client,
		Output: pr,
		Logger: logger,
	})

	switch cmd {
	case "panels":
		return a.Panels(ctx)
	case "status":
		return a.Status(ctx, app.PanelOptions{PanelID: panelID})
	case "history":
		return a.History(ctx, app.PanelOptions{PanelID: panelID})
	default:
		return a.Arm(ctx, app.ArmOptions{PanelID: panelID, Code: code, Mode: armInfo})
	}
}

func runConfig(ctx context.Context, store *config.FileStore, pr *output.StdPrinter, argv []string) error {
	if len(argv) < 1 {
		return errx.Usage("config: missing subcommand (init|show)")
	}
	switch argv[0] {
	case "init":
		return runConfigInit(ctx, store, pr, argv[1:])
	case "show":
		return runConfigShow(ctx, store, pr, argv[1:])
	default:
		return errx.Usage("config: unknown subcommand %q (expected init|show)", argv[0])
	}
}

func runConfigInit(ctx context.Context, store *config.FileStore, pr *output.StdPrinter, argv []string) error {
	fs := flag.NewFlagSet("config init", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var username, panelID string
	var force bool
	fs.StringVar(&username, "username", "", "portal login (e-mail)")
	fs.StringVar(&panelID, "panel", "", "default panel id")
	fs.BoolVar(&force, "force", false, "overwrite existing config file")

	if err := fs.Parse(argv); err != nil {
		return errx.Usage("config init: %v", err)
	}

	if _, err := os.Stat(store.Path); err == nil && !force {
		return fmt.Errorf("config already exists at %s (use --force to overwrite)", store.Path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat config %s: %w", store.Path, err)
	}

	cfg := config.Config{
		Username: username,
		PanelID:  panelID,
		Timeout:  config.DefaultTimeout,
		Log:      config.LogConfig{Level: "info", Format: "text"},
	}
	if err := store.Save(ctx, cfg); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(pr.Out, "wrote config: %s\n", store.Path)
	_, _ = fmt.Fprintf(pr.Out, "note: edit the file to set password and panel_code, or export %s and %s\n", config.EnvPassword, config.EnvPanelCode)
	return nil
}

func runConfigShow(ctx context.Context, store *config.FileStore, pr *output.StdPrinter, argv []string) error {
	fs := flag.NewFlagSet("config show", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if err := fs.Parse(argv); err != nil {
		return errx.Usage("config show: %v", err)
	}

	if _, err := os.Stat(store.Path); errors.Is(err, os.ErrNotExist) {
		_, _ = fmt.Fprintf(pr.Out, "note: no config file at %s (run: sectorctl config init)\n", store.Path)
	}
	cfg, err := loadConfig(ctx, store)
	if err != nil {
		return err
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = sectoralarm.DefaultBaseURL
	}

	_, _ = fmt.Fprintf(pr.Out, "path: %s\n", store.Path)
	_, _ = fmt.Fprintf(pr.Out, "username: %s\n", orNotSet(cfg.Username))
	_, _ = fmt.Fprintf(pr.Out, "password: %s\n", redacted(cfg.Password))
	_, _ = fmt.Fprintf(pr.Out, "panel_code: %s\n", redacted(cfg.PanelCode))
	_, _ = fmt.Fprintf(pr.Out, "panel_id: %s\n", orNotSet(cfg.PanelID))
	_, _ = fmt.Fprintf(pr.Out, "base_url: %s\n", baseURL)
	_, _ = fmt.Fprintf(pr.Out, "timeout: %s\n", cfg.Timeout)
	_, _ = fmt.Fprintf(pr.Out, "log.level: %s\n", cfg.Log.Level)
	_, _ = fmt.Fprintf(pr.Out, "log.format: %s\n", cfg.Log.Format)
	return nil
}

func redacted(s string) string {
	if s == "" {
		return "(not set)"
	}
	return "(set)"
}

func orNotSet(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "sectorctl - Sector Alarm panels from the terminal")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  sectorctl <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  panels                             list panels on the account")
	fmt.Fprintln(w, "  status   [--panel <id>]            show panel status")
	fmt.Fprintln(w, "  history  [--panel <id>]            show panel event log")
	fmt.Fprintln(w, "  arm      [--panel <id>] [--mode partial|total] [--code <pin>]")
	fmt.Fprintln(w, "  disarm   [--panel <id>] [--code <pin>]")
	fmt.Fprintln(w, "  config   init|show")
	fmt.Fprintln(w, "  version")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - Use --json on panel commands for the portal's raw JSON")
	fmt.Fprintf(w, "  - %s, %s, %s, %s override the config file\n", config.EnvUsername, config.EnvPassword, config.EnvPanelCode, config.EnvBaseURL)
	fmt.Fprintf(w, "  - %s selects another config file\n", config.EnvConfigPath)
}
