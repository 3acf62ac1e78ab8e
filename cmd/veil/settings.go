package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/veil/internal/capture"
	"github.com/1broseidon/veil/internal/daemon"
	"github.com/1broseidon/veil/internal/ipc"
	"github.com/1broseidon/veil/internal/terminals"
	"github.com/1broseidon/veil/internal/tray"
	"github.com/1broseidon/veil/internal/tui"
)

func runSettings(args []string) int {
	fs := flag.NewFlagSet("settings", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/veil/config.yaml)")

	if len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help") {
		fmt.Fprintln(os.Stderr, "Usage: veil settings [--path PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Interactive settings for the toggle shortcut, the overlay look and the")
		fmt.Fprintln(os.Stderr, "blurred monitors. Edits the config file when the daemon is not running.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Keybindings:")
		fmt.Fprintln(os.Stderr, "  tab/shift-tab  Switch tabs")
		fmt.Fprintln(os.Stderr, "  r              Record a new shortcut")
		fmt.Fprintln(os.Stderr, "  d              Restore the default shortcut")
		fmt.Fprintln(os.Stderr, "  e              Edit opacity, tint and hint")
		fmt.Fprintln(os.Stderr, "  space, x       Toggle the highlighted monitor")
		fmt.Fprintln(os.Stderr, "  a              Select all monitors")
		fmt.Fprintln(os.Stderr, "  enter, s       Apply the monitor selection")
		fmt.Fprintln(os.Stderr, "  ctrl-r         Refresh")
		fmt.Fprintln(os.Stderr, "  q, Ctrl+C      Quit")
		return 0
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}

	store, err := openStore(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cfg := store.Config()

	err = tui.Run(tui.Options{
		Store:    store,
		Daemon:   ipc.NewClient(),
		Recorder: capture.Recorder{Display: cfg.Display},
		Displays: offlineDisplays(cfg),
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runTray(args []string) int {
	fs := flag.NewFlagSet("tray", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/veil/config.yaml)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: veil tray [--path PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show the overlay state in the system tray. The daemon starts this")
		fmt.Fprintln(os.Stderr, "automatically when 'tray: true' is set in the config.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	store, err := openStore(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cfg := store.Config()
	logger, _ := daemon.NewLogger(os.Stderr, cfg.LogLevel)

	launcher := terminals.NewLauncher(cfg.Terminal)
	openSettings := func() {
		exe, err := os.Executable()
		if err != nil {
			logger.Warn("settings: failed to find executable", "error", err)
			return
		}
		cmd := []string{exe, "settings"}
		if *path != "" {
			cmd = append(cmd, "--path", *path)
		}
		if err := launcher.Launch(cmd); err != nil {
			logger.Warn("settings: failed to open terminal", "error", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	t := tray.New(ipc.NewClient(), tray.Callbacks{OnSettingsClick: openSettings}, logger)
	t.Run(ctx)
	return 0
}
