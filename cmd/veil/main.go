package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/1broseidon/veil/internal/daemon"
	"github.com/1broseidon/veil/internal/ipc"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "toggle", "show", "hide", "reload":
		os.Exit(runOverlayCommand(os.Args[1], os.Args[2:]))
	case "monitors":
		os.Exit(runMonitors(os.Args[2:]))
	case "select":
		os.Exit(runSelect(os.Args[2:]))
	case "hotkey":
		os.Exit(runHotkey(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "settings":
		os.Exit(runSettings(os.Args[2:]))
	case "tray":
		os.Exit(runTray(os.Args[2:]))
	case "menu":
		os.Exit(runMenu(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: veil <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the veil daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon and overlay status")
	fmt.Fprintln(w, "  toggle              Show the blur if hidden, hide it if shown")
	fmt.Fprintln(w, "  show                Show the blur")
	fmt.Fprintln(w, "  hide                Hide the blur")
	fmt.Fprintln(w, "  reload              Re-read the config file")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  monitors            List displays and whether the blur covers them")
	fmt.Fprintln(w, "  select all|ID...    Choose which displays the blur covers")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  hotkey              Print the toggle shortcut")
	fmt.Fprintln(w, "  hotkey set COMBO    Change the toggle shortcut")
	fmt.Fprintln(w, "  hotkey record       Press the new shortcut on the keyboard")
	fmt.Fprintln(w, "  hotkey reset        Restore the default shortcut")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  settings            Open the interactive settings screen")
	fmt.Fprintln(w, "  tray                Show a system tray icon")
	fmt.Fprintln(w, "  menu                Quick controls in rofi, fuzzel, wofi or dmenu")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'veil <command> --help' for command-specific options.")
}

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/veil/config.yaml)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: veil daemon [--path PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run the overlay, the global shortcut and the IPC socket in the foreground.")
		fmt.Fprintln(os.Stderr, "SIGHUP or saving the config file reloads it.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	if err := daemon.Run(context.Background(), daemon.Options{ConfigPath: *path}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print status as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: veil status [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *asJSON {
		return printJSON(status)
	}
	printStatus(os.Stdout, status)
	return 0
}

func printStatus(w io.Writer, status *ipc.StatusData) {
	fmt.Fprintf(w, "daemon_running: %v\n", status.DaemonRunning)
	fmt.Fprintf(w, "active:         %v\n", status.Active)
	if status.Transitioning {
		fmt.Fprintf(w, "transitioning:  %v\n", status.Transitioning)
	}
	if len(status.Surfaces) > 0 {
		fmt.Fprintf(w, "surfaces:       %s\n", strings.Join(status.Surfaces, ", "))
	}
	fmt.Fprintf(w, "hotkey:         %s (%s)\n", status.Hotkey, status.HotkeyDisplay)
	fmt.Fprintf(w, "hotkey_live:    %v\n", status.HotkeyLive)
	fmt.Fprintf(w, "monitors:       %s\n", status.Selection)
	if status.Degraded {
		fmt.Fprintln(w, "degraded:       true (global shortcut unavailable; use 'veil toggle')")
	}
	if status.Recording {
		fmt.Fprintln(w, "recording:      true")
	}
	fmt.Fprintf(w, "uptime_seconds: %d\n", status.UptimeSeconds)
}

func runOverlayCommand(name string, args []string) int {
	if len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help") {
		fmt.Fprintf(os.Stdout, "Usage: veil %s\n", name)
		return 0
	}
	if len(args) != 0 {
		fmt.Fprintf(os.Stderr, "%s takes no arguments\n", name)
		return 2
	}

	client := ipc.NewClient()
	var err error
	switch name {
	case "toggle":
		err = client.Toggle()
	case "show":
		err = client.Show()
	case "hide":
		err = client.Hide()
	case "reload":
		err = client.Reload()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func printJSON(v any) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
