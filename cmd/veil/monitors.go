package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/1broseidon/veil/internal/config"
	"github.com/1broseidon/veil/internal/ipc"
	"github.com/1broseidon/veil/internal/overlay"
	"github.com/1broseidon/veil/internal/platform"
	"github.com/1broseidon/veil/internal/prefs"
)

func runMonitors(args []string) int {
	fs := flag.NewFlagSet("monitors", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path, used when the daemon is not running")
	asJSON := fs.Bool("json", false, "Print monitors as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: veil monitors [--json] [--path PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List attached displays. Selected displays are marked with '*'.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "monitors takes no arguments")
		fs.Usage()
		return 2
	}

	data, err := ipc.NewClient().GetMonitors()
	if isDaemonDown(err) {
		// Offline: enumerate directly and read the saved selection.
		data, err = offlineMonitors(*path)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *asJSON {
		return printJSON(data)
	}
	printMonitors(os.Stdout, data)
	return 0
}

func offlineMonitors(path string) (*ipc.MonitorsData, error) {
	store, err := openStore(path)
	if err != nil {
		return nil, err
	}
	displays, err := offlineDisplays(store.Config()).Displays()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate displays: %w", err)
	}
	sel := store.MonitorSelection()
	data := &ipc.MonitorsData{All: sel.IsAll(), Selected: sel.IDs()}
	for _, d := range displays {
		data.Monitors = append(data.Monitors, ipc.MonitorInfo{
			ID:       d.ID,
			Name:     d.Name,
			X:        d.Bounds.X,
			Y:        d.Bounds.Y,
			Width:    d.Bounds.Width,
			Height:   d.Bounds.Height,
			Selected: sel.Includes(d.ID),
		})
	}
	return data, nil
}

func printMonitors(w io.Writer, data *ipc.MonitorsData) {
	if len(data.Monitors) == 0 {
		fmt.Fprintln(w, "no displays found")
	}
	for _, m := range data.Monitors {
		mark := " "
		if m.Selected {
			mark = "*"
		}
		fmt.Fprintf(w, "%s %-12s %dx%d+%d+%d\n", mark, m.ID, m.Width, m.Height, m.X, m.Y)
	}

	attached := make(map[string]bool, len(data.Monitors))
	for _, m := range data.Monitors {
		attached[m.ID] = true
	}
	for _, id := range data.Selected {
		if !attached[id] {
			fmt.Fprintf(w, "* %-12s (not connected)\n", id)
		}
	}
	if data.All {
		fmt.Fprintln(w, "selection: all")
	}
}

func runSelect(args []string) int {
	fs := flag.NewFlagSet("select", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path, used when the daemon is not running")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: veil select [--path PATH] all|none|ID...")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Choose which displays the blur covers. 'all' follows displays as they")
		fmt.Fprintln(os.Stderr, "are plugged in; a list of IDs (see 'veil monitors') covers only those.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	sel, err := parseSelection(fs.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		return 2
	}

	if err := ipc.NewClient().SetMonitors(sel.IsAll(), sel.IDs()); err == nil {
		fmt.Printf("monitors: %s\n", sel)
		return 0
	} else if !isDaemonDown(err) {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := withStore(*path, func(s *prefs.Store) error { return s.SetMonitorSelection(sel) }); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("monitors: %s (saved; daemon not running)\n", sel)
	return 0
}

func parseSelection(args []string) (overlay.Selection, error) {
	if len(args) == 0 {
		return overlay.Selection{}, fmt.Errorf("select requires 'all', 'none' or display IDs")
	}
	if len(args) == 1 {
		switch strings.ToLower(args[0]) {
		case "all":
			return overlay.All(), nil
		case "none":
			return overlay.Only(), nil
		}
	}
	ids := make([]string, 0, len(args))
	for _, a := range args {
		for _, id := range strings.Split(a, ",") {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			if strings.EqualFold(id, "all") || strings.EqualFold(id, "none") {
				return overlay.Selection{}, fmt.Errorf("%q cannot be combined with display IDs", id)
			}
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return overlay.Selection{}, fmt.Errorf("no display IDs given")
	}
	return overlay.Only(ids...), nil
}

func openStore(path string) (*prefs.Store, error) {
	if path == "" {
		return prefs.OpenDefault(nil)
	}
	return prefs.Open(path, nil)
}

func withStore(path string, fn func(*prefs.Store) error) error {
	store, err := openStore(path)
	if err != nil {
		return err
	}
	return fn(store)
}

// isDaemonDown reports whether err means no daemon answered, as opposed to
// the daemon refusing the request.
func isDaemonDown(err error) bool {
	return errors.Is(err, ipc.ErrDaemonNotRunning)
}

// offlineDisplays enumerates displays without a running daemon.
func offlineDisplays(cfg *config.Config) platform.Enumerator {
	if cfg.DisplaySource == config.DisplaySourceScreenshot {
		return platform.NewScreenshotEnumerator()
	}
	return nativeDisplays(cfg.Display)
}
