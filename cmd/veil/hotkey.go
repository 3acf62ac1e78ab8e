package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/1broseidon/veil/internal/capture"
	"github.com/1broseidon/veil/internal/hotkeys"
	"github.com/1broseidon/veil/internal/ipc"
	"github.com/1broseidon/veil/internal/prefs"
)

func printHotkeyUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  veil hotkey [--path PATH]")
	fmt.Fprintln(w, "  veil hotkey set [--path PATH] <combo>")
	fmt.Fprintln(w, "  veil hotkey record [--path PATH] [--timeout SECONDS]")
	fmt.Fprintln(w, "  veil hotkey reset [--path PATH]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Combos look like Mod4-shift-b, super+shift+b or ctrl+alt+F5 and need at")
	fmt.Fprintln(w, "least one modifier. With a running daemon the new shortcut is saved only")
	fmt.Fprintln(w, "if the window system accepts it.")
}

func runHotkey(args []string) int {
	sub := "show"
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		sub, args = args[0], args[1:]
	}

	switch sub {
	case "show":
		return runHotkeyShow(args)
	case "set":
		return runHotkeySet(args)
	case "record":
		return runHotkeyRecord(args)
	case "reset":
		return runHotkeyReset(args)
	case "help":
		printHotkeyUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown hotkey command: %s\n\n", sub)
		printHotkeyUsage(os.Stderr)
		return 2
	}
}

func hotkeyFlags(name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path, used when the daemon is not running")
	fs.Usage = func() { printHotkeyUsage(os.Stderr) }
	return fs, path
}

func parseFlags(fs *flag.FlagSet, args []string) int {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	return -1
}

func runHotkeyShow(args []string) int {
	fs, path := hotkeyFlags("hotkey")
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}

	status, err := ipc.NewClient().GetStatus()
	if err == nil {
		live := "registered"
		if !status.HotkeyLive {
			live = "not registered"
		}
		fmt.Printf("%s (%s, %s)\n", status.Hotkey, status.HotkeyDisplay, live)
		return 0
	}
	if !isDaemonDown(err) {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	store, err := openStore(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	b := store.HotkeyBinding()
	fmt.Printf("%s (%s, daemon not running)\n", b, b.Display())
	return 0
}

func runHotkeySet(args []string) int {
	fs, path := hotkeyFlags("hotkey set")
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "hotkey set requires exactly one combo")
		return 2
	}

	b, err := hotkeys.ParseBinding(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	return applyHotkey(b, *path)
}

func runHotkeyRecord(args []string) int {
	fs, path := hotkeyFlags("hotkey record")
	timeout := fs.Int("timeout", 10, "Seconds to wait for a key press")
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}

	store, err := openStore(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	client := ipc.NewClient()
	// Keep the daemon from swapping bindings under the keyboard grab.
	recording := client.BeginRecording() == nil
	if recording {
		defer client.EndRecording()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintln(os.Stderr, "Press the new shortcut (Esc cancels)...")
	rec := capture.Recorder{Display: store.Config().Display, Timeout: time.Duration(*timeout) * time.Second}
	b, err := rec.Record(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return applyHotkey(b, *path)
}

func runHotkeyReset(args []string) int {
	fs, path := hotkeyFlags("hotkey reset")
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}

	def := hotkeys.Default()
	err := ipc.NewClient().ResetHotkey()
	if isDaemonDown(err) {
		err = withStore(*path, func(s *prefs.Store) error { return s.ResetHotkeyBinding() })
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("hotkey: %s (%s)\n", def, def.Display())
	return 0
}

// applyHotkey sends b to the daemon, or validates and saves it when no
// daemon is running.
func applyHotkey(b hotkeys.Binding, path string) int {
	if err := hotkeys.Validate(b); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	err := ipc.NewClient().SetHotkey(b.String())
	suffix := ""
	if isDaemonDown(err) {
		suffix = ", saved; daemon not running"
		err = withStore(path, func(s *prefs.Store) error { return s.SetHotkeyBinding(b) })
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("hotkey: %s (%s%s)\n", b, b.Display(), suffix)
	return 0
}
