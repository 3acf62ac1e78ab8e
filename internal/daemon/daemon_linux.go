//go:build linux

package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/1broseidon/veil/internal/config"
	"github.com/1broseidon/veil/internal/host"
	"github.com/1broseidon/veil/internal/hotkeys"
	"github.com/1broseidon/veil/internal/hotkeys/xhotkey"
	"github.com/1broseidon/veil/internal/ipc"
	"github.com/1broseidon/veil/internal/loop"
	"github.com/1broseidon/veil/internal/notify"
	"github.com/1broseidon/veil/internal/overlay"
	"github.com/1broseidon/veil/internal/platform"
	"github.com/1broseidon/veil/internal/prefs"
	"golang.org/x/sync/errgroup"
)

// Run starts the daemon and blocks until ctx is done, SIGINT/SIGTERM arrives
// or the X connection goes away. SIGHUP reloads the config.
func Run(ctx context.Context, opts Options) error {
	path := opts.ConfigPath
	if path == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	logOut := opts.LogOutput
	if logOut == nil {
		logOut = os.Stderr
	}

	store, err := prefs.Open(path, opts.Logger)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg := store.Config()

	logger := opts.Logger
	var levels *slog.LevelVar
	if logger == nil {
		logger, levels = NewLogger(logOut, cfg.LogLevel)
	}
	logger.Info("configuration loaded", "path", path, "hotkey", cfg.Hotkey, "monitors", cfg.Monitors.String())

	if cfg.XAuthority != "" {
		os.Setenv("XAUTHORITY", cfg.XAuthority)
	}
	backend, err := platform.NewLinuxBackendFromDisplay(cfg.Display)
	if err != nil {
		return fmt.Errorf("failed to connect to display: %w", err)
	}
	defer backend.Disconnect()

	ui := loop.New(logger)
	notifier := notify.New(cfg.Notifications, logger)

	displays := enumeratorFor(cfg.DisplaySource, backend, logger)
	ctrl := overlay.NewController(displays,
		overlay.NewX11Factory(backend.XUtil(), backend.RootWindow(), logger),
		ui,
		overlay.Options{
			Selection:  prefs.SelectionFromConfig(cfg.Monitors),
			Appearance: host.AppearanceFromConfig(cfg),
			Logger:     logger,
		})

	var h *host.Host
	var registrar host.Registrar
	grabber, err := grabberFor(cfg.HotkeyBackend, backend, ui, logger)
	if err != nil {
		logger.Warn("global hotkey backend unavailable", "backend", cfg.HotkeyBackend, "error", err)
	} else {
		debounce := time.Duration(cfg.HotkeyDebounceMs) * time.Millisecond
		registrar = hotkeys.NewRegistrar(grabber, func() { h.OnToggleRequested() }, debounce, logger)
	}

	h = host.New(host.Options{
		Overlay:   ctrl,
		Registrar: registrar,
		Prefs:     store,
		Notifier:  notifier,
		Logger:    logger,
	})
	ui.Post(func() {
		if err := h.Start(); err != nil && !errors.Is(err, host.ErrMissingPermission) {
			logger.Warn("hotkey not registered", "error", err)
		}
	})

	reload := func() error {
		next, err := store.Reload()
		if err != nil {
			logger.Warn("config reload failed", "error", err)
			return err
		}
		if levels != nil {
			levels.Set(ParseLevel(next.LogLevel))
		}
		notifier.SetEnabled(next.Notifications)

		callCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		result := make(chan error, 1)
		if err := ui.Call(callCtx, func() { result <- h.ApplyConfig(next) }); err != nil {
			return err
		}
		if err := <-result; err != nil {
			logger.Warn("config applied with errors", "error", err)
			return err
		}
		logger.Info("config reloaded")
		return nil
	}

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ipcServer, err := ipc.NewServer(newIPCBackend(ui, h, displays, reload), logger)
	if err != nil {
		return fmt.Errorf("failed to create IPC server: %w", err)
	}
	if err := ipcServer.Start(); err != nil {
		return fmt.Errorf("failed to start IPC server: %w", err)
	}
	defer ipcServer.Stop()

	settle := opts.ReloadSettle
	if settle <= 0 {
		settle = 200 * time.Millisecond
	}

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	reconciler := NewReconciler(ReconcilerConfig{
		Interval: opts.ReconcileInterval,
		Logger:   logger,
	}, displays, disposeChanged(ui.Post, ctrl))
	reconciler.ReconcileNow()

	workers, workCtx := errgroup.WithContext(runCtx)
	workers.Go(func() error {
		err := config.Watch(workCtx, store.Path(), settle, func() { _ = reload() }, logger)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("config watcher stopped", "error", err)
		}
		return nil
	})
	workers.Go(func() error {
		reconciler.Run(workCtx)
		return nil
	})
	workers.Go(func() error {
		for {
			select {
			case <-workCtx.Done():
				return nil
			case <-hup:
				logger.Info("received SIGHUP, reloading config")
				_ = reload()
			}
		}
	})

	if cfg.Tray {
		startTray(runCtx, path, logger)
	}

	logger.Info("veil daemon started", "socket", ipcServer.SocketPath(), "degraded", h.Degraded())
	err = ui.Run(runCtx, backend.Connection())

	// The loop has stopped. Stop the workers before tearing down what they
	// post into.
	stop()
	_ = workers.Wait()
	h.Close()
	ctrl.Close()
	logger.Info("veil daemon stopped")

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func enumeratorFor(source string, backend *platform.LinuxBackend, logger *slog.Logger) platform.Enumerator {
	if source == config.DisplaySourceScreenshot {
		logger.Debug("using screenshot display enumeration")
		return platform.NewScreenshotEnumerator()
	}
	return backend
}

func grabberFor(kind string, backend *platform.LinuxBackend, ui *loop.Loop, logger *slog.Logger) (hotkeys.Grabber, error) {
	switch kind {
	case config.HotkeyBackendXHotkey:
		g, err := xhotkey.New(ui.Post)
		if err != nil {
			return nil, err
		}
		return g, nil
	case config.HotkeyBackendKeybind, "":
		if backend == nil || backend.XUtil() == nil {
			return nil, host.ErrMissingPermission
		}
		return hotkeys.NewKeybindGrabber(backend.XUtil(), backend.RootWindow(), logger), nil
	default:
		return nil, fmt.Errorf("unknown hotkey backend %q", kind)
	}
}

// startTray launches "veil tray" as a child process; systray needs a main
// thread of its own.
func startTray(ctx context.Context, configPath string, logger *slog.Logger) {
	exe, err := os.Executable()
	if err != nil {
		logger.Warn("tray: failed to find executable", "error", err)
		return
	}
	cmd := exec.CommandContext(ctx, exe, "tray", "--path", configPath)
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		logger.Warn("tray: failed to launch", "error", err)
		return
	}
	go func() {
		if err := cmd.Wait(); err != nil && ctx.Err() == nil {
			logger.Warn("tray exited", "error", err)
		}
	}()
}
