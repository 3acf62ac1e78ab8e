package runtimepath

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func TestDir_PrefersXDGRuntimeDir(t *testing.T) {
	want := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", want)

	got, err := Dir()
	if err != nil {
		t.Fatalf("Dir: %v", err)
	}
	if got != want {
		t.Fatalf("Dir = %q, want %q", got, want)
	}
}

func TestDir_FallsBackWithoutXDG(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")
	t.Setenv("TMPDIR", t.TempDir())

	got, err := Dir()
	if err != nil {
		t.Fatalf("Dir: %v", err)
	}
	uid := strconv.Itoa(os.Getuid())
	run := filepath.Join("/run/user", uid)
	tmp := filepath.Join(os.TempDir(), "veil-runtime-"+uid)
	if got != run && got != tmp {
		t.Fatalf("Dir = %q, want %q or %q", got, run, tmp)
	}
	if got == tmp {
		if info, err := os.Stat(tmp); err != nil || info.Mode().Perm() != 0o700 {
			t.Fatalf("expected private runtime dir, stat = %v, %v", info, err)
		}
	}
}

func TestSocketPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", dir)
	t.Setenv(SocketEnv, "")

	got, err := SocketPath()
	if err != nil {
		t.Fatalf("SocketPath: %v", err)
	}
	if want := filepath.Join(dir, "veil.sock"); got != want {
		t.Fatalf("SocketPath = %q, want %q", got, want)
	}

	t.Setenv(SocketEnv, "/tmp/nested.sock")
	if got, _ := SocketPath(); got != "/tmp/nested.sock" {
		t.Fatalf("SocketPath with override = %q", got)
	}
}
