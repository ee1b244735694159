package runtimepath

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// lockDir holds the per-user singleton lock. It is fixed rather than derived
// from the runtime dir so every session of a user contends on the same file.
const lockDir = "/tmp"

// ErrNoUser is returned when the lock path cannot be derived.
var ErrNoUser = errors.New("USER is not set")

// Dir returns the runtime directory used for the IPC socket. Priority:
// 1) XDG_RUNTIME_DIR (if set)
// 2) /run/user/<uid> (if present)
// 3) /tmp/borders-runtime-<uid> (created)
func Dir() (string, error) {
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		return runtimeDir, nil
	}

	uid := os.Getuid()
	runUserDir := fmt.Sprintf("/run/user/%d", uid)
	if info, err := os.Stat(runUserDir); err == nil && info.IsDir() {
		return runUserDir, nil
	}

	tmpDir := fmt.Sprintf("/tmp/borders-runtime-%d", uid)
	if err := os.MkdirAll(tmpDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create runtime dir: %w", err)
	}
	return tmpDir, nil
}

// SocketPath returns the daemon IPC socket path.
func SocketPath() (string, error) {
	runtimeDir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(runtimeDir, "borders.sock"), nil
}

// LockPath returns the singleton lock path for user.
func LockPath(user string) (string, error) {
	if user == "" {
		return "", ErrNoUser
	}
	return filepath.Join(lockDir, fmt.Sprintf("borders_%s.lock", user)), nil
}

// LockPathFromEnv derives the lock path from the USER environment variable.
func LockPathFromEnv() (string, error) {
	return LockPath(os.Getenv("USER"))
}
