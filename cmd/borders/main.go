package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/1broseidon/borders/internal/config"
	"github.com/1broseidon/borders/internal/ipc"
	"github.com/1broseidon/borders/internal/lockfile"
	"github.com/1broseidon/borders/internal/runtimepath"
)

func main() {
	args := os.Args[1:]
	if len(args) > 0 && isHelp(args[0]) {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	lockPath, err := runtimepath.LockPathFromEnv()
	if err != nil {
		log.Fatalf("Cannot determine lock file: %v", err)
	}

	tokens, rejected := config.SplitTokens(args)
	for _, tok := range rejected {
		fmt.Fprintf(os.Stderr, "borders: ignoring invalid setting %q\n", tok)
	}

	lock, err := lockfile.Acquire(lockPath)
	if errors.Is(err, lockfile.ErrLocked) {
		os.Exit(forward(ipc.NewClient(), tokens, os.Stderr))
	}
	if err != nil {
		log.Fatalf("Failed to acquire lock: %v", err)
	}

	runDaemon(lock, tokens)
}

func isHelp(arg string) bool {
	switch arg {
	case "help", "-h", "--help":
		return true
	}
	return false
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: borders [key=value ...]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Draws a colored outline around every window. The first instance runs")
	fmt.Fprintln(w, "in the foreground; later invocations send their settings to it.")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Settings:")
	fmt.Fprintln(w, "  active_color=0xAARRGGBB     Outline color of the focused window")
	fmt.Fprintln(w, "  inactive_color=0xAARRGGBB   Outline color of other windows")
	fmt.Fprintln(w, "  width=<float>               Outline width in pixels")
	fmt.Fprintln(w, "  style=<r|s>                 Round or square corners")
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "Defaults are read from %s\n", config.DefaultConfigPath())
}

type sender interface {
	Send(tokens []string) (*ipc.UpdateData, error)
}

// forward hands tokens to the running instance and returns the exit code.
func forward(client sender, tokens []string, stderr io.Writer) int {
	if len(tokens) == 0 {
		fmt.Fprintln(stderr, "borders: already running and no settings to send")
		return 1
	}
	if _, err := client.Send(tokens); err != nil {
		fmt.Fprintf(stderr, "borders: failed to forward settings: %v\n", err)
		return 1
	}
	return 0
}
