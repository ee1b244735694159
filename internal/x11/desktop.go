package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// allDesktops is the _NET_WM_DESKTOP value of sticky windows.
const allDesktops = 0xFFFFFFFF

// GetCurrentDesktop returns the current virtual desktop number (0-indexed).
// Uses _NET_CURRENT_DESKTOP atom. Returns 0 with an error if detection fails.
func (c *Connection) GetCurrentDesktop() (int, error) {
	desktop, err := ewmh.CurrentDesktopGet(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("failed to get current desktop: %w", err)
	}
	return int(desktop), nil
}

// GetWindowDesktop returns the desktop number a window is on.
// Uses _NET_WM_DESKTOP atom. Returns -1 for "sticky" windows (visible on all desktops).
// Returns 0 with an error if detection fails.
func (c *Connection) GetWindowDesktop(windowID xproto.Window) (int, error) {
	desktop, err := ewmh.WmDesktopGet(c.XUtil, windowID)
	if err != nil {
		return 0, fmt.Errorf("failed to get window desktop: %w", err)
	}
	if desktop == allDesktops {
		return -1, nil
	}
	return int(desktop), nil
}

// SetOverlayDesktop pins an overlay window to a desktop, or to all desktops
// when desktop is negative. Overlays are override-redirect, so the property
// is written directly rather than requested from the window manager.
func (c *Connection) SetOverlayDesktop(windowID xproto.Window, desktop int) error {
	value := uint(allDesktops)
	if desktop >= 0 {
		value = uint(desktop)
	}
	if err := ewmh.WmDesktopSet(c.XUtil, windowID, value); err != nil {
		return fmt.Errorf("failed to set overlay desktop: %w", err)
	}
	return nil
}
