package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Geometry is a window rectangle in root coordinates.
type Geometry struct {
	X, Y          int
	Width, Height int
}

// Frame returns the top-level ancestor of a client window, which is the
// window manager's decoration frame for reparenting window managers and the
// client itself otherwise.
func (c *Connection) Frame(windowID xproto.Window) (xproto.Window, error) {
	current := windowID
	for {
		tree, err := xproto.QueryTree(c.XUtil.Conn(), current).Reply()
		if err != nil {
			return 0, fmt.Errorf("failed to query tree for 0x%x: %w", current, err)
		}
		if tree.Parent == tree.Root || tree.Parent == 0 {
			return current, nil
		}
		current = tree.Parent
	}
}

// FrameGeometry returns the frame rectangle of a client in root coordinates,
// outer X border included.
func (c *Connection) FrameGeometry(windowID xproto.Window) (Geometry, error) {
	frame, err := c.Frame(windowID)
	if err != nil {
		return Geometry{}, err
	}

	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(frame)).Reply()
	if err != nil {
		return Geometry{}, fmt.Errorf("failed to get geometry for 0x%x: %w", frame, err)
	}

	translate, err := xproto.TranslateCoordinates(c.XUtil.Conn(), frame, c.Root, 0, 0).Reply()
	if err != nil {
		return Geometry{}, fmt.Errorf("failed to translate coordinates for 0x%x: %w", frame, err)
	}

	bw := int(geom.BorderWidth)
	return Geometry{
		X:      int(translate.DstX) - bw,
		Y:      int(translate.DstY) - bw,
		Width:  int(geom.Width) + 2*bw,
		Height: int(geom.Height) + 2*bw,
	}, nil
}

// IsViewable reports whether a client's frame is mapped and the client is
// not hidden.
func (c *Connection) IsViewable(windowID xproto.Window) bool {
	frame, err := c.Frame(windowID)
	if err != nil {
		return false
	}
	attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), frame).Reply()
	if err != nil || attrs.MapState != xproto.MapStateViewable {
		return false
	}
	return !c.HasState(windowID, "_NET_WM_STATE_HIDDEN")
}

// HasState reports whether _NET_WM_STATE on a window contains state.
func (c *Connection) HasState(windowID xproto.Window, state string) bool {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return false
	}
	for _, s := range states {
		if s == state {
			return true
		}
	}
	return false
}

// StackingLevel maps _NET_WM_STATE onto a coarse layer: 1 for keep-above,
// -1 for keep-below, 0 otherwise. subLevel is 1 for fullscreen windows.
func (c *Connection) StackingLevel(windowID xproto.Window) (level, subLevel int, err error) {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get window state: %w", err)
	}
	for _, s := range states {
		switch s {
		case "_NET_WM_STATE_ABOVE":
			level = 1
		case "_NET_WM_STATE_BELOW":
			level = -1
		case "_NET_WM_STATE_FULLSCREEN":
			subLevel = 1
		}
	}
	return level, subLevel, nil
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}

	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL", "_NET_WM_WINDOW_TYPE_DIALOG":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP",
			"_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH",
			"_NET_WM_WINDOW_TYPE_NOTIFICATION",
			"_NET_WM_WINDOW_TYPE_TOOLTIP",
			"_NET_WM_WINDOW_TYPE_MENU",
			"_NET_WM_WINDOW_TYPE_DROPDOWN_MENU",
			"_NET_WM_WINDOW_TYPE_POPUP_MENU":
			return false
		}
	}

	// If no specific type is set, assume it's normal
	return len(types) == 0
}

// ClientWindows returns the window manager's client list.
func (c *Connection) ClientWindows() ([]xproto.Window, error) {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to get client list: %w", err)
	}
	return clients, nil
}

func (c *Connection) GetActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}
