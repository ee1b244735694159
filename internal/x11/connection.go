package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/shape"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
)

// Connection manages the X11 connection and core X resources
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window

	// argbVisual is a depth-32 TrueColor visual, or 0 when the screen has
	// none.
	argbVisual xproto.Visualid
	grabDepth  int
}

// NewConnection establishes a connection to the X11 server and initializes
// the Shape extension overlays rely on.
func NewConnection() (*Connection, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, err
	}

	if err := shape.Init(xu.Conn()); err != nil {
		xu.Conn().Close()
		return nil, fmt.Errorf("shape extension unavailable: %w", err)
	}

	return &Connection{
		XUtil:      xu,
		Root:       xu.RootWin(),
		argbVisual: findARGBVisual(xu.Screen()),
	}, nil
}

// findARGBVisual returns the first TrueColor visual of depth 32.
func findARGBVisual(screen *xproto.ScreenInfo) xproto.Visualid {
	for _, depth := range screen.AllowedDepths {
		if depth.Depth != 32 {
			continue
		}
		for _, visual := range depth.Visuals {
			if visual.Class == xproto.VisualClassTrueColor {
				return visual.VisualId
			}
		}
	}
	return 0
}

// Compositing reports whether a compositing manager owns the
// _NET_WM_CM_S<screen> selection.
func (c *Connection) Compositing() bool {
	conn := c.XUtil.Conn()
	atom, err := xprop.Atm(c.XUtil, fmt.Sprintf("_NET_WM_CM_S%d", conn.DefaultScreen))
	if err != nil {
		return false
	}
	reply, err := xproto.GetSelectionOwner(conn, atom).Reply()
	return err == nil && reply.Owner != 0
}

// MainPing starts the X event loop in its own goroutine. Event callbacks run
// between a receive on before and a receive on after; quit is closed when
// the loop stops.
func (c *Connection) MainPing() (before, after, quit <-chan struct{}) {
	b, a, q := xevent.MainPing(c.XUtil)
	return b, a, q
}

// Quit stops the X event loop started by MainPing.
func (c *Connection) Quit() {
	xevent.Quit(c.XUtil)
}

// Grab holds the server so the following requests are applied together.
// Calls nest; only the outermost pair reaches the server.
func (c *Connection) Grab() {
	if c.grabDepth == 0 {
		xproto.GrabServer(c.XUtil.Conn())
	}
	c.grabDepth++
}

// Ungrab releases one level of Grab.
func (c *Connection) Ungrab() {
	if c.grabDepth == 0 {
		return
	}
	c.grabDepth--
	if c.grabDepth == 0 {
		xproto.UngrabServer(c.XUtil.Conn())
		c.XUtil.Sync()
	}
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	if c.grabDepth > 0 {
		xproto.UngrabServer(c.XUtil.Conn())
		c.grabDepth = 0
	}
	c.XUtil.Conn().Close()
}
