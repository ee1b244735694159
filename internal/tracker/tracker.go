// Package tracker follows X11 client windows and reports their lifecycle,
// focus and geometry changes to the border set.
package tracker

import (
	"io"
	"log/slog"

	"github.com/1broseidon/borders/internal/border"
	"github.com/1broseidon/borders/internal/platform"
	"github.com/1broseidon/borders/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// Sink receives window events. border.Set implements it.
type Sink interface {
	Add(window platform.WindowID, space platform.SpaceID) border.Handle
	Remove(window platform.WindowID, space platform.SpaceID) int
	Update(window platform.WindowID)
	Focus(window platform.WindowID)
	MoveOnly(window platform.WindowID)
}

var _ Sink = (*border.Set)(nil)

// Frame configure, map and destroy events come from per-frame listeners.
// The root only reports property changes; selecting SubstructureNotify
// there would deliver every frame event a second time.
const (
	rootEventMask   = xproto.EventMaskPropertyChange
	frameEventMask  = xproto.EventMaskStructureNotify
	clientEventMask = xproto.EventMaskPropertyChange | xproto.EventMaskStructureNotify
)

type client struct {
	frame xproto.Window
	state frameState
}

// Tracker subscribes to root and per-client events. Its callbacks run
// inside the X event loop, which the daemon loop serializes with all other
// border work.
type Tracker struct {
	conn    *x11.Connection
	sink    Sink
	logger  *slog.Logger
	clients map[xproto.Window]*client
}

// New creates a tracker feeding sink.
func New(conn *x11.Connection, sink Sink, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Tracker{
		conn:    conn,
		sink:    sink,
		logger:  logger,
		clients: make(map[xproto.Window]*client),
	}
}

// Start subscribes to root window events, adds a border for every existing
// client and focuses the active one. It must run before the event loop
// starts or on the daemon loop.
func (t *Tracker) Start() error {
	xu := t.conn.XUtil
	root := xwindow.New(xu, t.conn.Root)
	if err := root.Listen(rootEventMask); err != nil {
		return err
	}
	xevent.PropertyNotifyFun(t.onRootProperty).Connect(xu, t.conn.Root)

	t.syncClients()
	t.syncFocus()
	t.logger.Info("tracking windows", "count", len(t.clients))
	return nil
}

// ListWindows returns every normal client window with its space.
func (t *Tracker) ListWindows() ([]platform.Window, error) {
	clients, err := t.conn.ClientWindows()
	if err != nil {
		return nil, err
	}
	out := make([]platform.Window, 0, len(clients))
	for _, win := range clients {
		if !t.conn.IsNormalWindow(win) {
			continue
		}
		out = append(out, platform.Window{ID: platform.WindowID(win), Space: t.space(win)})
	}
	return out, nil
}

func (t *Tracker) space(win xproto.Window) platform.SpaceID {
	desktop, err := t.conn.GetWindowDesktop(win)
	if err != nil {
		return 0
	}
	return spaceForDesktop(desktop)
}

// syncClients diffs the client list against the managed set.
func (t *Tracker) syncClients() {
	windows, err := t.ListWindows()
	if err != nil {
		t.logger.Warn("failed to list clients", "error", err)
		return
	}

	seen := make(map[xproto.Window]bool, len(windows))
	for _, w := range windows {
		win := xproto.Window(w.ID)
		seen[win] = true
		if _, ok := t.clients[win]; ok {
			continue
		}
		t.manage(win, w.Space)
	}

	for win := range t.clients {
		if !seen[win] {
			t.forget(win)
		}
	}
}

func (t *Tracker) syncFocus() {
	active, err := t.conn.GetActiveWindow()
	if err != nil {
		t.logger.Debug("failed to read active window", "error", err)
		return
	}
	t.sink.Focus(platform.WindowID(active))
}

func (t *Tracker) manage(win xproto.Window, space platform.SpaceID) {
	xu := t.conn.XUtil

	frame, err := t.conn.Frame(win)
	if err != nil {
		t.logger.Debug("skipping window without frame", "window", win, "error", err)
		return
	}

	c := &client{frame: frame}
	if geom, err := t.conn.FrameGeometry(win); err == nil {
		c.state = frameState{X: geom.X, Y: geom.Y, Width: geom.Width, Height: geom.Height}
	}
	t.clients[win] = c
	t.listenFrame(win, frame)

	if err := xwindow.New(xu, win).Listen(clientEventMask); err != nil {
		t.logger.Debug("failed to listen on client", "window", win, "error", err)
	}
	xevent.PropertyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		t.onClientProperty(win, ev)
	}).Connect(xu, win)
	xevent.ReparentNotifyFun(func(xu *xgbutil.XUtil, ev xevent.ReparentNotifyEvent) {
		if ev.Window == win {
			t.refreshFrame(win)
		}
	}).Connect(xu, win)

	t.sink.Add(platform.WindowID(win), space)
	t.logger.Debug("window managed", "window", win, "frame", frame, "space", space)
}

func (t *Tracker) listenFrame(win, frame xproto.Window) {
	xu := t.conn.XUtil
	// An unframed client gets StructureNotify from its own listener.
	if frame != win {
		if err := xwindow.New(xu, frame).Listen(frameEventMask); err != nil {
			t.logger.Debug("failed to listen on frame", "frame", frame, "error", err)
		}
	}
	xevent.ConfigureNotifyFun(func(xu *xgbutil.XUtil, ev xevent.ConfigureNotifyEvent) {
		t.onConfigure(win, ev)
	}).Connect(xu, frame)
	xevent.MapNotifyFun(func(xu *xgbutil.XUtil, ev xevent.MapNotifyEvent) {
		t.sink.Update(platform.WindowID(win))
	}).Connect(xu, frame)
	xevent.UnmapNotifyFun(func(xu *xgbutil.XUtil, ev xevent.UnmapNotifyEvent) {
		t.sink.Update(platform.WindowID(win))
	}).Connect(xu, frame)
	xevent.DestroyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.DestroyNotifyEvent) {
		if ev.Window == frame {
			t.forget(win)
		}
	}).Connect(xu, frame)
}

// refreshFrame re-resolves a client's frame after it was reparented.
func (t *Tracker) refreshFrame(win xproto.Window) {
	c, ok := t.clients[win]
	if !ok {
		return
	}
	frame, err := t.conn.Frame(win)
	if err != nil || frame == c.frame {
		return
	}
	if c.frame != win {
		xevent.Detach(t.conn.XUtil, c.frame)
	}
	c.frame = frame
	t.listenFrame(win, frame)
	t.sink.Update(platform.WindowID(win))
}

// forget drops a client whose windows are gone or no longer listed.
func (t *Tracker) forget(win xproto.Window) {
	c, ok := t.clients[win]
	if !ok {
		return
	}
	xu := t.conn.XUtil
	if c.frame != win {
		xevent.Detach(xu, c.frame)
	}
	xevent.Detach(xu, win)
	delete(t.clients, win)
	t.sink.Remove(platform.WindowID(win), 0)
	t.logger.Debug("window forgotten", "window", win)
}

func (t *Tracker) onRootProperty(xu *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
	name, err := xprop.AtomName(xu, ev.Atom)
	if err != nil {
		return
	}
	switch name {
	case "_NET_CLIENT_LIST":
		t.syncClients()
	case "_NET_ACTIVE_WINDOW":
		t.syncFocus()
	case "_NET_CURRENT_DESKTOP":
		for win := range t.clients {
			t.sink.Update(platform.WindowID(win))
		}
	}
}

func (t *Tracker) onClientProperty(win xproto.Window, ev xevent.PropertyNotifyEvent) {
	name, err := xprop.AtomName(t.conn.XUtil, ev.Atom)
	if err != nil {
		return
	}
	switch name {
	case "_NET_WM_DESKTOP":
		t.sink.Remove(platform.WindowID(win), 0)
		t.sink.Add(platform.WindowID(win), t.space(win))
	case "_NET_WM_STATE":
		t.sink.Update(platform.WindowID(win))
	}
}

func (t *Tracker) onConfigure(win xproto.Window, ev xevent.ConfigureNotifyEvent) {
	c, ok := t.clients[win]
	if !ok {
		return
	}
	bw := int(ev.BorderWidth)
	next := frameState{
		X:      int(ev.X),
		Y:      int(ev.Y),
		Width:  int(ev.Width) + 2*bw,
		Height: int(ev.Height) + 2*bw,
		Above:  uint32(ev.AboveSibling),
	}

	switch classifyConfigure(c.state, next) {
	case ConfigureUpdate:
		t.sink.Update(platform.WindowID(win))
	case ConfigureMove:
		t.sink.MoveOnly(platform.WindowID(win))
	}
	c.state = next
}
