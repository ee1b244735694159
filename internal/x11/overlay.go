package x11

import (
	"fmt"
	"image"

	"github.com/BurntSushi/xgb/shape"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xprop"
)

const (
	// putImageHeader is the fixed size of a PutImage request in bytes.
	putImageHeader = 24
	// maxOverlaySize bounds each overlay dimension. Larger frames are
	// clipped; the limit keeps a pixel row inside one PutImage request.
	maxOverlaySize = 16384
)

func clampSize(v int) int {
	return min(max(v, 1), maxOverlaySize)
}

// Overlay is an override-redirect window whose contents live in a
// background pixmap, so the server repaints it on exposure without a round
// trip through the client.
//
// With a compositing manager running the overlay uses a depth-32 ARGB
// visual and is blended by the compositor. Otherwise it uses the root
// visual and translucency is limited to the bounding shape.
type Overlay struct {
	Window xproto.Window

	conn     *Connection
	pixmap   xproto.Pixmap
	gc       xproto.Gcontext
	colormap xproto.Colormap
	depth    byte
	width    int
	height   int
	mapped   bool
}

// CreateOverlay creates an unmapped overlay window of the given size.
func (c *Connection) CreateOverlay(width, height int) (*Overlay, error) {
	conn := c.XUtil.Conn()
	screen := c.XUtil.Screen()
	width, height = clampSize(width), clampSize(height)

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return nil, err
	}

	o := &Overlay{Window: wid, conn: c, depth: screen.RootDepth}
	visual := screen.RootVisual
	mask := uint32(xproto.CwBackPixel | xproto.CwOverrideRedirect)
	// Value list order follows the bit positions of the mask.
	values := []uint32{0, 1}

	if c.argbVisual != 0 && c.Compositing() {
		cmap, err := xproto.NewColormapId(conn)
		if err != nil {
			return nil, err
		}
		err = xproto.CreateColormapChecked(conn, xproto.ColormapAllocNone, cmap, c.Root, c.argbVisual).Check()
		if err != nil {
			return nil, fmt.Errorf("failed to create overlay colormap: %w", err)
		}
		o.colormap = cmap
		o.depth = 32
		visual = c.argbVisual
		// A window whose depth differs from its parent needs its own border
		// pixel and colormap.
		mask = xproto.CwBackPixel | xproto.CwBorderPixel | xproto.CwOverrideRedirect | xproto.CwColormap
		values = []uint32{0, 0, 1, uint32(cmap)}
	}

	err = xproto.CreateWindowChecked(
		conn,
		o.depth,
		wid,
		c.Root,
		0, 0,
		uint16(width), uint16(height),
		0,
		xproto.WindowClassInputOutput,
		visual,
		mask,
		values,
	).Check()
	if err != nil {
		if o.colormap != 0 {
			xproto.FreeColormap(conn, o.colormap)
		}
		return nil, fmt.Errorf("failed to create overlay window: %w", err)
	}

	if err := o.allocPixmap(width, height); err != nil {
		o.Destroy()
		return nil, err
	}

	gc, err := xproto.NewGcontextId(conn)
	if err != nil {
		o.Destroy()
		return nil, err
	}
	if err := xproto.CreateGCChecked(conn, gc, xproto.Drawable(o.pixmap), 0, nil).Check(); err != nil {
		o.Destroy()
		return nil, fmt.Errorf("failed to create overlay graphics context: %w", err)
	}
	o.gc = gc

	ewmh.WmNameSet(c.XUtil, wid, "borders")
	return o, nil
}

func (o *Overlay) allocPixmap(width, height int) error {
	conn := o.conn.XUtil.Conn()
	pid, err := xproto.NewPixmapId(conn)
	if err != nil {
		return err
	}
	err = xproto.CreatePixmapChecked(
		conn,
		o.depth,
		pid,
		xproto.Drawable(o.Window),
		uint16(width), uint16(height),
	).Check()
	if err != nil {
		return fmt.Errorf("failed to create overlay pixmap: %w", err)
	}

	if o.pixmap != 0 {
		xproto.FreePixmap(conn, o.pixmap)
	}
	o.pixmap = pid
	o.width, o.height = width, height
	xproto.ChangeWindowAttributes(conn, o.Window, xproto.CwBackPixmap, []uint32{uint32(pid)})
	return nil
}

// Resize changes the window size and reallocates its backing pixmap.
func (o *Overlay) Resize(width, height int) error {
	width, height = clampSize(width), clampSize(height)
	if width == o.width && height == o.height {
		return nil
	}
	xproto.ConfigureWindow(
		o.conn.XUtil.Conn(),
		o.Window,
		xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
		[]uint32{uint32(width), uint32(height)},
	)
	return o.allocPixmap(width, height)
}

// Move positions the window in root coordinates.
func (o *Overlay) Move(x, y int) {
	xproto.ConfigureWindow(
		o.conn.XUtil.Conn(),
		o.Window,
		xproto.ConfigWindowX|xproto.ConfigWindowY,
		[]uint32{uint32(int32(x)), uint32(int32(y))},
	)
}

// StackAbove restacks the window directly above sibling.
func (o *Overlay) StackAbove(sibling xproto.Window) error {
	return xproto.ConfigureWindowChecked(
		o.conn.XUtil.Conn(),
		o.Window,
		xproto.ConfigWindowSibling|xproto.ConfigWindowStackMode,
		[]uint32{uint32(sibling), xproto.StackModeAbove},
	).Check()
}

// Show maps the window if it is not mapped yet.
func (o *Overlay) Show() {
	if o.mapped {
		return
	}
	xproto.MapWindow(o.conn.XUtil.Conn(), o.Window)
	o.mapped = true
}

// SetInputPassthrough empties the input region so pointer events reach the
// windows below.
func (o *Overlay) SetInputPassthrough() error {
	return shape.RectanglesChecked(
		o.conn.XUtil.Conn(),
		shape.SoSet, shape.SkInput,
		xproto.ClipOrderingUnsorted,
		o.Window, 0, 0, nil,
	).Check()
}

// SetBoundingShape restricts the visible region of the window to rects.
func (o *Overlay) SetBoundingShape(rects []image.Rectangle) error {
	xrects := make([]xproto.Rectangle, 0, len(rects))
	for _, r := range rects {
		if r.Empty() {
			continue
		}
		xrects = append(xrects, xproto.Rectangle{
			X:      int16(r.Min.X),
			Y:      int16(r.Min.Y),
			Width:  uint16(r.Dx()),
			Height: uint16(r.Dy()),
		})
	}
	return shape.RectanglesChecked(
		o.conn.XUtil.Conn(),
		shape.SoSet, shape.SkBounding,
		xproto.ClipOrderingUnsorted,
		o.Window, 0, 0, xrects,
	).Check()
}

// SetOpaque advertises the whole window as opaque to compositing managers,
// or removes the hint.
func (o *Overlay) SetOpaque(opaque bool) error {
	xu := o.conn.XUtil
	if !opaque {
		atom, err := xprop.Atm(xu, "_NET_WM_OPAQUE_REGION")
		if err != nil {
			return err
		}
		return xproto.DeletePropertyChecked(xu.Conn(), o.Window, atom).Check()
	}
	return xprop.ChangeProp32(xu, o.Window, "_NET_WM_OPAQUE_REGION", "CARDINAL",
		0, 0, uint(o.width), uint(o.height))
}

// SetLayer mirrors a stacking layer onto the window's _NET_WM_STATE so
// compositors can apply per-layer rules.
func (o *Overlay) SetLayer(level, subLevel int) error {
	var states []string
	switch {
	case level > 0:
		states = append(states, "_NET_WM_STATE_ABOVE")
	case level < 0:
		states = append(states, "_NET_WM_STATE_BELOW")
	}
	if subLevel > 0 {
		states = append(states, "_NET_WM_STATE_FULLSCREEN")
	}
	return ewmh.WmStateSet(o.conn.XUtil, o.Window, states)
}

// Translucent reports whether the overlay has an alpha channel.
func (o *Overlay) Translucent() bool {
	return o.depth == 32
}

// Paint uploads 32-bit pixel rows to the backing pixmap and refreshes the
// window. rows returns the pixels of the given row range, BGRX for opaque
// overlays and premultiplied ARGB for translucent ones. Uploads are split to
// stay under the server's maximum request length.
func (o *Overlay) Paint(rows func(y0, y1 int) []byte) error {
	conn := o.conn.XUtil.Conn()
	stride := o.width * 4
	maxBytes := int(xproto.Setup(conn).MaximumRequestLength)*4 - putImageHeader
	if stride > maxBytes {
		return fmt.Errorf("overlay row of %d bytes exceeds request limit %d", stride, maxBytes)
	}
	chunk := maxBytes / stride

	for y := 0; y < o.height; y += chunk {
		y1 := min(y+chunk, o.height)
		xproto.PutImage(
			conn,
			xproto.ImageFormatZPixmap,
			xproto.Drawable(o.pixmap),
			o.gc,
			uint16(o.width), uint16(y1-y),
			0, int16(y),
			0,
			o.depth,
			rows(y, y1),
		)
	}
	xproto.ClearArea(conn, false, o.Window, 0, 0, 0, 0)
	return nil
}

// Size returns the current window size.
func (o *Overlay) Size() (width, height int) {
	return o.width, o.height
}

// Destroy frees the window and its server-side resources.
func (o *Overlay) Destroy() {
	conn := o.conn.XUtil.Conn()
	if o.gc != 0 {
		xproto.FreeGC(conn, o.gc)
	}
	if o.pixmap != 0 {
		xproto.FreePixmap(conn, o.pixmap)
	}
	if o.Window != 0 {
		xproto.DestroyWindow(conn, o.Window)
	}
	if o.colormap != 0 {
		xproto.FreeColormap(conn, o.colormap)
	}
	o.gc, o.pixmap, o.colormap, o.Window = 0, 0, 0, 0
	o.mapped = false
}
