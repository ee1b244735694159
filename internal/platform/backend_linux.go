//go:build linux

package platform

import (
	"fmt"
	"image"
	"math"

	"github.com/1broseidon/borders/internal/render"
	"github.com/1broseidon/borders/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
)

// LinuxBackend implements Compositor on top of an X11 connection. Surfaces
// are override-redirect overlay windows stacked directly above the target's
// frame.
type LinuxBackend struct {
	conn     *x11.Connection
	surfaces map[SurfaceID]*x11.Overlay
	next     SurfaceID
}

var _ Compositor = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{
		conn:     conn,
		surfaces: make(map[SurfaceID]*x11.Overlay),
	}
}

// Disconnect destroys every remaining surface and closes the X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b == nil || b.conn == nil {
		return
	}
	for id := range b.surfaces {
		b.ReleaseSurface(id)
	}
	b.conn.Close()
}

func (b *LinuxBackend) IsVisible(window WindowID) bool {
	return b.conn.IsViewable(xproto.Window(window))
}

func (b *LinuxBackend) Bounds(window WindowID) (Rect, error) {
	geom, err := b.conn.FrameGeometry(xproto.Window(window))
	if err != nil {
		return Rect{}, err
	}
	return Rect{
		X:      float64(geom.X),
		Y:      float64(geom.Y),
		Width:  float64(geom.Width),
		Height: float64(geom.Height),
	}, nil
}

func (b *LinuxBackend) Level(window WindowID) (int, int, error) {
	return b.conn.StackingLevel(xproto.Window(window))
}

// Space maps _NET_WM_DESKTOP to a SpaceID; sticky windows map to zero.
func (b *LinuxBackend) Space(window WindowID) (SpaceID, error) {
	desktop, err := b.conn.GetWindowDesktop(xproto.Window(window))
	if err != nil {
		return 0, err
	}
	if desktop < 0 {
		return 0, nil
	}
	return SpaceID(desktop + 1), nil
}

func (b *LinuxBackend) CreateSurface(shape Rect) (SurfaceID, error) {
	overlay, err := b.conn.CreateOverlay(pixels(shape.Width), pixels(shape.Height))
	if err != nil {
		return 0, err
	}
	b.next++
	b.surfaces[b.next] = overlay
	return b.next, nil
}

func (b *LinuxBackend) ReleaseSurface(surface SurfaceID) {
	if o, ok := b.surfaces[surface]; ok {
		o.Destroy()
		delete(b.surfaces, surface)
	}
}

func (b *LinuxBackend) overlay(surface SurfaceID) (*x11.Overlay, error) {
	o, ok := b.surfaces[surface]
	if !ok {
		return nil, fmt.Errorf("unknown surface %d", surface)
	}
	return o, nil
}

// SetResolution only accepts a scale of 1; X11 windows have no backing scale.
func (b *LinuxBackend) SetResolution(surface SurfaceID, scale float64) error {
	if _, err := b.overlay(surface); err != nil {
		return err
	}
	if scale != 1 {
		return fmt.Errorf("unsupported surface scale %v", scale)
	}
	return nil
}

func (b *LinuxBackend) SetTags(surface SurfaceID, tags Tags) error {
	o, err := b.overlay(surface)
	if err != nil {
		return err
	}
	if tags&TagNonInteractive != 0 {
		return o.SetInputPassthrough()
	}
	return nil
}

func (b *LinuxBackend) SetOpaque(surface SurfaceID, opaque bool) error {
	o, err := b.overlay(surface)
	if err != nil {
		return err
	}
	return o.SetOpaque(opaque)
}

func (b *LinuxBackend) SetShape(surface SurfaceID, shape Rect) error {
	o, err := b.overlay(surface)
	if err != nil {
		return err
	}
	return o.Resize(pixels(shape.Width), pixels(shape.Height))
}

func (b *LinuxBackend) SetLevel(surface SurfaceID, level, subLevel int) error {
	o, err := b.overlay(surface)
	if err != nil {
		return err
	}
	return o.SetLayer(level, subLevel)
}

func (b *LinuxBackend) OrderAbove(surface SurfaceID, target WindowID) error {
	o, err := b.overlay(surface)
	if err != nil {
		return err
	}
	frame, err := b.conn.Frame(xproto.Window(target))
	if err != nil {
		return err
	}
	return o.StackAbove(frame)
}

func (b *LinuxBackend) MoveToSpace(surface SurfaceID, space SpaceID) error {
	o, err := b.overlay(surface)
	if err != nil {
		return err
	}
	return b.conn.SetOverlayDesktop(o.Window, int(space)-1)
}

func (b *LinuxBackend) CreateContext(surface SurfaceID) (Canvas, error) {
	o, err := b.overlay(surface)
	if err != nil {
		return nil, err
	}
	w, h := o.Size()
	return &linuxCanvas{overlay: o, raster: render.New(w, h)}, nil
}

func (b *LinuxBackend) DisableUpdate()  { b.conn.Grab() }
func (b *LinuxBackend) ReenableUpdate() { b.conn.Ungrab() }

func (b *LinuxBackend) Begin() Transaction {
	return &linuxTransaction{backend: b}
}

type pendingMove struct {
	surface SurfaceID
	origin  Point
}

// linuxTransaction applies queued moves under a server grab.
type linuxTransaction struct {
	backend *LinuxBackend
	moves   []pendingMove
}

func (t *linuxTransaction) Move(surface SurfaceID, origin Point) {
	t.moves = append(t.moves, pendingMove{surface: surface, origin: origin})
}

func (t *linuxTransaction) Commit() error {
	b := t.backend
	b.conn.Grab()
	defer b.conn.Ungrab()

	for _, m := range t.moves {
		o, err := b.overlay(m.surface)
		if err != nil {
			return err
		}
		o.Move(int(math.Round(m.origin.X)), int(math.Round(m.origin.Y)))
	}
	t.moves = nil
	return nil
}

// linuxCanvas renders into an offscreen raster and uploads it to the
// overlay on Flush. The raster follows the overlay size lazily.
type linuxCanvas struct {
	overlay *x11.Overlay
	raster  *render.Raster
}

func (c *linuxCanvas) sync() {
	w, h := c.overlay.Size()
	c.raster.Resize(w, h)
}

func (c *linuxCanvas) SetStrokeColor(r, g, b, a float64) {
	c.raster.SetStrokeColor(r, g, b, strokeAlpha(a, c.overlay.Translucent()))
}

func (c *linuxCanvas) SetLineWidth(width float64) { c.raster.SetLineWidth(width) }

// strokeAlpha maps a color's alpha onto what the overlay can show. Without
// an alpha channel any visible color is painted opaque.
func strokeAlpha(alpha float64, translucent bool) float64 {
	if translucent || alpha <= 0 {
		return alpha
	}
	return 1
}

func (c *linuxCanvas) ClearRect(rect Rect) {
	c.sync()
	c.raster.ClearRect(rect.X, rect.Y, rect.Width, rect.Height)
}

func (c *linuxCanvas) AddRoundedRect(rect Rect, radius float64) {
	c.raster.AddRoundedRect(rect.X, rect.Y, rect.Width, rect.Height, radius)
}

func (c *linuxCanvas) StrokePath() {
	c.sync()
	c.raster.StrokePath()
}

// Flush shapes the overlay to the painted pixels, uploads them and maps the
// overlay.
func (c *linuxCanvas) Flush() error {
	if c.overlay.Window == 0 {
		return fmt.Errorf("overlay already destroyed")
	}
	c.sync()

	threshold, pixels := uint8(render.OpaqueThreshold), c.raster.BGRX
	if c.overlay.Translucent() {
		threshold, pixels = 1, c.raster.ARGB
	}
	if err := c.overlay.SetBoundingShape(c.raster.Mask(threshold)); err != nil {
		return fmt.Errorf("failed to shape overlay: %w", err)
	}
	width := c.raster.Bounds().Dx()
	err := c.overlay.Paint(func(y0, y1 int) []byte {
		return pixels(image.Rect(0, y0, width, y1))
	})
	if err != nil {
		return fmt.Errorf("failed to paint overlay: %w", err)
	}
	c.overlay.Show()
	return nil
}

func (c *linuxCanvas) Release() {
	c.raster = render.New(0, 0)
}

func pixels(v float64) int {
	return int(math.Ceil(v))
}
