package platform

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// SpaceID identifies a virtual desktop. Zero means unset and matches any
// space on lookup.
type SpaceID uint64

// SurfaceID identifies an overlay surface. Zero means not allocated.
type SurfaceID uint32

// Point is a position in screen coordinates.
type Point struct {
	X float64
	Y float64
}

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Origin returns the top-left corner.
func (r Rect) Origin() Point {
	return Point{X: r.X, Y: r.Y}
}

// Inset shrinks r by dx and dy on each side. Negative values grow it.
func (r Rect) Inset(dx, dy float64) Rect {
	return Rect{
		X:      r.X + dx,
		Y:      r.Y + dy,
		Width:  r.Width - 2*dx,
		Height: r.Height - 2*dy,
	}
}

// Tags are capability flags applied to an overlay surface.
type Tags uint64

const (
	// TagNonInteractive lets pointer input pass through the surface.
	TagNonInteractive Tags = 1 << 1
)

// Canvas is a drawing context bound to one overlay surface.
type Canvas interface {
	SetStrokeColor(r, g, b, a float64)
	SetLineWidth(width float64)
	ClearRect(rect Rect)
	AddRoundedRect(rect Rect, radius float64)
	StrokePath()
	Flush() error
	Release()
}

// Transaction batches geometry changes so they are observed atomically.
type Transaction interface {
	Move(surface SurfaceID, origin Point)
	Commit() error
}

// Compositor abstracts the window-system calls an overlay border needs.
type Compositor interface {
	IsVisible(window WindowID) bool
	Bounds(window WindowID) (Rect, error)
	Level(window WindowID) (level, subLevel int, err error)
	Space(window WindowID) (SpaceID, error)

	CreateSurface(shape Rect) (SurfaceID, error)
	ReleaseSurface(surface SurfaceID)
	SetResolution(surface SurfaceID, scale float64) error
	SetTags(surface SurfaceID, tags Tags) error
	SetOpaque(surface SurfaceID, opaque bool) error
	SetShape(surface SurfaceID, shape Rect) error
	SetLevel(surface SurfaceID, level, subLevel int) error
	OrderAbove(surface SurfaceID, target WindowID) error
	MoveToSpace(surface SurfaceID, space SpaceID) error
	CreateContext(surface SurfaceID) (Canvas, error)

	DisableUpdate()
	ReenableUpdate()
	Begin() Transaction
}

// Window is a top-level client window reported by the window system.
type Window struct {
	ID    WindowID
	Space SpaceID
}
