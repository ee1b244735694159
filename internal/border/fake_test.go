package border

import (
	"fmt"

	"github.com/1broseidon/borders/internal/platform"
)

type fakeWindow struct {
	visible  bool
	bounds   platform.Rect
	level    int
	subLevel int
	space    platform.SpaceID
}

type fakeSurface struct {
	shape    platform.Rect
	origin   platform.Point
	space    platform.SpaceID
	level    int
	subLevel int
	above    platform.WindowID
	tags     platform.Tags
	opaque   bool
	canvas   *fakeCanvas
	released bool
}

// fakeCompositor records every call a border makes against it.
type fakeCompositor struct {
	windows  map[platform.WindowID]*fakeWindow
	surfaces map[platform.SurfaceID]*fakeSurface
	nextID   platform.SurfaceID

	creates    int
	releases   int
	reshapes   int
	commits    int
	updateHeld int
	failCreate bool
	failCanvas bool
}

func newFakeCompositor() *fakeCompositor {
	return &fakeCompositor{
		windows:  make(map[platform.WindowID]*fakeWindow),
		surfaces: make(map[platform.SurfaceID]*fakeSurface),
	}
}

func (f *fakeCompositor) show(id platform.WindowID, bounds platform.Rect, space platform.SpaceID) *fakeWindow {
	w := &fakeWindow{visible: true, bounds: bounds, space: space}
	f.windows[id] = w
	return w
}

func (f *fakeCompositor) live() int {
	n := 0
	for _, s := range f.surfaces {
		if !s.released {
			n++
		}
	}
	return n
}

func (f *fakeCompositor) strokes() int {
	n := 0
	for _, s := range f.surfaces {
		if s.canvas != nil {
			n += s.canvas.strokes
		}
	}
	return n
}

func (f *fakeCompositor) IsVisible(window platform.WindowID) bool {
	w, ok := f.windows[window]
	return ok && w.visible
}

func (f *fakeCompositor) Bounds(window platform.WindowID) (platform.Rect, error) {
	w, ok := f.windows[window]
	if !ok {
		return platform.Rect{}, fmt.Errorf("no window %d", window)
	}
	return w.bounds, nil
}

func (f *fakeCompositor) Level(window platform.WindowID) (int, int, error) {
	w, ok := f.windows[window]
	if !ok {
		return 0, 0, fmt.Errorf("no window %d", window)
	}
	return w.level, w.subLevel, nil
}

func (f *fakeCompositor) Space(window platform.WindowID) (platform.SpaceID, error) {
	w, ok := f.windows[window]
	if !ok {
		return 0, fmt.Errorf("no window %d", window)
	}
	return w.space, nil
}

func (f *fakeCompositor) CreateSurface(shape platform.Rect) (platform.SurfaceID, error) {
	if f.failCreate {
		return 0, fmt.Errorf("create failed")
	}
	f.nextID++
	f.creates++
	f.surfaces[f.nextID] = &fakeSurface{
		shape:  shape,
		origin: platform.Point{X: -9999, Y: -9999},
		opaque: true,
	}
	return f.nextID, nil
}

func (f *fakeCompositor) surface(id platform.SurfaceID) (*fakeSurface, error) {
	s, ok := f.surfaces[id]
	if !ok || s.released {
		return nil, fmt.Errorf("no surface %d", id)
	}
	return s, nil
}

func (f *fakeCompositor) ReleaseSurface(id platform.SurfaceID) {
	if s, ok := f.surfaces[id]; ok && !s.released {
		s.released = true
		f.releases++
	}
}

func (f *fakeCompositor) SetResolution(platform.SurfaceID, float64) error { return nil }

func (f *fakeCompositor) SetTags(id platform.SurfaceID, tags platform.Tags) error {
	s, err := f.surface(id)
	if err != nil {
		return err
	}
	s.tags |= tags
	return nil
}

func (f *fakeCompositor) SetOpaque(id platform.SurfaceID, opaque bool) error {
	s, err := f.surface(id)
	if err != nil {
		return err
	}
	s.opaque = opaque
	return nil
}

func (f *fakeCompositor) SetShape(id platform.SurfaceID, shape platform.Rect) error {
	s, err := f.surface(id)
	if err != nil {
		return err
	}
	s.shape = shape
	f.reshapes++
	return nil
}

func (f *fakeCompositor) SetLevel(id platform.SurfaceID, level, subLevel int) error {
	s, err := f.surface(id)
	if err != nil {
		return err
	}
	s.level, s.subLevel = level, subLevel
	return nil
}

func (f *fakeCompositor) OrderAbove(id platform.SurfaceID, target platform.WindowID) error {
	s, err := f.surface(id)
	if err != nil {
		return err
	}
	s.above = target
	return nil
}

func (f *fakeCompositor) MoveToSpace(id platform.SurfaceID, space platform.SpaceID) error {
	s, err := f.surface(id)
	if err != nil {
		return err
	}
	s.space = space
	return nil
}

func (f *fakeCompositor) CreateContext(id platform.SurfaceID) (platform.Canvas, error) {
	if f.failCanvas {
		return nil, fmt.Errorf("context failed")
	}
	s, err := f.surface(id)
	if err != nil {
		return nil, err
	}
	s.canvas = &fakeCanvas{}
	return s.canvas, nil
}

func (f *fakeCompositor) DisableUpdate()  { f.updateHeld++ }
func (f *fakeCompositor) ReenableUpdate() { f.updateHeld-- }

func (f *fakeCompositor) Begin() platform.Transaction {
	return &fakeTransaction{comp: f, moves: map[platform.SurfaceID]platform.Point{}}
}

type fakeTransaction struct {
	comp  *fakeCompositor
	moves map[platform.SurfaceID]platform.Point
}

func (t *fakeTransaction) Move(id platform.SurfaceID, origin platform.Point) {
	t.moves[id] = origin
}

func (t *fakeTransaction) Commit() error {
	for id, origin := range t.moves {
		s, err := t.comp.surface(id)
		if err != nil {
			return err
		}
		s.origin = origin
	}
	t.comp.commits++
	return nil
}

type fakeCanvas struct {
	color    [4]float64
	width    float64
	path     []platform.Rect
	radius   float64
	strokes  int
	cleared  int
	flushes  int
	stroked  platform.Rect
	released bool
}

func (c *fakeCanvas) SetStrokeColor(r, g, b, a float64) { c.color = [4]float64{r, g, b, a} }
func (c *fakeCanvas) SetLineWidth(width float64)        { c.width = width }
func (c *fakeCanvas) ClearRect(platform.Rect)           { c.cleared++ }

func (c *fakeCanvas) AddRoundedRect(rect platform.Rect, radius float64) {
	c.path = append(c.path, rect)
	c.radius = radius
}

func (c *fakeCanvas) StrokePath() {
	if len(c.path) > 0 {
		c.stroked = c.path[len(c.path)-1]
	}
	c.path = nil
	c.strokes++
}

func (c *fakeCanvas) Flush() error {
	c.flushes++
	return nil
}

func (c *fakeCanvas) Release() { c.released = true }
