// Package render rasterizes border strokes into RGBA images and derives the
// shape mask and pixel data an overlay window needs.
package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/vector"
)

// kappa places cubic control points so a quarter curve approximates a
// circular arc.
const kappa = 0.5522847498

// OpaqueThreshold is the mask threshold for windows that cannot blend: a
// pixel needs at least this alpha to be part of the window shape.
const OpaqueThreshold = 0x40

type roundedRect struct {
	x, y, w, h, radius float64
}

// Raster is an offscreen RGBA canvas with a small path-and-stroke API.
type Raster struct {
	img   *image.RGBA
	color color.NRGBA
	width float64
	path  []roundedRect
}

// New returns a transparent raster of the given size.
func New(width, height int) *Raster {
	return &Raster{
		img:   image.NewRGBA(image.Rect(0, 0, max(width, 0), max(height, 0))),
		color: color.NRGBA{A: 0xff},
		width: 1,
	}
}

// Resize replaces the backing image, discarding its contents.
func (r *Raster) Resize(width, height int) {
	b := r.img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return
	}
	r.img = image.NewRGBA(image.Rect(0, 0, max(width, 0), max(height, 0)))
}

func (r *Raster) Bounds() image.Rectangle { return r.img.Bounds() }
func (r *Raster) Image() *image.RGBA      { return r.img }

// SetStrokeColor sets the stroke color from components in [0, 1].
func (r *Raster) SetStrokeColor(red, green, blue, alpha float64) {
	c := colorful.Color{R: red, G: green, B: blue}.Clamped()
	cr, cg, cb := c.RGB255()
	r.color = color.NRGBA{R: cr, G: cg, B: cb, A: uint8(math.Round(clamp01(alpha) * 0xff))}
}

func (r *Raster) SetLineWidth(width float64) {
	r.width = width
}

// ClearRect makes the given region fully transparent.
func (r *Raster) ClearRect(x, y, w, h float64) {
	rect := image.Rect(
		int(math.Floor(x)), int(math.Floor(y)),
		int(math.Ceil(x+w)), int(math.Ceil(y+h)),
	).Intersect(r.img.Bounds())
	draw.Draw(r.img, rect, image.Transparent, image.Point{}, draw.Src)
}

// AddRoundedRect appends a rounded rectangle to the current path. The radius
// is clamped to half the shorter side.
func (r *Raster) AddRoundedRect(x, y, w, h, radius float64) {
	r.path = append(r.path, roundedRect{x: x, y: y, w: w, h: h, radius: radius})
}

// StrokePath strokes every shape in the current path with the stroke color
// and line width, centered on the outline, and clears the path.
func (r *Raster) StrokePath() {
	defer func() { r.path = r.path[:0] }()

	b := r.img.Bounds()
	if r.width <= 0 || b.Empty() || r.color.A == 0 {
		return
	}

	half := r.width / 2
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	for _, p := range r.path {
		outer := roundedRect{
			x: p.x - half, y: p.y - half,
			w: p.w + r.width, h: p.h + r.width,
			radius: p.radius + half,
		}
		if outer.w <= 0 || outer.h <= 0 {
			continue
		}
		addContour(z, outer, false)

		inner := roundedRect{
			x: p.x + half, y: p.y + half,
			w: p.w - r.width, h: p.h - r.width,
			radius: math.Max(p.radius-half, 0),
		}
		if inner.w > 0 && inner.h > 0 {
			addContour(z, inner, true)
		}
	}
	z.Draw(r.img, b, image.NewUniform(r.color), image.Point{})
}

type segment struct {
	cubic      bool
	c1, c2, to [2]float64
}

// addContour adds a closed rounded rectangle to z. Reversed contours wind
// the other way so they punch a hole in an enclosing contour.
func addContour(z *vector.Rasterizer, rr roundedRect, reversed bool) {
	rad := math.Min(math.Max(rr.radius, 0), math.Min(rr.w, rr.h)/2)
	k := rad * kappa
	x0, y0 := rr.x, rr.y
	x1, y1 := rr.x+rr.w, rr.y+rr.h

	start := [2]float64{x0 + rad, y0}
	segs := []segment{
		{to: [2]float64{x1 - rad, y0}},
		{cubic: true, c1: [2]float64{x1 - rad + k, y0}, c2: [2]float64{x1, y0 + rad - k}, to: [2]float64{x1, y0 + rad}},
		{to: [2]float64{x1, y1 - rad}},
		{cubic: true, c1: [2]float64{x1, y1 - rad + k}, c2: [2]float64{x1 - rad + k, y1}, to: [2]float64{x1 - rad, y1}},
		{to: [2]float64{x0 + rad, y1}},
		{cubic: true, c1: [2]float64{x0 + rad - k, y1}, c2: [2]float64{x0, y1 - rad + k}, to: [2]float64{x0, y1 - rad}},
		{to: [2]float64{x0, y0 + rad}},
		{cubic: true, c1: [2]float64{x0, y0 + rad - k}, c2: [2]float64{x0 + rad - k, y0}, to: start},
	}
	if reversed {
		segs = reverseContour(start, segs)
	}

	z.MoveTo(float32(start[0]), float32(start[1]))
	for _, s := range segs {
		if s.cubic {
			z.CubeTo(
				float32(s.c1[0]), float32(s.c1[1]),
				float32(s.c2[0]), float32(s.c2[1]),
				float32(s.to[0]), float32(s.to[1]),
			)
			continue
		}
		z.LineTo(float32(s.to[0]), float32(s.to[1]))
	}
	z.ClosePath()
}

func reverseContour(start [2]float64, segs []segment) []segment {
	out := make([]segment, 0, len(segs))
	for i := len(segs) - 1; i >= 0; i-- {
		from := start
		if i > 0 {
			from = segs[i-1].to
		}
		s := segs[i]
		out = append(out, segment{cubic: s.cubic, c1: s.c2, c2: s.c1, to: from})
	}
	return out
}

// Mask returns the pixels whose alpha is at least threshold as a list of
// rectangles. Rows with identical runs are merged into taller rectangles.
func (r *Raster) Mask(threshold uint8) []image.Rectangle {
	b := r.img.Bounds()
	var (
		out  []image.Rectangle
		open []int
	)
	var prev [][2]int
	for y := b.Min.Y; y < b.Max.Y; y++ {
		runs := r.rowRuns(y, threshold)
		if sameRuns(runs, prev) {
			for _, i := range open {
				out[i].Max.Y = y + 1
			}
			continue
		}
		open = open[:0]
		for _, run := range runs {
			open = append(open, len(out))
			out = append(out, image.Rect(run[0], y, run[1], y+1))
		}
		prev = runs
	}
	return out
}

func (r *Raster) rowRuns(y int, threshold uint8) [][2]int {
	b := r.img.Bounds()
	var runs [][2]int
	start := -1
	for x := b.Min.X; x < b.Max.X; x++ {
		covered := r.img.RGBAAt(x, y).A >= max(threshold, 1)
		switch {
		case covered && start < 0:
			start = x
		case !covered && start >= 0:
			runs = append(runs, [2]int{start, x})
			start = -1
		}
	}
	if start >= 0 {
		runs = append(runs, [2]int{start, b.Max.X})
	}
	return runs
}

func sameRuns(a, b [][2]int) bool {
	if len(a) != len(b) || a == nil || b == nil {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// BGRX returns the pixels of rect as 32-bit little-endian BGRX words, the
// layout of a 24-bit TrueColor ZPixmap. Partially covered pixels carry the
// unpremultiplied color.
func (r *Raster) BGRX(rect image.Rectangle) []byte {
	rect = rect.Intersect(r.img.Bounds())
	out := make([]byte, 0, rect.Dx()*rect.Dy()*4)
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			c := r.img.RGBAAt(x, y)
			if c.A != 0 && c.A != 0xff {
				c.R = uint8(uint32(c.R) * 0xff / uint32(c.A))
				c.G = uint8(uint32(c.G) * 0xff / uint32(c.A))
				c.B = uint8(uint32(c.B) * 0xff / uint32(c.A))
			}
			out = append(out, c.B, c.G, c.R, 0)
		}
	}
	return out
}

// ARGB returns the pixels of rect as premultiplied 32-bit little-endian
// ARGB words, the layout of a depth-32 TrueColor ZPixmap.
func (r *Raster) ARGB(rect image.Rectangle) []byte {
	rect = rect.Intersect(r.img.Bounds())
	out := make([]byte, 0, rect.Dx()*rect.Dy()*4)
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			c := r.img.RGBAAt(x, y)
			out = append(out, c.B, c.G, c.R, c.A)
		}
	}
	return out
}

func clamp01(v float64) float64 {
	return math.Min(math.Max(v, 0), 1)
}
