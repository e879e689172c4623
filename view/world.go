package view

import (
	"image/color"
	"math"
	"sort"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/smasonuk/village3d"
)

const (
	markerSize      = 4.0
	highlightRadius = 0.6 // world units
	highlightSteps  = 32
	gridHalfExtent  = 10
)

var (
	anchorColor    = color.RGBA{R: 255, G: 154, B: 71, A: 255}
	camPosColor    = color.RGBA{R: 80, G: 140, B: 255, A: 255}
	glowColor      = color.RGBA{R: 255, G: 222, B: 38, A: 255}
	otherColor     = color.RGBA{R: 200, G: 200, B: 200, A: 255}
	gridColor      = color.RGBA{R: 150, G: 140, B: 160, A: 255}
	highlightColor = color.RGBA{R: 255, G: 154, B: 71, A: 255}
)

// MarkerSource supplies the world-space markers to draw.
type MarkerSource interface {
	Markers() []village3d.WorldMarker
	Highlights() []village3d.Vector3
}

type projectedMarker struct {
	label    string
	x, y     float64
	distance float64
	clr      color.RGBA
}

type projectedLine struct {
	x1, y1, x2, y2 float64
	clr            color.RGBA
}

// frame is what Render captured for the next Draw.
type frame struct {
	markers    []projectedMarker
	lines      []projectedLine
	highlights [][2][]float32
}

// World renders marker positions, a ground grid and highlight rings from the
// camera's point of view.
type World struct {
	source     MarkerSource
	width      int
	height     int
	background color.RGBA
	fogNear    float64
	fogFar     float64
	showLabels bool
	current    frame
}

func NewWorld(source MarkerSource, cfg village3d.Config) *World {
	bg, err := parseHexColor(cfg.View.Background)
	if err != nil {
		bg = color.RGBA{R: 0xbb, G: 0xb4, B: 0xc2, A: 255}
	}
	return &World{
		source:     source,
		width:      cfg.Window.Width,
		height:     cfg.Window.Height,
		background: bg,
		fogNear:    cfg.View.FogNear,
		fogFar:     cfg.View.FogFar,
		showLabels: cfg.View.ShowLabels,
	}
}

// SetSource sets where markers come from. It is separate from NewWorld because
// the scene context takes the world as its renderer.
func (w *World) SetSource(source MarkerSource) {
	w.source = source
}

// Render projects the scene through cam. Painting happens in PaintObjects.
func (w *World) Render(cam *village3d.Camera) {
	var f frame
	defer func() { w.current = f }()

	for i := -gridHalfExtent; i <= gridHalfExtent; i++ {
		fi := float64(i)
		w.addLine(&f, cam, village3d.NewVector3(fi, 0, -gridHalfExtent), village3d.NewVector3(fi, 0, gridHalfExtent))
		w.addLine(&f, cam, village3d.NewVector3(-gridHalfExtent, 0, fi), village3d.NewVector3(gridHalfExtent, 0, fi))
	}

	if w.source == nil {
		return
	}

	for _, m := range w.source.Markers() {
		x, y, ok := cam.Project(m.Position, w.width, w.height)
		if !ok {
			continue
		}
		d := cam.Position.DistanceTo(m.Position)
		f.markers = append(f.markers, projectedMarker{
			label:    m.Label,
			x:        x,
			y:        y,
			distance: d,
			clr:      fade(markerColor(m.Label), w.background, d, w.fogNear, w.fogFar),
		})
	}
	// far to near, so closer markers paint on top
	sort.Slice(f.markers, func(i, j int) bool {
		return f.markers[i].distance > f.markers[j].distance
	})

	for _, h := range w.source.Highlights() {
		if ring, ok := w.ring(cam, h); ok {
			f.highlights = append(f.highlights, ring)
		}
	}
}

func (w *World) addLine(f *frame, cam *village3d.Camera, a, b village3d.Vector3) {
	x1, y1, ok1 := cam.Project(a, w.width, w.height)
	x2, y2, ok2 := cam.Project(b, w.width, w.height)
	if !ok1 || !ok2 {
		return
	}
	mid := a.Lerp(b, 0.5)
	f.lines = append(f.lines, projectedLine{
		x1: x1, y1: y1, x2: x2, y2: y2,
		clr: fade(gridColor, w.background, cam.Position.DistanceTo(mid), w.fogNear, w.fogFar),
	})
}

// ring projects a horizontal circle around center. It is dropped when any point
// falls behind the camera.
func (w *World) ring(cam *village3d.Camera, center village3d.Vector3) ([2][]float32, bool) {
	var xp, yp []float32
	for i := 0; i < highlightSteps; i++ {
		a := 2 * math.Pi * float64(i) / highlightSteps
		p := center.Add(village3d.NewVector3(highlightRadius*math.Cos(a), 0, highlightRadius*math.Sin(a)))
		x, y, ok := cam.Project(p, w.width, w.height)
		if !ok {
			return [2][]float32{}, false
		}
		xp = append(xp, float32(x))
		yp = append(yp, float32(y))
	}
	return [2][]float32{xp, yp}, true
}

func markerColor(label string) color.RGBA {
	switch {
	case containsMarker(label, village3d.MarkerGlow):
		return glowColor
	case containsMarker(label, village3d.MarkerCamPos):
		return camPosColor
	case containsMarker(label, village3d.MarkerAnchor):
		return anchorColor
	}
	return otherColor
}

func containsMarker(label string, m village3d.Marker) bool {
	return strings.Contains(label, string(m))
}

// PaintObjects draws the last rendered frame.
func (w *World) PaintObjects(screen *ebiten.Image) {
	screen.Fill(w.background)

	for _, l := range w.current.lines {
		drawLine(screen, l.x1, l.y1, l.x2, l.y2, l.clr)
	}

	for _, h := range w.current.highlights {
		drawPolygonOutline(screen, h[0], h[1], 2, highlightColor)
	}

	for _, m := range w.current.markers {
		x, y := float32(m.x), float32(m.y)
		xp := []float32{x - markerSize, x + markerSize, x + markerSize, x - markerSize}
		yp := []float32{y - markerSize, y - markerSize, y + markerSize, y + markerSize}
		fillConvexPolygon(screen, xp, yp, m.clr)
		if w.showLabels {
			ebitenutil.DebugPrintAt(screen, m.label, int(x)+6, int(y)-6)
		}
	}
}
