package canvas

import (
	"image"
	"image/color"
	"math"

	"elec-takeoff/internal/draw"
	"elec-takeoff/internal/takeoff"
	"elec-takeoff/pkg/colorutil"
	"elec-takeoff/pkg/geometry"
)

// Scene is everything painted above the page bitmap for one frame.
type Scene struct {
	Viewport geometry.Viewport
	Page     *takeoff.PageState
	Selected map[string]bool
	Preview  draw.Preview
	// ColorOf returns the display color for an object; nil falls back to
	// the object's own style.
	ColorOf func(o takeoff.Object) color.RGBA
}

// ObjectColor returns the style color stored on a measurement, or the
// default marker color.
func ObjectColor(o takeoff.Object) color.RGBA {
	if o.Measure != nil {
		if c, ok := colorutil.ParseHex(o.Measure.Style.Color); ok {
			return c
		}
	}
	if o.Type == takeoff.TypeCount {
		return colorutil.Orange
	}
	return colorutil.Red
}

func (s Scene) colorOf(o takeoff.Object) color.RGBA {
	if s.ColorOf != nil {
		return s.ColorOf(o)
	}
	return ObjectColor(o)
}

// labelScale picks a glyph scale readable at the current zoom.
func (s Scene) labelScale() int {
	z := s.Viewport.Scale
	switch {
	case z >= 2:
		return 3
	case z >= 0.75:
		return 2
	default:
		return 1
	}
}

// Paint draws objects and the in-progress preview onto output.
func (s Scene) Paint(output *image.RGBA) {
	if s.Page != nil {
		for _, o := range s.Page.Objects {
			sel := s.Selected[o.ID]
			if sel && s.Preview.Dragging {
				o = o.Clone()
				o.Translate(s.Preview.Offset.X, s.Preview.Offset.Y)
			}
			s.paintObject(output, o, sel)
		}
	}
	s.paintPreview(output)
}

func (s Scene) paintObject(output *image.RGBA, o takeoff.Object, selected bool) {
	col := s.colorOf(o)
	scale := s.labelScale()

	if o.Type == takeoff.TypeCount {
		c := s.Viewport.ToScreen(o.Position())
		r := draw.CountRadius * s.Viewport.Scale
		if r < 4 {
			r = 4
		}
		if selected {
			drawCircle(output, c.X, c.Y, r+3, colorutil.Selection, false)
		}
		drawCircle(output, c.X, c.Y, r, colorutil.WithAlpha(col, 200), true)
		if o.Rotation != 0 {
			rad := o.Rotation * math.Pi / 180
			tip := geometry.Point2D{X: c.X + math.Cos(rad)*r*1.8, Y: c.Y + math.Sin(rad)*r*1.8}
			drawLine(output, int(c.X), int(c.Y), int(tip.X), int(tip.Y), col, 1)
		}
		if o.Code != "" {
			_, h := textSize(o.Code, scale)
			drawLabel(output, o.Code, int(c.X), int(c.Y+r)+h, colorutil.Black, colorutil.WithAlpha(colorutil.White, 220), scale)
		}
		return
	}

	width := 2
	if o.Measure != nil && o.Measure.Style.LineWidth > 0 {
		width = int(math.Round(o.Measure.Style.LineWidth))
	}
	if selected {
		s.paintPath(output, o.Vertices, colorutil.Selection, width+4)
	}
	s.paintPath(output, o.Vertices, col, width)

	label := draw.LengthLabel(s.Page, o.PixelLength())
	if o.Code != "" {
		label = o.Code + " " + label
	}
	at := s.Viewport.ToScreen(geometry.PointAlong(o.Vertices))
	drawLabel(output, label, int(at.X), int(at.Y)-6*scale, col, colorutil.WithAlpha(colorutil.White, 220), scale)
}

func (s Scene) paintPath(output *image.RGBA, vertices []geometry.Point2D, col color.RGBA, width int) {
	for i := 1; i < len(vertices); i++ {
		a := s.Viewport.ToScreen(vertices[i-1])
		b := s.Viewport.ToScreen(vertices[i])
		drawLine(output, int(a.X), int(a.Y), int(b.X), int(b.Y), col, width)
	}
}

func (s Scene) paintPreview(output *image.RGBA) {
	pv := s.Preview
	if len(pv.Vertices) == 0 {
		return
	}
	col := colorutil.Cyan
	if pv.Phase == draw.PhaseCalibrating || pv.Phase == draw.PhaseAwaitingLength {
		col = colorutil.Magenta
	}
	s.paintPath(output, pv.Vertices, col, 2)
	for _, v := range pv.Vertices {
		p := s.Viewport.ToScreen(v)
		drawCircle(output, p.X, p.Y, 3, col, true)
	}
	if pv.Label == "" {
		return
	}
	last := s.Viewport.ToScreen(pv.Vertices[len(pv.Vertices)-1])
	scale := s.labelScale()
	w, _ := textSize(pv.Label, scale)
	drawLabel(output, pv.Label, int(last.X)+w/2+12, int(last.Y)-12, colorutil.Black, colorutil.Yellow, scale)
}
