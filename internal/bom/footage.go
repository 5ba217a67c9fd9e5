package bom

import (
	"gonum.org/v1/gonum/floats"

	"elec-takeoff/internal/takeoff"
)

// ObjectLengthFeet returns the real length of a measurement on its page.
// Counts and objects on uncalibrated pages measure 0.
func ObjectLengthFeet(obj takeoff.Object, page *takeoff.PageState) float64 {
	if !obj.Type.IsMeasurement() {
		return 0
	}
	return page.Feet(obj.PixelLength())
}

// Footage is linear footage aggregated by geometry type and by tag code.
type Footage struct {
	Segment  float64
	Polyline float64
	Freeform float64
	Total    float64
	ByCode   map[string]float64
	Counts   int // count objects seen
}

func newFootage() Footage {
	return Footage{ByCode: make(map[string]float64)}
}

// PageFootage aggregates the linear footage of one page.
func PageFootage(page *takeoff.PageState) Footage {
	f := newFootage()
	if page == nil {
		return f
	}
	for _, obj := range page.Objects {
		if obj.Type == takeoff.TypeCount {
			f.Counts++
			continue
		}
		ft := ObjectLengthFeet(obj, page)
		switch obj.Type {
		case takeoff.TypeSegment:
			f.Segment += ft
		case takeoff.TypePolyline:
			f.Polyline += ft
		case takeoff.TypeFreeform:
			f.Freeform += ft
		}
		f.ByCode[normCode(obj.Code)] += ft
	}
	f.Total = floats.Sum([]float64{f.Segment, f.Polyline, f.Freeform})
	return f
}

// ProjectFootage aggregates footage over every page.
func ProjectFootage(pages []*takeoff.PageState) Footage {
	f := newFootage()
	for _, p := range pages {
		pf := PageFootage(p)
		f.Segment += pf.Segment
		f.Polyline += pf.Polyline
		f.Freeform += pf.Freeform
		f.Counts += pf.Counts
		for code, ft := range pf.ByCode {
			f.ByCode[code] += ft
		}
	}
	f.Total = floats.Sum([]float64{f.Segment, f.Polyline, f.Freeform})
	return f
}
