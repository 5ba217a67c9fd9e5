// Package bom derives quantities and bill-of-materials rows from takeoff
// state. Everything here is a pure function of its inputs: nothing is
// cached and nothing passed in is modified.
package bom

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"

	"elec-takeoff/internal/takeoff"
)

// Quantity is the derived material for one measurement.
type Quantity struct {
	LengthFt    float64
	RacewayLf   float64
	ConductorLf float64
	Boxes       float64

	// ConductorBySize splits ConductorLf by conductor size.
	ConductorBySize map[string]float64
}

// Quantities derives raceway, conductor and box quantities for a run of
// lengthFt feet. Waste is not applied here.
func Quantities(lengthFt float64, opts takeoff.MeasureOptions) Quantity {
	opts = opts.Normalized()
	q := Quantity{
		LengthFt:        lengthFt,
		RacewayLf:       lengthFt + opts.ExtraRacewayPerPoint,
		Boxes:           opts.BoxesPerPoint,
		ConductorBySize: make(map[string]float64),
	}
	for _, c := range opts.Conductors {
		if c.Count <= 0 {
			continue
		}
		lf := float64(c.Count) * (lengthFt + opts.ExtraConductorPerPoint)
		q.ConductorLf += lf
		q.ConductorBySize[sizeKey(c.Size)] += lf
	}
	return q
}

// add accumulates o into q.
func (q *Quantity) add(o Quantity) {
	q.LengthFt += o.LengthFt
	q.RacewayLf += o.RacewayLf
	q.ConductorLf += o.ConductorLf
	q.Boxes += o.Boxes
	if len(o.ConductorBySize) > 0 && q.ConductorBySize == nil {
		q.ConductorBySize = make(map[string]float64)
	}
	for k, v := range o.ConductorBySize {
		q.ConductorBySize[k] += v
	}
}

// scaled returns q with material quantities multiplied by the waste factor.
// The geometric length is left as measured.
func (q Quantity) scaled(waste float64) Quantity {
	v := []float64{q.RacewayLf, q.ConductorLf, q.Boxes}
	floats.Scale(waste, v)
	out := Quantity{
		LengthFt:    q.LengthFt,
		RacewayLf:   v[0],
		ConductorLf: v[1],
		Boxes:       v[2],
	}
	if q.ConductorBySize != nil {
		out.ConductorBySize = make(map[string]float64, len(q.ConductorBySize))
		for k, lf := range q.ConductorBySize {
			out.ConductorBySize[k] = lf * waste
		}
	}
	return out
}

func sizeKey(size string) string {
	s := strings.ToUpper(strings.TrimSpace(size))
	if s == "" {
		return "UNSPECIFIED"
	}
	return s
}

// ConductorLabel describes the conductor groups, e.g.
// "2#12 AWG CU THHN + 1#10 AWG CU THHN".
func ConductorLabel(opts takeoff.MeasureOptions) string {
	var parts []string
	for _, c := range opts.Conductors {
		if c.Count <= 0 {
			continue
		}
		fields := []string{fmt.Sprintf("%d#%s", c.Count, strings.TrimSpace(c.Size))}
		if c.Material != "" {
			fields = append(fields, c.Material)
		}
		if c.Insulation != "" {
			fields = append(fields, c.Insulation)
		}
		parts = append(parts, strings.Join(fields, " "))
	}
	return strings.Join(parts, " + ")
}
