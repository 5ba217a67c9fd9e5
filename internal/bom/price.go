package bom

import (
	"sort"

	"gonum.org/v1/gonum/floats"
)

// PriceBook holds unit prices used to extend BOM rows.
type PriceBook struct {
	// Items prices one count placement by tag code.
	Items map[string]float64 `yaml:"items" json:"items,omitempty"`
	// RacewayPerFoot prices raceway by trade size.
	RacewayPerFoot map[string]float64 `yaml:"raceway_per_foot" json:"racewayPerFoot,omitempty"`
	// ConductorPerFoot prices conductor by size, e.g. "12 AWG".
	ConductorPerFoot map[string]float64 `yaml:"conductor_per_foot" json:"conductorPerFoot,omitempty"`
	BoxEach          float64            `yaml:"box_each" json:"boxEach,omitempty"`
}

// Totals is the grand total of a priced BOM.
type Totals struct {
	Tags        int
	Runs        int
	LengthFt    float64
	RacewayLf   float64
	ConductorLf float64
	Boxes       float64
	Material    float64
}

// Price returns priced copies of rows and their totals. Rows that mix
// several raceway sizes are priced per foot only when the size is known.
func Price(rows []Row, book PriceBook) ([]Row, Totals) {
	out := make([]Row, len(rows))
	var t Totals
	extended := make([]float64, len(rows))

	for i, r := range rows {
		r.UnitPrice = book.Items[normCode(r.Code)]
		cost := []float64{
			r.UnitPrice * float64(r.Tags),
			r.RacewayLf * book.RacewayPerFoot[r.Raceway],
			r.Boxes * book.BoxEach,
		}
		sizes := make([]string, 0, len(r.ConductorBySize))
		for size := range r.ConductorBySize {
			sizes = append(sizes, size)
		}
		sort.Strings(sizes)
		for _, size := range sizes {
			cost = append(cost, r.ConductorBySize[size]*book.ConductorPerFoot[size])
		}
		r.ExtendedPrice = floats.Sum(cost)
		extended[i] = r.ExtendedPrice

		t.Tags += r.Tags
		t.Runs += r.Runs
		t.LengthFt += r.LengthFt
		t.RacewayLf += r.RacewayLf
		t.ConductorLf += r.ConductorLf
		t.Boxes += r.Boxes
		out[i] = r
	}
	t.Material = floats.Sum(extended)
	return out, t
}

// CategoryTotal rolls rows up by category.
type CategoryTotal struct {
	Category string
	Rows     int
	Tags     int
	LengthFt float64
	Cost     float64
}

// SummaryByCategory groups rows by category, sorted by category name.
func SummaryByCategory(rows []Row) []CategoryTotal {
	byCat := make(map[string]*CategoryTotal)
	for _, r := range rows {
		c, ok := byCat[r.Category]
		if !ok {
			c = &CategoryTotal{Category: r.Category}
			byCat[r.Category] = c
		}
		c.Rows++
		c.Tags += r.Tags
		c.LengthFt += r.LengthFt
		c.Cost += r.ExtendedPrice
	}

	out := make([]CategoryTotal, 0, len(byCat))
	for _, c := range byCat {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}
