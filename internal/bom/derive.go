package bom

import (
	"fmt"
	"sort"
	"strings"

	"elec-takeoff/internal/tags"
	"elec-takeoff/internal/takeoff"
)

// Mode selects how rows are grouped.
type Mode int

const (
	ModeSummarized Mode = iota // one row per code
	ModeItemized               // one row per object
)

func (m Mode) String() string {
	if m == ModeItemized {
		return "itemized"
	}
	return "summarized"
}

// ParseMode parses "summarized" or "itemized".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "summarized", "summary":
		return ModeSummarized, nil
	case "itemized", "items":
		return ModeItemized, nil
	}
	return ModeSummarized, fmt.Errorf("unknown mode %q", s)
}

// MeasurementCategory is the category of measurements without a code.
const MeasurementCategory = "Measurement"

// KindMixed marks a summarized row holding both counts and measurements.
const KindMixed = "mixed"

// Row is one line of the bill of materials.
type Row struct {
	Code     string `json:"code"`
	Name     string `json:"name,omitempty"`
	Category string `json:"category"`
	Kind     string `json:"kind"`

	// Sequence is the 1-based instance number within the code (itemized).
	Sequence  int   `json:"sequence,omitempty"`
	PageIndex int   `json:"pageIndex"`
	Pages     []int `json:"pages,omitempty"`

	Tags int `json:"tags"` // count placements
	Runs int `json:"runs"` // measurements

	LengthFt        float64            `json:"lengthFt"`
	RacewayLf       float64            `json:"racewayLf"`
	ConductorLf     float64            `json:"conductorLf"`
	ConductorBySize map[string]float64 `json:"conductorBySize,omitempty"`
	Boxes           float64            `json:"boxes"`

	Raceway    string `json:"raceway,omitempty"`
	Conductors string `json:"conductors,omitempty"`

	UnitPrice     float64 `json:"unitPrice,omitempty"`
	ExtendedPrice float64 `json:"extendedPrice,omitempty"`
}

// instance is one object with its derived quantities, before grouping.
type instance struct {
	obj  takeoff.Object
	page int
	q    Quantity
	opts takeoff.MeasureOptions
}

func normCode(code string) string {
	return tags.Normalize(code)
}

// collect walks pages in index order and objects in placement order.
// Measurements use their own options when they carry them, else opts.
func collect(pages []*takeoff.PageState, opts takeoff.MeasureOptions) []instance {
	sorted := make([]*takeoff.PageState, 0, len(pages))
	for _, p := range pages {
		if p != nil {
			sorted = append(sorted, p)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].PageIndex < sorted[j].PageIndex })

	var out []instance
	for _, p := range sorted {
		for _, obj := range p.Objects {
			in := instance{obj: obj, page: p.PageIndex}
			if obj.Type.IsMeasurement() {
				in.opts = opts
				if obj.Measure != nil {
					in.opts = *obj.Measure
				}
				in.q = Quantities(ObjectLengthFeet(obj, p), in.opts)
			}
			out = append(out, in)
		}
	}
	return out
}

// Derive builds BOM rows from the pages. The registry resolves names and
// categories by code; opts supplies defaults for measurements without
// their own options and the waste factor applied to every row.
func Derive(pages []*takeoff.PageState, reg *tags.Registry, opts takeoff.MeasureOptions, mode Mode) []Row {
	if reg == nil {
		reg = tags.NewRegistry()
	}
	waste := opts.Normalized().WasteFactor
	instances := collect(pages, opts)

	var rows []Row
	if mode == ModeItemized {
		rows = itemized(instances, reg, waste)
	} else {
		rows = summarized(instances, reg, waste)
	}
	return rows
}

func baseRow(code string, reg *tags.Registry, measurement bool) Row {
	r := Row{Code: code, Name: reg.Name(code)}
	if code == "" && measurement {
		r.Category = MeasurementCategory
	} else {
		r.Category = reg.Category(code)
	}
	return r
}

func itemized(instances []instance, reg *tags.Registry, waste float64) []Row {
	seq := make(map[string]int)
	rows := make([]Row, 0, len(instances))
	for _, in := range instances {
		code := normCode(in.obj.Code)
		seq[code]++

		r := baseRow(code, reg, in.obj.Type.IsMeasurement())
		r.Kind = string(in.obj.Type)
		r.Sequence = seq[code]
		r.PageIndex = in.page
		r.Pages = []int{in.page}
		if in.obj.Type == takeoff.TypeCount {
			r.Tags = 1
		} else {
			r.Runs = 1
			r.setQuantity(in.q.scaled(waste))
			r.Raceway = in.opts.Raceway
			r.Conductors = ConductorLabel(in.opts)
		}
		rows = append(rows, r)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Code != b.Code {
			return a.Code < b.Code
		}
		if a.PageIndex != b.PageIndex {
			return a.PageIndex < b.PageIndex
		}
		return a.Sequence < b.Sequence
	})
	return rows
}

func summarized(instances []instance, reg *tags.Registry, waste float64) []Row {
	type group struct {
		row      Row
		q        Quantity
		pages    map[int]bool
		raceways []string
		conds    []string
		counts   bool
		measures bool
	}
	groups := make(map[string]*group)
	var order []string

	for _, in := range instances {
		code := normCode(in.obj.Code)
		g, ok := groups[code]
		if !ok {
			g = &group{pages: make(map[int]bool)}
			groups[code] = g
			order = append(order, code)
		}
		g.pages[in.page] = true
		if in.obj.Type == takeoff.TypeCount {
			g.row.Tags++
			g.counts = true
			continue
		}
		g.row.Runs++
		g.measures = true
		g.q.add(in.q)
		g.raceways = appendUnique(g.raceways, in.opts.Raceway)
		g.conds = appendUnique(g.conds, ConductorLabel(in.opts))
	}

	rows := make([]Row, 0, len(groups))
	for _, code := range order {
		g := groups[code]
		r := baseRow(code, reg, g.measures && !g.counts)
		r.Tags, r.Runs = g.row.Tags, g.row.Runs
		switch {
		case g.counts && g.measures:
			r.Kind = KindMixed
		case g.counts:
			r.Kind = string(takeoff.TypeCount)
		default:
			r.Kind = "measurement"
		}
		for p := range g.pages {
			r.Pages = append(r.Pages, p)
		}
		sort.Ints(r.Pages)
		r.PageIndex = r.Pages[0]
		if g.measures {
			r.setQuantity(g.q.scaled(waste))
			r.Raceway = strings.Join(g.raceways, ", ")
			r.Conductors = strings.Join(g.conds, "; ")
		}
		rows = append(rows, r)
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Code < rows[j].Code })
	return rows
}

func (r *Row) setQuantity(q Quantity) {
	r.LengthFt = q.LengthFt
	r.RacewayLf = q.RacewayLf
	r.ConductorLf = q.ConductorLf
	r.ConductorBySize = q.ConductorBySize
	r.Boxes = q.Boxes
}

func appendUnique(list []string, s string) []string {
	if s == "" {
		return list
	}
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
