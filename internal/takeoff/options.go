package takeoff

import "math"

// MaxConductorGroups is the number of conductor specs a measurement can carry.
const MaxConductorGroups = 3

// ConductorSpec describes one group of identical conductors pulled through
// a raceway.
type ConductorSpec struct {
	Count      int    `json:"count"`
	Size       string `json:"size,omitempty"`       // e.g. "12 AWG"
	Material   string `json:"material,omitempty"`   // "CU" or "AL"
	Insulation string `json:"insulation,omitempty"` // e.g. "THHN"
}

// Style is the display styling of measurement lines.
type Style struct {
	Color     string  `json:"color,omitempty"`
	LineWidth float64 `json:"lineWidth,omitempty"`
}

// MeasureOptions configures how a measurement's geometric length turns
// into raceway, conductor and box quantities. It is configuration, not
// geometry: the same options apply until the user changes them.
type MeasureOptions struct {
	Raceway    string                            `json:"raceway,omitempty"` // EMT trade size, e.g. "3/4\""
	Conductors [MaxConductorGroups]ConductorSpec `json:"conductors"`

	ExtraRacewayPerPoint   float64 `json:"extraRacewayPerPoint"`
	ExtraConductorPerPoint float64 `json:"extraConductorPerPoint"`
	BoxesPerPoint          float64 `json:"boxesPerPoint"`

	// WasteFactor multiplies rolled-up quantities; 1 means no waste.
	WasteFactor float64 `json:"wasteFactor"`

	Style Style `json:"style"`
}

// DefaultMeasureOptions returns the options used before the user has
// configured anything.
func DefaultMeasureOptions() MeasureOptions {
	return MeasureOptions{
		Raceway: `3/4"`,
		Conductors: [MaxConductorGroups]ConductorSpec{
			{Count: 2, Size: "12 AWG", Material: "CU", Insulation: "THHN"},
			{Count: 1, Size: "12 AWG", Material: "CU", Insulation: "THHN"},
		},
		WasteFactor: 1,
		Style:       Style{Color: "#FF3B30", LineWidth: 2},
	}
}

// Normalized returns a copy with out-of-range values clamped: waste factor
// below 1 becomes 1, negative allowances and counts become 0.
func (m MeasureOptions) Normalized() MeasureOptions {
	out := m
	if !(out.WasteFactor >= 1) || math.IsInf(out.WasteFactor, 0) {
		out.WasteFactor = 1
	}
	out.ExtraRacewayPerPoint = nonNegative(out.ExtraRacewayPerPoint)
	out.ExtraConductorPerPoint = nonNegative(out.ExtraConductorPerPoint)
	out.BoxesPerPoint = nonNegative(out.BoxesPerPoint)
	for i := range out.Conductors {
		if out.Conductors[i].Count < 0 {
			out.Conductors[i].Count = 0
		}
	}
	return out
}

// ConductorsPerRun returns the total number of conductors across groups.
func (m MeasureOptions) ConductorsPerRun() int {
	n := 0
	for _, c := range m.Conductors {
		if c.Count > 0 {
			n += c.Count
		}
	}
	return n
}

func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
