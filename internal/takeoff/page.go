package takeoff

import (
	"fmt"
	"math"
)

// Unit is the display unit of a page's lengths. Quantities are always
// derived in feet; the unit only affects labels.
type Unit string

const (
	UnitFeet   Unit = "ft"
	UnitMeters Unit = "m"
)

// FeetPerMeter converts meters to feet.
const FeetPerMeter = 3.280839895013123

// Valid reports whether u is a known unit.
func (u Unit) Valid() bool {
	return u == UnitFeet || u == UnitMeters
}

// Format renders a length given in feet in this unit.
func (u Unit) Format(feet float64) string {
	if u == UnitMeters {
		return fmt.Sprintf("%.2f m", feet/FeetPerMeter)
	}
	return fmt.Sprintf("%.2f ft", feet)
}

// PageState is the takeoff state of one drawing page.
type PageState struct {
	PageIndex int    `json:"pageIndex"`
	Label     string `json:"label,omitempty"`

	// PixelsPerFoot is nil until the page has been calibrated.
	PixelsPerFoot *float64 `json:"pixelsPerFoot,omitempty"`
	Unit          Unit     `json:"unit"`

	Objects []Object `json:"objects"`
}

// NewPageState returns an empty, uncalibrated page.
func NewPageState(index int) *PageState {
	return &PageState{
		PageIndex: index,
		Unit:      UnitFeet,
		Objects:   []Object{},
	}
}

// ValidScale reports whether ppf can be used as a calibration factor.
func ValidScale(ppf float64) bool {
	return ppf > 0 && !math.IsInf(ppf, 0) && !math.IsNaN(ppf)
}

// Calibrated reports whether the page has a usable calibration factor.
func (p *PageState) Calibrated() bool {
	return p != nil && p.PixelsPerFoot != nil && ValidScale(*p.PixelsPerFoot)
}

// Scale returns the calibration factor, or 0 when uncalibrated.
func (p *PageState) Scale() float64 {
	if !p.Calibrated() {
		return 0
	}
	return *p.PixelsPerFoot
}

// Feet converts a page-space length to feet. Uncalibrated pages yield 0.
func (p *PageState) Feet(pagePixels float64) float64 {
	if !p.Calibrated() {
		return 0
	}
	return pagePixels / *p.PixelsPerFoot
}

// SetScale calibrates the page. Invalid factors leave the page unchanged
// and return false.
func (p *PageState) SetScale(ppf float64) bool {
	if !ValidScale(ppf) {
		return false
	}
	v := ppf
	p.PixelsPerFoot = &v
	return true
}

// Find returns the index of the object with the given id, or -1.
func (p *PageState) Find(id string) int {
	for i := range p.Objects {
		if p.Objects[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the page.
func (p *PageState) Clone() *PageState {
	if p == nil {
		return nil
	}
	c := *p
	if p.PixelsPerFoot != nil {
		v := *p.PixelsPerFoot
		c.PixelsPerFoot = &v
	}
	c.Objects = CloneObjects(p.Objects)
	if c.Objects == nil {
		c.Objects = []Object{}
	}
	return &c
}

// Tag is a material code entry in the project-wide registry. Objects
// reference tags only by Code.
type Tag struct {
	ID       string `json:"id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Color    string `json:"color,omitempty"`
}
