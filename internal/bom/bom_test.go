package bom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elec-takeoff/internal/tags"
	"elec-takeoff/internal/takeoff"
	"elec-takeoff/pkg/geometry"
)

func calibrated(index int, ppf float64, objs ...takeoff.Object) *takeoff.PageState {
	p := takeoff.NewPageState(index)
	if ppf > 0 {
		p.SetScale(ppf)
	}
	for _, o := range objs {
		o.PageIndex = index
		p.Objects = append(p.Objects, o)
	}
	return p
}

func seg(code string, x1, y1, x2, y2 float64) takeoff.Object {
	o := takeoff.NewMeasurement(takeoff.TypeSegment, 0, []geometry.Point2D{{X: x1, Y: y1}, {X: x2, Y: y2}})
	o.Code = code
	return o
}

func count(code string) takeoff.Object {
	return takeoff.NewCount(0, geometry.Point2D{X: 1, Y: 1}, code)
}

func scenarioOptions() takeoff.MeasureOptions {
	return takeoff.MeasureOptions{
		Raceway:                `3/4"`,
		Conductors:             [takeoff.MaxConductorGroups]takeoff.ConductorSpec{{Count: 2, Size: "12 AWG"}},
		ExtraRacewayPerPoint:   2,
		ExtraConductorPerPoint: 1,
		WasteFactor:            1,
	}
}

func TestSegmentScenario(t *testing.T) {
	page := calibrated(0, 10, seg("", 0, 0, 100, 0))
	assert.InDelta(t, 10.0, ObjectLengthFeet(page.Objects[0], page), 1e-12)

	q := Quantities(10, scenarioOptions())
	assert.InDelta(t, 10.0, q.LengthFt, 1e-12)
	assert.InDelta(t, 12.0, q.RacewayLf, 1e-12)
	assert.InDelta(t, 22.0, q.ConductorLf, 1e-12)
	assert.InDelta(t, 22.0, q.ConductorBySize["12 AWG"], 1e-12)

	rows := Derive([]*takeoff.PageState{page}, nil, scenarioOptions(), ModeSummarized)
	require.Len(t, rows, 1)
	assert.Equal(t, "", rows[0].Code)
	assert.Equal(t, MeasurementCategory, rows[0].Category)
	assert.InDelta(t, 12.0, rows[0].RacewayLf, 1e-12)
	assert.InDelta(t, 22.0, rows[0].ConductorLf, 1e-12)
}

func TestCountScenarioAcrossPages(t *testing.T) {
	pages := []*takeoff.PageState{
		calibrated(0, 0, count("A1"), count("A1"), count("a1")),
		calibrated(1, 0, count("A1")),
	}
	rows := Derive(pages, tags.NewRegistry(), takeoff.DefaultMeasureOptions(), ModeSummarized)
	require.Len(t, rows, 1)
	assert.Equal(t, "A1", rows[0].Code)
	assert.Equal(t, 4, rows[0].Tags)
	assert.Equal(t, []int{0, 1}, rows[0].Pages)
	assert.Equal(t, string(takeoff.TypeCount), rows[0].Kind)
	assert.Zero(t, rows[0].LengthFt)
}

func TestUncalibratedPagesMeasureZero(t *testing.T) {
	page := calibrated(0, 0,
		seg("F1", 0, 0, 100, 0),
		takeoff.NewMeasurement(takeoff.TypeFreeform, 0, []geometry.Point2D{{X: 0, Y: 0}, {X: 3, Y: 4}, {X: 9, Y: 9}}),
		count("A1"),
	)
	f := PageFootage(page)
	assert.Equal(t, 0.0, f.Total)
	assert.Equal(t, 1, f.Counts)
	for _, v := range f.ByCode {
		assert.Equal(t, 0.0, v)
	}

	rows := Derive([]*takeoff.PageState{page}, nil, takeoff.DefaultMeasureOptions(), ModeItemized)
	for _, r := range rows {
		assert.False(t, math.IsNaN(r.LengthFt))
		assert.Equal(t, 0.0, r.LengthFt)
	}

	assert.Equal(t, 0.0, ObjectLengthFeet(seg("", 0, 0, 1, 1), nil))
}

func TestPageFootageByType(t *testing.T) {
	poly := takeoff.NewMeasurement(takeoff.TypePolyline, 0, []geometry.Point2D{{X: 0, Y: 0}, {X: 0, Y: 20}, {X: 20, Y: 20}})
	poly.Code = "f1"
	page := calibrated(0, 10, seg("F1", 0, 0, 30, 40), poly)

	f := PageFootage(page)
	assert.InDelta(t, 5.0, f.Segment, 1e-12)
	assert.InDelta(t, 4.0, f.Polyline, 1e-12)
	assert.InDelta(t, 9.0, f.Total, 1e-12)
	assert.InDelta(t, 9.0, f.ByCode["F1"], 1e-12)

	all := ProjectFootage([]*takeoff.PageState{page, calibrated(1, 5, seg("", 0, 0, 10, 0))})
	assert.InDelta(t, 11.0, all.Total, 1e-12)
	assert.InDelta(t, 2.0, all.ByCode[""], 1e-12)
}

func TestItemizedSequencesAndOrder(t *testing.T) {
	pages := []*takeoff.PageState{
		calibrated(1, 10, count("B2"), count("A1")),
		calibrated(0, 10, count("A1"), seg("", 0, 0, 10, 0)),
	}
	rows := Derive(pages, nil, takeoff.DefaultMeasureOptions(), ModeItemized)
	require.Len(t, rows, 4)

	assert.Equal(t, "", rows[0].Code)
	assert.Equal(t, "A1", rows[1].Code)
	assert.Equal(t, 0, rows[1].PageIndex)
	assert.Equal(t, 1, rows[1].Sequence)
	assert.Equal(t, "A1", rows[2].Code)
	assert.Equal(t, 1, rows[2].PageIndex)
	assert.Equal(t, 2, rows[2].Sequence)
	assert.Equal(t, "B2", rows[3].Code)
}

func TestCategoryFromRegistryAndPrefix(t *testing.T) {
	reg := tags.NewRegistry(takeoff.Tag{Code: "L1", Name: "Downlight", Category: "Fixtures"})
	pages := []*takeoff.PageState{calibrated(0, 10, count("L1"), count("L2"), count("ZZ"))}
	rows := Derive(pages, reg, takeoff.DefaultMeasureOptions(), ModeSummarized)
	require.Len(t, rows, 3)

	assert.Equal(t, "Fixtures", rows[0].Category)
	assert.Equal(t, "Downlight", rows[0].Name)
	assert.Equal(t, "Lighting", rows[1].Category)
	assert.Equal(t, tags.FallbackCategory, rows[2].Category)
}

func TestWasteAppliedAtRollupOnly(t *testing.T) {
	stored := scenarioOptions()
	obj := seg("F1", 0, 0, 100, 0)
	obj.Measure = &stored
	page := calibrated(0, 10, obj)

	global := scenarioOptions()
	global.WasteFactor = 1.5
	rows := Derive([]*takeoff.PageState{page}, nil, global, ModeSummarized)
	require.Len(t, rows, 1)
	assert.InDelta(t, 10.0, rows[0].LengthFt, 1e-12)
	assert.InDelta(t, 18.0, rows[0].RacewayLf, 1e-12)
	assert.InDelta(t, 33.0, rows[0].ConductorLf, 1e-12)
	assert.Equal(t, 1.0, page.Objects[0].Measure.WasteFactor)
}

func TestObjectOptionsOverrideDefaults(t *testing.T) {
	own := scenarioOptions()
	own.Raceway = `1"`
	a := seg("F1", 0, 0, 100, 0)
	a.Measure = &own
	b := seg("F1", 0, 10, 100, 10)

	rows := Derive([]*takeoff.PageState{calibrated(0, 10, a, b)}, nil, scenarioOptions(), ModeItemized)
	require.Len(t, rows, 2)
	assert.Equal(t, `1"`, rows[0].Raceway)
	assert.Equal(t, `3/4"`, rows[1].Raceway)
	assert.Equal(t, "2#12 AWG", rows[1].Conductors)
}

func TestDeriveIsIdempotent(t *testing.T) {
	pages := []*takeoff.PageState{
		calibrated(0, 10, count("A1"), seg("F1", 0, 0, 40, 0)),
		calibrated(2, 0, seg("", 0, 0, 5, 5)),
	}
	before := []*takeoff.PageState{pages[0].Clone(), pages[1].Clone()}
	reg := tags.NewRegistry()

	for _, mode := range []Mode{ModeSummarized, ModeItemized} {
		first := Derive(pages, reg, scenarioOptions(), mode)
		second := Derive(pages, reg, scenarioOptions(), mode)
		assert.Equal(t, first, second)
	}
	assert.Equal(t, before, pages)
}

func TestPrice(t *testing.T) {
	pages := []*takeoff.PageState{calibrated(0, 10, count("A1"), count("A1"), seg("F1", 0, 0, 100, 0))}
	rows := Derive(pages, nil, scenarioOptions(), ModeSummarized)

	book := PriceBook{
		Items:            map[string]float64{"A1": 25},
		RacewayPerFoot:   map[string]float64{`3/4"`: 1.5},
		ConductorPerFoot: map[string]float64{"12 AWG": 0.25},
	}
	priced, totals := Price(rows, book)
	require.Len(t, priced, 2)
	assert.InDelta(t, 50.0, priced[0].ExtendedPrice, 1e-9)
	assert.InDelta(t, 12*1.5+22*0.25, priced[1].ExtendedPrice, 1e-9)
	assert.InDelta(t, 50+18+5.5, totals.Material, 1e-9)
	assert.Equal(t, 2, totals.Tags)
	assert.Zero(t, rows[0].ExtendedPrice, "input rows untouched")

	cats := SummaryByCategory(priced)
	require.Len(t, cats, 2)
	assert.Equal(t, "Fire Alarm", cats[0].Category)
	assert.Equal(t, tags.FallbackCategory, cats[1].Category)
	assert.Equal(t, 2, cats[1].Tags)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("Itemized")
	require.NoError(t, err)
	assert.Equal(t, ModeItemized, m)
	_, err = ParseMode("pivot")
	assert.Error(t, err)
}

func TestPriceIsDeterministic(t *testing.T) {
	opts := scenarioOptions()
	opts.Conductors = [takeoff.MaxConductorGroups]takeoff.ConductorSpec{
		{Count: 3, Size: "12 AWG"}, {Count: 1, Size: "10 AWG"}, {Count: 7, Size: "14 AWG"},
	}
	pages := []*takeoff.PageState{calibrated(0, 3, seg("F1", 0, 0, 100.1, 0.3))}
	rows := Derive(pages, nil, opts, ModeSummarized)
	book := PriceBook{ConductorPerFoot: map[string]float64{"12 AWG": 0.1, "10 AWG": 0.7, "14 AWG": 0.3}}

	first, _ := Price(rows, book)
	for i := 0; i < 50; i++ {
		again, _ := Price(rows, book)
		require.Equal(t, first[0].ExtendedPrice, again[0].ExtendedPrice, "pass %d", i)
	}
}

func TestUncalibratedRunKeepsAllowances(t *testing.T) {
	opts := scenarioOptions()
	opts.BoxesPerPoint = 1
	page := calibrated(0, 0, seg("F1", 0, 0, 100, 0))

	rows := Derive([]*takeoff.PageState{page}, nil, opts, ModeItemized)
	require.Len(t, rows, 1)
	assert.Zero(t, rows[0].LengthFt)
	assert.InDelta(t, 2.0, rows[0].RacewayLf, 1e-12, "extra raceway per run is counted without a length")
	assert.InDelta(t, 2.0, rows[0].ConductorLf, 1e-12)
	assert.InDelta(t, 1.0, rows[0].Boxes, 1e-12)
}
