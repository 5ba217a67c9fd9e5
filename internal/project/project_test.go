package project

import (
	"path/filepath"
	"testing"

	"elec-takeoff/internal/takeoff"
	"elec-takeoff/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ppf(v float64) *float64 { return &v }

func sampleProject() *File {
	f := New("E-set.pdf")
	opts := takeoff.DefaultMeasureOptions()
	opts.ExtraRacewayPerPoint = 2

	for page := 0; page < 3; page++ {
		pf := PageFile{PageIndex: page, Unit: takeoff.UnitFeet}
		if page != 1 {
			pf.PixelsPerFoot = ppf(10.125 * float64(page+1))
		}
		count := takeoff.NewCount(page, geometry.Point2D{X: 12.5, Y: 0}, "A1")
		count.Rotation = 90
		seg := takeoff.NewMeasurement(takeoff.TypeSegment, page,
			[]geometry.Point2D{{X: 0, Y: 0}, {X: 100.333, Y: 0.1}})
		seg.Measure = &opts
		poly := takeoff.NewMeasurement(takeoff.TypePolyline, page,
			[]geometry.Point2D{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}})
		poly.Code = "F1"
		free := takeoff.NewMeasurement(takeoff.TypeFreeform, page,
			[]geometry.Point2D{{X: 1, Y: 1}, {X: 2, Y: 3}, {X: 7, Y: 9}})
		pf.Objects = []takeoff.Object{count, seg, poly, free}
		f.Pages = append(f.Pages, pf)
	}
	f.Pages[2].Unit = takeoff.UnitMeters
	f.Tags = []takeoff.Tag{
		{ID: "t1", Code: "A1", Name: "Duplex receptacle", Category: "Receptacles", Color: "#00FF00"},
		{ID: "t2", Code: "F1", Name: "Feeder"},
	}
	f.Options = &opts
	return f
}

func TestRoundTripIsByteIdentical(t *testing.T) {
	first, err := Encode(sampleProject())
	require.NoError(t, err)

	decoded, warnings, err := Decode(first)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	second, err := Encode(decoded)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestRoundTripPreservesGraph(t *testing.T) {
	orig := sampleProject()
	data, err := Encode(orig)
	require.NoError(t, err)

	decoded, _, err := Decode(data)
	require.NoError(t, err)

	require.Len(t, decoded.Pages, 3)
	for i, p := range decoded.Pages {
		want := orig.Pages[i]
		assert.Equal(t, want.PageIndex, p.PageIndex)
		assert.Equal(t, want.PixelsPerFoot, p.PixelsPerFoot)
		assert.Equal(t, want.Objects, p.Objects)
	}
	assert.Nil(t, decoded.Pages[1].PixelsPerFoot)
	assert.Equal(t, orig.Tags, decoded.Tags)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.takeoff.json")
	require.NoError(t, sampleProject().Save(path))

	f, warnings, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, "E-set.pdf", f.FileName)
}

func TestDecodeRejectsNonJSON(t *testing.T) {
	_, _, err := Decode([]byte("not json"))
	assert.Error(t, err)
}

func TestDecodeMissingArrays(t *testing.T) {
	f, warnings, err := Decode([]byte(`{"fileName":"a.pdf"}`))
	require.NoError(t, err)
	assert.Equal(t, "a.pdf", f.FileName)
	assert.Empty(t, f.Pages)
	assert.Empty(t, f.Tags)
	assert.NotEmpty(t, warnings)
}

func TestDecodeWrongTypes(t *testing.T) {
	f, warnings, err := Decode([]byte(`{"fileName":3,"pages":"oops","tags":{"a":1}}`))
	require.NoError(t, err)
	assert.Empty(t, f.Pages)
	assert.Empty(t, f.Tags)
	assert.Len(t, warnings, 3)
}

func TestDecodeSalvagesPartialData(t *testing.T) {
	data := []byte(`{
		"fileName": "set.pdf",
		"pages": [
			{"pageIndex": 0, "pixelsPerFoot": -4, "unit": "yd", "objects": [
				{"id": "a", "type": "count", "pageIndex": 0, "x": 1, "y": 2, "code": "A1"},
				{"id": "b", "type": "segment", "pageIndex": 0, "vertices": [{"x": 0, "y": 0}]},
				{"id": "c", "type": "arc", "pageIndex": 0},
				{"id": "d", "type": "polyline", "pageIndex": 3, "vertices": [{"x": 0, "y": 0}, {"x": 1, "y": 1}]},
				"garbage"
			]},
			{"label": "no index"},
			{"pageIndex": 0, "pixelsPerFoot": 12, "objects": [
				{"id": "e", "type": "count", "pageIndex": 0, "code": "B1"}
			]}
		],
		"tags": [{"code": "A1", "name": "Duplex"}, {"name": "no code"}, 7]
	}`)

	f, warnings, err := Decode(data)
	require.NoError(t, err)
	require.NotEmpty(t, warnings)

	require.Len(t, f.Pages, 1)
	p := f.Pages[0]
	assert.Equal(t, takeoff.UnitFeet, p.Unit)
	require.NotNil(t, p.PixelsPerFoot, "calibration from the merged duplicate page")
	assert.Equal(t, 12.0, *p.PixelsPerFoot)

	ids := make([]string, 0, len(p.Objects))
	for _, o := range p.Objects {
		ids = append(ids, o.ID)
		assert.Equal(t, 0, o.PageIndex)
	}
	assert.Equal(t, []string{"a", "d", "e"}, ids)

	require.Len(t, f.Tags, 1)
	assert.Equal(t, "A1", f.Tags[0].Code)

	codes := make(map[string]bool)
	for _, w := range warnings {
		codes[w.Code] = true
	}
	for _, want := range []string{CodeBadCalibration, CodeBadUnit, CodeBadObject,
		CodeRehomedObject, CodeBadPage, CodeDuplicatePage, CodeBadTag} {
		assert.True(t, codes[want], "expected warning %s", want)
	}
}

func TestDecodeLegacyPageMap(t *testing.T) {
	data := []byte(`{"name":"old.pdf","pages":{"1":{"pixelsPerFoot":8,"objects":[]},"0":{"objects":[]}}}`)
	f, warnings, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "old.pdf", f.FileName)
	require.Len(t, f.Pages, 2)
	assert.Equal(t, 0, f.Pages[0].PageIndex)
	assert.Equal(t, 1, f.Pages[1].PageIndex)
	assert.Equal(t, 8.0, *f.Pages[1].PixelsPerFoot)
	assert.NotEmpty(t, warnings)
}

func TestSummary(t *testing.T) {
	var c Collector
	for i := 0; i < 5; i++ {
		c.Add(WarningLevelWarning, CodeBadObject, "w%d", i)
	}
	assert.Equal(t, "w0; w1; w2 (and 2 more)", Summary(c.Warnings()))
	assert.Equal(t, "", Summary(nil))
}
