package panels

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"elec-takeoff/internal/app"
	"elec-takeoff/internal/bom"
)

type bomColumn struct {
	title string
	width float32
	cell  func(r bom.Row) string
}

var bomColumns = []bomColumn{
	{"Code", 70, func(r bom.Row) string { return r.Code }},
	{"Name", 140, func(r bom.Row) string { return r.Name }},
	{"Category", 100, func(r bom.Row) string { return r.Category }},
	{"Kind", 90, func(r bom.Row) string { return r.Kind }},
	{"Pages", 70, func(r bom.Row) string { return pageList(r) }},
	{"Tags", 50, func(r bom.Row) string { return strconv.Itoa(r.Tags) }},
	{"Length ft", 80, func(r bom.Row) string { return fmtQty(r.LengthFt) }},
	{"Raceway LF", 90, func(r bom.Row) string { return fmtQty(r.RacewayLf) }},
	{"Conductor LF", 100, func(r bom.Row) string { return fmtQty(r.ConductorLf) }},
	{"Boxes", 60, func(r bom.Row) string { return fmtQty(r.Boxes) }},
	{"Extended", 90, func(r bom.Row) string {
		if r.ExtendedPrice == 0 {
			return ""
		}
		return fmt.Sprintf("%.2f", r.ExtendedPrice)
	}},
}

func fmtQty(v float64) string {
	if v == 0 {
		return ""
	}
	return fmt.Sprintf("%.2f", v)
}

func pageList(r bom.Row) string {
	pages := r.Pages
	if len(pages) == 0 {
		pages = []int{r.PageIndex}
	}
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = strconv.Itoa(p + 1)
	}
	return strings.Join(parts, ",")
}

// BOMPanel shows the derived bill of materials.
type BOMPanel struct {
	state     *app.State
	container fyne.CanvasObject

	mode   bom.Mode
	prices bom.PriceBook
	rows   []bom.Row
	totals bom.Totals

	table       *widget.Table
	totalsLabel *widget.Label
	catLabel    *widget.Label
}

// NewBOMPanel creates a BOM panel. It re-derives whenever objects, tags or
// options change.
func NewBOMPanel(state *app.State, prices bom.PriceBook) *BOMPanel {
	bp := &BOMPanel{
		state:  state,
		prices: prices,
	}

	bp.table = widget.NewTableWithHeaders(
		func() (int, int) { return len(bp.rows), len(bomColumns) },
		func() fyne.CanvasObject { return widget.NewLabel("Conductor LF") },
		func(id widget.TableCellID, obj fyne.CanvasObject) {
			label := obj.(*widget.Label)
			if id.Row < len(bp.rows) {
				label.SetText(bomColumns[id.Col].cell(bp.rows[id.Row]))
			}
		},
	)
	bp.table.ShowHeaderColumn = false
	bp.table.CreateHeader = func() fyne.CanvasObject { return widget.NewLabel("Conductor LF") }
	bp.table.UpdateHeader = func(id widget.TableCellID, obj fyne.CanvasObject) {
		if id.Col >= 0 && id.Col < len(bomColumns) {
			obj.(*widget.Label).SetText(bomColumns[id.Col].title)
		}
	}
	for i, c := range bomColumns {
		bp.table.SetColumnWidth(i, c.width)
	}

	modeRadio := widget.NewRadioGroup([]string{"Summarized", "Itemized"}, func(s string) {
		if m, err := bom.ParseMode(s); err == nil {
			bp.mode = m
			bp.Refresh()
		}
	})
	modeRadio.Horizontal = true
	modeRadio.SetSelected("Summarized")

	bp.totalsLabel = widget.NewLabel("")
	bp.catLabel = widget.NewLabel("")
	bp.catLabel.Wrapping = fyne.TextWrapWord

	bp.container = container.NewBorder(
		modeRadio,
		container.NewVBox(widget.NewSeparator(), bp.totalsLabel, bp.catLabel),
		nil, nil,
		bp.table,
	)

	for _, ev := range []app.EventType{
		app.EventObjectsChanged,
		app.EventCalibrationChanged,
		app.EventTagsChanged,
		app.EventOptionsChanged,
		app.EventProjectLoaded,
		app.EventProjectReset,
	} {
		state.On(ev, func(interface{}) { bp.Refresh() })
	}
	bp.Refresh()
	return bp
}

// Container returns the panel container.
func (bp *BOMPanel) Container() fyne.CanvasObject {
	return bp.container
}

// Rows returns the rows currently shown.
func (bp *BOMPanel) Rows() []bom.Row {
	return bp.rows
}

// SetPrices replaces the price book and refreshes.
func (bp *BOMPanel) SetPrices(prices bom.PriceBook) {
	bp.prices = prices
	bp.Refresh()
}

// Refresh re-derives the rows from the current state.
func (bp *BOMPanel) Refresh() {
	rows := bom.Derive(bp.state.Pages(), bp.state.Tags, bp.state.MeasureOptions(), bp.mode)
	bp.rows, bp.totals = bom.Price(rows, bp.prices)

	t := bp.totals
	text := fmt.Sprintf("%d tags, %d runs, %.2f ft, raceway %.2f LF, conductor %.2f LF, %.0f boxes",
		t.Tags, t.Runs, t.LengthFt, t.RacewayLf, t.ConductorLf, t.Boxes)
	if t.Material > 0 {
		text += fmt.Sprintf(", material %.2f", t.Material)
	}
	bp.totalsLabel.SetText(text)
	bp.catLabel.SetText(categoryText(bom.SummaryByCategory(bp.rows)))
	bp.table.Refresh()
}

func categoryText(cats []bom.CategoryTotal) string {
	sort.SliceStable(cats, func(i, j int) bool { return cats[i].Category < cats[j].Category })
	parts := make([]string, 0, len(cats))
	for _, c := range cats {
		s := fmt.Sprintf("%s: %d rows", c.Category, c.Rows)
		if c.Tags > 0 {
			s += fmt.Sprintf(", %d tags", c.Tags)
		}
		if c.LengthFt > 0 {
			s += fmt.Sprintf(", %.2f ft", c.LengthFt)
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, "\n")
}
