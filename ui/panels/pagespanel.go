package panels

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"elec-takeoff/internal/app"
	"elec-takeoff/internal/bom"
	"elec-takeoff/internal/draw"
	"elec-takeoff/internal/takeoff"
)

// PagesPanel lists the pages of the drawing set with their sheet label,
// calibration and measured footage.
type PagesPanel struct {
	state     *app.State
	container fyne.CanvasObject

	list    *widget.List
	current int

	onSelect     func(pageIndex int)
	onReadLabels func()
}

// NewPagesPanel creates a new pages panel.
func NewPagesPanel(state *app.State) *PagesPanel {
	pp := &PagesPanel{state: state}

	pp.list = widget.NewList(
		func() int { return pp.state.PageCount },
		func() fyne.CanvasObject {
			return widget.NewLabel("Page 000  E-101  1/8\" = 1' 0\"  000.00 ft")
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			obj.(*widget.Label).SetText(pageSummary(pp.state.Page(id)))
		},
	)
	pp.list.OnSelected = func(id widget.ListItemID) {
		if int(id) == pp.current {
			return
		}
		pp.current = int(id)
		if pp.onSelect != nil {
			pp.onSelect(int(id))
		}
	}

	unitSelect := widget.NewSelect([]string{string(takeoff.UnitFeet), string(takeoff.UnitMeters)}, func(s string) {
		pp.state.SetUnit(pp.current, takeoff.Unit(s))
	})
	unitSelect.SetSelected(string(takeoff.UnitFeet))

	clearBtn := widget.NewButton("Clear Calibration", func() {
		pp.state.ClearCalibration(pp.current)
	})
	readBtn := widget.NewButton("Read Sheet Labels", func() {
		if pp.onReadLabels != nil {
			pp.onReadLabels()
		}
	})

	pp.container = container.NewBorder(
		nil,
		container.NewVBox(
			container.NewHBox(widget.NewLabel("Unit:"), unitSelect, clearBtn),
			readBtn,
		),
		nil, nil,
		pp.list,
	)

	for _, ev := range []app.EventType{
		app.EventCalibrationChanged,
		app.EventObjectsChanged,
		app.EventPageChanged,
		app.EventProjectLoaded,
		app.EventProjectReset,
	} {
		state.On(ev, func(interface{}) { pp.list.Refresh() })
	}
	return pp
}

func pageSummary(p *takeoff.PageState) string {
	label := p.Label
	if label == "" {
		label = "-"
	}
	if !p.Calibrated() {
		return fmt.Sprintf("Page %d  %s  %s", p.PageIndex+1, label, draw.UncalibratedLabel)
	}
	f := bom.PageFootage(p)
	return fmt.Sprintf("Page %d  %s  %.2f px/ft  %s", p.PageIndex+1, label, p.Scale(), p.Unit.Format(f.Total))
}

// Container returns the panel container.
func (pp *PagesPanel) Container() fyne.CanvasObject {
	return pp.container
}

// SetCurrent highlights the active page without firing OnSelect.
func (pp *PagesPanel) SetCurrent(pageIndex int) {
	pp.current = pageIndex
	pp.list.Select(pageIndex)
}

// OnSelect sets the callback for choosing a page.
func (pp *PagesPanel) OnSelect(callback func(pageIndex int)) {
	pp.onSelect = callback
}

// OnReadLabels sets the callback for the sheet label action.
func (pp *PagesPanel) OnReadLabels(callback func()) {
	pp.onReadLabels = callback
}
