package panels

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"elec-takeoff/internal/app"
	"elec-takeoff/internal/takeoff"
	"elec-takeoff/pkg/colorutil"
	"elec-takeoff/ui/dialogs"
)

// TagsPanel lists the tag registry. Selecting a tag makes it the active
// code for new counts.
type TagsPanel struct {
	state     *app.State
	window    fyne.Window
	container fyne.CanvasObject

	list        *widget.List
	tags        []takeoff.Tag
	selectedIdx int

	onActivate func(code string)
}

// NewTagsPanel creates a new tags panel.
func NewTagsPanel(state *app.State) *TagsPanel {
	tp := &TagsPanel{
		state:       state,
		selectedIdx: -1,
	}

	tp.list = widget.NewList(
		func() int { return len(tp.tags) },
		func() fyne.CanvasObject {
			swatch := fynecanvas.NewRectangle(colorutil.Gray)
			swatch.SetMinSize(fyne.NewSize(14, 14))
			return container.NewHBox(swatch, widget.NewLabel("CODE  Name (Category)"))
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id >= len(tp.tags) {
				return
			}
			t := tp.tags[id]
			row := obj.(*fyne.Container)
			swatch := row.Objects[0].(*fynecanvas.Rectangle)
			swatch.FillColor = tp.state.Tags.Color(t.Code, color.RGBA{A: 0})
			swatch.Refresh()
			row.Objects[1].(*widget.Label).SetText(fmt.Sprintf("%s  %s (%s)",
				t.Code, tp.state.Tags.Name(t.Code), tp.state.Tags.Category(t.Code)))
		},
	)
	tp.list.OnSelected = func(id widget.ListItemID) {
		tp.selectedIdx = int(id)
		if id < len(tp.tags) && tp.onActivate != nil {
			tp.onActivate(tp.tags[id].Code)
		}
	}
	tp.list.OnUnselected = func(widget.ListItemID) {
		tp.selectedIdx = -1
	}

	newBtn := widget.NewButton("New Tag", func() {
		tp.edit(takeoff.Tag{})
	})
	editBtn := widget.NewButton("Edit", func() {
		if tp.selectedIdx >= 0 && tp.selectedIdx < len(tp.tags) {
			tp.edit(tp.tags[tp.selectedIdx])
		}
	})

	tp.container = container.NewBorder(
		nil,
		container.NewHBox(newBtn, editBtn),
		nil, nil,
		tp.list,
	)

	state.On(app.EventTagsChanged, func(interface{}) { tp.Refresh() })
	state.On(app.EventProjectLoaded, func(interface{}) { tp.Refresh() })
	state.On(app.EventProjectReset, func(interface{}) { tp.Refresh() })
	tp.Refresh()
	return tp
}

// Container returns the panel container.
func (tp *TagsPanel) Container() fyne.CanvasObject {
	return tp.container
}

// SetWindow sets the parent window for dialogs.
func (tp *TagsPanel) SetWindow(w fyne.Window) {
	tp.window = w
}

// OnActivate sets the callback run when a tag is chosen from the list.
func (tp *TagsPanel) OnActivate(callback func(code string)) {
	tp.onActivate = callback
}

// Refresh reloads the list from the registry.
func (tp *TagsPanel) Refresh() {
	tp.tags = tp.state.Tags.All()
	tp.list.UnselectAll()
	tp.list.Refresh()
}

func (tp *TagsPanel) edit(t takeoff.Tag) {
	if tp.window == nil {
		return
	}
	dialogs.NewTagEditDialog(t, tp.state.Tags, tp.window,
		func(updated takeoff.Tag) {
			if updated.Code != t.Code && t.Code != "" {
				tp.state.RemoveTag(t.Code)
			}
			tp.state.PutTag(updated)
		},
		tp.state.RemoveTag,
	).Show()
}
