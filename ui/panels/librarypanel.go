package panels

import (
	"context"
	"fmt"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"elec-takeoff/internal/app"
	"elec-takeoff/internal/project"
	"elec-takeoff/internal/store"
)

// LibraryPanel lists the projects kept in the SQLite library and loads or
// saves the current takeoff there.
type LibraryPanel struct {
	state     *app.State
	store     *store.Store
	window    fyne.Window
	container fyne.CanvasObject

	list        *widget.List
	entries     []store.Entry
	selectedIdx int
	nameEntry   *widget.Entry

	onWarnings func([]*project.Warning)
}

// NewLibraryPanel creates a library panel. A nil store shows a disabled
// panel.
func NewLibraryPanel(state *app.State, st *store.Store) *LibraryPanel {
	lp := &LibraryPanel{
		state:       state,
		store:       st,
		selectedIdx: -1,
	}

	lp.list = widget.NewList(
		func() int { return len(lp.entries) },
		func() fyne.CanvasObject { return widget.NewLabel("project name  2006-01-02 15:04") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id < len(lp.entries) {
				e := lp.entries[id]
				obj.(*widget.Label).SetText(fmt.Sprintf("%s  %s", e.Name, e.UpdatedAt.Local().Format("2006-01-02 15:04")))
			}
		},
	)
	lp.list.OnSelected = func(id widget.ListItemID) {
		lp.selectedIdx = int(id)
		if id < len(lp.entries) {
			lp.nameEntry.SetText(lp.entries[id].Name)
		}
	}

	lp.nameEntry = widget.NewEntry()
	lp.nameEntry.SetPlaceHolder("Library name")

	saveBtn := widget.NewButton("Save", func() { lp.save() })
	loadBtn := widget.NewButton("Load", func() { lp.load() })
	deleteBtn := widget.NewButton("Delete", func() { lp.remove() })

	if st == nil {
		saveBtn.Disable()
		loadBtn.Disable()
		deleteBtn.Disable()
	}

	lp.container = container.NewBorder(
		nil,
		container.NewVBox(lp.nameEntry, container.NewHBox(saveBtn, loadBtn, deleteBtn)),
		nil, nil,
		lp.list,
	)
	lp.Refresh()
	return lp
}

// Container returns the panel container.
func (lp *LibraryPanel) Container() fyne.CanvasObject {
	return lp.container
}

// SetWindow sets the parent window for dialogs.
func (lp *LibraryPanel) SetWindow(w fyne.Window) {
	lp.window = w
}

// OnWarnings sets the callback receiving load warnings.
func (lp *LibraryPanel) OnWarnings(callback func([]*project.Warning)) {
	lp.onWarnings = callback
}

// Refresh reloads the entry list.
func (lp *LibraryPanel) Refresh() {
	if lp.store == nil {
		return
	}
	entries, err := lp.store.List(context.Background())
	if err != nil {
		log.Printf("Library: list: %v", err)
		return
	}
	lp.entries = entries
	lp.selectedIdx = -1
	lp.list.UnselectAll()
	lp.list.Refresh()
}

func (lp *LibraryPanel) showError(err error) {
	if lp.window != nil {
		dialog.ShowError(err, lp.window)
	}
}

func (lp *LibraryPanel) save() {
	name := lp.nameEntry.Text
	if name == "" {
		name = lp.state.FileName
	}
	if err := lp.store.Save(context.Background(), name, lp.state.Snapshot()); err != nil {
		lp.showError(err)
		return
	}
	log.Printf("Library: saved %q", name)
	lp.Refresh()
}

func (lp *LibraryPanel) load() {
	name := lp.nameEntry.Text
	if name == "" {
		return
	}
	f, warnings, err := lp.store.Load(context.Background(), name)
	if err != nil {
		lp.showError(err)
		return
	}
	lp.state.Restore(f)
	log.Printf("Library: loaded %q with %d warnings", name, len(warnings))
	if lp.onWarnings != nil {
		lp.onWarnings(warnings)
	}
}

func (lp *LibraryPanel) remove() {
	name := lp.nameEntry.Text
	if name == "" || lp.window == nil {
		return
	}
	dialog.ShowConfirm("Delete Project", fmt.Sprintf("Delete %q from the library?", name), func(ok bool) {
		if !ok {
			return
		}
		if err := lp.store.Delete(context.Background(), name); err != nil {
			lp.showError(err)
			return
		}
		lp.nameEntry.SetText("")
		lp.Refresh()
	}, lp.window)
}
