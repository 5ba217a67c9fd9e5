// Package mainwindow provides the main application window.
package mainwindow

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"elec-takeoff/internal/app"
	"elec-takeoff/internal/config"
	"elec-takeoff/internal/draw"
	"elec-takeoff/internal/ocr"
	"elec-takeoff/internal/project"
	"elec-takeoff/internal/render"
	"elec-takeoff/internal/store"
	"elec-takeoff/internal/takeoff"
	"elec-takeoff/internal/version"
	"elec-takeoff/ui/canvas"
	"elec-takeoff/ui/dialogs"
	"elec-takeoff/ui/panels"
	"elec-takeoff/ui/prefs"
)

const (
	appTitle       = "Electrical Takeoff"
	projectExt     = ".takeoff.json"
	renderMaxScale = 4.0
)

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app   fyne.App
	state *app.State
	cfg   *config.Config
	prefs *prefs.Prefs
	store *store.Store

	engine    *draw.Engine
	canvas    *canvas.TakeoffCanvas
	sidePanel *panels.SidePanel
	statusBar *widget.Label
	calLabel  *widget.Label
	pageLabel *widget.Label
	codeEntry *widget.Entry
	toolRadio *widget.RadioGroup
	undoBtn   *widget.Button
	redoBtn   *widget.Button

	drawings *render.ImageSet
	loader   *render.Loader
	saver    *app.Autosaver

	fitToWindowItem *fyne.MenuItem
}

// New creates the main window. st may be nil when the project library is
// unavailable.
func New(fyneApp fyne.App, state *app.State, cfg *config.Config, p *prefs.Prefs, st *store.Store) *MainWindow {
	win := fyneApp.NewWindow(appTitle)

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
		cfg:    cfg,
		prefs:  p,
		store:  st,
	}

	mw.engine = draw.New(state, dialogs.NewLengthPrompt(win), cfg.DrawSettings())
	mw.setupUI()
	mw.setupMenus()
	mw.setupShortcuts()
	mw.setupEventHandlers()
	mw.setupAutosave()

	win.SetCloseIntercept(mw.onQuit)
	win.Resize(fyne.NewSize(1400, 900))
	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewTakeoffCanvas(mw.engine, mw.state)
	mw.canvas.OnZoomChange(mw.onZoomChanged)

	mw.sidePanel = panels.NewSidePanel(mw.state, mw.cfg.Prices, mw.store)
	mw.sidePanel.SetWindow(mw.Window)
	mw.sidePanel.Tags.OnActivate(func(code string) {
		mw.codeEntry.SetText(code)
	})
	mw.sidePanel.Pages.OnSelect(mw.showPage)
	mw.sidePanel.Pages.OnReadLabels(mw.onReadSheetLabels)
	mw.sidePanel.Library.OnWarnings(mw.showWarnings)

	mw.statusBar = widget.NewLabel("Ready")
	mw.calLabel = widget.NewLabel("")

	toolbar := mw.createToolbar()

	canvasArea := container.NewBorder(
		toolbar,
		nil,
		nil,
		nil,
		mw.canvas,
	)

	split := container.NewHSplit(
		mw.sidePanel.Container(),
		canvasArea,
	)
	split.SetOffset(0.3)

	content := container.NewBorder(
		nil,
		container.NewPadded(container.NewBorder(nil, nil, nil, mw.calLabel, mw.statusBar)),
		nil,
		nil,
		split,
	)

	mw.SetContent(content)
	mw.updateCalibration()
}

// createToolbar creates the tool, code, history, page and zoom controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	names := make([]string, 0, len(draw.Tools()))
	for _, t := range draw.Tools() {
		name := t.String()
		names = append(names, strings.ToUpper(name[:1])+name[1:])
	}
	mw.toolRadio = widget.NewRadioGroup(names, func(s string) {
		t, err := draw.ParseTool(s)
		if err != nil {
			return
		}
		mw.engine.SetTool(t)
		mw.focusCanvas()
	})
	mw.toolRadio.Horizontal = true
	mw.toolRadio.Required = true
	mw.toolRadio.SetSelected(names[0])

	mw.codeEntry = widget.NewEntry()
	mw.codeEntry.SetPlaceHolder("Code")
	mw.codeEntry.OnChanged = func(s string) {
		mw.engine.SetActiveCode(s)
		mw.prefs.SetString(prefs.KeyActiveCode, mw.engine.ActiveCode())
	}
	mw.codeEntry.SetText(mw.prefs.String(prefs.KeyActiveCode))
	codeBox := container.NewGridWrap(fyne.NewSize(90, mw.codeEntry.MinSize().Height), mw.codeEntry)

	mw.undoBtn = widget.NewButton("Undo", mw.onUndo)
	mw.redoBtn = widget.NewButton("Redo", mw.onRedo)

	mw.pageLabel = widget.NewLabel("Page -")
	prevBtn := widget.NewButton("<", func() { mw.showPage(mw.engine.PageIndex() - 1) })
	nextBtn := widget.NewButton(">", func() { mw.showPage(mw.engine.PageIndex() + 1) })

	zoomOutBtn := widget.NewButton("-", mw.onZoomOut)
	zoomInBtn := widget.NewButton("+", mw.onZoomIn)
	fitBtn := widget.NewButton("Fit", mw.onToggleFitToWindow)
	actualBtn := widget.NewButton("1:1", mw.onActualSize)

	return container.NewVBox(
		container.NewHBox(mw.toolRadio),
		container.NewHBox(
			widget.NewLabel("Code:"), codeBox,
			widget.NewSeparator(),
			mw.undoBtn, mw.redoBtn,
			widget.NewSeparator(),
			prevBtn, mw.pageLabel, nextBtn,
			widget.NewSeparator(),
			widget.NewLabel("Zoom:"), zoomOutBtn, zoomInBtn, fitBtn, actualBtn,
		),
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("New Takeoff", mw.onNewProject),
		fyne.NewMenuItem("Open Drawing Set...", mw.onOpenDrawings),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Open Project...", mw.onOpenProject),
		fyne.NewMenuItem("Save Project", mw.onSaveProject),
		fyne.NewMenuItem("Save Project As...", mw.onSaveProjectAs),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo", mw.onUndo),
		fyne.NewMenuItem("Redo", mw.onRedo),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Delete Selected", func() { mw.state.DeleteSelected() }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Measure Options...", mw.onMeasureOptions),
	)

	mw.fitToWindowItem = fyne.NewMenuItem("Fit to Window", mw.onToggleFitToWindow)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", mw.onZoomIn),
		fyne.NewMenuItem("Zoom Out", mw.onZoomOut),
		mw.fitToWindowItem,
		fyne.NewMenuItem("Actual Size", mw.onActualSize),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Previous Page", func() { mw.showPage(mw.engine.PageIndex() - 1) }),
		fyne.NewMenuItem("Next Page", func() { mw.showPage(mw.engine.PageIndex() + 1) }),
	)

	toolsMenu := fyne.NewMenu("Tools",
		fyne.NewMenuItem("Read Sheet Labels", mw.onReadSheetLabels),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, viewMenu, toolsMenu, helpMenu))
}

// setupShortcuts binds the history and file shortcuts on the window canvas.
func (mw *MainWindow) setupShortcuts() {
	c := mw.Canvas()
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault},
		func(fyne.Shortcut) { mw.onUndo() })
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault | fyne.KeyModifierShift},
		func(fyne.Shortcut) { mw.onRedo() })
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyY, Modifier: fyne.KeyModifierShortcutDefault},
		func(fyne.Shortcut) { mw.onRedo() })
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyS, Modifier: fyne.KeyModifierShortcutDefault},
		func(fyne.Shortcut) { mw.onSaveProject() })
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyO, Modifier: fyne.KeyModifierShortcutDefault},
		func(fyne.Shortcut) { mw.onOpenProject() })
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventProjectLoaded, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.SetTitle(appTitle + " - " + filepath.Base(path))
			mw.prefs.SetString(prefs.KeyLastProject, path)
		}
	})

	mw.state.On(app.EventProjectSaved, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.SetTitle(appTitle + " - " + filepath.Base(path))
			mw.prefs.SetString(prefs.KeyLastProject, path)
		}
	})

	mw.state.On(app.EventModified, func(data interface{}) {
		if modified, ok := data.(bool); ok && modified {
			title := mw.Title()
			if len(title) > 0 && title[len(title)-1] != '*' {
				mw.SetTitle(title + " *")
			}
		}
	})

	mw.state.On(app.EventHistoryChanged, func(interface{}) { mw.updateHistoryButtons() })
	mw.state.On(app.EventCalibrationChanged, func(interface{}) { mw.updateCalibration() })
	mw.state.On(app.EventProjectReset, func(interface{}) { mw.updateCalibration() })
	mw.state.On(app.EventOptionsChanged, func(interface{}) {
		mw.prefs.SetMeasureOptions(mw.state.MeasureOptions())
	})
}

// setupAutosave starts the periodic save of a modified project.
func (mw *MainWindow) setupAutosave() {
	mw.saver = app.NewAutosaver(mw.state, mw.cfg.AutosaveInterval)
	if mw.saver == nil {
		return
	}
	mw.saver.OnSaved(func(path string, err error) {
		if err != nil {
			mw.updateStatus("Autosave failed: " + err.Error())
			return
		}
		if !mw.state.IsModified() {
			mw.SetTitle(appTitle + " - " + filepath.Base(path))
		}
		mw.updateStatus("Autosaved " + filepath.Base(path))
	})
	mw.saver.Start()
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

func (mw *MainWindow) updateHistoryButtons() {
	p := mw.engine.PageIndex()
	setEnabled(mw.undoBtn, mw.state.CanUndo(p))
	setEnabled(mw.redoBtn, mw.state.CanRedo(p))
}

func setEnabled(b *widget.Button, on bool) {
	if on {
		b.Enable()
	} else {
		b.Disable()
	}
}

func (mw *MainWindow) updateCalibration() {
	p := mw.state.Page(mw.engine.PageIndex())
	if p.Calibrated() {
		mw.calLabel.SetText(fmt.Sprintf("Scale: %.2f px/ft (%s)", p.Scale(), p.Unit))
	} else {
		mw.calLabel.SetText("Page not calibrated")
	}
	if mw.pageLabel != nil {
		if mw.state.PageCount == 0 {
			mw.pageLabel.SetText("Page -")
		} else {
			mw.pageLabel.SetText(fmt.Sprintf("Page %d/%d", mw.engine.PageIndex()+1, mw.state.PageCount))
		}
	}
	if mw.undoBtn != nil {
		mw.updateHistoryButtons()
	}
}

func (mw *MainWindow) showWarnings(warnings []*project.Warning) {
	if len(warnings) == 0 {
		mw.updateStatus("Project loaded")
		return
	}
	mw.updateStatus(fmt.Sprintf("Loaded with %d warnings: %s", len(warnings), project.Summary(warnings)))
}

func (mw *MainWindow) focusCanvas() {
	mw.Canvas().Focus(mw.canvas.FocusTarget())
}

// getLastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) getLastDir() fyne.ListableURI {
	path := mw.prefs.String(prefs.KeyLastDir)
	if path == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(path))
	if err != nil {
		return nil
	}
	return listable
}

// saveLastDir saves the directory of the given file path.
func (mw *MainWindow) saveLastDir(filePath string) {
	mw.prefs.SetString(prefs.KeyLastDir, filepath.Dir(filePath))
}

// Restore reopens the drawing set and project of the previous session.
func (mw *MainWindow) Restore() {
	if dir := mw.prefs.String(prefs.KeyLastDrawings); dir != "" {
		if err := mw.loadDrawings(dir); err != nil {
			log.Printf("Restore: drawings %s: %v", dir, err)
		}
	}
	if path := mw.prefs.String(prefs.KeyLastProject); path != "" {
		mw.OpenProject(path)
	}
}

// Page display

func (mw *MainWindow) showPage(pageIndex int) {
	if mw.drawings == nil || pageIndex < 0 || pageIndex >= mw.drawings.PageCount() {
		return
	}
	mw.engine.SetPage(pageIndex)
	mw.sidePanel.Pages.SetCurrent(pageIndex)
	mw.requestRender()
	mw.updateCalibration()
}

func (mw *MainWindow) requestRender() {
	if mw.loader == nil {
		return
	}
	scale := mw.canvas.Zoom()
	if scale > renderMaxScale {
		scale = renderMaxScale
	}
	mw.loader.Request(context.Background(), mw.engine.PageIndex(), scale)
}

func (mw *MainWindow) onZoomChanged(zoom float64) {
	mw.prefs.SetFloat(prefs.KeyZoom, zoom)
	mw.requestRender()
}

// deliverPage runs on the loader goroutine for the latest request only.
func (mw *MainWindow) deliverPage(pageIndex int, r render.Result) {
	if r.Err != nil {
		log.Printf("Render: page %d: %v", pageIndex, r.Err)
		mw.updateStatus(fmt.Sprintf("Page %d failed to render: %v", pageIndex+1, r.Err))
		return
	}
	mw.canvas.SetPage(r.Page)
}

// loadDrawings opens every supported image in dir, in name order, as the
// pages of a new takeoff.
func (mw *MainWindow) loadDrawings(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read drawing set: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if !e.IsDir() && render.IsSupportedFormat(e.Name()) {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return fmt.Errorf("no page images (%s) in %s", strings.Join(render.SupportedFormats(), ", "), dir)
	}

	quality := render.QualityHigh
	if mw.cfg.RenderQuality == config.QualityDraft {
		quality = render.QualityDraft
	}
	set, err := render.NewImageSet(paths, quality)
	if err != nil {
		return err
	}

	if mw.loader != nil {
		mw.loader.Cancel()
	}
	mw.drawings = set
	mw.loader = render.NewLoader(set, mw.deliverPage)
	mw.state.Reset(filepath.Base(dir), set.PageCount())
	mw.prefs.SetString(prefs.KeyLastDrawings, dir)
	mw.SetTitle(appTitle + " - " + filepath.Base(dir))

	mw.canvas.SetPage(nil)
	mw.engine.SetPage(0)
	mw.sidePanel.Pages.SetCurrent(0)
	mw.canvas.SetZoom(mw.prefs.Float(prefs.KeyZoom, 1))
	mw.requestRender()
	mw.updateCalibration()
	log.Printf("Drawings: opened %d pages from %s", set.PageCount(), dir)
	return nil
}

// OpenProject loads a takeoff project and reports its warnings.
func (mw *MainWindow) OpenProject(path string) {
	warnings, err := mw.state.LoadProject(path)
	if err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	mw.showWarnings(warnings)
	mw.showPage(mw.engine.PageIndex())
	mw.updateCalibration()
}

// Menu action handlers

func (mw *MainWindow) confirmDiscard(then func()) {
	if !mw.state.IsModified() {
		then()
		return
	}
	dialog.ShowConfirm("Unsaved Changes", "Discard unsaved changes to the takeoff?", func(ok bool) {
		if ok {
			then()
		}
	}, mw.Window)
}

func (mw *MainWindow) onNewProject() {
	mw.confirmDiscard(func() {
		count := 0
		if mw.drawings != nil {
			count = mw.drawings.PageCount()
		}
		mw.state.Reset(mw.state.FileName, count)
		mw.prefs.SetString(prefs.KeyLastProject, "")
		mw.SetTitle(appTitle + " - New Takeoff")
	})
}

func (mw *MainWindow) onOpenDrawings() {
	mw.confirmDiscard(func() {
		fd := dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
			if err != nil || uri == nil {
				return
			}
			if err := mw.loadDrawings(uri.Path()); err != nil {
				dialog.ShowError(err, mw.Window)
			}
		}, mw.Window)
		if loc := mw.getLastDir(); loc != nil {
			fd.SetLocation(loc)
		}
		fd.Show()
	})
}

func (mw *MainWindow) onOpenProject() {
	mw.confirmDiscard(func() {
		fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
			if err != nil || reader == nil {
				return
			}
			reader.Close()
			path := reader.URI().Path()
			mw.saveLastDir(path)
			mw.OpenProject(path)
		}, mw.Window)
		fd.SetFilter(storage.NewExtensionFileFilter([]string{".json"}))
		if loc := mw.getLastDir(); loc != nil {
			fd.SetLocation(loc)
		}
		fd.Show()
	})
}

func (mw *MainWindow) onSaveProject() {
	path := mw.state.Path()
	if path == "" {
		mw.onSaveProjectAs()
		return
	}
	if err := mw.state.SaveProject(path); err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	mw.updateStatus("Saved " + filepath.Base(path))
}

func (mw *MainWindow) onSaveProjectAs() {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()
		if !strings.HasSuffix(path, ".json") {
			path += projectExt
		}
		mw.saveLastDir(path)
		if err := mw.state.SaveProject(path); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.updateStatus("Saved " + filepath.Base(path))
	}, mw.Window)
	name := mw.state.FileName
	if name == "" {
		name = "takeoff"
	}
	fd.SetFileName(name + projectExt)
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onUndo() {
	mw.engine.KeyDown(draw.KeyUndo)
}

func (mw *MainWindow) onRedo() {
	mw.engine.KeyDown(draw.KeyRedo)
}

func (mw *MainWindow) onMeasureOptions() {
	dialogs.NewMeasureOptionsDialog("Measure Options", mw.state.MeasureOptions(), mw.Window, func(opts takeoff.MeasureOptions) {
		mw.state.SetMeasureOptions(opts)
	}).Show()
}

func (mw *MainWindow) onZoomIn() {
	mw.disableFitToWindow()
	mw.canvas.ZoomIn()
}

func (mw *MainWindow) onZoomOut() {
	mw.disableFitToWindow()
	mw.canvas.ZoomOut()
}

func (mw *MainWindow) onToggleFitToWindow() {
	mw.fitToWindowItem.Checked = !mw.fitToWindowItem.Checked
	mw.canvas.SetFitToWindow(mw.fitToWindowItem.Checked)
}

func (mw *MainWindow) onActualSize() {
	mw.disableFitToWindow()
	mw.canvas.SetZoom(1.0)
}

func (mw *MainWindow) disableFitToWindow() {
	if mw.fitToWindowItem.Checked {
		mw.fitToWindowItem.Checked = false
		mw.canvas.SetFitToWindow(false)
	}
}

// onReadSheetLabels recognises the sheet number of every page off the UI
// goroutine and stores it as the page label.
func (mw *MainWindow) onReadSheetLabels() {
	set := mw.drawings
	if set == nil {
		mw.updateStatus("Open a drawing set first")
		return
	}
	reader, err := ocr.NewSheetReader()
	if err != nil {
		dialogs.ShowError("Sheet labels", err, mw.Window)
		return
	}
	mw.updateStatus("Reading sheet labels...")

	go func() {
		defer reader.Close()
		found := 0
		for i := 0; i < set.PageCount(); i++ {
			img, err := set.Native(i)
			if err != nil {
				log.Printf("Sheets: page %d: %v", i, err)
				continue
			}
			sheet, err := reader.Read(i, img)
			if err != nil {
				log.Printf("Sheets: page %d: %v", i, err)
				continue
			}
			if sheet.Number != "" {
				mw.state.SetPageLabel(i, sheet.Number)
				found++
			}
		}
		mw.updateStatus(fmt.Sprintf("Sheet labels: %d of %d pages recognised", found, set.PageCount()))
	}()
}

func (mw *MainWindow) onQuit() {
	mw.confirmDiscard(func() {
		if mw.saver != nil {
			mw.saver.Stop()
		}
		if mw.loader != nil {
			mw.loader.Cancel()
			mw.loader.Wait()
		}
		if err := mw.prefs.Save(); err != nil {
			log.Printf("Prefs: save: %v", err)
		}
		mw.app.Quit()
	})
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About "+appTitle,
		fmt.Sprintf("%s v%s\n\n"+
			"Counts and linear measurements on electrical drawings,\n"+
			"rolled up into a bill of materials.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			appTitle, version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}
