// Package ui hosts the interactive crop window: a shiny event loop over the
// session state, with a software-rendered sidebar, bottom bar, and canvas.
package ui

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"sync"
	"time"
	"unicode"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/cropstudio/internal/canvas"
	"github.com/example/cropstudio/internal/clipboard"
	"github.com/example/cropstudio/internal/export"
	"github.com/example/cropstudio/internal/notify"
	"github.com/example/cropstudio/internal/session"
	"github.com/example/cropstudio/internal/theme"
)

// frameDropThreshold specifies how many consecutive frames can be canceled
// before a draw is allowed to complete to keep the UI responsive.
const frameDropThreshold = 10

const (
	defaultWindowW = 1280
	defaultWindowH = 800

	messageDuration = 2 * time.Second
	scrollStep      = 40
	spinnerStep     = 50
)

// App holds the state for one studio window.
type App struct {
	session   *session.Session
	view      *canvas.View
	theme     *theme.Theme
	notifier  *notify.Notifier
	outputDir string
	folder    string

	panning bool
	panLast image.Point
}

// Option modifies an App during creation.
type Option func(*App)

// WithSession sets the folder session driving the window.
func WithSession(s *session.Session) Option { return func(a *App) { a.session = s } }

// WithTheme sets the color theme.
func WithTheme(t *theme.Theme) Option { return func(a *App) { a.theme = t } }

// WithNotifier sets the desktop notifier for export and copy events.
func WithNotifier(n *notify.Notifier) Option { return func(a *App) { a.notifier = n } }

// WithOutputDir sets the directory exports are written under.
func WithOutputDir(dir string) Option { return func(a *App) { a.outputDir = dir } }

// WithFolder sets the image folder opened on startup.
func WithFolder(dir string) Option { return func(a *App) { a.folder = dir } }

// New creates an App with the provided options.
func New(opts ...Option) *App {
	a := &App{
		theme:     theme.Default(),
		outputDir: export.DefaultOutputRoot,
	}
	for _, o := range opts {
		o(a)
	}
	if a.session == nil {
		a.session = session.New(export.Options{})
	}
	return a
}

// Run executes the UI loop using shiny's driver.
func (a *App) Run() { driver.Main(a.Main) }

func (a *App) Main(s screen.Screen) {
	// Size the sidebar to the widest control label so nothing is clipped.
	d := &font.Drawer{Face: basicfont.Face7x13}
	labels := []string{"CropStudio", "O:Open folder", "E:Export", "C:Copy last", "P:Prev image", "N:Next image", "F:Fit", "Q:Quit", "X:Crop mode", "Enhance"}
	max := 0
	for _, lbl := range labels {
		if w := d.MeasureString(lbl).Ceil() + 28; w > max {
			max = w
		}
	}
	if max > sidebarWidth {
		sidebarWidth = max
	}

	width := defaultWindowW
	height := defaultWindowH
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: "CropStudio"})
	if err != nil {
		slog.Error("new window", "err", err)
		return
	}
	defer w.Release()

	cr := canvasRect(width, height)
	a.view = canvas.NewView(cr.Dx(), cr.Dy())

	var message string
	var messageUntil time.Time
	var promptActive bool
	var promptText string
	hover := -1
	barHover := -1

	showMessage := func(msg string) {
		message = msg
		slog.Info(msg)
		messageUntil = time.Now().Add(messageDuration)
	}

	setImage := func() {
		if a.session.Current != nil {
			b := a.session.Current.Bounds()
			a.view.SetImage(b.Dx(), b.Dy())
		}
	}

	openFolder := func(dir string) {
		if err := a.session.OpenFolder(dir); err != nil {
			if errors.Is(err, session.ErrNoImages) {
				showMessage("No images found")
			} else {
				slog.Warn("open folder", "dir", dir, "err", err)
				showMessage("Could not open folder")
			}
			return
		}
		setImage()
		showMessage(fmt.Sprintf("Loaded %d images", len(a.session.Images.Paths)))
	}

	doExport := func() {
		if a.session.Current == nil {
			showMessage("No image loaded")
			return
		}
		stem := session.Stem(a.session.CurrentPath())
		artifacts, err := export.All(a.session.Current, a.session.Regions, a.session.Options, stem, a.outputDir)
		if err != nil {
			if errors.Is(err, export.ErrNoRegions) {
				showMessage("No crop zones")
			} else {
				slog.Warn("export", "err", err)
				showMessage("Export failed")
			}
			return
		}
		outDir := filepath.Dir(artifacts[0].Path)
		showMessage(fmt.Sprintf("Saved %d crops", len(artifacts)))
		if a.notifier != nil {
			a.notifier.Export(outDir)
		}
	}

	doCopy := func() {
		if a.session.Current == nil || len(a.session.Regions) == 0 {
			showMessage("No crop zones")
			return
		}
		region := a.session.Regions[len(a.session.Regions)-1]
		crop := export.Render(a.session.Current, region, a.session.Options)
		if err := clipboard.WriteImage(crop); err != nil {
			slog.Warn("copy", "err", err)
			showMessage("Copy failed")
			return
		}
		detail := fmt.Sprintf("crop %d", len(a.session.Regions))
		showMessage("Copied to clipboard")
		if a.notifier != nil {
			a.notifier.Copy(detail)
		}
	}

	doCopyPath := func() {
		if a.session.Current == nil {
			showMessage("No image loaded")
			return
		}
		dir := export.OutputDir(a.outputDir, session.Stem(a.session.CurrentPath()))
		if err := clipboard.WriteText(dir); err != nil {
			slog.Warn("copy path", "err", err)
			showMessage("Copy failed")
			return
		}
		showMessage("Copied output path")
	}

	navigate := func(step func() error) {
		if err := step(); err != nil {
			slog.Warn("load image", "err", err)
			showMessage("Could not load image")
			return
		}
		setImage()
	}

	var quit func()

	keyboardAction := map[KeyShortcut]string{}
	actions := map[string]func(){}
	register := func(name string, keys KeyboardShortcuts, fn func()) {
		actions[name] = fn
		if keys != nil {
			for _, sc := range keys.KeyboardShortcuts() {
				keyboardAction[sc] = name
			}
		}
	}

	register("open", shortcutList{{Rune: 'o'}}, func() {
		promptActive = true
		promptText = a.folder
	})
	register("export", shortcutList{{Rune: 'e'}}, doExport)
	register("copy", shortcutList{{Rune: 'c'}}, doCopy)
	register("copypath", shortcutList{{Rune: 'y'}}, doCopyPath)
	register("prev", shortcutList{{Rune: 'p'}, {Rune: -1, Code: key.CodeLeftArrow}}, func() {
		navigate(a.session.Prev)
	})
	register("next", shortcutList{{Rune: 'n'}, {Rune: -1, Code: key.CodeRightArrow}}, func() {
		navigate(a.session.Next)
	})
	register("fit", shortcutList{{Rune: 'f'}}, func() { a.view.Fit() })
	register("crop", shortcutList{{Rune: 'x'}}, func() {
		a.session.CropMode = !a.session.CropMode
		if !a.session.CropMode && a.view.State() == canvas.StateDrawing {
			a.view.CancelDraft()
		}
	})
	register("undo", shortcutList{{Rune: -1, Code: key.CodeDeleteBackspace}, {Rune: -1, Code: key.CodeDeleteForward}}, func() {
		if n := len(a.session.Regions); n > 0 {
			a.session.Regions = a.session.Regions[:n-1]
		}
	})

	repaint := func() { w.Send(paint.Event{}) }

	sidebar := a.buildSidebar(map[string]func(){
		"open":   func() { actions["open"](); repaint() },
		"export": func() { actions["export"](); repaint() },
		"copy":   func() { actions["copy"](); repaint() },
		"prev":   func() { actions["prev"](); repaint() },
		"next":   func() { actions["next"](); repaint() },
		"fit":    func() { actions["fit"](); repaint() },
		"quit":   func() { quit() },
	}, repaint)
	layoutSidebar(sidebar)

	bar := a.buildBottomBar(actions, repaint)
	layoutBottomBar(bar, height)

	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	var dropCount int
	paintCh := make(chan paintState, 1)
	go func() {
		for st := range paintCh {
			ctx, cancel := context.WithCancel(context.Background())
			paintMu.Lock()
			paintCancel = cancel
			paintMu.Unlock()
			drawFrame(ctx, s, w, st)
			paintMu.Lock()
			paintCancel = nil
			if ctx.Err() == nil {
				dropCount = 0
			}
			paintMu.Unlock()
		}
	}()

	quitRequested := false
	quit = func() { quitRequested = true }

	if a.folder != "" {
		openFolder(a.folder)
	} else {
		promptActive = true
	}

	for {
		e := w.NextEvent()
		switch e := e.(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				paintMu.Lock()
				if paintCancel != nil {
					paintCancel()
				}
				paintMu.Unlock()
				return
			}
		case size.Event:
			width = e.WidthPx
			height = e.HeightPx
			cr := canvasRect(width, height)
			a.view.Resize(cr.Dx(), cr.Dy())
			layoutBottomBar(bar, height)
			repaint()
		case paint.Event:
			paintMu.Lock()
			if paintCancel != nil {
				if dropCount < frameDropThreshold {
					paintCancel()
					dropCount++
				}
			}
			paintMu.Unlock()
			st := paintState{
				width:        width,
				height:       height,
				theme:        a.theme,
				img:          a.session.Current,
				zoom:         a.view.Zoom,
				offset:       a.view.Offset,
				regions:      append([]canvas.Region(nil), a.session.Regions...),
				draft:        a.view.Draft(),
				drawing:      a.view.State() == canvas.StateDrawing,
				circle:       a.session.Options.Circle,
				imagePath:    a.session.CurrentPath(),
				sidebar:      sidebar,
				hover:        hover,
				bar:          bar,
				barHover:     barHover,
				promptActive: promptActive,
				promptText:   promptText,
				message:      message,
				messageUntil: messageUntil,
			}
			if a.session.Images != nil {
				st.imageIndex = a.session.Images.Index
				st.imageCount = len(a.session.Images.Paths)
			}
			offerPaint(paintCh, st)
		case mouse.Event:
			if promptActive {
				continue
			}
			if message != "" && time.Now().Before(messageUntil) && e.Direction == mouse.DirPress {
				messageUntil = time.Time{}
				repaint()
				continue
			}
			p := image.Pt(int(e.X), int(e.Y))
			if a.handleBarMouse(e, p, bar, &barHover, repaint) {
				continue
			}
			if a.handleSidebarMouse(e, p, sidebar, &hover, repaint) {
				if quitRequested {
					paintMu.Lock()
					if paintCancel != nil {
						paintCancel()
					}
					paintMu.Unlock()
					return
				}
				continue
			}
			a.handleCanvasMouse(e, p, width, height, repaint)
		case key.Event:
			if e.Direction != key.DirPress {
				continue
			}
			if promptActive {
				switch e.Code {
				case key.CodeReturnEnter:
					promptActive = false
					if promptText != "" {
						a.folder = promptText
						openFolder(promptText)
					}
					repaint()
				case key.CodeEscape:
					promptActive = false
					repaint()
				case key.CodeDeleteBackspace:
					if len(promptText) > 0 {
						promptText = promptText[:len(promptText)-1]
						repaint()
					}
				default:
					if e.Rune > 0 {
						promptText += string(e.Rune)
						repaint()
					}
				}
				continue
			}
			if e.Code == key.CodeEscape {
				if a.view.State() == canvas.StateDrawing {
					a.view.CancelDraft()
					repaint()
				}
				continue
			}
			switch e.Rune {
			case 'q', 'Q':
				paintMu.Lock()
				if paintCancel != nil {
					paintCancel()
				}
				paintMu.Unlock()
				return
			case '+', '=':
				cr := canvasRect(width, height)
				a.view.ZoomStep(true, image.Pt(cr.Dx()/2, cr.Dy()/2))
				repaint()
				continue
			case '-':
				cr := canvasRect(width, height)
				a.view.ZoomStep(false, image.Pt(cr.Dx()/2, cr.Dy()/2))
				repaint()
				continue
			}
			ks := KeyShortcut{Rune: unicode.ToLower(e.Rune), Code: e.Code, Modifiers: e.Modifiers}
			name, ok := keyboardAction[ks]
			if !ok && e.Rune > 0 {
				// Rune-only registrations don't care which physical key
				// produced the character.
				name, ok = keyboardAction[KeyShortcut{Rune: unicode.ToLower(e.Rune), Modifiers: e.Modifiers}]
			}
			if ok {
				actions[name]()
				repaint()
			}
		}
	}
}

// offerPaint hands a snapshot to the paint goroutine, replacing any
// undelivered frame. The drain is non-blocking so the event loop cannot
// stall if the paint goroutine takes the pending state first.
func offerPaint(ch chan paintState, st paintState) {
	select {
	case ch <- st:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- st
}

// handleBarMouse reports whether the event was consumed by the bottom bar.
func (a *App) handleBarMouse(e mouse.Event, p image.Point, bar []*barShortcut, barHover *int, repaint func()) bool {
	if p.Y < bar[0].rect.Min.Y {
		if *barHover != -1 {
			*barHover = -1
			repaint()
		}
		return false
	}
	*barHover = -1
	for i, sc := range bar {
		if p.In(sc.rect) {
			*barHover = i
			if e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress {
				sc.Activate()
			}
			break
		}
	}
	if e.Direction == mouse.DirNone {
		repaint()
	}
	return true
}

// handleSidebarMouse reports whether the event was consumed by the sidebar.
func (a *App) handleSidebarMouse(e mouse.Event, p image.Point, sidebar []Button, hover *int, repaint func()) bool {
	if p.X >= sidebarWidth || p.Y < headerHeight {
		if *hover != -1 {
			*hover = -1
			repaint()
		}
		return p.Y < headerHeight
	}
	*hover = -1
	for i, btn := range sidebar {
		if p.In(btn.Rect()) {
			*hover = i
			if e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress {
				if sp, ok := btn.(*Spinner); ok {
					sp.ActivateAt(p)
				} else {
					btn.Activate()
				}
				repaint()
			}
			break
		}
	}
	if e.Direction == mouse.DirNone {
		repaint()
	}
	return true
}

func (a *App) handleCanvasMouse(e mouse.Event, p image.Point, width, height int, repaint func()) {
	cr := canvasRect(width, height)
	if !p.In(cr) && a.view.State() != canvas.StateDrawing && a.view.Moving() < 0 && !a.panning {
		return
	}
	vp := p.Sub(cr.Min)
	imgPt := a.view.ViewToImage(vp)

	switch e.Button {
	case mouse.ButtonWheelUp, mouse.ButtonWheelDown:
		if e.Direction != mouse.DirPress {
			return
		}
		in := e.Button == mouse.ButtonWheelUp
		switch {
		case e.Modifiers&key.ModControl != 0:
			a.view.ZoomStep(in, vp)
		case e.Modifiers&key.ModShift != 0:
			dx := scrollStep
			if !in {
				dx = -scrollStep
			}
			a.view.ScrollBy(dx, 0)
		default:
			dy := scrollStep
			if !in {
				dy = -scrollStep
			}
			a.view.ScrollBy(0, dy)
		}
		repaint()
	case mouse.ButtonLeft:
		if a.session.Current == nil {
			return
		}
		switch e.Direction {
		case mouse.DirPress:
			switch {
			case a.session.CropMode:
				a.view.BeginDraft(imgPt)
			default:
				if idx := canvas.RegionAt(a.session.Regions, imgPt); idx >= 0 {
					a.view.BeginMove(a.session.Regions, idx, imgPt)
				} else {
					a.panning = true
					a.panLast = vp
				}
			}
			repaint()
		case mouse.DirRelease:
			switch {
			case a.panning:
				a.panning = false
			case a.view.Moving() >= 0:
				a.view.EndMove()
			default:
				if region, ok := a.view.CommitDraft(); ok {
					a.session.Commit(region)
				}
			}
			repaint()
		}
	case mouse.ButtonRight:
		if e.Direction == mouse.DirPress {
			if idx := canvas.RegionAt(a.session.Regions, imgPt); idx >= 0 {
				a.session.Regions = append(a.session.Regions[:idx], a.session.Regions[idx+1:]...)
				repaint()
			}
		}
	case mouse.ButtonNone:
		if e.Direction != mouse.DirNone {
			return
		}
		switch {
		case a.panning:
			d := vp.Sub(a.panLast)
			a.view.ScrollBy(d.X, d.Y)
			a.panLast = vp
			repaint()
		case a.view.Moving() >= 0:
			a.view.UpdateMove(a.session.Regions, imgPt)
			repaint()
		case a.view.State() == canvas.StateDrawing:
			a.view.UpdateDraft(imgPt)
			repaint()
		}
	}
}

func (a *App) buildSidebar(act map[string]func(), repaint func()) []Button {
	opts := &a.session.Options
	buttons := []Button{
		&CacheButton{Button: &ActionButton{label: "O:Open folder", theme: a.theme, onActivate: act["open"]}},
		&CacheButton{Button: &ActionButton{label: "E:Export", theme: a.theme, onActivate: act["export"]}},
		&CacheButton{Button: &ActionButton{label: "C:Copy last", theme: a.theme, onActivate: act["copy"]}},
		&CacheButton{Button: &ActionButton{label: "P:Prev image", theme: a.theme, onActivate: act["prev"]}},
		&CacheButton{Button: &ActionButton{label: "N:Next image", theme: a.theme, onActivate: act["next"]}},
		&CacheButton{Button: &ActionButton{label: "F:Fit", theme: a.theme, onActivate: act["fit"]}},
		&CacheButton{Button: &ActionButton{label: "Q:Quit", theme: a.theme, onActivate: act["quit"]}},
		&Checkbox{label: "X:Crop mode", theme: a.theme,
			get: func() bool { return a.session.CropMode },
			set: func(v bool) { a.session.CropMode = v }, onFlip: repaint},
		&Checkbox{label: "Circle", theme: a.theme,
			get: func() bool { return opts.Circle },
			set: func(v bool) { opts.Circle = v }, onFlip: repaint},
		&Checkbox{label: "Resize", theme: a.theme,
			get: func() bool { return opts.Resize },
			set: func(v bool) { opts.Resize = v }, onFlip: repaint},
		&Spinner{label: "W:", theme: a.theme, min: export.MinDimension, max: export.MaxDimension, step: spinnerStep,
			get: func() int { return opts.Width },
			set: func(v int) { opts.Width = v }, onChange: repaint},
		&Spinner{label: "H:", theme: a.theme, min: export.MinDimension, max: export.MaxDimension, step: spinnerStep,
			get: func() int { return opts.Height },
			set: func(v int) { opts.Height = v }, onChange: repaint},
		&Checkbox{label: "Enhance", theme: a.theme,
			get: func() bool { return opts.Enhance },
			set: func(v bool) { opts.Enhance = v }, onFlip: repaint},
	}
	return buttons
}

func layoutSidebar(buttons []Button) {
	y := headerHeight + 8
	for _, btn := range buttons {
		btn.SetRect(image.Rect(4, y, sidebarWidth-4, y+22))
		y += 26
	}
}

func (a *App) buildBottomBar(actions map[string]func(), repaint func()) []*barShortcut {
	labels := []struct {
		label  string
		action string
	}{
		{"O:open", "open"},
		{"X:crop", "crop"},
		{"E:export", "export"},
		{"C:copy", "copy"},
		{"P/N:images", "next"},
		{"Bksp:undo", "undo"},
		{"F:fit", "fit"},
	}
	bar := make([]*barShortcut, 0, len(labels))
	for _, l := range labels {
		fn := actions[l.action]
		bar = append(bar, &barShortcut{label: l.label, theme: a.theme, action: func() {
			fn()
			repaint()
		}})
	}
	return bar
}

func layoutBottomBar(bar []*barShortcut, height int) {
	meas := &font.Drawer{Face: basicfont.Face7x13}
	x := sidebarWidth + 4
	y := height - bottomHeight + 16
	for _, sc := range bar {
		w := meas.MeasureString(sc.label).Ceil()
		sc.SetRect(image.Rect(x-2, y-14, x+w+2, y+4))
		x = sc.rect.Max.X + 8
	}
}
