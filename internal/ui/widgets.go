package ui

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/mobile/event/key"

	"github.com/example/cropstudio/internal/theme"
)

// ButtonState describes the visual state of a control.
type ButtonState int

const (
	StateDefault ButtonState = iota
	StateHover
	StatePressed
)

// Button represents an interactive sidebar element.
// Activate performs the control's action when clicked.
type Button interface {
	Draw(dst *image.RGBA, state ButtonState)
	Rect() image.Rectangle
	SetRect(r image.Rectangle)
	Activate()
}

// CacheButton wraps another Button and caches its rendered states.
// It delegates all interface methods to the wrapped Button while
// caching the result of Draw for each state.
type CacheButton struct {
	Button
	cache [3]*image.RGBA
}

var _ Button = (*CacheButton)(nil)

func (cb *CacheButton) Draw(dst *image.RGBA, state ButtonState) {
	if cb.cache[state] == nil {
		rect := cb.Button.Rect()
		img := image.NewRGBA(rect)
		cb.Button.Draw(img, state)
		cb.cache[state] = img
	}
	draw.Draw(dst, cb.Button.Rect(), cb.cache[state], cb.Button.Rect().Min, draw.Src)
}

func (cb *CacheButton) Rect() image.Rectangle { return cb.Button.Rect() }

func (cb *CacheButton) SetRect(r image.Rectangle) {
	if r != cb.Button.Rect() {
		cb.Button.SetRect(r)
		cb.cache = [3]*image.RGBA{}
	}
}

// Invalidate drops the cached renderings, forcing a redraw on the next frame.
func (cb *CacheButton) Invalidate() { cb.cache = [3]*image.RGBA{} }

func (cb *CacheButton) Activate() { cb.Button.Activate() }

// ActionButton is a labelled push button.
type ActionButton struct {
	label      string
	theme      *theme.Theme
	rect       image.Rectangle
	onActivate func()
}

func (ab *ActionButton) Draw(dst *image.RGBA, state ButtonState) {
	c := ab.theme.ButtonBackground
	switch state {
	case StateHover:
		c = ab.theme.ButtonBackgroundHover
	case StatePressed:
		c = ab.theme.ButtonBackgroundPress
	}
	draw.Draw(dst, ab.rect, &image.Uniform{c}, image.Point{}, draw.Src)
	drawRectOutline(dst, ab.rect, ab.theme.ButtonBorder, 1)
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(ab.theme.ButtonText), Face: basicfont.Face7x13,
		Dot: fixed.P(ab.rect.Min.X+4, ab.rect.Min.Y+16)}
	d.DrawString(ab.label)
}

func (ab *ActionButton) Rect() image.Rectangle { return ab.rect }

func (ab *ActionButton) SetRect(r image.Rectangle) {
	if r != ab.rect {
		ab.rect = r
	}
}

func (ab *ActionButton) Activate() {
	if ab.onActivate != nil {
		ab.onActivate()
	}
}

// Checkbox toggles a boolean option. The bound value lives elsewhere so the
// checkbox reads and writes through accessors.
type Checkbox struct {
	label  string
	theme  *theme.Theme
	rect   image.Rectangle
	get    func() bool
	set    func(bool)
	onFlip func()
}

const checkboxBox = 12

func (c *Checkbox) Draw(dst *image.RGBA, state ButtonState) {
	bg := c.theme.SidebarBackground
	switch state {
	case StateHover:
		bg = c.theme.ButtonBackgroundHover
	case StatePressed:
		bg = c.theme.ButtonBackgroundPress
	}
	draw.Draw(dst, c.rect, &image.Uniform{bg}, image.Point{}, draw.Src)

	box := image.Rect(c.rect.Min.X+4, c.rect.Min.Y+5, c.rect.Min.X+4+checkboxBox, c.rect.Min.Y+5+checkboxBox)
	draw.Draw(dst, box, &image.Uniform{color.White}, image.Point{}, draw.Src)
	drawRectOutline(dst, box, c.theme.ButtonBorder, 1)
	if c.get != nil && c.get() {
		inner := box.Inset(3)
		draw.Draw(dst, inner, &image.Uniform{c.theme.ButtonText}, image.Point{}, draw.Src)
	}

	d := &font.Drawer{Dst: dst, Src: image.NewUniform(c.theme.ButtonText), Face: basicfont.Face7x13,
		Dot: fixed.P(box.Max.X+6, c.rect.Min.Y+16)}
	d.DrawString(c.label)
}

func (c *Checkbox) Rect() image.Rectangle { return c.rect }

func (c *Checkbox) SetRect(r image.Rectangle) {
	if r != c.rect {
		c.rect = r
	}
}

func (c *Checkbox) Activate() {
	if c.get == nil || c.set == nil {
		return
	}
	c.set(!c.get())
	if c.onFlip != nil {
		c.onFlip()
	}
}

// Spinner adjusts a bounded integer. Clicking the left half steps down, the
// right half steps up. ActivateAt carries the click position; Activate alone
// steps up.
type Spinner struct {
	label    string
	theme    *theme.Theme
	rect     image.Rectangle
	min, max int
	step     int
	get      func() int
	set      func(int)
	onChange func()
}

func (s *Spinner) Draw(dst *image.RGBA, state ButtonState) {
	bg := s.theme.ButtonBackground
	switch state {
	case StateHover:
		bg = s.theme.ButtonBackgroundHover
	case StatePressed:
		bg = s.theme.ButtonBackgroundPress
	}
	draw.Draw(dst, s.rect, &image.Uniform{bg}, image.Point{}, draw.Src)
	drawRectOutline(dst, s.rect, s.theme.ButtonBorder, 1)

	value := 0
	if s.get != nil {
		value = s.get()
	}
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(s.theme.ButtonText), Face: basicfont.Face7x13,
		Dot: fixed.P(s.rect.Min.X+14, s.rect.Min.Y+16)}
	d.DrawString(fmt.Sprintf("%s %d", s.label, value))

	// Arrows at the edges.
	a := &font.Drawer{Dst: dst, Src: image.NewUniform(s.theme.ButtonText), Face: basicfont.Face7x13,
		Dot: fixed.P(s.rect.Min.X+3, s.rect.Min.Y+16)}
	a.DrawString("<")
	a.Dot = fixed.P(s.rect.Max.X-10, s.rect.Min.Y+16)
	a.DrawString(">")
}

func (s *Spinner) Rect() image.Rectangle { return s.rect }

func (s *Spinner) SetRect(r image.Rectangle) {
	if r != s.rect {
		s.rect = r
	}
}

func (s *Spinner) Activate() { s.stepBy(1) }

// ActivateAt steps the value based on which half of the control was clicked.
func (s *Spinner) ActivateAt(p image.Point) {
	mid := (s.rect.Min.X + s.rect.Max.X) / 2
	if p.X < mid {
		s.stepBy(-1)
	} else {
		s.stepBy(1)
	}
}

func (s *Spinner) stepBy(dir int) {
	if s.get == nil || s.set == nil {
		return
	}
	v := s.get() + dir*s.step
	if v < s.min {
		v = s.min
	}
	if v > s.max {
		v = s.max
	}
	s.set(v)
	if s.onChange != nil {
		s.onChange()
	}
}

// KeyShortcut describes a keyboard combination that triggers an action.
type KeyShortcut struct {
	Rune      rune
	Code      key.Code
	Modifiers key.Modifiers
}

// KeyboardShortcuts returns the shortcuts associated with an action.
type KeyboardShortcuts interface {
	KeyboardShortcuts() []KeyShortcut
}

// shortcutList is a helper to easily satisfy the KeyboardShortcuts interface.
type shortcutList []KeyShortcut

func (s shortcutList) KeyboardShortcuts() []KeyShortcut { return []KeyShortcut(s) }

// barShortcut is a clickable label in the bottom bar.
type barShortcut struct {
	label  string
	theme  *theme.Theme
	action func()
	rect   image.Rectangle
}

func (s *barShortcut) Draw(dst *image.RGBA, state ButtonState) {
	col := s.theme.ButtonBackground
	switch state {
	case StateHover:
		col = s.theme.ButtonBackgroundHover
	case StatePressed:
		col = s.theme.ButtonBackgroundPress
	}
	draw.Draw(dst, s.rect, &image.Uniform{col}, image.Point{}, draw.Src)
	drawRectOutline(dst, s.rect, s.theme.ButtonBorder, 1)
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(s.theme.ButtonText), Face: basicfont.Face7x13,
		Dot: fixed.P(s.rect.Min.X+2, s.rect.Min.Y+14)}
	d.DrawString(s.label)
}

func (s *barShortcut) Rect() image.Rectangle { return s.rect }

func (s *barShortcut) SetRect(r image.Rectangle) {
	if r != s.rect {
		s.rect = r
	}
}

func (s *barShortcut) Activate() {
	if s.action != nil {
		s.action()
	}
}
