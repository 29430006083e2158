package ui

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"math"
	"path/filepath"
	"time"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"golang.org/x/exp/shiny/screen"

	"github.com/example/cropstudio/internal/canvas"
	"github.com/example/cropstudio/internal/theme"
)

const (
	headerHeight = 24
	bottomHeight = 24
)

var sidebarWidth = 120

var messageFace font.Face

func init() {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		slog.Error("parse font", "err", err)
		panic(err)
	}
	messageFace, err = opentype.NewFace(f, &opentype.FaceOptions{Size: 28, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		slog.Error("font face", "err", err)
		panic(err)
	}
}

// canvasRect is the viewport area between the sidebar, header and bottom bar.
func canvasRect(winW, winH int) image.Rectangle {
	return image.Rect(sidebarWidth, headerHeight, winW, winH-bottomHeight)
}

// backdropCache holds a cached checkerboard backdrop.
var backdropCache *image.RGBA

// drawCheckerboard fills rect of dst with a checkerboard pattern of the given
// colors. size controls the checker square size.
func drawCheckerboard(dst *image.RGBA, rect image.Rectangle, size int, light, dark color.Color) {
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if ((x/size)+(y/size))%2 == 0 {
				dst.Set(x, y, light)
			} else {
				dst.Set(x, y, dark)
			}
		}
	}
}

// drawBackdrop fills the canvas area of dst with a cached checkerboard.
func drawBackdrop(dst *image.RGBA, t *theme.Theme) {
	b := dst.Bounds()
	if backdropCache == nil || backdropCache.Bounds() != b {
		backdropCache = image.NewRGBA(b)
		drawCheckerboard(backdropCache, backdropCache.Bounds(), 8, t.CheckerLight, t.CheckerDark)
	}
	draw.Draw(dst, b, backdropCache, image.Point{}, draw.Src)
}

func setThickPixel(img *image.RGBA, x, y, thick int, col color.Color) {
	r := thick / 2
	for dx := -r; dx <= r; dx++ {
		for dy := -r; dy <= r; dy++ {
			px := x + dx
			py := y + dy
			if image.Pt(px, py).In(img.Bounds()) {
				img.Set(px, py, col)
			}
		}
	}
}

func drawLine(img *image.RGBA, x0, y0, x1, y1 int, col color.Color, thick int) {
	dx := math.Abs(float64(x1 - x0))
	dy := math.Abs(float64(y1 - y0))
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		setThickPixel(img, x0, y0, thick, col)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func drawRectOutline(img *image.RGBA, rect image.Rectangle, col color.Color, thick int) {
	drawLine(img, rect.Min.X, rect.Min.Y, rect.Max.X-1, rect.Min.Y, col, thick)
	drawLine(img, rect.Max.X-1, rect.Min.Y, rect.Max.X-1, rect.Max.Y-1, col, thick)
	drawLine(img, rect.Max.X-1, rect.Max.Y-1, rect.Min.X, rect.Max.Y-1, col, thick)
	drawLine(img, rect.Min.X, rect.Max.Y-1, rect.Min.X, rect.Min.Y, col, thick)
}

func drawDashedLine(img *image.RGBA, x0, y0, x1, y1, dash, thickness int, c1, c2 color.Color) {
	horiz := y0 == y1
	length := x1 - x0
	if !horiz {
		length = y1 - y0
	}
	if length < 0 {
		length = -length
	}
	for i := 0; i <= length; i += dash * 2 {
		for j := 0; j < dash && i+j <= length; j++ {
			col := c1
			if horiz {
				for t := 0; t < thickness; t++ {
					if x0 < x1 {
						img.Set(x0+i+j, y0+t, col)
					} else {
						img.Set(x0-i-j, y0+t, col)
					}
				}
			} else {
				for t := 0; t < thickness; t++ {
					if y0 < y1 {
						img.Set(x0+t, y0+i+j, col)
					} else {
						img.Set(x0+t, y0-i-j, col)
					}
				}
			}
		}
		for j := 0; j < dash && i+dash+j <= length; j++ {
			col := c2
			if horiz {
				for t := 0; t < thickness; t++ {
					if x0 < x1 {
						img.Set(x0+i+dash+j, y0+t, col)
					} else {
						img.Set(x0-i-dash-j, y0+t, col)
					}
				}
			} else {
				for t := 0; t < thickness; t++ {
					if y0 < y1 {
						img.Set(x0+t, y0+i+dash+j, col)
					} else {
						img.Set(x0+t, y0-i-dash-j, col)
					}
				}
			}
		}
	}
}

func drawDashedRect(img *image.RGBA, rect image.Rectangle, dash, thickness int, c1, c2 color.Color) {
	drawDashedLine(img, rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y, dash, thickness, c1, c2)
	drawDashedLine(img, rect.Max.X, rect.Min.Y, rect.Max.X, rect.Max.Y, dash, thickness, c1, c2)
	drawDashedLine(img, rect.Max.X, rect.Max.Y, rect.Min.X, rect.Max.Y, dash, thickness, c1, c2)
	drawDashedLine(img, rect.Min.X, rect.Max.Y, rect.Min.X, rect.Min.Y, dash, thickness, c1, c2)
}

// drawEllipseOutline traces the ellipse inscribed in rect.
func drawEllipseOutline(img *image.RGBA, rect image.Rectangle, col color.Color, thick int) {
	cx := (rect.Min.X + rect.Max.X) / 2
	cy := (rect.Min.Y + rect.Max.Y) / 2
	rx := rect.Dx() / 2
	ry := rect.Dy() / 2
	steps := int(math.Ceil(2 * math.Pi * math.Sqrt(float64(rx*rx+ry*ry))))
	if steps < 8 {
		steps = 8
	}
	var prevX, prevY int
	for i := 0; i <= steps; i++ {
		angle := 2 * math.Pi * float64(i) / float64(steps)
		x := cx + int(math.Cos(angle)*float64(rx))
		y := cy + int(math.Sin(angle)*float64(ry))
		if i > 0 {
			drawLine(img, prevX, prevY, x, y, col, thick)
		} else {
			setThickPixel(img, x, y, thick, col)
		}
		prevX, prevY = x, y
	}
}

// paintState is a snapshot of everything a frame needs, handed to the paint
// goroutine so the event loop never blocks on rendering.
type paintState struct {
	width, height int
	theme         *theme.Theme

	img     *image.NRGBA
	zoom    float64
	offset  image.Point
	regions []canvas.Region
	draft   image.Rectangle
	drawing bool
	circle  bool

	imagePath  string
	imageIndex int
	imageCount int

	sidebar []Button
	hover   int

	bar      []*barShortcut
	barHover int

	promptActive bool
	promptText   string

	message      string
	messageUntil time.Time
}

func drawFrame(ctx context.Context, s screen.Screen, w screen.Window, st paintState) {
	b, err := s.NewBuffer(image.Point{st.width, st.height})
	if err != nil {
		slog.Error("new buffer", "err", err)
		return
	}
	defer b.Release()

	drawBackdrop(b.RGBA(), st.theme)
	if ctx.Err() != nil {
		return
	}

	cr := canvasRect(st.width, st.height)

	if st.img != nil {
		dst := image.Rect(
			cr.Min.X+st.offset.X,
			cr.Min.Y+st.offset.Y,
			cr.Min.X+st.offset.X+int(float64(st.img.Bounds().Dx())*st.zoom),
			cr.Min.Y+st.offset.Y+int(float64(st.img.Bounds().Dy())*st.zoom),
		)
		xdraw.NearestNeighbor.Scale(b.RGBA(), dst, st.img, st.img.Bounds(), draw.Over, nil)
		if ctx.Err() != nil {
			return
		}

		toView := func(r image.Rectangle) image.Rectangle {
			return image.Rect(
				dst.Min.X+int(float64(r.Min.X)*st.zoom),
				dst.Min.Y+int(float64(r.Min.Y)*st.zoom),
				dst.Min.X+int(float64(r.Max.X)*st.zoom),
				dst.Min.Y+int(float64(r.Max.Y)*st.zoom),
			)
		}

		for i, region := range st.regions {
			if ctx.Err() != nil {
				return
			}
			r := toView(region.Rect)
			drawRectOutline(b.RGBA(), r, st.theme.RegionOutline, 2)
			if st.circle {
				drawEllipseOutline(b.RGBA(), r, st.theme.RegionOutline, 1)
			}
			d := &font.Drawer{Dst: b.RGBA(), Src: image.NewUniform(st.theme.RegionOutline), Face: basicfont.Face7x13,
				Dot: fixed.P(r.Min.X+3, r.Min.Y+14)}
			d.DrawString(fmt.Sprintf("%d", i+1))
		}

		if st.drawing && !st.draft.Empty() {
			drawDashedRect(b.RGBA(), toView(st.draft), 4, 2, st.theme.DraftOutline, color.Black)
		}
	}

	if ctx.Err() != nil {
		return
	}

	drawHeader(b.RGBA(), st)
	drawSidebar(b.RGBA(), st)
	drawBottomBar(b.RGBA(), st)

	if ctx.Err() != nil {
		return
	}

	if st.promptActive {
		drawPrompt(b.RGBA(), st)
	} else if st.message != "" && time.Now().Before(st.messageUntil) {
		drawMessage(b.RGBA(), st)
	}

	if ctx.Err() != nil {
		return
	}

	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}

func drawHeader(dst *image.RGBA, st paintState) {
	bar := image.Rect(0, 0, st.width, headerHeight)
	draw.Draw(dst, bar, &image.Uniform{st.theme.SidebarBackground}, image.Point{}, draw.Src)
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(st.theme.ButtonText), Face: basicfont.Face7x13,
		Dot: fixed.P(4, 16)}
	d.DrawString("CropStudio")

	if st.imagePath != "" {
		label := fmt.Sprintf("%s  (%d/%d)  regions: %d",
			filepath.Base(st.imagePath), st.imageIndex+1, st.imageCount, len(st.regions))
		d.Dot = fixed.P(sidebarWidth+8, 16)
		d.DrawString(label)
	}
}

func drawSidebar(dst *image.RGBA, st paintState) {
	area := image.Rect(0, headerHeight, sidebarWidth, st.height-bottomHeight)
	draw.Draw(dst, area, &image.Uniform{st.theme.SidebarBackground}, image.Point{}, draw.Src)
	for i, btn := range st.sidebar {
		state := StateDefault
		if i == st.hover {
			state = StateHover
		}
		btn.Draw(dst, state)
	}
}

func drawBottomBar(dst *image.RGBA, st paintState) {
	rect := image.Rect(0, st.height-bottomHeight, st.width, st.height)
	draw.Draw(dst, rect, &image.Uniform{st.theme.SidebarBackground}, image.Point{}, draw.Src)
	for i, sc := range st.bar {
		state := StateDefault
		if i == st.barHover {
			state = StateHover
		}
		sc.Draw(dst, state)
	}
}

func drawMessage(dst *image.RGBA, st paintState) {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(st.theme.Foreground), Face: messageFace}
	wmsg := d.MeasureString(st.message).Ceil()
	ascent := messageFace.Metrics().Ascent.Ceil()
	descent := messageFace.Metrics().Descent.Ceil()
	px := (st.width - wmsg) / 2
	py := (st.height-ascent-descent)/2 + ascent
	rect := image.Rect(px-8, py-ascent-8, px+wmsg+8, py+descent+8)
	draw.Draw(dst, rect, &image.Uniform{color.RGBA{255, 255, 255, 230}}, image.Point{}, draw.Over)
	drawRectOutline(dst, rect, st.theme.ButtonBorder, 2)
	d.Dot = fixed.P(px, py)
	d.DrawString(st.message)
}

func drawPrompt(dst *image.RGBA, st paintState) {
	label := "Open folder:"
	text := st.promptText + "|"
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(st.theme.Foreground), Face: basicfont.Face7x13}
	wlabel := d.MeasureString(label).Ceil()
	wtext := d.MeasureString(text).Ceil()
	wbox := wlabel + wtext + 24
	if min := st.width / 2; wbox < min {
		wbox = min
	}
	px := (st.width - wbox) / 2
	py := st.height / 2
	rect := image.Rect(px, py-20, px+wbox, py+12)
	draw.Draw(dst, rect, &image.Uniform{color.RGBA{255, 255, 255, 240}}, image.Point{}, draw.Over)
	drawRectOutline(dst, rect, st.theme.ButtonBorder, 2)
	d.Dot = fixed.P(px+8, py)
	d.DrawString(label)
	d.Dot = fixed.P(px+8+wlabel+8, py)
	d.DrawString(text)
}
