package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/cardview-dev/cardview/internal/filter"
	"github.com/cardview-dev/cardview/internal/txtable"
)

// Layout of the rendered table, in pixels.
const (
	pngMargin  = 16
	pngPadX    = 12
	pngRowH    = 28
	pngBadgeIn = 4
)

var (
	pngBackground = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	pngHeaderFill = color.RGBA{R: 0xf9, G: 0xfa, B: 0xfb, A: 0xff}
	pngHeaderText = color.RGBA{R: 0x6b, G: 0x72, B: 0x80, A: 0xff}
	pngText       = color.RGBA{R: 0x11, G: 0x18, B: 0x27, A: 0xff}
	pngRule       = color.RGBA{R: 0xe5, G: 0xe7, B: 0xeb, A: 0xff}
)

// PNGExporter rasterises the table the way the dashboard shows it: header,
// one line per row with a coloured status badge, then the summary.
type PNGExporter struct{}

func (e *PNGExporter) Format() string      { return "png" }
func (e *PNGExporter) ContentType() string { return "image/png" }

func (e *PNGExporter) Export(w io.Writer, p filter.Page) error {
	img := RenderTable(txtable.New(p))
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encoding png: %w", err)
	}
	return nil
}

// RenderTable draws t onto a new image sized to fit it.
func RenderTable(t txtable.Table) *image.RGBA {
	face := basicfont.Face7x13

	widths := make([]int, len(txtable.Header))
	for i, h := range txtable.Header {
		widths[i] = font.MeasureString(face, h).Ceil()
	}
	for _, r := range t.Rows {
		for i, c := range r.Cells() {
			widths[i] = max(widths[i], font.MeasureString(face, c).Ceil())
		}
	}

	tableW := 0
	for _, cw := range widths {
		tableW += cw + 2*pngPadX
	}
	tableW = max(tableW, font.MeasureString(face, t.Summary).Ceil()+2*pngPadX)
	lines := len(t.Rows) + 2 // header and summary
	width := tableW + 2*pngMargin
	height := lines*pngRowH + 2*pngMargin

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(pngBackground), image.Point{}, draw.Src)

	d := &font.Drawer{Dst: img, Face: face}
	baseline := func(top int) int {
		// Centre the glyphs vertically within the row.
		return top + (pngRowH+face.Ascent-face.Descent)/2
	}
	fill := func(r image.Rectangle, c color.Color) {
		draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
	}
	text := func(x, top int, s string, c color.Color) {
		d.Src = image.NewUniform(c)
		d.Dot = fixed.P(x, baseline(top))
		d.DrawString(s)
	}

	top := pngMargin
	fill(image.Rect(pngMargin, top, pngMargin+tableW, top+pngRowH), pngHeaderFill)
	x := pngMargin
	for i, h := range txtable.Header {
		text(x+pngPadX, top, h, pngHeaderText)
		x += widths[i] + 2*pngPadX
	}
	top += pngRowH

	for _, r := range t.Rows {
		fill(image.Rect(pngMargin, top, pngMargin+tableW, top+1), pngRule)
		x = pngMargin
		for i, c := range r.Cells() {
			if i == txtable.StatusColumn {
				bw := font.MeasureString(face, c).Ceil()
				fill(image.Rect(x+pngPadX-pngBadgeIn, top+pngBadgeIn, x+pngPadX+bw+pngBadgeIn, top+pngRowH-pngBadgeIn), r.Badge.Bg)
				text(x+pngPadX, top, c, r.Badge.Fg)
			} else {
				text(x+pngPadX, top, c, pngText)
			}
			x += widths[i] + 2*pngPadX
		}
		top += pngRowH
	}

	fill(image.Rect(pngMargin, top, pngMargin+tableW, top+1), pngRule)
	text(pngMargin+pngPadX, top, t.Summary, pngHeaderText)
	return img
}
