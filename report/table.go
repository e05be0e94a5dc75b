package report

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	cellPadX = 12
	cellPadY = 6
)

var (
	tableBackground = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	tableHeader     = color.RGBA{R: 230, G: 230, B: 230, A: 255}
	tableGrid       = color.RGBA{R: 128, G: 128, B: 128, A: 255}
	tableText       = color.RGBA{R: 0, G: 0, B: 0, A: 255}
)

// RenderTable draws table as a grid with the first row shaded as the
// header and every cell centered.
func RenderTable(table [][]string) (*image.RGBA, error) {
	if len(table) == 0 || len(table[0]) == 0 {
		return nil, fmt.Errorf("empty table")
	}

	face := basicfont.Face7x13
	metrics := face.Metrics()
	ascent := metrics.Ascent.Ceil()
	rowH := ascent + metrics.Descent.Ceil() + 2*cellPadY

	cols := len(table[0])
	widths := make([]int, cols)

	for _, row := range table {
		if len(row) != cols {
			return nil, fmt.Errorf("ragged table: %d columns, want %d", len(row), cols)
		}

		for i, cell := range row {
			if w := font.MeasureString(face, cell).Ceil() + 2*cellPadX; w > widths[i] {
				widths[i] = w
			}
		}
	}

	totalW := 1
	for _, w := range widths {
		totalW += w
	}

	totalH := len(table)*rowH + 1

	img := image.NewRGBA(image.Rect(0, 0, totalW, totalH))
	draw.Draw(img, img.Bounds(), image.NewUniform(tableBackground), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(0, 0, totalW, rowH), image.NewUniform(tableHeader), image.Point{}, draw.Src)

	grid := image.NewUniform(tableGrid)

	for r := 0; r <= len(table); r++ {
		y := r * rowH
		draw.Draw(img, image.Rect(0, y, totalW, y+1), grid, image.Point{}, draw.Src)
	}

	x := 0
	for _, w := range widths {
		draw.Draw(img, image.Rect(x, 0, x+1, totalH), grid, image.Point{}, draw.Src)
		x += w
	}

	draw.Draw(img, image.Rect(x, 0, x+1, totalH), grid, image.Point{}, draw.Src)

	dr := &font.Drawer{Dst: img, Src: image.NewUniform(tableText), Face: face}

	for r, row := range table {
		x := 0
		baseline := r*rowH + cellPadY + ascent

		for i, cell := range row {
			tw := dr.MeasureString(cell).Ceil()
			dr.Dot = fixed.Point26_6{
				X: fixed.I(x + (widths[i]-tw)/2),
				Y: fixed.I(baseline),
			}
			dr.DrawString(cell)
			x += widths[i]
		}
	}

	return img, nil
}

// WriteTableImage renders table and encodes it as PNG to w.
func WriteTableImage(w io.Writer, table [][]string) error {
	img, err := RenderTable(table)
	if err != nil {
		return err
	}

	return png.Encode(w, img)
}

// SaveTableImage renders table as a PNG file at path.
func SaveTableImage(path string, table [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := WriteTableImage(f, table); err != nil {
		f.Close()

		return fmt.Errorf("render table %s: %w", path, err)
	}

	return f.Close()
}
