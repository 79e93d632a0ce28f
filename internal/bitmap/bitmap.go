// Package bitmap converts between grayscale images and records of Double cells,
// one cell per pixel in row-major order. A cell of 1.0 marks ink.
package bitmap

import (
	"fmt"
	"image"
	"image/color"

	"github.com/tuannm99/novarow/internal/cell"
	"github.com/tuannm99/novarow/internal/errkind"
	"github.com/tuannm99/novarow/internal/record"
)

// ToRecord emits 1.0 for every pixel whose luminance (0..1) is below cutoff and
// 0.0 otherwise.
func ToRecord(img image.Image, cutoff float64) record.Record {
	b := img.Bounds()
	cells := make([]cell.Cell, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			v := 0.0
			if float64(g.Y)/255 < cutoff {
				v = 1.0
			}
			cells = append(cells, cell.NewDouble(v))
		}
	}
	return record.Of(cells...)
}

// FromRecord paints a w*h image: black where the cell value is at least cutoff,
// white elsewhere. Null cells are white.
func FromRecord(rec record.Record, w, h int, cutoff float64) (*image.Gray, error) {
	if w < 0 || h < 0 || rec.Len() != w*h {
		return nil, errkind.DataFormat.New(fmt.Sprintf("%dx%d bitmap needs %d cells, have %d", w, h, w*h, rec.Len()))
	}
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := 0; i < rec.Len(); i++ {
		c := rec.At(i)
		if !c.IsNull() && c.Affinity() != cell.Double {
			return nil, errkind.DataFormat.New(fmt.Sprintf("bitmap cell %d is %s", i, c.Affinity()))
		}
		px := color.Gray{Y: 255}
		if !c.IsNull() && c.Double() >= cutoff {
			px.Y = 0
		}
		img.SetGray(i%w, i/w, px)
	}
	return img, nil
}
