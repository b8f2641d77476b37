package carve

import (
	"image"
	"image/color"
)

// A Mask is a binary silhouette, where nonzero pixels are
// covered by the object.
type Mask struct {
	Width  int
	Height int

	// Pix stores rows top to bottom.
	Pix []uint8
}

// NewMask creates an all-background mask.
func NewMask(width, height int) *Mask {
	return &Mask{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height),
	}
}

// FilledMask creates a mask with every pixel set to val.
func FilledMask(width, height int, val uint8) *Mask {
	m := NewMask(width, height)
	for i := range m.Pix {
		m.Pix[i] = val
	}
	return m
}

// MaskFromImage creates a mask marking every pixel whose
// gray level is above half intensity.
func MaskFromImage(img image.Image) *Mask {
	b := img.Bounds()
	m := NewMask(b.Dx(), b.Dy())
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			g := color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
			if g.Y >= 0x80 {
				m.Pix[y*m.Width+x] = 0xff
			}
		}
	}
	return m
}

// At gets the value at a row and column.
func (m *Mask) At(row, col int) uint8 {
	return m.Pix[row*m.Width+col]
}

// Set sets the value at a row and column.
func (m *Mask) Set(row, col int, val uint8) {
	m.Pix[row*m.Width+col] = val
}

// Image converts the mask to a black and white image.
func (m *Mask) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for i, p := range m.Pix {
		if p != 0 {
			img.Pix[i] = 0xff
		}
	}
	return img
}

// Coverage gets the fraction of foreground pixels.
func (m *Mask) Coverage() float64 {
	if len(m.Pix) == 0 {
		return 0
	}
	var n int
	for _, p := range m.Pix {
		if p != 0 {
			n++
		}
	}
	return float64(n) / float64(len(m.Pix))
}
