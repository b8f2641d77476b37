package carve

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// OtsuThreshold may be passed as a threshold to
// Silhouette to pick the threshold automatically.
const OtsuThreshold = -1

// LoadGray reads an image file and converts it to
// grayscale.
func LoadGray(path string) (*image.Gray, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "load gray")
	}
	return ToGray(img), nil
}

// ToGray converts an image to grayscale with its bounds
// moved to the origin.
func ToGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok && g.Bounds().Min == (image.Point{}) {
		return g
	}
	b := img.Bounds()
	res := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(res, res.Bounds(), img, b.Min, draw.Src)
	return res
}

// SaveMask writes a mask as an image file, with the
// format chosen by the file extension.
func SaveMask(path string, m *Mask) error {
	return errors.Wrap(imaging.Save(m.Image(), path), "save mask")
}

// Silhouette separates an object from the background by
// thresholding the absolute difference between a frame
// and a background frame.
//
// If blur is positive, both frames are blurred with that
// sigma first to suppress sensor noise. If threshold is
// negative, Otsu's method chooses it from the difference
// image.
func Silhouette(frame, background *image.Gray, threshold int, blur float64) (*Mask, error) {
	fb, bb := frame.Bounds(), background.Bounds()
	if fb.Dx() != bb.Dx() || fb.Dy() != bb.Dy() {
		return nil, errors.Errorf("silhouette: frame is %dx%d but background is %dx%d",
			fb.Dx(), fb.Dy(), bb.Dx(), bb.Dy())
	}
	if blur > 0 {
		frame = ToGray(imaging.Blur(frame, blur))
		background = ToGray(imaging.Blur(background, blur))
	}

	diff := AbsDiff(frame, background)
	if threshold < 0 {
		threshold = Otsu(diff)
	}

	m := NewMask(diff.Bounds().Dx(), diff.Bounds().Dy())
	for i, d := range diff.Pix {
		if int(d) > threshold {
			m.Pix[i] = 0xff
		}
	}
	return m, nil
}

// AbsDiff computes the per-pixel absolute difference of
// two equally sized grayscale images.
func AbsDiff(a, b *image.Gray) *image.Gray {
	ab, bb := a.Bounds(), b.Bounds()
	res := image.NewGray(image.Rect(0, 0, ab.Dx(), ab.Dy()))
	for y := 0; y < ab.Dy(); y++ {
		for x := 0; x < ab.Dx(); x++ {
			p1 := a.GrayAt(ab.Min.X+x, ab.Min.Y+y).Y
			p2 := b.GrayAt(bb.Min.X+x, bb.Min.Y+y).Y
			d := p1 - p2
			if p2 > p1 {
				d = p2 - p1
			}
			res.SetGray(x, y, color.Gray{Y: d})
		}
	}
	return res
}

// Otsu picks the threshold that maximizes the
// between-class variance of an image's histogram.
//
// Pixels strictly above the result are foreground.
func Otsu(img *image.Gray) int {
	var hist [256]int
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			hist[img.GrayAt(x, y).Y]++
		}
	}

	total := b.Dx() * b.Dy()
	var sum float64
	for i, n := range hist {
		sum += float64(i * n)
	}

	var sumBack float64
	var weightBack int
	var best int
	var bestVar float64
	for t, n := range hist {
		weightBack += n
		if weightBack == 0 {
			continue
		}
		weightFore := total - weightBack
		if weightFore == 0 {
			break
		}
		sumBack += float64(t * n)
		meanBack := sumBack / float64(weightBack)
		meanFore := (sum - sumBack) / float64(weightFore)
		between := float64(weightBack) * float64(weightFore) * (meanBack - meanFore) * (meanBack - meanFore)
		if between > bestVar {
			bestVar = between
			best = t
		}
	}
	return best
}
