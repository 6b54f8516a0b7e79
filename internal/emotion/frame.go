package emotion

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	maxLongSide  = 1280
	minShortSide = 400
)

// Frame is a decoded image in BGR channel order, 3 bytes per pixel, row-major.
type Frame struct {
	Width  int
	Height int
	Pix    []byte
}

// Bounds returns the frame rectangle anchored at the origin.
func (f *Frame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Width, f.Height)
}

// Crop copies r out of the frame. r is clamped to the frame bounds; an empty
// intersection yields nil.
func (f *Frame) Crop(r image.Rectangle) *Frame {
	r = r.Intersect(f.Bounds())
	if r.Empty() {
		return nil
	}
	out := &Frame{Width: r.Dx(), Height: r.Dy(), Pix: make([]byte, r.Dx()*r.Dy()*3)}
	rowLen := r.Dx() * 3
	for y := 0; y < r.Dy(); y++ {
		src := ((r.Min.Y+y)*f.Width + r.Min.X) * 3
		copy(out.Pix[y*rowLen:(y+1)*rowLen], f.Pix[src:src+rowLen])
	}
	return out
}

// DecodeImage decodes JPEG, PNG, GIF, BMP or WebP bytes.
func DecodeImage(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("decode image: empty input")
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("decode image: zero size")
	}
	return img, nil
}

// Preprocess resizes img into the detector's working range and converts it to
// BGR. The longer side is capped at 1280 px and the shorter side raised to at
// least 400 px, keeping the aspect ratio.
func Preprocess(img image.Image) *Frame {
	b := img.Bounds()
	w, h := targetSize(b.Dx(), b.Dy())
	if w == b.Dx() && h == b.Dy() {
		return FromImage(img)
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return FromImage(dst)
}

func targetSize(w, h int) (int, int) {
	long, short := w, h
	if h > w {
		long, short = h, w
	}
	var scale float64
	switch {
	case long > maxLongSide:
		scale = float64(maxLongSide) / float64(long)
	case short > 0 && short < minShortSide:
		scale = float64(minShortSide) / float64(short)
	default:
		return w, h
	}
	return scaleDim(w, scale), scaleDim(h, scale)
}

func scaleDim(v int, scale float64) int {
	out := int(float64(v)*scale + 0.5)
	if out < 1 {
		return 1
	}
	return out
}

// FromImage converts img to a BGR frame without resizing.
func FromImage(img image.Image) *Frame {
	b := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Rect.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}
	w, h := rgba.Rect.Dx(), rgba.Rect.Dy()
	out := &Frame{Width: w, Height: h, Pix: make([]byte, w*h*3)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			si := y*rgba.Stride + x*4
			di := (y*w + x) * 3
			out.Pix[di] = rgba.Pix[si+2]
			out.Pix[di+1] = rgba.Pix[si+1]
			out.Pix[di+2] = rgba.Pix[si]
		}
	}
	return out
}
