package pixel

import (
	"fmt"
	"image"
	"image/draw"
)

// BytesPerPixel is the size of one pixel in the raw format: R, G, B, A.
const BytesPerPixel = 4

// Buffer is a width×height image stored row-major (index = y*width + x).
type Buffer struct {
	width, height int
	pix           []Color
}

// New returns a zero-filled w×h buffer.
func New(w, h int) (*Buffer, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, w, h)
	}
	return &Buffer{width: w, height: h, pix: make([]Color, w*h)}, nil
}

// FromRawBytes reads a w×h buffer from raw, which must hold exactly
// 4*w*h bytes of row-major R,G,B,A samples.
func FromRawBytes(raw []byte, w, h int) (*Buffer, error) {
	b, err := New(w, h)
	if err != nil {
		return nil, err
	}
	if len(raw) != BytesPerPixel*w*h {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrRawLength, len(raw), BytesPerPixel*w*h)
	}
	for i := range b.pix {
		o := i * BytesPerPixel
		b.pix[i] = Color{R: raw[o], G: raw[o+1], B: raw[o+2], A: raw[o+3]}
	}
	return b, nil
}

// ToRawBytes writes the buffer into dst in the FromRawBytes layout.
// dst must be exactly 4*width*height bytes long.
func (b *Buffer) ToRawBytes(dst []byte) error {
	if len(dst) != BytesPerPixel*len(b.pix) {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrRawLength, len(dst), BytesPerPixel*len(b.pix))
	}
	for i, c := range b.pix {
		o := i * BytesPerPixel
		dst[o] = c.R
		dst[o+1] = c.G
		dst[o+2] = c.B
		dst[o+3] = c.A
	}
	return nil
}

// Bytes returns a freshly allocated raw copy of the buffer.
func (b *Buffer) Bytes() []byte {
	raw := make([]byte, BytesPerPixel*len(b.pix))
	_ = b.ToRawBytes(raw)
	return raw
}

func (b *Buffer) Width() int  { return b.width }
func (b *Buffer) Height() int { return b.height }

// Len is the number of pixels.
func (b *Buffer) Len() int { return len(b.pix) }

// Bounds is the region covering the whole buffer.
func (b *Buffer) Bounds() Region {
	return Region{Width: b.width, Height: b.height}
}

// Fits reports whether r lies inside the buffer.
func (b *Buffer) Fits(r Region) bool {
	return r.Width > 0 && r.Height > 0 && r.In(b.Bounds())
}

// At returns the pixel at (x,y). It panics if (x,y) is outside the buffer.
func (b *Buffer) At(x, y int) Color {
	return b.pix[b.index(x, y)]
}

// Set stores c at (x,y). It panics if (x,y) is outside the buffer.
func (b *Buffer) Set(x, y int, c Color) {
	b.pix[b.index(x, y)] = c
}

func (b *Buffer) index(x, y int) int {
	if x < 0 || y < 0 || x >= b.width || y >= b.height {
		panic(fmt.Sprintf("pixel: (%d,%d) outside %dx%d buffer", x, y, b.width, b.height))
	}
	return y*b.width + x
}

// Colors returns a copy of the pixels inside r, row by row.
func (b *Buffer) Colors(r Region) []Color {
	out := make([]Color, 0, r.Area())
	for y := r.Y; y < r.Y+r.Height; y++ {
		row := y * b.width
		out = append(out, b.pix[row+r.X:row+r.X+r.Width]...)
	}
	return out
}

// Mean is the mean color of the pixels inside r. r must fit the buffer.
func (b *Buffer) Mean(r Region) Color {
	return mean(b.Colors(r))
}

// Fill paints every pixel inside r with c.
func (b *Buffer) Fill(r Region, c Color) {
	for y := r.Y; y < r.Y+r.Height; y++ {
		row := b.pix[y*b.width+r.X : y*b.width+r.X+r.Width]
		for i := range row {
			row[i] = c
		}
	}
}

// Equal reports whether both buffers have the same size and pixels.
func (b *Buffer) Equal(o *Buffer) bool {
	if b.width != o.width || b.height != o.height {
		return false
	}
	for i := range b.pix {
		if b.pix[i] != o.pix[i] {
			return false
		}
	}
	return true
}

// FromImage copies any image.Image into a buffer with its origin at (0,0).
func FromImage(src image.Image) (*Buffer, error) {
	bounds := src.Bounds()
	nrgba, ok := src.(*image.NRGBA)
	if !ok || nrgba.Rect.Min != (image.Point{}) || nrgba.Stride != BytesPerPixel*bounds.Dx() ||
		len(nrgba.Pix) != BytesPerPixel*bounds.Dx()*bounds.Dy() {
		nrgba = image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), src, bounds.Min, draw.Src)
	}
	return FromRawBytes(nrgba.Pix, bounds.Dx(), bounds.Dy())
}

// Image returns the buffer as a non-premultiplied RGBA image.
func (b *Buffer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.width, b.height))
	_ = b.ToRawBytes(img.Pix)
	return img
}
