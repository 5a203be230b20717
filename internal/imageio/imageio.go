// Package imageio loads and saves images for the command line tool.
package imageio

import (
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/gift"
	"github.com/nfnt/resize"
	"github.com/xfmoulet/qoi"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/kurtschelfthout/quadtrees/pixel"
	"github.com/kurtschelfthout/quadtrees/rawframe"
)

// RawExt is the extension of rawframe files.
const RawExt = ".rgbz"

// ErrUnsupportedFormat is returned when an output extension has no encoder.
var ErrUnsupportedFormat = errors.New("imageio: unsupported output format")

// Load decodes the image at path into a pixel buffer and reports its format.
func Load(path string) (*pixel.Buffer, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	switch ext(path) {
	case RawExt:
		buf, err := rawframe.Read(f)
		return buf, "rgbz", err
	case ".qoi":
		img, err := qoi.Decode(f)
		if err != nil {
			return nil, "", err
		}
		buf, err := pixel.FromImage(img)
		return buf, "qoi", err
	}

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", err
	}
	buf, err := pixel.FromImage(img)
	return buf, format, err
}

// Save encodes buf to path, choosing the format from the extension.
func Save(path string, buf *pixel.Buffer) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()
	return Encode(out, ext(path), buf)
}

// Encode writes buf to w in the format named by extension.
func Encode(w io.Writer, extension string, buf *pixel.Buffer) error {
	switch strings.ToLower(extension) {
	case ".png":
		return png.Encode(w, buf.Image())
	case ".jpg", ".jpeg":
		return jpeg.Encode(w, buf.Image(), &jpeg.Options{Quality: jpeg.DefaultQuality})
	case ".gif":
		return gif.Encode(w, buf.Image(), &gif.Options{NumColors: 256})
	case ".qoi":
		return qoi.Encode(w, buf.Image())
	case RawExt:
		return rawframe.Write(w, buf)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, extension)
	}
}

// SquarePow2 crops buf to a centred square and scales it down to the largest
// power-of-two side that fits, the shape a complete tree needs. Buffers that
// already have that shape are returned as is.
func SquarePow2(buf *pixel.Buffer) (*pixel.Buffer, error) {
	side := buf.Width()
	if buf.Height() < side {
		side = buf.Height()
	}
	target := 1
	for target*2 <= side {
		target *= 2
	}
	if buf.Width() == target && buf.Height() == target {
		return buf, nil
	}

	src := buf.Image()
	g := gift.New(gift.CropToSize(side, side, gift.CenterAnchor))
	cropped := image.NewNRGBA(g.Bounds(src.Bounds()))
	g.Draw(cropped, src)

	var scaled image.Image = cropped
	if side != target {
		scaled = resize.Resize(uint(target), uint(target), cropped, resize.Bilinear)
	}
	return pixel.FromImage(scaled)
}

func ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
