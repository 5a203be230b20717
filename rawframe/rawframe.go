// Package rawframe stores pixel buffers in their raw RGBA layout behind a
// small header, compressed with zstd.
//
// Layout:
//
//	magic  "QTRF"   4 bytes
//	width  uint32   big-endian
//	height uint32   big-endian
//	zstd frame of 4*width*height raw R,G,B,A bytes
package rawframe

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/klauspost/compress/zstd"

	"github.com/kurtschelfthout/quadtrees/pixel"
)

const magic = "QTRF"

// maxSide bounds each dimension a header may claim.
const maxSide = 1 << 15

var (
	// ErrInvalidMagic is returned when the input does not start with "QTRF".
	ErrInvalidMagic = errors.New("rawframe: invalid magic")
	// ErrTruncated is returned when the header is short or the pixel
	// payload does not match the size the header declares.
	ErrTruncated = errors.New("rawframe: truncated payload")
	// ErrTooLarge is returned for a side above maxSide.
	ErrTooLarge = errors.New("rawframe: image too large")
)

// Encode returns buf as a compressed frame.
func Encode(buf *pixel.Buffer) ([]byte, error) {
	b := &bytes.Buffer{}
	if err := Write(b, buf); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// Write writes buf to w as a compressed frame.
func Write(w io.Writer, buf *pixel.Buffer) error {
	if buf.Width() > maxSide || buf.Height() > maxSide {
		return fmt.Errorf("%w: %dx%d", ErrTooLarge, buf.Width(), buf.Height())
	}
	if err := writeHeader(w, buf.Width(), buf.Height()); err != nil {
		return err
	}

	enc, err := zstd.NewWriter(w, zstd.WithEncoderConcurrency(runtime.NumCPU()))
	if err != nil {
		return err
	}
	if _, err := enc.Write(buf.Bytes()); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// Decode reads a frame produced by Encode.
func Decode(data []byte) (*pixel.Buffer, error) {
	return Read(bytes.NewReader(data))
}

// Read reads one frame from r.
func Read(r io.Reader) (*pixel.Buffer, error) {
	br := bufio.NewReader(r)
	w, h, err := readHeader(br)
	if err != nil {
		return nil, err
	}

	dec, err := zstd.NewReader(br, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	// The header size is not trusted for allocation: the buffer grows with
	// the data actually decoded, one byte past the expected length at most.
	want := pixel.BytesPerPixel * w * h
	raw, err := io.ReadAll(io.LimitReader(dec, int64(want)+1))
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, err
	}
	if len(raw) != want {
		return nil, fmt.Errorf("%w: got %d pixel bytes, want %d", ErrTruncated, len(raw), want)
	}
	return pixel.FromRawBytes(raw, w, h)
}

func writeHeader(w io.Writer, width, height int) error {
	if _, err := io.WriteString(w, magic); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, uint32(width)); err != nil {
		return err
	}
	return binary.Write(w, binary.BigEndian, uint32(height))
}

func readHeader(r io.Reader) (w, h int, err error) {
	m := make([]byte, len(magic))
	if _, err = io.ReadFull(r, m); err != nil {
		return 0, 0, fmt.Errorf("%w: header", ErrTruncated)
	}
	if string(m) != magic {
		return 0, 0, ErrInvalidMagic
	}

	var w32, h32 uint32
	if err = binary.Read(r, binary.BigEndian, &w32); err != nil {
		return 0, 0, fmt.Errorf("%w: header", ErrTruncated)
	}
	if err = binary.Read(r, binary.BigEndian, &h32); err != nil {
		return 0, 0, fmt.Errorf("%w: header", ErrTruncated)
	}
	if w32 > maxSide || h32 > maxSide {
		return 0, 0, fmt.Errorf("%w: %dx%d", ErrTooLarge, w32, h32)
	}
	return int(w32), int(h32), nil
}
