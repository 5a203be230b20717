package pixel

import "errors"

var (
	// ErrEmptyColors is returned by Mean for an empty color set.
	ErrEmptyColors = errors.New("pixel: mean of empty color set")
	// ErrInvalidRegion is returned for a region with a non-positive side.
	ErrInvalidRegion = errors.New("pixel: invalid region")
	// ErrInvalidSize is returned for a buffer with a non-positive side.
	ErrInvalidSize = errors.New("pixel: invalid buffer size")
	// ErrRawLength is returned when raw bytes do not hold exactly width*height pixels.
	ErrRawLength = errors.New("pixel: raw buffer length mismatch")
)
