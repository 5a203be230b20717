package quadtree

import "errors"

var (
	// ErrNotSquarePow2 is returned by NewComplete for a non-square or non-power-of-two image.
	ErrNotSquarePow2 = errors.New("quadtree: image must be square with a power-of-two side")
	// ErrLevelOutOfRange is returned for a level outside [0, Depth()].
	ErrLevelOutOfRange = errors.New("quadtree: level out of range")
	// ErrBadThreshold is returned for a negative or NaN error threshold.
	ErrBadThreshold = errors.New("quadtree: error threshold must be a non-negative number")
	// ErrBadMinLength is returned for a minimum region length below 1.
	ErrBadMinLength = errors.New("quadtree: minimum region length must be at least 1")
	// ErrRegionOutOfBounds is returned when the tree's region does not fit the source image.
	ErrRegionOutOfBounds = errors.New("quadtree: tree region does not fit the image")
)
