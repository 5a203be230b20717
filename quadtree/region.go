package quadtree

import (
	"fmt"
	"math"

	"github.com/kurtschelfthout/quadtrees/pixel"
)

// node is either a *leaf or a *branch.
type node interface {
	region() pixel.Region
	err(src *pixel.Buffer) float64
	subdivide(src *pixel.Buffer, threshold float64, minLen int) node
	paint(src, dst *pixel.Buffer)
}

// leaf covers one region with a single color. An unmeasured leaf has not
// read its pixels yet and takes its mean from the source on demand.
// Measured leaves never change, so their error is kept with them.
type leaf struct {
	area     pixel.Region
	mean     pixel.Color
	errv     float64
	measured bool
}

// branch holds four children ordered top-left, bottom-left, top-right,
// bottom-right; together they tile the branch's region.
type branch struct {
	children [4]node
	errv     float64
}

func newLeaf(src *pixel.Buffer, r pixel.Region) *leaf {
	colors := src.Colors(r)
	m, _ := pixel.Mean(colors)
	return &leaf{area: r, mean: m, errv: m.WeightedError(colors), measured: true}
}

// newBranch sums the children's errors once; a branch is never modified
// after it is built.
func newBranch(src *pixel.Buffer, children [4]node) *branch {
	b := &branch{children: children}
	for _, c := range children {
		b.errv += c.err(src)
	}
	return b
}

func (l *leaf) region() pixel.Region { return l.area }

func (l *leaf) color(src *pixel.Buffer) pixel.Color {
	if l.measured {
		return l.mean
	}
	return src.Mean(l.area)
}

func (l *leaf) err(src *pixel.Buffer) float64 {
	if l.measured {
		return l.errv
	}
	return l.color(src).WeightedError(src.Colors(l.area))
}

func (l *leaf) subdivide(src *pixel.Buffer, threshold float64, minLen int) node {
	if stop(l, src, threshold, minLen) {
		return nil
	}
	quads, ok := l.area.Split()
	if !ok {
		return nil
	}
	var children [4]node
	for i, q := range quads {
		children[i] = newLeaf(src, q)
	}
	return newBranch(src, children)
}

func (l *leaf) paint(src, dst *pixel.Buffer) {
	dst.Fill(l.area, l.color(src))
}

func (b *branch) region() pixel.Region {
	tl := b.children[0].region()
	return pixel.Region{
		X:      tl.X,
		Y:      tl.Y,
		Width:  tl.Width + b.children[2].region().Width,
		Height: tl.Height + b.children[1].region().Height,
	}
}

// err is the sum, not the mean, of the children's errors.
func (b *branch) err(*pixel.Buffer) float64 { return b.errv }

func (b *branch) subdivide(src *pixel.Buffer, threshold float64, minLen int) node {
	if stop(b, src, threshold, minLen) {
		return nil
	}
	children := b.children
	changed := false
	for i, c := range b.children {
		if n := c.subdivide(src, threshold, minLen); n != nil {
			children[i] = n
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return newBranch(src, children)
}

func (b *branch) paint(src, dst *pixel.Buffer) {
	for _, c := range b.children {
		c.paint(src, dst)
	}
}

func stop(n node, src *pixel.Buffer, threshold float64, minLen int) bool {
	r := n.region()
	return n.err(src) < threshold || r.Height <= minLen || r.Width <= minLen
}

// RegionTree is an adaptive quadtree: a region is only split while its
// color error stays at or above a threshold.
type RegionTree struct {
	root node
}

// NewRegionTree returns a tree with a single leaf covering (x,y) w×h. The
// leaf has no color until it is read against a source image.
func NewRegionTree(x, y, w, h int) (*RegionTree, error) {
	r, err := pixel.NewRegion(x, y, w, h)
	if err != nil {
		return nil, err
	}
	return &RegionTree{root: &leaf{area: r}}, nil
}

// Region is the area covered by the tree.
func (t *RegionTree) Region() pixel.Region { return t.root.region() }

// Error is the summed weighted error of all leaves against src. Leaves and
// branches keep the error measured when they were built, so src must be the
// buffer the tree was refined against.
func (t *RegionTree) Error(src *pixel.Buffer) (float64, error) {
	if err := t.check(src); err != nil {
		return 0, err
	}
	return t.root.err(src), nil
}

// Subdivide runs one refinement pass and reports whether the tree changed.
// Every leaf is split at most once per pass.
func (t *RegionTree) Subdivide(src *pixel.Buffer, threshold float64, minLen int) (bool, error) {
	if err := validate(threshold, minLen); err != nil {
		return false, err
	}
	if err := t.check(src); err != nil {
		return false, err
	}
	return t.step(src, threshold, minLen), nil
}

func (t *RegionTree) step(src *pixel.Buffer, threshold float64, minLen int) bool {
	n := t.root.subdivide(src, threshold, minLen)
	if n == nil {
		return false
	}
	t.root = n
	return true
}

// Refine subdivides until a pass leaves the tree unchanged and returns the
// number of passes that changed it.
func (t *RegionTree) Refine(src *pixel.Buffer, threshold float64, minLen int) (int, error) {
	if err := validate(threshold, minLen); err != nil {
		return 0, err
	}
	if err := t.check(src); err != nil {
		return 0, err
	}
	passes := 0
	for t.step(src, threshold, minLen) {
		passes++
	}
	return passes, nil
}

// Image paints every leaf's mean over its region into a new buffer the
// size of src.
func (t *RegionTree) Image(src *pixel.Buffer) (*pixel.Buffer, error) {
	if err := t.check(src); err != nil {
		return nil, err
	}
	out, err := pixel.New(src.Width(), src.Height())
	if err != nil {
		return nil, err
	}
	t.root.paint(src, out)
	return out, nil
}

// Leaves returns the regions of all leaves in depth-first order.
func (t *RegionTree) Leaves() []pixel.Region {
	var out []pixel.Region
	walk(t.root, 0, func(n node, _ int) {
		if l, ok := n.(*leaf); ok {
			out = append(out, l.area)
		}
	})
	return out
}

// Depth is the number of branch levels above the deepest leaf.
func (t *RegionTree) Depth() int {
	deepest := 0
	walk(t.root, 0, func(_ node, d int) {
		if d > deepest {
			deepest = d
		}
	})
	return deepest
}

func walk(n node, depth int, fn func(node, int)) {
	fn(n, depth)
	if b, ok := n.(*branch); ok {
		for _, c := range b.children {
			walk(c, depth+1, fn)
		}
	}
}

func (t *RegionTree) check(src *pixel.Buffer) error {
	if r := t.root.region(); !src.Fits(r) {
		return fmt.Errorf("%w: %v in %dx%d", ErrRegionOutOfBounds, r, src.Width(), src.Height())
	}
	return nil
}

func validate(threshold float64, minLen int) error {
	if math.IsNaN(threshold) || threshold < 0 {
		return fmt.Errorf("%w: %v", ErrBadThreshold, threshold)
	}
	if minLen < 1 {
		return fmt.Errorf("%w: %d", ErrBadMinLength, minLen)
	}
	return nil
}

// Approximator pairs a source image with a region tree covering all of it.
type Approximator struct {
	src  *pixel.Buffer
	tree *RegionTree
}

// NewApproximator returns an Approximator whose tree is a single unmeasured
// leaf covering src.
func NewApproximator(src *pixel.Buffer) *Approximator {
	tree, _ := NewRegionTree(0, 0, src.Width(), src.Height())
	return &Approximator{src: src, tree: tree}
}

// SubdivideUntil refines the tree until it is stable for the given
// threshold and minimum region length.
func (a *Approximator) SubdivideUntil(threshold float64, minLen int) (int, error) {
	return a.tree.Refine(a.src, threshold, minLen)
}

// Tree exposes the underlying tree.
func (a *Approximator) Tree() *RegionTree { return a.tree }

// Result is the image described by the current tree.
func (a *Approximator) Result() *pixel.Buffer {
	out, _ := a.tree.Image(a.src)
	return out
}
