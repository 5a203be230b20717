package quadtree

import (
	"fmt"
	"image"

	"github.com/kurtschelfthout/quadtrees/pixel"
)

// Node is one entry of a CompleteTree: the inclusive corners of the region
// it summarizes and the mean color of that region.
type Node struct {
	TopLeft     image.Point
	BottomRight image.Point
	Color       pixel.Color
}

// Region converts the inclusive corners into a pixel.Region.
func (n Node) Region() pixel.Region {
	return pixel.Region{
		X:      n.TopLeft.X,
		Y:      n.TopLeft.Y,
		Width:  n.BottomRight.X - n.TopLeft.X + 1,
		Height: n.BottomRight.Y - n.TopLeft.Y + 1,
	}
}

func pixelNode(buf *pixel.Buffer, x, y int) Node {
	p := image.Pt(x, y)
	return Node{TopLeft: p, BottomRight: p, Color: buf.At(x, y)}
}

// CompleteTree summarizes every level of a square power-of-two image, from
// the whole image down to single pixels. Nodes live in one slice with
// heap-style indexing: the children of node i are 4i+1 … 4i+4.
type CompleteTree struct {
	nodes         []Node
	depth         int
	width, height int
}

// treeSize returns the number of nodes needed for pixelCount leaves and the
// size of the deepest level.
func treeSize(pixelCount int) (total, last int) {
	last, total = 1, 1
	for last < pixelCount {
		last *= 4
		total += last
	}
	return total, last
}

// NewComplete builds the complete tree of buf.
func NewComplete(buf *pixel.Buffer) (*CompleteTree, error) {
	w, h := buf.Width(), buf.Height()
	if w != h || w&(w-1) != 0 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrNotSquarePow2, w, h)
	}

	size, leaves := treeSize(buf.Len())
	nodes := make([]Node, size)

	if leaves == 1 {
		nodes[0] = pixelNode(buf, 0, 0)
		return &CompleteTree{nodes: nodes, width: w, height: h}, nil
	}

	// Leaves go at the back, one 2x2 block per four consecutive slots, so
	// siblings end up next to each other.
	end := size
	for x := w - 2; x >= 0; x -= 2 {
		for y := h - 2; y >= 0; y -= 2 {
			nodes[end-4] = pixelNode(buf, x, y)
			nodes[end-3] = pixelNode(buf, x, y+1)
			nodes[end-2] = pixelNode(buf, x+1, y)
			nodes[end-1] = pixelNode(buf, x+1, y+1)
			end -= 4
		}
	}

	// Branches back to front: children are always filled first.
	var quad [4]pixel.Color
	for i := size - leaves - 1; i >= 0; i-- {
		first := 4*i + 1
		for k := range quad {
			quad[k] = nodes[first+k].Color
		}
		mean, _ := pixel.Mean(quad[:])
		nodes[i] = Node{
			TopLeft:     nodes[first].TopLeft,
			BottomRight: nodes[first+3].BottomRight,
			Color:       mean,
		}
	}

	depth := 0
	for n := 1; n < leaves; n *= 4 {
		depth++
	}
	return &CompleteTree{nodes: nodes, depth: depth, width: w, height: h}, nil
}

// Len is the total number of nodes.
func (t *CompleteTree) Len() int { return len(t.nodes) }

// Depth is the index of the deepest level; level 0 is the root.
func (t *CompleteTree) Depth() int { return t.depth }

func (t *CompleteTree) Width() int  { return t.width }
func (t *CompleteTree) Height() int { return t.height }

// Node returns node i. It panics if i is out of range.
func (t *CompleteTree) Node(i int) Node { return t.nodes[i] }

// Level returns the nodes of the given level.
func (t *CompleteTree) Level(level int) ([]Node, error) {
	if level < 0 || level > t.depth {
		return nil, fmt.Errorf("%w: %d (depth %d)", ErrLevelOutOfRange, level, t.depth)
	}
	start, size := 0, 1
	for l := 0; l < level; l++ {
		start += size
		size *= 4
	}
	return t.nodes[start : start+size], nil
}

// ImageAtLevel paints every node of the given level over its region.
// Level 0 is the mean color of the whole image; Depth() is the image itself.
func (t *CompleteTree) ImageAtLevel(level int) (*pixel.Buffer, error) {
	nodes, err := t.Level(level)
	if err != nil {
		return nil, err
	}
	out, err := pixel.New(t.width, t.height)
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		out.Fill(n.Region(), n.Color)
	}
	return out, nil
}
