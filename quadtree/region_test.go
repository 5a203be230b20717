package quadtree

import (
	"errors"
	"math"
	"testing"

	"github.com/kurtschelfthout/quadtrees/pixel"
)

func newFullTree(t testing.TB, src *pixel.Buffer) *RegionTree {
	t.Helper()
	tree, err := NewRegionTree(0, 0, src.Width(), src.Height())
	if err != nil {
		t.Fatalf("NewRegionTree: %v", err)
	}
	return tree
}

func TestRegionTree_InfiniteThresholdIsMeanImage(t *testing.T) {
	src := makeTestImage(t, 16, 16)
	tree := newFullTree(t, src)

	passes, err := tree.Refine(src, math.Inf(1), 1)
	if err != nil {
		t.Fatalf("Refine: %v", err)
	}
	if passes != 0 {
		t.Fatalf("passes: got %d want 0", passes)
	}
	if n := len(tree.Leaves()); n != 1 {
		t.Fatalf("leaves: got %d want 1", n)
	}

	img, err := tree.Image(src)
	if err != nil {
		t.Fatalf("Image: %v", err)
	}
	want := src.Mean(src.Bounds())
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			if got := img.At(x, y); got != want {
				t.Fatalf("(%d,%d): got %+v want %+v", x, y, got, want)
			}
		}
	}
}

func TestRegionTree_ZeroThresholdIsExact(t *testing.T) {
	for _, side := range []int{2, 8, 16} {
		src := makeTestImage(t, side, side)
		tree := newFullTree(t, src)
		if _, err := tree.Refine(src, 0, 1); err != nil {
			t.Fatalf("Refine: %v", err)
		}
		if n := len(tree.Leaves()); n != side*side {
			t.Fatalf("side %d: leaves got %d want %d", side, n, side*side)
		}
		img, err := tree.Image(src)
		if err != nil {
			t.Fatalf("Image: %v", err)
		}
		if !img.Equal(src) {
			t.Fatalf("side %d: reconstruction differs from the source", side)
		}
		if e, err := tree.Error(src); err != nil || e != 0 {
			t.Fatalf("side %d: Error got (%v, %v) want (0, nil)", side, e, err)
		}
	}
}

func TestRegionTree_PassBound(t *testing.T) {
	// At threshold 0 every pass splits every splittable leaf once, so the
	// pass count is ceil(log2(max(w,h)/minLen)).
	for _, tc := range []struct {
		w, h      int
		minLen    int
		maxPasses int
	}{
		{32, 32, 1, 5},
		{32, 32, 2, 4},
		{32, 32, 4, 3},
		{32, 32, 32, 0},
		{5, 5, 1, 3},
		{7, 5, 1, 3},
	} {
		src := makeTestImage(t, tc.w, tc.h)
		tree := newFullTree(t, src)
		passes, err := tree.Refine(src, 0, tc.minLen)
		if err != nil {
			t.Fatalf("Refine: %v", err)
		}
		if passes != tc.maxPasses {
			t.Fatalf("%dx%d minLen %d: passes got %d want %d", tc.w, tc.h, tc.minLen, passes, tc.maxPasses)
		}
		if tree.Depth() != passes {
			t.Fatalf("%dx%d minLen %d: depth got %d want %d", tc.w, tc.h, tc.minLen, tree.Depth(), passes)
		}
	}
}

func TestRegionTree_FirstPassUsesRealMean(t *testing.T) {
	// Against a zero color the root would have a large error and split.
	src, err := pixel.New(8, 8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c := pixel.Color{R: 200, G: 200, B: 200, A: 255}
	src.Fill(src.Bounds(), c)

	tree := newFullTree(t, src)
	passes, err := tree.Refine(src, 1, 1)
	if err != nil {
		t.Fatalf("Refine: %v", err)
	}
	if passes != 0 {
		t.Fatalf("passes: got %d want 0", passes)
	}
	if n := len(tree.Leaves()); n != 1 {
		t.Fatalf("leaves: got %d want 1", n)
	}
	if e, err := tree.Error(src); err != nil || e != 0 {
		t.Fatalf("Error: got (%v, %v) want (0, nil)", e, err)
	}
	img, err := tree.Image(src)
	if err != nil {
		t.Fatalf("Image: %v", err)
	}
	if !img.Equal(src) {
		t.Fatalf("uniform image not reproduced by its single leaf")
	}
}

func TestRegionTree_Monotonic(t *testing.T) {
	src := makeTestImage(t, 32, 32)
	tree := newFullTree(t, src)

	prev := tree.Leaves()
	for pass := 0; ; pass++ {
		changed, err := tree.Subdivide(src, 500, 1)
		if err != nil {
			t.Fatalf("Subdivide: %v", err)
		}
		leaves := tree.Leaves()
		if !changed {
			if len(leaves) != len(prev) {
				t.Fatalf("pass %d: unchanged tree has %d leaves, had %d", pass, len(leaves), len(prev))
			}
			break
		}
		if pass > 5 {
			t.Fatalf("no fixed point after %d passes", pass)
		}
		if len(leaves) <= len(prev) {
			t.Fatalf("pass %d: changed tree has %d leaves, had %d", pass, len(leaves), len(prev))
		}
		area := 0
		for _, l := range leaves {
			area += l.Area()
			inside := false
			for _, p := range prev {
				if l.In(p) {
					inside = true
					break
				}
			}
			if !inside {
				t.Fatalf("pass %d: leaf %v is coarser than before", pass, l)
			}
		}
		if area != 32*32 {
			t.Fatalf("pass %d: leaves cover %d pixels", pass, area)
		}
		prev = leaves
	}
}

func TestRegionTree_BranchErrorIsSum(t *testing.T) {
	src := makeTestImage(t, 8, 8)
	tree := newFullTree(t, src)
	for pass := 0; pass < 2; pass++ {
		if _, err := tree.Subdivide(src, 0, 1); err != nil {
			t.Fatalf("Subdivide: %v", err)
		}
		var want float64
		for _, r := range tree.Leaves() {
			want += src.Mean(r).WeightedError(src.Colors(r))
		}
		got, err := tree.Error(src)
		if err != nil {
			t.Fatalf("Error: %v", err)
		}
		if math.Abs(got-want) > 1e-9 {
			t.Fatalf("pass %d: Error got %v want %v", pass, got, want)
		}
	}
}

func TestRegionTree_OddSizes(t *testing.T) {
	src := makeTestImage(t, 7, 5)
	tree := newFullTree(t, src)
	if _, err := tree.Refine(src, 0, 1); err != nil {
		t.Fatalf("Refine: %v", err)
	}
	covered := make([]int, 7*5)
	for _, r := range tree.Leaves() {
		if r.Width <= 0 || r.Height <= 0 {
			t.Fatalf("empty leaf %v", r)
		}
		for y := r.Y; y < r.Y+r.Height; y++ {
			for x := r.X; x < r.X+r.Width; x++ {
				covered[y*7+x]++
			}
		}
	}
	for i, c := range covered {
		if c != 1 {
			t.Fatalf("pixel %d covered %d times", i, c)
		}
	}
	if tree.Region() != src.Bounds() {
		t.Fatalf("Region: got %v want %v", tree.Region(), src.Bounds())
	}
}

func TestRegionTree_Subregion(t *testing.T) {
	src := makeTestImage(t, 8, 8)
	tree, err := NewRegionTree(4, 4, 4, 4)
	if err != nil {
		t.Fatalf("NewRegionTree: %v", err)
	}
	if _, err := tree.Refine(src, 0, 1); err != nil {
		t.Fatalf("Refine: %v", err)
	}
	img, err := tree.Image(src)
	if err != nil {
		t.Fatalf("Image: %v", err)
	}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			want := pixel.Color{}
			if x >= 4 && y >= 4 {
				want = src.At(x, y)
			}
			if got := img.At(x, y); got != want {
				t.Fatalf("(%d,%d): got %+v want %+v", x, y, got, want)
			}
		}
	}
}

func TestRegionTree_BadArguments(t *testing.T) {
	if _, err := NewRegionTree(0, 0, 0, 4); !errors.Is(err, pixel.ErrInvalidRegion) {
		t.Fatalf("NewRegionTree: got %v want ErrInvalidRegion", err)
	}

	src := makeTestImage(t, 4, 4)
	tree := newFullTree(t, src)
	for _, tc := range []struct {
		name      string
		threshold float64
		minLen    int
		want      error
	}{
		{"negative_threshold", -1, 1, ErrBadThreshold},
		{"nan_threshold", math.NaN(), 1, ErrBadThreshold},
		{"zero_min", 10, 0, ErrBadMinLength},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tree.Refine(src, tc.threshold, tc.minLen); !errors.Is(err, tc.want) {
				t.Fatalf("Refine: got %v want %v", err, tc.want)
			}
		})
	}

	small := makeTestImage(t, 2, 2)
	if _, err := tree.Refine(small, 10, 1); !errors.Is(err, ErrRegionOutOfBounds) {
		t.Fatalf("Refine: got %v want ErrRegionOutOfBounds", err)
	}
	if _, err := tree.Image(small); !errors.Is(err, ErrRegionOutOfBounds) {
		t.Fatalf("Image: got %v want ErrRegionOutOfBounds", err)
	}
}

func TestApproximator(t *testing.T) {
	src := makeTestImage(t, 64, 64)
	a := NewApproximator(src)
	if _, err := a.SubdivideUntil(1000, 1); err != nil {
		t.Fatalf("SubdivideUntil: %v", err)
	}
	res := a.Result()
	if res.Width() != src.Width() || res.Height() != src.Height() {
		t.Fatalf("size: got %dx%d want %dx%d", res.Width(), res.Height(), src.Width(), src.Height())
	}
	if len(a.Tree().Leaves()) < 4 {
		t.Fatalf("expected the tree to subdivide, got %d leaves", len(a.Tree().Leaves()))
	}
}

func BenchmarkRefine(b *testing.B) {
	src := makeTestImage(b, 256, 256)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a := NewApproximator(src)
		if _, err := a.SubdivideUntil(1000, 1); err != nil {
			b.Fatalf("SubdivideUntil: %v", err)
		}
		_ = a.Result()
	}
}
