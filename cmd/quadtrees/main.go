package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kurtschelfthout/quadtrees/internal/imageio"
	"github.com/kurtschelfthout/quadtrees/pixel"
	"github.com/kurtschelfthout/quadtrees/quadtree"
)

func main() {
	var (
		mode      string
		outPath   string
		threshold float64
		minLength int
		level     int
	)
	flag.StringVar(&mode, "mode", "region", "tree to build: region|complete")
	flag.StringVar(&outPath, "out", "", "output file (.png, .jpg, .gif, .qoi, .rgbz); default <input>_<mode>.png")
	flag.Float64Var(&threshold, "error", 1000, "region mode: error threshold below which a region is not split")
	flag.IntVar(&minLength, "min", 1, "region mode: regions this short or narrow are not split")
	flag.IntVar(&level, "level", -1, "complete mode: level to reconstruct, -1 for the deepest")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, "Usage:\n  quadtrees [flags] <input-image>\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	inPath := flag.Arg(0)
	if outPath == "" {
		base := strings.TrimSuffix(inPath, filepath.Ext(inPath))
		outPath = base + "_" + mode + ".png"
	}

	var err error
	switch mode {
	case "region":
		err = runRegion(inPath, outPath, threshold, minLength)
	case "complete":
		err = runComplete(inPath, outPath, level)
	default:
		fmt.Fprintf(os.Stderr, "unknown mode %q\n", mode)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, mode+" error:", err)
		os.Exit(1)
	}
}

func runRegion(inPath, outPath string, threshold float64, minLength int) error {
	src, format, err := imageio.Load(inPath)
	if err != nil {
		return err
	}

	start := time.Now()
	a := quadtree.NewApproximator(src)
	passes, err := a.SubdivideUntil(threshold, minLength)
	if err != nil {
		return err
	}
	result := a.Result()
	finish := time.Since(start)

	if err := imageio.Save(outPath, result); err != nil {
		return err
	}

	leaves := len(a.Tree().Leaves())
	report(inPath, format, outPath, src)
	fmt.Printf("error=%g, min=%d, passes=%d, leaves=%d (%.3f per pixel), time=%s\n",
		threshold,
		minLength,
		passes,
		leaves,
		float64(leaves)/float64(src.Len()),
		finish,
	)
	return nil
}

func runComplete(inPath, outPath string, level int) error {
	src, format, err := imageio.Load(inPath)
	if err != nil {
		return err
	}
	square, err := imageio.SquarePow2(src)
	if err != nil {
		return err
	}

	start := time.Now()
	tree, err := quadtree.NewComplete(square)
	if err != nil {
		return err
	}
	if level < 0 {
		level = tree.Depth()
	}
	result, err := tree.ImageAtLevel(level)
	if err != nil {
		return err
	}
	finish := time.Since(start)

	if err := imageio.Save(outPath, result); err != nil {
		return err
	}

	report(inPath, format, outPath, square)
	fmt.Printf("level=%d/%d, nodes=%d, time=%s\n",
		level,
		tree.Depth(),
		tree.Len(),
		finish,
	)
	return nil
}

func report(inPath, format, outPath string, buf *pixel.Buffer) {
	formatSize := func(size int64) string {
		if size < 1024*1024 {
			return fmt.Sprintf("%.2f KB", float64(size)/1024)
		}
		return fmt.Sprintf("%.2f MB", float64(size)/(1024*1024))
	}
	fileSize := func(path string) int64 {
		info, err := os.Stat(path)
		if err != nil {
			return 0
		}
		return info.Size()
	}

	fmt.Printf("%s (%s, %s) → %s (%s), %dx%d\n",
		inPath,
		format,
		formatSize(fileSize(inPath)),
		outPath,
		formatSize(fileSize(outPath)),
		buf.Width(),
		buf.Height(),
	)
}
