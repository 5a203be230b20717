package pixel

// Perceptual weights for the red, green and blue squared errors (Rec. 601 luma).
const (
	weightR = 0.2989
	weightG = 0.5870
	weightB = 0.1140
)

// Color is a non-premultiplied 8-bit RGBA value.
type Color struct {
	R, G, B, A uint8
}

// Mean returns the per-channel average of colors, truncated to 8 bits.
func Mean(colors []Color) (Color, error) {
	if len(colors) == 0 {
		return Color{}, ErrEmptyColors
	}
	return mean(colors), nil
}

func mean(colors []Color) Color {
	var sumR, sumG, sumB, sumA uint64
	for _, c := range colors {
		sumR += uint64(c.R)
		sumG += uint64(c.G)
		sumB += uint64(c.B)
		sumA += uint64(c.A)
	}
	n := uint64(len(colors))
	return Color{
		R: uint8(sumR / n),
		G: uint8(sumG / n),
		B: uint8(sumB / n),
		A: uint8(sumA / n),
	}
}

// WeightedError returns the mean squared deviation of colors from c, per
// channel, combined with the luma weights. Alpha does not contribute.
// An empty set has no error.
func (c Color) WeightedError(colors []Color) float64 {
	if len(colors) == 0 {
		return 0
	}
	var r, g, b float64
	for _, p := range colors {
		dr := float64(p.R) - float64(c.R)
		dg := float64(p.G) - float64(c.G)
		db := float64(p.B) - float64(c.B)
		r += dr * dr
		g += dg * dg
		b += db * db
	}
	n := float64(len(colors))
	return weightR*(r/n) + weightG*(g/n) + weightB*(b/n)
}
