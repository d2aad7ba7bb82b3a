package engine

import (
	"math"
	"sort"
)

// ============================================================================
// TREEMAP LAYOUT: squarified tiling of the unit square
// ============================================================================
// Tiles are placed largest first. Each strip keeps adding tiles while the
// worst aspect ratio in the strip improves (Bruls, Huizing, van Wijk).
// Tile area is proportional to Size; non-positive sizes are dropped.
// ============================================================================

type rect struct{ x, y, w, h float64 }

// LayoutTreemap fills the unit square with tiles sized by Size.
// The returned tiles are sorted by descending size, then label.
func LayoutTreemap(tiles []TreemapTile) []TreemapTile {
	out := make([]TreemapTile, 0, len(tiles))
	var total float64
	for _, t := range tiles {
		if t.Size > 0 && isFinite(t.Size) {
			out = append(out, t)
			total += t.Size
		}
	}
	if len(out) == 0 {
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Size != out[j].Size {
			return out[i].Size > out[j].Size
		}
		return out[i].Label < out[j].Label
	})

	areas := make([]float64, len(out))
	for i, t := range out {
		areas[i] = t.Size / total
	}

	for i, r := range squarify(areas, rect{0, 0, 1, 1}) {
		out[i].X, out[i].Y, out[i].W, out[i].H = r.x, r.y, r.w, r.h
	}
	return out
}

// squarify lays out areas (summing to free.w*free.h, sorted descending).
func squarify(areas []float64, free rect) []rect {
	out := make([]rect, len(areas))
	i := 0
	for i < len(areas) {
		side := math.Min(free.w, free.h)

		j := i + 1
		for j < len(areas) && worstRatio(areas[i:j+1], side) <= worstRatio(areas[i:j], side) {
			j++
		}

		var strip float64
		for _, a := range areas[i:j] {
			strip += a
		}

		if free.w >= free.h {
			// vertical strip on the left edge
			sw := 0.0
			if free.h > 0 {
				sw = strip / free.h
			}
			y := free.y
			for k := i; k < j; k++ {
				h := 0.0
				if sw > 0 {
					h = areas[k] / sw
				}
				out[k] = rect{free.x, y, sw, h}
				y += h
			}
			free.x += sw
			free.w = math.Max(0, free.w-sw)
		} else {
			// horizontal strip on the top edge
			sh := 0.0
			if free.w > 0 {
				sh = strip / free.w
			}
			x := free.x
			for k := i; k < j; k++ {
				w := 0.0
				if sh > 0 {
					w = areas[k] / sh
				}
				out[k] = rect{x, free.y, w, sh}
				x += w
			}
			free.y += sh
			free.h = math.Max(0, free.h-sh)
		}
		i = j
	}
	return out
}

// worstRatio is the largest aspect ratio of a strip laid along side.
func worstRatio(row []float64, side float64) float64 {
	var sum float64
	lo, hi := math.Inf(1), 0.0
	for _, a := range row {
		sum += a
		lo = math.Min(lo, a)
		hi = math.Max(hi, a)
	}
	if sum == 0 || side == 0 || lo == 0 {
		return math.Inf(1)
	}
	s2, w2 := sum*sum, side*side
	return math.Max(w2*hi/s2, s2/(w2*lo))
}
