// Package quant implements Wu's greedy orthogonal bipartition color
// quantizer: a 3-D RGB histogram over a 33x33x33 lattice, converted to
// cumulative moments, recursively split by variance-minimizing cuts, and
// used to emit a palette plus an 8-bit index image.
//
// This is a from-scratch Go port of the classic C reference implementation
// (Xiaolin Wu, Graphics Gems II, "C Implementation of Wu's Color Quantizer
// (v. 2)"); variable names (wt/mr/mg/mb/gm2, Vol/Bottom/Top/Cut/Maximize)
// intentionally track the original so the two can be read side by side.
package quant

import (
	"github.com/aspectron/rastercodec/internal/pool"
)

// MaxColors is the reference implementation's MAXCOLOR bound. Requests of
// MaxColors or more are silently clamped down to MaxColors - 1, so the
// largest palette the quantizer produces has MaxColors - 1 entries; this is
// not a failure.
const MaxColors = 8192

const lattice = 33

// idx packs a (r,g,b) lattice coordinate, each in [0,32], into a flat index
// into a 33x33x33 row-major array. r's stride is 33*33=1089, encoded here
// as (r<<10)+(r<<6)+r == r*1089.
func idx(r, g, b int) int {
	return (r << 10) + (r << 6) + r + (g << 5) + g + b
}

// RGB is a 24-bit palette entry.
type RGB struct{ R, G, B uint8 }

// RGBA is a 32-bit palette entry; A is 255 for populated entries with
// nonzero weight, else all fields are zero.
type RGBA struct{ R, G, B, A uint8 }

// Result holds the palette and index image produced by Quantize.
type Result struct {
	RGB24  []RGB  // len == Count
	RGBA32 []RGBA // len == Count
	Count  int
	Index  []uint8 // len == width*height, values in [0, Count) when Count <= 256 (labels are stored as bytes)
}

type box struct {
	r0, r1, g0, g1, b0, b1 int
	vol                    int
}

type direction int

const (
	blue direction = iota
	green
	red
)

// Quantize runs Wu's algorithm over a width x height rectangle of pixels
// starting at (left, top) within a raster of the given stride. Pixels are 4
// bytes wide and the first three bytes of every pixel are read as (b, g, r),
// the in-memory order of a BGRA8 pixel. It returns a palette of at most numColors entries and
// an index image covering exactly the requested rectangle.
func Quantize(pixels []byte, stride, left, top, width, height, numColors int) Result {
	if numColors > MaxColors-1 {
		numColors = MaxColors - 1
	}
	if numColors < 1 {
		numColors = 1
	}

	n := lattice * lattice * lattice
	wt := make([]int32, n)
	mr := make([]int32, n)
	mg := make([]int32, n)
	mb := make([]int32, n)
	gm2 := make([]float32, n)

	qadd := make([]uint16, width*height)

	histogram(pixels, stride, left, top, width, height, wt, mr, mg, mb, gm2, qadd)
	moments(wt, mr, mg, mb, gm2)

	cubes := make([]box, numColors)
	cubes[0] = box{r0: 0, g0: 0, b0: 0, r1: 32, g1: 32, b1: 32}

	vv := make([]float32, numColors)
	next := 0
	count := numColors
	for i := 1; i < numColors; i++ {
		if cut(&cubes[next], &cubes[i], wt, mr, mg, mb) {
			if cubes[next].vol > 1 {
				vv[next] = variance(&cubes[next], wt, mr, mg, mb, gm2)
			} else {
				vv[next] = 0
			}
			if cubes[i].vol > 1 {
				vv[i] = variance(&cubes[i], wt, mr, mg, mb, gm2)
			} else {
				vv[i] = 0
			}
		} else {
			vv[next] = 0
			i--
		}

		next = 0
		max := vv[0]
		for k := 1; k <= i; k++ {
			if vv[k] > max {
				max = vv[k]
				next = k
			}
		}
		if max <= 0 {
			count = i + 1
			break
		}
	}

	return extract(cubes[:count], wt, mr, mg, mb, qadd, width, height)
}

func histogram(pixels []byte, stride, left, top, width, height int, wt, mr, mg, mb []int32, gm2 []float32, qadd []uint16) {
	for y := 0; y < height; y++ {
		rowOff := (top+y)*stride + left*4
		for x := 0; x < width; x++ {
			off := rowOff + x*4
			b := int(pixels[off+0])
			g := int(pixels[off+1])
			r := int(pixels[off+2])

			inr := (r >> 3) + 1
			ing := (g >> 3) + 1
			inb := (b >> 3) + 1
			i := idx(inr, ing, inb)

			qadd[y*width+x] = uint16(i)

			wt[i]++
			mr[i] += int32(r)
			mg[i] += int32(g)
			mb[i] += int32(b)
			gm2[i] += float32(r*r + g*g + b*b)
		}
	}
}

// moments converts each histogram in place into a cumulative moment table,
// so the sum of any statistic over an open-closed box (r0,r1]x(g0,g1]x(b0,b1]
// is computable with 8 lookups (see vol).
func moments(wt, mr, mg, mb []int32, gm2 []float32) {
	var area, areaR, areaG, areaB [lattice]int32
	var area2 [lattice]float32

	for r := 1; r <= 32; r++ {
		for i := 0; i <= 32; i++ {
			area[i], areaR[i], areaG[i], areaB[i] = 0, 0, 0, 0
			area2[i] = 0
		}
		for g := 1; g <= 32; g++ {
			var line, lineR, lineG, lineB int32
			var line2 float32
			for b := 1; b <= 32; b++ {
				ind1 := idx(r, g, b)
				line += wt[ind1]
				lineR += mr[ind1]
				lineG += mg[ind1]
				lineB += mb[ind1]
				line2 += gm2[ind1]

				area[b] += line
				areaR[b] += lineR
				areaG[b] += lineG
				areaB[b] += lineB
				area2[b] += line2

				ind2 := ind1 - 1089 // idx(r-1, g, b)
				wt[ind1] = wt[ind2] + area[b]
				mr[ind1] = mr[ind2] + areaR[b]
				mg[ind1] = mg[ind2] + areaG[b]
				mb[ind1] = mb[ind2] + areaB[b]
				gm2[ind1] = gm2[ind2] + area2[b]
			}
		}
	}
}

func vol(c *box, mmt []int32) int32 {
	return mmt[idx(c.r1, c.g1, c.b1)] -
		mmt[idx(c.r1, c.g1, c.b0)] -
		mmt[idx(c.r1, c.g0, c.b1)] +
		mmt[idx(c.r1, c.g0, c.b0)] -
		mmt[idx(c.r0, c.g1, c.b1)] +
		mmt[idx(c.r0, c.g1, c.b0)] +
		mmt[idx(c.r0, c.g0, c.b1)] -
		mmt[idx(c.r0, c.g0, c.b0)]
}

func volF(c *box, mmt []float32) float32 {
	return mmt[idx(c.r1, c.g1, c.b1)] -
		mmt[idx(c.r1, c.g1, c.b0)] -
		mmt[idx(c.r1, c.g0, c.b1)] +
		mmt[idx(c.r1, c.g0, c.b0)] -
		mmt[idx(c.r0, c.g1, c.b1)] +
		mmt[idx(c.r0, c.g1, c.b0)] +
		mmt[idx(c.r0, c.g0, c.b1)] -
		mmt[idx(c.r0, c.g0, c.b0)]
}

// bottom computes the part of vol(cube, mmt) that doesn't depend on the
// cut position along dir.
func bottom(c *box, dir direction, mmt []int32) int32 {
	switch dir {
	case red:
		return -mmt[idx(c.r0, c.g1, c.b1)] +
			mmt[idx(c.r0, c.g1, c.b0)] +
			mmt[idx(c.r0, c.g0, c.b1)] -
			mmt[idx(c.r0, c.g0, c.b0)]
	case green:
		return -mmt[idx(c.r1, c.g0, c.b1)] +
			mmt[idx(c.r1, c.g0, c.b0)] +
			mmt[idx(c.r0, c.g0, c.b1)] -
			mmt[idx(c.r0, c.g0, c.b0)]
	default: // blue
		return -mmt[idx(c.r1, c.g1, c.b0)] +
			mmt[idx(c.r1, c.g0, c.b0)] +
			mmt[idx(c.r0, c.g1, c.b0)] -
			mmt[idx(c.r0, c.g0, c.b0)]
	}
}

// top computes the remainder of vol(cube, mmt), substituting pos for
// r1/g1/b1 depending on dir.
func top(c *box, dir direction, pos int, mmt []int32) int32 {
	switch dir {
	case red:
		return mmt[idx(pos, c.g1, c.b1)] -
			mmt[idx(pos, c.g1, c.b0)] -
			mmt[idx(pos, c.g0, c.b1)] +
			mmt[idx(pos, c.g0, c.b0)]
	case green:
		return mmt[idx(c.r1, pos, c.b1)] -
			mmt[idx(c.r1, pos, c.b0)] -
			mmt[idx(c.r0, pos, c.b1)] +
			mmt[idx(c.r0, pos, c.b0)]
	default: // blue
		return mmt[idx(c.r1, c.g1, pos)] -
			mmt[idx(c.r1, c.g0, pos)] -
			mmt[idx(c.r0, c.g1, pos)] +
			mmt[idx(c.r0, c.g0, pos)]
	}
}

// variance computes the weighted variance of a box (really variance*size).
func variance(c *box, wt, mr, mg, mb []int32, gm2 []float32) float32 {
	dr := float32(vol(c, mr))
	dg := float32(vol(c, mg))
	db := float32(vol(c, mb))
	xx := volF(c, gm2)
	return xx - (dr*dr+dg*dg+db*db)/float32(vol(c, wt))
}

// maximize scans candidate cut positions in [first,last) along dir and
// returns the best sum-of-squares objective value, writing the winning cut
// position to *cut (-1 if no valid cut exists).
func maximize(c *box, dir direction, first, last int, cut *int, wholeR, wholeG, wholeB, wholeW int32, wt, mr, mg, mb []int32) float32 {
	baseR := bottom(c, dir, mr)
	baseG := bottom(c, dir, mg)
	baseB := bottom(c, dir, mb)
	baseW := bottom(c, dir, wt)

	var max float32
	*cut = -1
	for i := first; i < last; i++ {
		halfR := baseR + top(c, dir, i, mr)
		halfG := baseG + top(c, dir, i, mg)
		halfB := baseB + top(c, dir, i, mb)
		halfW := baseW + top(c, dir, i, wt)
		if halfW == 0 {
			continue
		}
		temp := (float32(halfR)*float32(halfR) + float32(halfG)*float32(halfG) + float32(halfB)*float32(halfB)) / float32(halfW)

		halfR = wholeR - halfR
		halfG = wholeG - halfG
		halfB = wholeB - halfB
		halfW = wholeW - halfW
		if halfW == 0 {
			continue
		}
		temp += (float32(halfR)*float32(halfR) + float32(halfG)*float32(halfG) + float32(halfB)*float32(halfB)) / float32(halfW)

		if temp > max {
			max = temp
			*cut = i
		}
	}
	return max
}

// cut attempts to split set1 along its best axis, writing the high half
// into set2. It returns false if no axis admits a valid cut, in which case
// set1 should not be split again.
func cut(set1, set2 *box, wt, mr, mg, mb []int32) bool {
	wholeR := vol(set1, mr)
	wholeG := vol(set1, mg)
	wholeB := vol(set1, mb)
	wholeW := vol(set1, wt)

	var cutR, cutG, cutB int
	maxR := maximize(set1, red, set1.r0+1, set1.r1, &cutR, wholeR, wholeG, wholeB, wholeW, wt, mr, mg, mb)
	maxG := maximize(set1, green, set1.g0+1, set1.g1, &cutG, wholeR, wholeG, wholeB, wholeW, wt, mr, mg, mb)
	maxB := maximize(set1, blue, set1.b0+1, set1.b1, &cutB, wholeR, wholeG, wholeB, wholeW, wt, mr, mg, mb)

	var dir direction
	switch {
	case maxR >= maxG && maxR >= maxB:
		dir = red
		if cutR < 0 {
			return false
		}
	case maxG >= maxR && maxG >= maxB:
		dir = green
	default:
		dir = blue
	}

	set2.r1, set2.g1, set2.b1 = set1.r1, set1.g1, set1.b1

	switch dir {
	case red:
		set2.r0, set1.r1 = cutR, cutR
		set2.g0, set2.b0 = set1.g0, set1.b0
	case green:
		set2.g0, set1.g1 = cutG, cutG
		set2.r0, set2.b0 = set1.r0, set1.b0
	default:
		set2.b0, set1.b1 = cutB, cutB
		set2.r0, set2.g0 = set1.r0, set1.g0
	}

	set1.vol = (set1.r1 - set1.r0) * (set1.g1 - set1.g0) * (set1.b1 - set1.b0)
	set2.vol = (set2.r1 - set2.r0) * (set2.g1 - set2.g0) * (set2.b1 - set2.b0)
	return true
}

func mark(c *box, label int, tag []byte) {
	for r := c.r0 + 1; r <= c.r1; r++ {
		for g := c.g0 + 1; g <= c.g1; g++ {
			for b := c.b0 + 1; b <= c.b1; b++ {
				tag[idx(r, g, b)] = byte(label)
			}
		}
	}
}

func extract(cubes []box, wt, mr, mg, mb []int32, qadd []uint16, width, height int) Result {
	count := len(cubes)
	rgb24 := make([]RGB, count)
	rgba32 := make([]RGBA, count)

	tag := pool.Get(lattice * lattice * lattice)
	defer pool.Put(tag)
	for i := range tag {
		tag[i] = 0
	}

	for k := 0; k < count; k++ {
		mark(&cubes[k], k, tag)
		weight := vol(&cubes[k], wt)
		if weight != 0 {
			r := uint8(vol(&cubes[k], mr) / weight)
			g := uint8(vol(&cubes[k], mg) / weight)
			b := uint8(vol(&cubes[k], mb) / weight)
			rgb24[k] = RGB{R: r, G: g, B: b}
			rgba32[k] = RGBA{R: r, G: g, B: b, A: 255}
		}
	}

	index := make([]uint8, width*height)
	for i := range index {
		index[i] = tag[qadd[i]]
	}

	return Result{RGB24: rgb24, RGBA32: rgba32, Count: count, Index: index}
}
