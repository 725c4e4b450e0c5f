// Package sdf implements the Felzenszwalb-Huttenlocher squared Euclidean
// distance transform and the signed-distance-field glyph rasterizer built
// on top of it. The algorithm follows Mapbox's tiny-sdf implementation of
// the distance transform described in Felzenszwalb & Huttenlocher's paper
// (https://cs.brown.edu/~pff/papers/dt-final.pdf).
package sdf

import "math"

// Inf is the sentinel distance used for grid cells with no known nearby
// feature. It must be large enough that no squared-distance computation
// over a realistic grid can approach it.
const Inf = 1e20

// Edt1D runs a 1-D squared Euclidean distance transform in place over
// length samples of grid starting at offset and spaced stride apart.
// f, v and z are caller-owned scratch buffers reused across calls to
// avoid per-glyph allocation; f and v must have length >= length, z must
// have length >= length+1.
//
// The algorithm maintains the lower envelope of a set of parabolas rooted
// at each sample: for each site q it pops any parabola whose intersection
// with the parabola at q falls at or before the current breakpoint, then
// pushes q onto the envelope. A second pass reads the lower envelope value
// at each site.
func Edt1D(grid []float64, offset, stride, length int, f []float64, v []int, z []float64) {
	v[0] = 0
	z[0] = -Inf
	z[1] = Inf
	f[0] = grid[offset]

	k := 0
	for q := 1; q < length; q++ {
		f[q] = grid[offset+q*stride]

		q2 := float64(q * q)

		var s float64
		for {
			r := v[k]
			s = (f[q] - f[r] + q2 - float64(r*r)) / float64(q-r) / 2.
			if s <= z[k] {
				k--
				if k > -1 {
					continue
				}
			}
			break
		}

		k++
		v[k] = q
		z[k] = s
		z[k+1] = Inf
	}

	k = 0
	for q := 0; q < length; q++ {
		for z[k+1] < float64(q) {
			k++
		}
		r := v[k]
		qr := q - r
		grid[offset+q*stride] = f[r] + float64(qr*qr)
	}
}

// Edt2D runs Edt1D down every column then across every row of the
// w-by-h sub-rectangle of grid anchored at (x0,y0), where grid is a flat
// row-major buffer with row length gridStride. grid is updated in place
// and holds squared distances on return.
func Edt2D(grid []float64, x0, y0, w, h, gridStride int, f []float64, v []int, z []float64) {
	for x := x0; x < x0+w; x++ {
		Edt1D(grid, y0*gridStride+x, gridStride, h, f, v, z)
	}
	for y := y0; y < y0+h; y++ {
		Edt1D(grid, y*gridStride+x0, 1, w, f, v, z)
	}
}

// Generator converts 8-bit alpha glyph bitmaps into 8-bit signed distance
// field tiles, reusing its scratch buffers across calls.
type Generator struct {
	gridOuter []float64
	gridInner []float64
	f         []float64
	v         []int
	z         []float64

	gridSize int
	buffer   int
	radius   float64
	cutoff   float64
}

// NewGenerator builds a Generator for tiles of gridSize x gridSize, padding
// the source bitmap by buffer pixels on each side, encoding distances up to
// radius pixels, with the glyph contour placed at the cutoff iso-line
// (cutoff in [0,1]; 0.25 maps the contour to byte value ~191).
func NewGenerator(gridSize, buffer int, radius, cutoff float64) *Generator {
	n := gridSize * gridSize
	return &Generator{
		gridOuter: make([]float64, n),
		gridInner: make([]float64, n),
		f:         make([]float64, gridSize),
		v:         make([]int, gridSize),
		z:         make([]float64, gridSize+1),
		gridSize:  gridSize,
		buffer:    buffer,
		radius:    radius,
		cutoff:    cutoff,
	}
}

// Calculate turns an alpha bitmap of glyphWidth x glyphHeight into an SDF
// tile. The returned slice has length outWidth*outHeight, row-major, with
// outWidth/outHeight clamped to the generator's gridSize.
func (g *Generator) Calculate(bitmap []byte, glyphWidth, glyphHeight int) (sdfBytes []byte, outWidth, outHeight int) {
	for i := range g.gridOuter {
		g.gridOuter[i] = Inf
		g.gridInner[i] = 0
	}

	width := glyphWidth + 2*g.buffer
	if width > g.gridSize {
		width = g.gridSize
	}
	height := glyphHeight + 2*g.buffer
	if height > g.gridSize {
		height = g.gridSize
	}

	// Pixels that fall outside the clamped tile are dropped.
	innerWidth := min(glyphWidth, width-g.buffer)
	innerHeight := min(glyphHeight, height-g.buffer)

	for y := 0; y < innerHeight; y++ {
		for x := 0; x < innerWidth; x++ {
			a := bitmap[y*glyphWidth+x]
			if a == 0 {
				continue
			}

			j := (y+g.buffer)*width + x + g.buffer

			if a == 255 {
				g.gridOuter[j] = 0
				g.gridInner[j] = Inf
			} else {
				d := 0.5 - float64(a)/255.
				if d > 0 {
					g.gridOuter[j] = d * d
				} else {
					g.gridInner[j] = d * d
				}
			}
		}
	}

	Edt2D(g.gridOuter, 0, 0, width, height, width, g.f, g.v, g.z)
	Edt2D(g.gridInner, g.buffer, g.buffer, innerWidth, innerHeight, width, g.f, g.v, g.z)

	n := width * height
	data := make([]byte, n)
	for i := 0; i < n; i++ {
		d := math.Sqrt(g.gridOuter[i]) - math.Sqrt(g.gridInner[i])
		v := 255. - 255.*(d/g.radius+g.cutoff)
		data[i] = clampByte(math.Round(v))
	}

	return data, width, height
}

func clampByte(v float64) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
