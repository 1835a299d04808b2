package stress

import "math"

// gaussianTruncate is the kernel half-width in standard deviations.
const gaussianTruncate = 4.0

// gaussianKernel returns normalised weights for offsets -r..r.
func gaussianKernel(sigma float64) []float64 {
	r := int(gaussianTruncate*sigma + 0.5)
	w := make([]float64, 2*r+1)
	var sum float64
	for i := -r; i <= r; i++ {
		v := math.Exp(-0.5 * float64(i*i) / (sigma * sigma))
		w[i+r] = v
		sum += v
	}
	for i := range w {
		w[i] /= sum
	}
	return w
}

// gaussianFilter3D blurs data (x slowest, z fastest) in place with a
// separable Gaussian of the given sigma, in grid cells. Samples beyond the
// ends are mirrored about the edge (d c b a | a b c d | d c b a).
func gaussianFilter3D(data []float64, nx, ny, nz int, sigma float64) {
	w := gaussianKernel(sigma)
	tmp := make([]float64, max(nx, ny, nz))

	// along z
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			convolveLine(data, (i*ny+j)*nz, 1, nz, w, tmp)
		}
	}
	// along y
	for i := 0; i < nx; i++ {
		for k := 0; k < nz; k++ {
			convolveLine(data, i*ny*nz+k, nz, ny, w, tmp)
		}
	}
	// along x
	for j := 0; j < ny; j++ {
		for k := 0; k < nz; k++ {
			convolveLine(data, j*nz+k, ny*nz, nx, w, tmp)
		}
	}
}

func convolveLine(data []float64, start, stride, n int, w, tmp []float64) {
	r := len(w) / 2
	for p := 0; p < n; p++ {
		var acc float64
		for o := -r; o <= r; o++ {
			acc += w[o+r] * data[start+reflect(p+o, n)*stride]
		}
		tmp[p] = acc
	}
	for p := 0; p < n; p++ {
		data[start+p*stride] = tmp[p]
	}
}

// reflect maps an out-of-range index back into [0, n).
func reflect(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i - 1
		} else {
			i = 2*n - i - 1
		}
	}
	return i
}
