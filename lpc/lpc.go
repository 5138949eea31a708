package lpc

// Order is the fixed predictor order. It is a compile-time constant in the
// original implementation and is kept that way here: nothing in the encoder
// pipeline needs a variable-order predictor.
const Order = 24

// lagWindow and the Levinson guards below are tuned for 16-24 bit audio at
// typical Opus chunk lengths; do not change without re-checking the S6
// prediction-accuracy property.
const lagWindow = 0.008

// Coder extracts and applies order-24 linear prediction coefficients.
// A Coder is stateless across calls: Extract overwrites the held
// coefficients and Predict only reads them, so a single Coder may be reused
// for unrelated windows of audio.
type Coder struct {
	coeffs [Order]float32
}

// New returns a Coder with zeroed coefficients.
func New() *Coder {
	return &Coder{}
}

// Coeffs returns the coefficients extracted by the most recent Extract call.
func (c *Coder) Coeffs() [Order]float32 {
	return c.coeffs
}

// Extract computes prediction coefficients from n samples of one channel,
// read from samples at the given stride (stride=1 for mono, stride=channels
// for one channel of an interleaved buffer starting at the right offset).
//
// Degenerate input (all zeros, or anything driving the running error below
// the epsilon guard) yields all-zero coefficients rather than an error; the
// caller then predicts silence, which is always a valid extrapolation.
func (c *Coder) Extract(samples []float32, n, stride int) {
	var aut [Order + 1]float64
	for j := 0; j <= Order; j++ {
		var d float64
		for i := j; i < n; i++ {
			d += float64(samples[i*stride]) * float64(samples[(i-j)*stride])
		}
		aut[j] = d
	}

	for i := 1; i <= Order; i++ {
		aut[i] -= aut[i] * (lagWindow * lagWindow) * float64(i*i)
	}

	var lpc [Order]float64
	errAcc := aut[0] * (1 + 1e-7)
	epsilon := 1e-6*aut[0] + 1e-7

	for i := 0; i < Order; i++ {
		if errAcc < epsilon {
			for k := i; k < Order; k++ {
				lpc[k] = 0
			}
			break
		}

		r := -aut[i+1]
		for j := 0; j < i; j++ {
			r -= lpc[j] * aut[i-j]
		}
		r /= errAcc

		lpc[i] = r

		var j int
		for j = 0; j < i/2; j++ {
			tmp := lpc[j]
			lpc[j] += r * lpc[i-1-j]
			lpc[i-1-j] += r * tmp
		}
		if i&1 != 0 {
			lpc[j] += lpc[j] * r
		}

		errAcc *= 1 - r*r
	}

	damp := 0.999
	for j := 0; j < Order; j++ {
		c.coeffs[j] = float32(lpc[j] * damp)
		damp *= 0.999
	}
}

// Predict fills nTar samples of tar (at the given stride) by extrapolating
// forward from nSrc samples of src (also at stride). Samples already written
// into tar are themselves used as history once the predictor has advanced
// past the end of src — a standard IIR-style forward extrapolation, so
// Predict may be called with tar aliasing storage that continues directly
// after src.
func (c *Coder) Predict(src []float32, nSrc int, tar []float32, nTar, stride int) {
	for i := 0; i < nTar; i++ {
		tar[i*stride] = 0
	}

	read := func(i, j int) float64 {
		idx := i - j - 1
		if idx >= 0 {
			return float64(tar[idx*stride])
		}
		srcIdx := nSrc + idx
		if srcIdx >= 0 {
			return float64(src[srcIdx*stride])
		}
		return 0
	}

	for i := 0; i < nTar; i++ {
		var sum float64
		for j := 0; j < Order; j++ {
			sum -= read(i, j) * float64(c.coeffs[j])
		}
		tar[i*stride] = float32(sum)
	}
}
