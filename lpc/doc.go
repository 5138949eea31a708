// Package lpc implements order-24 linear predictive coding used to
// extrapolate audio samples that were never actually recorded.
//
// A Coder extracts prediction coefficients from a window of real samples via
// windowed autocorrelation and the Levinson-Durbin recursion, then uses those
// coefficients to synthesize additional samples that continue the same
// spectral content with no new frequency information. This package has no
// notion of channels, chunks or Opus; it operates on a single interleaved
// float32 track at a caller-chosen stride so the same Coder can walk either
// channel of a stereo buffer.
//
// # Autocorrelation and lag windowing
//
// Extract computes order+1 lags of the autocorrelation of the
// input, applies a Gaussian-approximating lag window (aut[i] -= aut[i] *
// (0.008)^2 * i^2) to suppress spectral leakage, then runs Levinson-Durbin
// recursion with the numerical guards described in RFC-adjacent LPC
// literature: a relative error floor (error*(1+1e-7)) and an epsilon
// (1e-6*aut[0]+1e-7) below which the recursion is unstable and the remaining
// coefficients are zeroed rather than left to diverge. Final coefficients are
// damped by 0.999^(j+1) to keep the resulting filter stable.
//
// # Prediction
//
// Predict is a standard IIR extrapolation: each new sample is the negative
// weighted sum of the previous order samples, drawing from the tail of the
// source window until enough predicted samples exist to draw from instead.
package lpc
