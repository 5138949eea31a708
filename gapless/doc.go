// Package gapless implements the Opus Encoder Wrapper and the
// Gap-Compensating Encoder: the part of the pipeline that turns one buffer
// of real PCM samples into a self-contained Ogg/Opus stream whose Opus
// decoder has already converged by the time the real audio starts, and can
// still emit every real sample despite the codec's own algorithmic delay.
//
// Every chunk starts its own fresh Opus encoder, so naively encoding just
// the real samples would begin with the decoder's internal filters in an
// arbitrary state (producing an audible transient) and would drop the last
// few samples of real audio to the encoder's lookahead. Encoder compensates
// for both: before the first real frame it synthesizes one additional
// lead-in frame by linear-predicting the "unknown past" of the real audio
// (via lpc.Coder, using a reverse/predict/reverse trick so a forward
// predictor can extrapolate backward), and at the end of the real audio it
// extends the final frame, and sometimes appends one wholly synthetic extra
// frame, so the decoder's lookahead has enough synthesized material to
// recover every real sample.
//
// None of this introduces new frequency content: lead-in and lead-out
// frames are linear extrapolations of the real audio already present in the
// chunk, so they mask the codec's convergence and delay without being
// audibly distinguishable from the real signal they border.
package gapless
