package gapless

import (
	"errors"

	"github.com/thesyncim/gopus"

	"github.com/eolian-audio/chunkstream/chunkerr"
)

// opusEncoder wraps gopus.Encoder to fix the frame size for the lifetime of
// the encoder and to make SetBitrate idempotent.
//
// gopus.Encoder is used instead of gopus.MultistreamEncoder because only the
// single-stream type exposes SetFrameSize: MultistreamEncoder locks its
// frame size to 960 samples at construction with no setter, which cannot
// honor a 20ms frame at anything but 48kHz. The tradeoff is that
// gopus.Encoder has no Lookahead method, so preSkip is computed here from
// the same public formula MultistreamEncoder.Lookahead documents (base
// delay Fs/400, plus Fs/250 unless the application is low-delay).
type opusEncoder struct {
	enc         *gopus.Encoder
	frameSize   int
	rate        int
	application gopus.Application
	bitrate     int
	bitrateSet  bool
}

func newOpusEncoder(rate, channels int, application gopus.Application, frameSize int) (*opusEncoder, error) {
	enc, err := gopus.NewEncoder(rate, channels, application)
	if err != nil {
		return nil, &chunkerr.OpusError{Op: "new_encoder", Err: err}
	}
	if err := enc.SetFrameSize(frameSize); err != nil {
		return nil, &chunkerr.OpusError{Op: "set_frame_size", Err: err}
	}
	return &opusEncoder{enc: enc, frameSize: frameSize, rate: rate, application: application}, nil
}

// preSkip returns the encoder's algorithmic delay in samples at the
// encoder's native rate.
func (o *opusEncoder) preSkip() int {
	base := o.rate / 400
	if o.application == gopus.ApplicationLowDelay {
		return base
	}
	return base + o.rate/250
}

// setBitrate is a no-op once the requested bitrate is already in effect,
// matching spec.md's requirement that repeated calls with the same value do
// not perturb encoder state.
func (o *opusEncoder) setBitrate(bitrate int) error {
	if o.bitrateSet && o.bitrate == bitrate {
		return nil
	}
	if err := o.enc.SetBitrate(bitrate); err != nil {
		return &chunkerr.OpusError{Op: "set_bitrate", Err: err}
	}
	o.bitrate = bitrate
	o.bitrateSet = true
	return nil
}

// encodeFrame encodes exactly one frame (frameSize*channels samples).
func (o *opusEncoder) encodeFrame(pcm []float32) ([]byte, error) {
	packet, err := o.enc.EncodeFloat32(pcm)
	if err != nil {
		return nil, &chunkerr.OpusError{Op: "encode", Err: err}
	}
	return packet, nil
}

var errClosed = errors.New("gapless: encoder already closed")
