package gapless

import (
	"io"

	"github.com/thesyncim/gopus"

	"github.com/eolian-audio/chunkstream/chunkerr"
	"github.com/eolian-audio/chunkstream/lpc"
	"github.com/eolian-audio/chunkstream/oggmux"
)

// Config configures one Encoder, i.e. one output chunk.
type Config struct {
	Rate     int
	Channels int

	// Bitrate is not read by New or Encode: the bitrate in effect is the one
	// passed to each Encode call, forwarded to the Opus encoder on the first
	// call and whenever it changes.
	Bitrate int

	// Application hints the wrapped Opus encoder; chunk construction always
	// passes gopus.ApplicationAudio, but it is threaded through here so
	// tests can exercise ApplicationLowDelay's shorter preSkip.
	Application gopus.Application

	// GranuleOffset seeds the Ogg granule position, letting a chunk's
	// timestamps continue a logical stream across chunk boundaries even
	// though each chunk owns an independent Ogg bitstream.
	GranuleOffset int64

	Serial uint32
	Tags   []oggmux.Tag
}

// Encoder synthesizes lead-in and lead-out frames around a run of real PCM
// so that a fresh Opus decoder, primed only by this chunk's own header and
// packets, reconstructs every real sample despite the decoder's own
// convergence behavior and algorithmic delay.
//
// Exactly one Encoder exists per output chunk. Encode is called once with
// the chunk's real samples (or not at all, for a chunk with only a partial
// final frame - even that case must still reach Close to flush); Close
// always runs last and finalizes the Ogg stream.
type Encoder struct {
	opus *opusEncoder
	mux  *oggmux.Muxer
	lpc  *lpc.Coder

	channels   int
	frameSize  int
	granuleMul int64

	buf    []float32
	bufPtr int

	lpcBuf    []float32
	lpcBufPtr int

	granule      int64
	finalPadding int
	first        bool
	closed       bool
}

// New constructs an Encoder writing a self-contained Ogg/Opus stream to
// sink. The frame size is fixed at construction to 20ms at cfg.Rate, per
// spec.md's Opus Encoder Wrapper contract.
func New(sink io.Writer, cfg Config) (*Encoder, error) {
	if cfg.Channels < 1 || cfg.Channels > 2 {
		return nil, &chunkerr.BadParameter{Field: "channels", Reason: "must be 1 or 2"}
	}
	if cfg.Rate <= 0 {
		return nil, &chunkerr.BadParameter{Field: "rate", Reason: "must be positive"}
	}

	frameSize := 20 * cfg.Rate / 1000
	opus, err := newOpusEncoder(cfg.Rate, cfg.Channels, cfg.Application, frameSize)
	if err != nil {
		return nil, err
	}

	granuleMul := int64(48000 / cfg.Rate)
	preSkip48k := uint16(granuleMul * int64(frameSize+opus.preSkip()))

	mux, err := oggmux.New(sink, oggmux.Config{
		Serial:        cfg.Serial,
		PreSkip48k:    preSkip48k,
		VersionString: "chunkstream",
		Tags:          cfg.Tags,
		Channels:      cfg.Channels,
		SampleRate:    cfg.Rate,
	})
	if err != nil {
		return nil, &chunkerr.MuxError{Err: err}
	}

	return &Encoder{
		opus:         opus,
		mux:          mux,
		lpc:          lpc.New(),
		channels:     cfg.Channels,
		frameSize:    frameSize,
		granuleMul:   granuleMul,
		buf:          make([]float32, frameSize*cfg.Channels),
		lpcBuf:       make([]float32, 2*frameSize*cfg.Channels),
		granule:      cfg.GranuleOffset,
		finalPadding: opus.preSkip(),
		first:        true,
	}, nil
}

// Encode drives pcm (interleaved samples, len(pcm)/Channels total per-channel
// samples) through the frame pipeline at bitrate. It may be called multiple
// times; Close must always be called last, exactly once.
func (e *Encoder) Encode(pcm []float32, bitrate int) error {
	if e.closed {
		return errClosed
	}
	if err := e.opus.setBitrate(bitrate); err != nil {
		return err
	}

	fs := e.frameSize
	nSrc := len(pcm) / e.channels
	pos := 0
	for nSrc > 0 {
		nRead := fs - e.bufPtr
		if nRead > nSrc {
			nRead = nSrc
		}

		if nRead == fs {
			if err := e.encodeFrame(pcm[pos*e.channels:], fs, nSrc-nRead < fs, false); err != nil {
				return err
			}
		} else {
			copy(e.buf[e.bufPtr*e.channels:], pcm[pos*e.channels:(pos+nRead)*e.channels])
			e.bufPtr += nRead
			if e.bufPtr == fs {
				if err := e.encodeFrame(e.buf, fs, nSrc-nRead < fs, false); err != nil {
					return err
				}
				e.bufPtr = 0
			}
		}

		pos += nRead
		nSrc -= nRead
	}
	return nil
}

// Close flushes any partial final frame, emitting lead-out material as
// needed so the decoder's own lookahead does not swallow real samples, then
// finalizes the underlying Ogg stream. Close is idempotent.
func (e *Encoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true

	needsExtraFrame := (e.frameSize - e.bufPtr) < e.opus.preSkip()
	if err := e.encodeFrame(e.buf, e.bufPtr, needsExtraFrame, !needsExtraFrame); err != nil {
		return err
	}
	if needsExtraFrame {
		if err := e.encodeFrame(nil, 0, false, true); err != nil {
			return err
		}
	}
	return e.mux.Close()
}

// encodeFrame is the single entry point for every frame this encoder ever
// emits: genuine frames built from real samples, the one synthesized
// lead-in frame, and any lead-out frame built from a short final tail.
//
// On the very first call it recurses once to emit a lead-in frame, built by
// reversing the start of the real audio, linear-predicting "backward" from
// it, then reversing the prediction back into forward time - a forward
// predictor can only extrapolate into the future, so extrapolating into the
// unknown past means running time backward around it.
func (e *Encoder) encodeFrame(src []float32, nSrc int, lastInSeq, flush bool) error {
	fs := e.frameSize
	ch := e.channels
	lpcFS := fs / 2

	if e.first {
		e.first = false

		for i := range e.lpcBuf {
			e.lpcBuf[i] = 0
		}
		copy(e.lpcBuf[:nSrc*ch], src[:nSrc*ch])
		reverseFloat32(e.lpcBuf[:fs*ch])

		lpcSrc := e.lpcBuf[lpcFS*ch:]
		lpcTar := e.lpcBuf[fs*ch:]
		for c := 0; c < ch; c++ {
			e.lpc.Extract(lpcSrc[c:], lpcFS, ch)
			e.lpc.Predict(lpcSrc[c:], lpcFS, lpcTar[c:], fs, ch)
		}

		reverseFloat32(e.lpcBuf[fs*ch : 2*fs*ch])
		if err := e.encodeFrame(e.lpcBuf[fs*ch:2*fs*ch], fs, false, false); err != nil {
			return err
		}
	}

	e.granule += int64(nSrc)

	if nSrc < fs {
		lpcNewDataSrc := e.lpcBuf[e.lpcBufPtr*ch:]
		copy(lpcNewDataSrc[:nSrc*ch], src[:nSrc*ch])
		e.lpcBufPtr += nSrc

		nLPCSrc := lpcFS
		if e.lpcBufPtr < nLPCSrc {
			nLPCSrc = e.lpcBufPtr
		}
		nLPCTar := fs - nSrc

		lpcSrc := e.lpcBuf[(e.lpcBufPtr-nLPCSrc)*ch:]
		lpcTar := lpcSrc[nLPCSrc*ch:]
		for c := 0; c < ch; c++ {
			e.lpc.Extract(lpcSrc[c:], nLPCSrc, ch)
			e.lpc.Predict(lpcSrc[c:], nLPCSrc, lpcTar[c:], nLPCTar, ch)
		}

		addGranule := e.finalPadding
		if rem := fs - nSrc; rem < addGranule {
			addGranule = rem
		}
		e.granule += int64(addGranule)
		e.finalPadding -= addGranule

		src = lpcNewDataSrc
		nSrc = fs
	}

	if lastInSeq {
		copy(e.lpcBuf[:nSrc*ch], src[:nSrc*ch])
		e.lpcBufPtr = nSrc
	}

	packet, err := e.opus.encodeFrame(src[:fs*ch])
	if err != nil {
		return err
	}
	if err := e.mux.WriteFrame(flush, e.granule*e.granuleMul, packet); err != nil {
		return &chunkerr.MuxError{Err: err}
	}
	return nil
}

// reverseFloat32 reverses s in place, element by element. Applied to a full
// interleaved frame (length frameSize*channels) this also swaps channel
// identity - reversing L0 R0 L1 R1 yields R1 L1 R0 L0 - but encodeFrame
// reverses two spans of the same length (the source frame before the
// per-channel LPC step, the predicted frame after it), so the channel swap
// cancels and each channel's extrapolation lands back in its own slot, in
// forward time.
func reverseFloat32(s []float32) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
