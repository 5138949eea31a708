package chunk

import (
	"io"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/thesyncim/gopus"

	"github.com/eolian-audio/chunkstream/chunkerr"
	"github.com/eolian-audio/chunkstream/gapless"
	"github.com/eolian-audio/chunkstream/oggmux"
)

// DecoderCallback fills buf with up to samples interleaved multi-channel
// samples (samples*channels floats) and returns the number actually
// delivered. A return strictly less than samples is the one and only
// end-of-stream signal; it may not invoke the Transcoder that calls it.
type DecoderCallback func(buf []float32, samples int) (int, error)

// Transcoder owns the rolling overlap buffer and drives one gapless.Encoder
// per produced chunk. It is strictly pull-driven and single-threaded: every
// call to Transcode runs to completion before returning.
type Transcoder struct {
	settings Settings
	d        derived
	read     DecoderCallback
	logger   zerolog.Logger

	decoderOffset int
	offs          int
	buf           []float32 // capacity d.total * channels
	bufPtr        int       // valid samples held at buf's head
	atEnd         bool

	serialSeed uint32 // 0 = production random serial; nonzero seeds tests deterministically
}

// New constructs a Transcoder reading from read, starting at decoderOffset
// on the global input timeline. logger defaults to a disabled logger if the
// zero value is passed.
func New(settings Settings, read DecoderCallback, decoderOffset int, logger zerolog.Logger) (*Transcoder, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	d := settings.derive()
	return &Transcoder{
		settings:      settings,
		d:             d,
		read:          read,
		logger:        logger,
		decoderOffset: decoderOffset,
		offs:          decoderOffset,
		buf:           make([]float32, d.total*settings.Channels),
	}, nil
}

// WithSerialSeed fixes the Ogg serial number used for every subsequent
// chunk, for byte-identical golden test output (spec.md §8 property 5). It
// must not be used in production, where the serial should remain
// pseudo-random per chunk.
func (t *Transcoder) WithSerialSeed(seed uint32) { t.serialSeed = seed }

// HasNext reports whether a subsequent Transcode call could still produce a
// chunk.
func (t *Transcoder) HasNext() bool { return !t.atEnd }

// idx computes the index of the chunk to produce next, given the current
// buffer position.
func (t *Transcoder) idx() int {
	p := t.offs - t.bufPtr
	if p < 0 {
		p = 0
	}
	i := (p + t.d.O) / (t.d.L + t.d.O)
	if p > t.d.start(i) {
		i++
	}
	return i
}

// Transcode produces the next chunk, if any, writing a complete Ogg/Opus
// stream to sink. It returns false once the input is exhausted (including
// immediately, for empty input) and no chunk was produced.
func (t *Transcoder) Transcode(sink io.Writer) (bool, error) {
	if t.atEnd {
		return false, nil
	}

	i := t.idx()
	start := t.d.start(i)
	ch := t.settings.Channels

	// Advance the decoder to start(i), discarding buffered data if we must
	// seek forward past it.
	if t.offs < start {
		discard := start - t.offs
		for discard > 0 {
			want := discard
			if want > t.d.total {
				want = t.d.total
			}
			scratch := make([]float32, want*ch)
			n, err := t.read(scratch, want)
			if err != nil {
				return false, err
			}
			t.offs += n
			discard -= n
			if n < want {
				t.atEnd = true
				return false, nil
			}
		}
		t.bufPtr = 0
	}

	// Read exactly end(i) - offs more samples into the buffer past bufPtr.
	end := t.d.end(i)
	want := end - t.offs
	cfOut := t.d.O
	if want > 0 {
		n, err := t.read(t.buf[t.bufPtr*ch:(t.bufPtr+want)*ch], want)
		if err != nil {
			return false, err
		}
		t.offs += n
		t.bufPtr += n
		if n < want {
			cfOut = 0
			t.atEnd = true
		}
	}

	cfIn := t.d.O
	if start == 0 {
		cfIn = 0
	}

	if t.bufPtr == 0 {
		return false, nil
	}

	enc, err := gapless.New(sink, gapless.Config{
		Rate:        t.settings.Rate,
		Channels:    ch,
		Application: gopus.ApplicationAudio,
		Serial:      t.serialSeed,
		Tags: []oggmux.Tag{
			{Key: "CF_IN", Value: strconv.Itoa(cfIn)},
			{Key: "CF_OUT", Value: strconv.Itoa(cfOut)},
		},
	})
	if err != nil {
		return false, err
	}

	populated := t.buf[:t.bufPtr*ch]
	if err := enc.Encode(populated, t.settings.Bitrate); err != nil {
		return false, err
	}
	if err := enc.Close(); err != nil {
		return false, &chunkerr.MuxError{Err: err}
	}

	t.logger.Debug().
		Int("chunk_index", i).
		Int("start", start).
		Int("end", t.offs).
		Int("cf_in", cfIn).
		Int("cf_out", cfOut).
		Msg("transcoded chunk")

	// Retain the last cfOut samples at the buffer's head; they are the
	// overlap that begins chunk i+1.
	tail := t.buf[(t.bufPtr-cfOut)*ch : t.bufPtr*ch]
	copy(t.buf[:len(tail)], tail)
	t.bufPtr = cfOut

	return true, nil
}
