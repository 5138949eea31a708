// Package chunk implements the Chunk Planner/Transcoder: it partitions a
// pull-driven PCM stream into fixed-length, overlapping windows and drives
// one gapless.Encoder per window, attaching the cross-fade metadata a
// downstream player needs to stitch the windows back together.
package chunk

import (
	"github.com/go-playground/validator/v10"

	"github.com/eolian-audio/chunkstream/chunkerr"
)

var validate = validator.New()

// Settings is the immutable per-pipeline configuration. Zero values are not
// valid; start from DefaultSettings and check with Validate (New also
// validates).
type Settings struct {
	Rate     int `validate:"oneof=8000 12000 16000 24000 48000"`
	Channels int `validate:"oneof=1 2"`
	Bitrate  int `validate:"gte=500,lte=512000"`

	// LengthS is the chunk body duration in seconds.
	LengthS float64 `validate:"gt=0"`
	// OverlapS is the overlap duration on each side, in seconds.
	OverlapS float64 `validate:"gt=0"`
}

// DefaultSettings returns the documented defaults (spec.md §6's Settings
// surface table): 48kHz stereo, 256kbps, 5s chunks with a 1ms overlap.
func DefaultSettings() Settings {
	return Settings{
		Rate:     48000,
		Channels: 2,
		Bitrate:  256000,
		LengthS:  5.0,
		OverlapS: 0.001,
	}
}

// Validate checks Settings against its declared constraints, translating the
// first validation failure into a chunkerr.BadParameter.
func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			fe := verrs[0]
			return &chunkerr.BadParameter{Field: fe.Field(), Reason: fe.Tag()}
		}
		return &chunkerr.BadParameter{Field: "settings", Reason: err.Error()}
	}
	return nil
}

// derived holds the integer sample-domain quantities Settings implies.
type derived struct {
	L     int // chunk body length, samples
	O     int // overlap length, samples
	total int // L + 2*O, the buffer capacity for one chunk
}

func (s Settings) derive() derived {
	l := round(s.LengthS * float64(s.Rate))
	o := round(s.OverlapS * float64(s.Rate))
	return derived{L: l, O: o, total: l + 2*o}
}

func round(x float64) int {
	if x < 0 {
		return -round(-x)
	}
	return int(x + 0.5)
}

// start returns the first sample index (inclusive) of chunk i on the global
// input timeline.
func (d derived) start(i int) int {
	v := i*(d.L+d.O) - d.O
	if v < 0 {
		return 0
	}
	return v
}

// end returns the first sample index (exclusive) past chunk i.
func (d derived) end(i int) int {
	return (i + 1) * (d.L + d.O)
}
