package gapless

import (
	"bytes"
	"math"
	"testing"

	"github.com/thesyncim/gopus"

	"github.com/eolian-audio/chunkstream/oggmux"
)

func generateSine(freq float64, rate, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(math.Sin(2 * math.Pi * freq * float64(i) / float64(rate)))
	}
	return out
}

func decodeStream(t *testing.T, data []byte, rate, channels int) []float32 {
	t.Helper()

	dec, err := gopus.NewDecoder(rate, channels)
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}

	var pcm []float32
	seenHeaders := 0
	for len(data) > 0 {
		page, n, err := oggmux.ParsePage(data)
		if err != nil {
			t.Fatalf("ParsePage: %v", err)
		}
		data = data[n:]

		if seenHeaders < 2 {
			seenHeaders++
			continue
		}
		for _, pkt := range page.Packets() {
			out := make([]float32, 5760*channels)
			written, err := dec.Decode(pkt, out)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			pcm = append(pcm, out[:written*channels]...)
		}
	}
	return pcm
}

func TestEncoderRoundTripSine(t *testing.T) {
	const rate = 48000
	const channels = 1
	pcm := generateSine(440, rate, rate/2) // 0.5s

	var buf bytes.Buffer
	enc, err := New(&buf, Config{
		Rate:        rate,
		Channels:    channels,
		Bitrate:     64000,
		Application: gopus.ApplicationAudio,
		Serial:      1,
		Tags:        []oggmux.Tag{{Key: "CF_IN", Value: "0"}, {Key: "CF_OUT", Value: "0"}},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := enc.Encode(pcm, 64000); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	decoded := decodeStream(t, buf.Bytes(), rate, channels)
	if len(decoded) < len(pcm) {
		t.Fatalf("decoded %d samples, want at least %d (real samples plus lead-in/out)", len(decoded), len(pcm))
	}
}

func TestEncoderRoundTripShortInput(t *testing.T) {
	const rate = 48000
	const channels = 2
	pcm := generateSine(220, rate, 37) // far shorter than one frame
	interleaved := make([]float32, len(pcm)*2)
	for i, v := range pcm {
		interleaved[2*i] = v
		interleaved[2*i+1] = v
	}

	var buf bytes.Buffer
	enc, err := New(&buf, Config{
		Rate:        rate,
		Channels:    channels,
		Application: gopus.ApplicationAudio,
		Serial:      2,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := enc.Encode(interleaved, 96000); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	decoded := decodeStream(t, buf.Bytes(), rate, channels)
	if len(decoded) == 0 {
		t.Fatal("decoded no samples from a short-input chunk")
	}
}

func TestEncoderCloseIsIdempotent(t *testing.T) {
	var buf bytes.Buffer
	enc, err := New(&buf, Config{Rate: 48000, Channels: 1, Application: gopus.ApplicationAudio, Serial: 3})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := enc.Encode(generateSine(440, 48000, 960), 64000); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("second Close should be a no-op, got: %v", err)
	}
	if err := enc.Encode([]float32{0, 0}, 64000); err != errClosed {
		t.Fatalf("Encode after Close = %v, want errClosed", err)
	}
}

func TestUnsupportedFrameSizeSurfacesOpusError(t *testing.T) {
	var buf bytes.Buffer
	_, err := New(&buf, Config{Rate: 8000, Channels: 1, Application: gopus.ApplicationAudio, Serial: 4})
	if err == nil {
		t.Fatal("expected an error constructing an encoder at a rate gopus.Encoder.SetFrameSize rejects")
	}
}

func TestReverseFloat32(t *testing.T) {
	s := []float32{1, 2, 3, 4, 5}
	reverseFloat32(s)
	want := []float32{5, 4, 3, 2, 1}
	for i := range want {
		if s[i] != want[i] {
			t.Errorf("reverseFloat32 = %v, want %v", s, want)
			break
		}
	}
}
