package oggmux

import (
	"bytes"
	"testing"
)

func TestBuildSegmentTable(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want []byte
	}{
		{"empty", 0, []byte{0}},
		{"short", 10, []byte{10}},
		{"exact_one_segment", 255, []byte{255, 0}},
		{"two_full_plus_remainder", 600, []byte{255, 255, 90}},
		{"exact_two_segments", 510, []byte{255, 255, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildSegmentTable(tt.n)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("buildSegmentTable(%d) = %v, want %v", tt.n, got, tt.want)
			}
		})
	}
}

func TestPacketLengthsRoundTrip(t *testing.T) {
	lens := []int{0, 10, 255, 600, 510}
	for _, n := range lens {
		segs := buildSegmentTable(n)
		got := packetLengths(segs)
		if len(got) != 1 || got[0] != n {
			t.Errorf("packetLengths(buildSegmentTable(%d)) = %v, want [%d]", n, got, n)
		}
	}
}

func TestPageEncodeParseRoundTrip(t *testing.T) {
	p := &Page{
		HeaderType:   FlagBOS,
		GranulePos:   12345,
		SerialNumber: 0xdeadbeef,
		PageSequence: 1,
		Segments:     buildSegmentTable(19),
		Payload:      bytes.Repeat([]byte{0x42}, 19),
	}

	encoded := p.Encode()
	parsed, n, err := ParsePage(encoded)
	if err != nil {
		t.Fatalf("ParsePage error: %v", err)
	}
	if n != len(encoded) {
		t.Errorf("consumed %d bytes, want %d", n, len(encoded))
	}
	if !parsed.IsBOS() {
		t.Error("parsed page should have BOS flag")
	}
	if parsed.GranulePos != p.GranulePos {
		t.Errorf("GranulePos = %d, want %d", parsed.GranulePos, p.GranulePos)
	}
	if parsed.SerialNumber != p.SerialNumber {
		t.Errorf("SerialNumber = %#x, want %#x", parsed.SerialNumber, p.SerialNumber)
	}
	if !bytes.Equal(parsed.Payload, p.Payload) {
		t.Errorf("Payload = %v, want %v", parsed.Payload, p.Payload)
	}
}

func TestParsePageRejectsBadCRC(t *testing.T) {
	p := &Page{
		SerialNumber: 1,
		Segments:     buildSegmentTable(4),
		Payload:      []byte{1, 2, 3, 4},
	}
	encoded := p.Encode()
	encoded[len(encoded)-1] ^= 0xff // corrupt last payload byte

	if _, _, err := ParsePage(encoded); err != ErrBadCRC {
		t.Errorf("ParsePage on corrupted page = %v, want ErrBadCRC", err)
	}
}

func TestOpusHeadEncodeParseRoundTrip(t *testing.T) {
	tests := []struct {
		name       string
		channels   uint8
		preSkip    uint16
		sampleRate uint32
	}{
		{"mono_48k", 1, 312, 48000},
		{"stereo_24k", 2, 624, 24000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &OpusHead{Channels: tt.channels, PreSkip: tt.preSkip, SampleRate: tt.sampleRate}
			encoded := h.Encode()
			if len(encoded) != opusHeadSize {
				t.Fatalf("Encode() len = %d, want %d", len(encoded), opusHeadSize)
			}

			parsed, err := ParseOpusHead(encoded)
			if err != nil {
				t.Fatalf("ParseOpusHead error: %v", err)
			}
			if parsed.Channels != tt.channels || parsed.PreSkip != tt.preSkip || parsed.SampleRate != tt.sampleRate {
				t.Errorf("parsed = %+v, want channels=%d preSkip=%d sampleRate=%d", parsed, tt.channels, tt.preSkip, tt.sampleRate)
			}
		})
	}
}

func TestOpusTagsPreservesOrder(t *testing.T) {
	tags := &OpusTags{
		Vendor: "chunkstream",
		Tags: []Tag{
			{Key: "CF_IN", Value: "0"},
			{Key: "CF_OUT", Value: "48"},
		},
	}
	parsed, err := ParseOpusTags(tags.Encode())
	if err != nil {
		t.Fatalf("ParseOpusTags error: %v", err)
	}
	if parsed.Vendor != tags.Vendor {
		t.Errorf("Vendor = %q, want %q", parsed.Vendor, tags.Vendor)
	}
	if len(parsed.Tags) != 2 || parsed.Tags[0].Key != "CF_IN" || parsed.Tags[1].Key != "CF_OUT" {
		t.Fatalf("Tags = %+v, want [CF_IN CF_OUT] in order", parsed.Tags)
	}
}

func TestMuxerWritesBOSHeadersAndEOS(t *testing.T) {
	var buf bytes.Buffer
	m, err := New(&buf, Config{
		Serial:        42,
		PreSkip48k:    960,
		VersionString: "chunkstream-test",
		Tags:          []Tag{{Key: "CF_IN", Value: "0"}, {Key: "CF_OUT", Value: "0"}},
		Channels:      2,
		SampleRate:    48000,
	})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	packet := bytes.Repeat([]byte{0x7f}, 100)
	if err := m.WriteFrame(true, 960, packet); err != nil {
		t.Fatalf("WriteFrame error: %v", err)
	}

	pages := parseAllPages(t, buf.Bytes())
	if len(pages) != 3 {
		t.Fatalf("got %d pages, want 3 (BOS, tags, audio+EOS)", len(pages))
	}
	if !pages[0].IsBOS() {
		t.Error("first page should be BOS")
	}
	if pages[0].SerialNumber != 42 {
		t.Errorf("serial = %d, want 42", pages[0].SerialNumber)
	}
	if !pages[2].IsEOS() {
		t.Error("last page should be EOS")
	}
	if pages[2].GranulePos != 960 {
		t.Errorf("final granule = %d, want 960", pages[2].GranulePos)
	}
}

func TestMuxerFlushesPageWhenSegmentTableFills(t *testing.T) {
	var buf bytes.Buffer
	m, err := New(&buf, Config{Serial: 7, Channels: 1, SampleRate: 48000})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	// Each packet is 255 bytes, needing 2 segment entries (255, 0). 130 of
	// them need 260 segment entries, which must split across pages.
	packet := bytes.Repeat([]byte{0x01}, 255)
	for i := 0; i < 129; i++ {
		if err := m.WriteFrame(false, int64(i+1)*960, packet); err != nil {
			t.Fatalf("WriteFrame %d error: %v", i, err)
		}
	}
	if err := m.WriteFrame(true, 130*960, packet); err != nil {
		t.Fatalf("final WriteFrame error: %v", err)
	}

	pages := parseAllPages(t, buf.Bytes())
	if len(pages) < 4 {
		t.Fatalf("got %d pages, want at least 4 (headers + split audio pages)", len(pages))
	}
	for _, p := range pages[2:] {
		if len(p.Segments) > maxSegments {
			t.Errorf("page has %d segments, want <= %d", len(p.Segments), maxSegments)
		}
	}
	if !pages[len(pages)-1].IsEOS() {
		t.Error("last page should be EOS")
	}
}

func parseAllPages(t *testing.T, data []byte) []*Page {
	t.Helper()
	var pages []*Page
	for len(data) > 0 {
		p, n, err := ParsePage(data)
		if err != nil {
			t.Fatalf("ParsePage error: %v", err)
		}
		pages = append(pages, p)
		data = data[n:]
	}
	return pages
}
