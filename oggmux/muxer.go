package oggmux

import (
	"io"
	"math/rand"
)

// Muxer wraps opaque Opus packets into one logical Ogg bitstream. New
// immediately emits the ID header and comment header pages; WriteFrame
// appends subsequent packets, batching them into pages under the 255-segment
// lacing limit and flushing the final page with the end-of-stream flag set.
type Muxer struct {
	w      io.Writer
	serial uint32

	pageSeq uint32
	headerType byte
	segments   []byte
	payload    []byte
	granule    int64

	headersWritten bool
	closed         bool
}

// Config carries everything New needs to emit the two header pages.
type Config struct {
	// Serial is the bitstream serial number. Zero means "pick one
	// pseudo-randomly", which production callers should always do; tests
	// pass a fixed value for byte-identical golden output (spec.md §9,
	// "Deterministic serial number for tests").
	Serial uint32

	PreSkip48k    uint16
	VersionString string
	Tags          []Tag
	Channels      int
	SampleRate    int
	OutputGain    int16
}

// New constructs a Muxer over sink and immediately writes the BOS page
// (OpusHead) and the comment page (OpusTags).
func New(sink io.Writer, cfg Config) (*Muxer, error) {
	serial := cfg.Serial
	if serial == 0 {
		serial = rand.Uint32()
	}

	m := &Muxer{w: sink, serial: serial}

	head := &OpusHead{
		Channels:   uint8(cfg.Channels),
		PreSkip:    cfg.PreSkip48k,
		SampleRate: uint32(cfg.SampleRate),
		OutputGain: cfg.OutputGain,
	}
	if err := m.writeHeaderPage(head.Encode(), FlagBOS); err != nil {
		return nil, err
	}

	tags := &OpusTags{Vendor: cfg.VersionString, Tags: cfg.Tags}
	if err := m.writeHeaderPage(tags.Encode(), 0); err != nil {
		return nil, err
	}

	m.headersWritten = true
	return m, nil
}

func (m *Muxer) writeHeaderPage(payload []byte, flags byte) error {
	page := &Page{
		HeaderType:   flags,
		GranulePos:   0,
		SerialNumber: m.serial,
		PageSequence: m.pageSeq,
		Segments:     buildSegmentTable(len(payload)),
		Payload:      payload,
	}
	if _, err := m.w.Write(page.Encode()); err != nil {
		return err
	}
	m.pageSeq++
	return nil
}

// WriteFrame appends one Opus packet to the current page. granule48k is the
// Ogg granule position (a 48kHz-scaled sample count) that this packet
// advances the stream to; it is recorded as the page's granule position when
// the page is flushed, matching RFC 3533's "granule at the end of the page"
// semantics. When last is true, the page is flushed immediately with the
// end-of-stream flag set.
func (m *Muxer) WriteFrame(last bool, granule48k int64, packet []byte) error {
	if m.closed {
		return ErrClosed
	}

	segs := buildSegmentTable(len(packet))
	if len(m.segments)+len(segs) > maxSegments && len(m.segments) > 0 {
		if err := m.flush(0); err != nil {
			return err
		}
	}

	m.segments = append(m.segments, segs...)
	m.payload = append(m.payload, packet...)
	m.granule = granule48k

	if last {
		return m.flush(FlagEOS)
	}
	return nil
}

func (m *Muxer) flush(extraFlags byte) error {
	if len(m.segments) == 0 && extraFlags&FlagEOS == 0 {
		return nil
	}

	page := &Page{
		HeaderType:   m.headerType | extraFlags,
		GranulePos:   m.granule,
		SerialNumber: m.serial,
		PageSequence: m.pageSeq,
		Segments:     m.segments,
		Payload:      m.payload,
	}
	if _, err := m.w.Write(page.Encode()); err != nil {
		return err
	}

	m.pageSeq++
	m.segments = nil
	m.payload = nil
	m.headerType = 0

	if extraFlags&FlagEOS != 0 {
		m.closed = true
	}
	return nil
}

// Close flushes any pending page. Ordinary use always reaches EOS through a
// WriteFrame(last=true, ...) call, which closes the muxer itself; Close is a
// safety net for callers that tear down early (e.g. on an upstream error)
// and still need whatever was buffered to become a valid, EOS-terminated
// Ogg stream.
func (m *Muxer) Close() error {
	if m.closed {
		return nil
	}
	return m.flush(FlagEOS)
}

// Serial returns the bitstream serial number in use.
func (m *Muxer) Serial() uint32 { return m.serial }
