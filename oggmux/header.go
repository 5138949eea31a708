package oggmux

import "encoding/binary"

const (
	opusHeadMagic = "OpusHead"
	opusTagsMagic = "OpusTags"

	opusHeadVersion = 1
	opusHeadSize    = 19 // mapping family 0 only
)

// OpusHead is the RFC 7845 §5.1 identification header. Only mapping family 0
// (mono/stereo, implicit channel order) is represented; this pipeline never
// produces more than two channels.
type OpusHead struct {
	Channels   uint8
	PreSkip    uint16
	SampleRate uint32
	OutputGain int16
}

// Encode serializes h to its 19-byte wire form.
func (h *OpusHead) Encode() []byte {
	buf := make([]byte, opusHeadSize)
	copy(buf[0:8], opusHeadMagic)
	buf[8] = opusHeadVersion
	buf[9] = h.Channels
	binary.LittleEndian.PutUint16(buf[10:12], h.PreSkip)
	binary.LittleEndian.PutUint32(buf[12:16], h.SampleRate)
	binary.LittleEndian.PutUint16(buf[16:18], uint16(h.OutputGain))
	buf[18] = 0 // mapping family
	return buf
}

// ParseOpusHead parses the identification header packet.
func ParseOpusHead(data []byte) (*OpusHead, error) {
	if len(data) < opusHeadSize {
		return nil, ErrInvalidHeader
	}
	if string(data[0:8]) != opusHeadMagic {
		return nil, ErrInvalidHeader
	}
	if data[8] != opusHeadVersion {
		return nil, ErrInvalidHeader
	}
	if data[18] != 0 {
		return nil, ErrInvalidHeader
	}
	h := &OpusHead{
		Channels:   data[9],
		PreSkip:    binary.LittleEndian.Uint16(data[10:12]),
		SampleRate: binary.LittleEndian.Uint32(data[12:16]),
		OutputGain: int16(binary.LittleEndian.Uint16(data[16:18])),
	}
	if h.Channels == 0 || h.Channels > 2 {
		return nil, ErrInvalidHeader
	}
	return h, nil
}

// Tag is one comment header key/value pair. OpusTags keeps tags in an
// ordered slice rather than a map: the pipeline always emits exactly two
// tags (CF_IN, CF_OUT) and their order must be reproducible byte-for-byte
// across runs for the idempotence property (spec.md §8, property 5), which
// Go map iteration order cannot guarantee.
type Tag struct {
	Key   string
	Value string
}

// OpusTags is the RFC 7845 §5.2 comment header.
type OpusTags struct {
	Vendor string
	Tags   []Tag
}

// Encode serializes t to its wire form.
func (t *OpusTags) Encode() []byte {
	size := 8 + 4 + len(t.Vendor) + 4
	comments := make([]string, len(t.Tags))
	for i, tag := range t.Tags {
		comments[i] = tag.Key + "=" + tag.Value
		size += 4 + len(comments[i])
	}

	buf := make([]byte, size)
	off := 0
	copy(buf[off:off+8], opusTagsMagic)
	off += 8

	binary.LittleEndian.PutUint32(buf[off:off+4], uint32(len(t.Vendor)))
	off += 4
	off += copy(buf[off:], t.Vendor)

	binary.LittleEndian.PutUint32(buf[off:off+4], uint32(len(comments)))
	off += 4

	for _, c := range comments {
		binary.LittleEndian.PutUint32(buf[off:off+4], uint32(len(c)))
		off += 4
		off += copy(buf[off:], c)
	}

	return buf
}

// ParseOpusTags parses the comment header packet.
func ParseOpusTags(data []byte) (*OpusTags, error) {
	if len(data) < 16 || string(data[0:8]) != opusTagsMagic {
		return nil, ErrInvalidHeader
	}
	off := 8

	vendorLen := int(binary.LittleEndian.Uint32(data[off : off+4]))
	off += 4
	if off+vendorLen > len(data) {
		return nil, ErrInvalidHeader
	}
	t := &OpusTags{Vendor: string(data[off : off+vendorLen])}
	off += vendorLen

	if off+4 > len(data) {
		return nil, ErrInvalidHeader
	}
	count := int(binary.LittleEndian.Uint32(data[off : off+4]))
	off += 4

	for i := 0; i < count; i++ {
		if off+4 > len(data) {
			return nil, ErrInvalidHeader
		}
		clen := int(binary.LittleEndian.Uint32(data[off : off+4]))
		off += 4
		if off+clen > len(data) {
			return nil, ErrInvalidHeader
		}
		comment := data[off : off+clen]
		off += clen

		for j := 0; j < len(comment); j++ {
			if comment[j] == '=' {
				t.Tags = append(t.Tags, Tag{Key: string(comment[:j]), Value: string(comment[j+1:])})
				break
			}
		}
	}

	return t, nil
}
