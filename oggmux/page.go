package oggmux

import "encoding/binary"

// Page header flags.
const (
	FlagContinuation byte = 0x01
	FlagBOS          byte = 0x02
	FlagEOS          byte = 0x04
)

const (
	pageHeaderSize = 27
	oggMagic       = "OggS"

	// maxSegments is the largest lacing table a single page may carry; the
	// segment count field is one byte.
	maxSegments = 255
)

// Page is one physical Ogg page: a fixed header, a lacing (segment) table,
// and the concatenated payload of every packet (or packet fragment) it
// carries.
type Page struct {
	HeaderType   byte
	GranulePos   int64
	SerialNumber uint32
	PageSequence uint32
	Segments     []byte
	Payload      []byte
}

func (p *Page) IsBOS() bool          { return p.HeaderType&FlagBOS != 0 }
func (p *Page) IsEOS() bool          { return p.HeaderType&FlagEOS != 0 }
func (p *Page) IsContinuation() bool { return p.HeaderType&FlagContinuation != 0 }

// buildSegmentTable returns the lacing entries for one packet of length n:
// as many 255s as fit, followed by the remainder (which may be 0, since a
// packet that is an exact multiple of 255 bytes must still be terminated by
// a segment shorter than 255).
func buildSegmentTable(n int) []byte {
	segs := make([]byte, 0, n/255+1)
	for n >= 255 {
		segs = append(segs, 255)
		n -= 255
	}
	segs = append(segs, byte(n))
	return segs
}

// packetLengths reconstructs the byte length of every packet represented in
// a lacing table: consecutive 255 entries accumulate into one packet, ended
// by the first entry below 255.
func packetLengths(segments []byte) []int {
	var lengths []int
	acc := 0
	for _, s := range segments {
		acc += int(s)
		if s < 255 {
			lengths = append(lengths, acc)
			acc = 0
		}
	}
	return lengths
}

// Packets splits the page payload according to its lacing table.
func (p *Page) Packets() [][]byte {
	lengths := packetLengths(p.Segments)
	packets := make([][]byte, 0, len(lengths))
	off := 0
	for _, l := range lengths {
		if off+l > len(p.Payload) {
			break
		}
		packets = append(packets, p.Payload[off:off+l])
		off += l
	}
	return packets
}

// Encode serializes the page, computing the CRC over the whole page with the
// CRC field held at zero as RFC 3533 requires.
func (p *Page) Encode() []byte {
	headerSize := pageHeaderSize + len(p.Segments)
	buf := make([]byte, headerSize+len(p.Payload))

	copy(buf[0:4], oggMagic)
	buf[4] = 0 // stream structure version
	buf[5] = p.HeaderType
	binary.LittleEndian.PutUint64(buf[6:14], uint64(p.GranulePos))
	binary.LittleEndian.PutUint32(buf[14:18], p.SerialNumber)
	binary.LittleEndian.PutUint32(buf[18:22], p.PageSequence)
	// buf[22:26] (CRC) filled in below.
	buf[26] = byte(len(p.Segments))
	copy(buf[27:headerSize], p.Segments)
	copy(buf[headerSize:], p.Payload)

	crc := crc32Ogg(buf)
	binary.LittleEndian.PutUint32(buf[22:26], crc)
	return buf
}

// ParsePage parses one page from the front of data, returning the page and
// the number of bytes it consumed.
func ParsePage(data []byte) (*Page, int, error) {
	if len(data) < pageHeaderSize {
		return nil, 0, ErrInvalidPage
	}
	if string(data[0:4]) != oggMagic {
		return nil, 0, ErrInvalidPage
	}
	if data[4] != 0 {
		return nil, 0, ErrInvalidPage
	}

	p := &Page{
		HeaderType:   data[5],
		GranulePos:   int64(binary.LittleEndian.Uint64(data[6:14])),
		SerialNumber: binary.LittleEndian.Uint32(data[14:18]),
		PageSequence: binary.LittleEndian.Uint32(data[18:22]),
	}
	storedCRC := binary.LittleEndian.Uint32(data[22:26])

	numSegments := int(data[26])
	headerSize := pageHeaderSize + numSegments
	if len(data) < headerSize {
		return nil, 0, ErrInvalidPage
	}
	p.Segments = append([]byte(nil), data[27:headerSize]...)

	payloadLen := 0
	for _, s := range p.Segments {
		payloadLen += int(s)
	}

	total := headerSize + payloadLen
	if len(data) < total {
		return nil, 0, ErrInvalidPage
	}
	p.Payload = append([]byte(nil), data[headerSize:total]...)

	check := append([]byte(nil), data[:total]...)
	check[22], check[23], check[24], check[25] = 0, 0, 0, 0
	if crc32Ogg(check) != storedCRC {
		return nil, 0, ErrBadCRC
	}

	return p, total, nil
}
