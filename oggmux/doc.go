// Package oggmux writes a single logical Ogg bitstream carrying Opus audio,
// per RFC 3533 (Ogg) and RFC 7845 (Ogg encapsulation of Opus).
//
// A Muxer is constructed with the stream's identification metadata,
// immediately writes the ID header (OpusHead) and comment header (OpusTags)
// pages, and then accepts Opus packets one at a time via WriteFrame. Packets
// are packed into pages using the standard 255-byte lacing rule; a page is
// flushed either because its segment table has filled up or because the
// caller marks a packet as the last one, at which point the flushed page
// also carries the end-of-stream flag.
//
// This package only supports mapping family 0 (mono/stereo, implicit
// channel order) since that is the only family the encoding pipeline this
// package serves ever produces.
//
// # Page layout
//
//	Bytes 0-3:   "OggS" capture pattern
//	Byte 4:      stream structure version (always 0)
//	Byte 5:      header type flags (continuation, BOS, EOS)
//	Bytes 6-13:  granule position
//	Bytes 14-17: bitstream serial number
//	Bytes 18-21: page sequence number
//	Bytes 22-25: CRC-32 checksum
//	Byte 26:     segment count
//	Bytes 27+:   segment table, then payload
//
// # CRC
//
// Ogg uses CRC-32 with polynomial 0x04C11DB7, no reflection and an initial
// value of zero; this is not the polynomial hash/crc32 implements, so the
// table and update routine are reimplemented here.
package oggmux
