package wavsrc

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
)

func encodeFloats(vals []float32) []byte {
	buf := make([]byte, len(vals)*4)
	for i, v := range vals {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], math.Float32bits(v))
	}
	return buf
}

func TestReaderFullFrame(t *testing.T) {
	data := encodeFloats([]float32{0.1, 0.2, 0.3, 0.4, 0.5, 0.6})
	r := New(bytes.NewReader(data), 2)

	buf := make([]float32, 6)
	n, err := r.Read(buf, 3)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if n != 3 {
		t.Fatalf("n = %d, want 3", n)
	}
	if buf[0] != 0.1 || buf[5] != 0.6 {
		t.Errorf("buf = %v, unexpected values", buf)
	}
}

func TestReaderShortReadSignalsEnd(t *testing.T) {
	data := encodeFloats([]float32{0.1, 0.2})
	r := New(bytes.NewReader(data), 2)

	buf := make([]float32, 10)
	n, err := r.Read(buf, 5)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if n != 1 {
		t.Fatalf("n = %d, want 1 (short read)", n)
	}
}

func TestReaderEmptySourceReturnsZero(t *testing.T) {
	r := New(bytes.NewReader(nil), 1)
	buf := make([]float32, 10)
	n, err := r.Read(buf, 10)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if n != 0 {
		t.Fatalf("n = %d, want 0", n)
	}
}
