package chunkerr

import (
	"errors"
	"testing"
)

func TestOpusErrorUnwraps(t *testing.T) {
	inner := errors.New("boom")
	err := &OpusError{Op: "encode", Err: inner}

	if !errors.Is(err, inner) {
		t.Errorf("errors.Is(err, inner) = false, want true")
	}
	var target *OpusError
	if !errors.As(err, &target) {
		t.Errorf("errors.As should find *OpusError")
	}
}

func TestMuxErrorUnwraps(t *testing.T) {
	inner := errors.New("disk full")
	err := &MuxError{Err: inner}

	if !errors.Is(err, inner) {
		t.Errorf("errors.Is(err, inner) = false, want true")
	}
}

func TestBadParameterMessage(t *testing.T) {
	err := &BadParameter{Field: "channels", Reason: "must be 1 or 2"}
	want := "chunkerr: bad parameter channels: must be 1 or 2"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
