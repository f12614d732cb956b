package info

import (
	"errors"
	"testing"
)

func TestHeaderRoundTrip(t *testing.T) {
	lengths := []uint64{0, 1, 8, 255, 256, 65535, 1 << 24, 1<<32 + 7, 1 << 47, MaxPayloadLength}

	for _, length := range lengths {
		var dst [HeaderSize]byte
		if err := PutHeader(dst[:], length); err != nil {
			t.Fatalf("PutHeader(%d) failed: %v", length, err)
		}

		if dst[0] != 0x02 || dst[1] != 0x01 {
			t.Errorf("PutHeader(%d) marker bytes = %#x %#x, want 0x02 0x01", length, dst[0], dst[1])
		}

		h := DecodeHeader(dst[:])
		if h.Length != length {
			t.Errorf("DecodeHeader().Length = %d, want %d", h.Length, length)
		}
		if err := h.Validate(); err != nil {
			t.Errorf("Validate() = %v, want nil", err)
		}
	}
}

func TestPutHeaderLayout(t *testing.T) {
	var dst [HeaderSize]byte
	if err := PutHeader(dst[:], 0x0102030405); err != nil {
		t.Fatal(err)
	}

	expected := [HeaderSize]byte{0x02, 0x01, 0x00, 0x01, 0x02, 0x03, 0x04, 0x05}
	if dst != expected {
		t.Errorf("PutHeader() = % x, want % x", dst, expected)
	}
}

func TestPutHeaderTooLarge(t *testing.T) {
	var dst [HeaderSize]byte
	err := PutHeader(dst[:], MaxPayloadLength+1)

	var frameErr *FrameError
	if !errors.As(err, &frameErr) {
		t.Fatalf("PutHeader() error = %v, want *FrameError", err)
	}
}

func TestHeaderValidate(t *testing.T) {
	tests := []struct {
		name    string
		header  Header
		wantErr bool
	}{
		{name: "info", header: Header{Version: 2, Type: 1}},
		{name: "wrong version", header: Header{Version: 3, Type: 1}, wantErr: true},
		{name: "wrong type", header: Header{Version: 2, Type: 3}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.header.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrRequestFailed) {
				t.Errorf("Validate() error %v should match ErrRequestFailed", err)
			}
		})
	}
}
