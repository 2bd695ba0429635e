// ABOUTME: Tests for PCM encoders
// ABOUTME: Tests encoder selection and byte layout of each sample encoding
package encode

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Resonate-Protocol/resonate-synth/pkg/audio"
)

func TestNewEncoder(t *testing.T) {
	tests := []struct {
		enc     audio.Encoding
		size    int
		wantErr bool
	}{
		{audio.EncodingFloat32LE, 4, false},
		{audio.EncodingSigned16LE, 2, false},
		{audio.EncodingUnsigned8, 1, false},
		{audio.Encoding(7), 0, true},
	}

	for _, tt := range tests {
		encoder, err := New(tt.enc)
		if (err != nil) != tt.wantErr {
			t.Errorf("New(%v) error = %v, wantErr %v", tt.enc, err, tt.wantErr)
			continue
		}
		if err == nil && encoder.BytesPerSample() != tt.size {
			t.Errorf("New(%v) bytes per sample = %d, expected %d", tt.enc, encoder.BytesPerSample(), tt.size)
		}
	}
}

func TestFloat32LE(t *testing.T) {
	samples := []float32{0.5, -0.25}
	dst := make([]byte, 8)

	n := Float32LE{}.Encode(dst, samples)
	if n != 8 {
		t.Fatalf("expected 8 bytes, got %d", n)
	}

	for i, expected := range samples {
		got := math.Float32frombits(binary.LittleEndian.Uint32(dst[i*4:]))
		if got != expected {
			t.Errorf("sample %d: expected %v, got %v", i, expected, got)
		}
	}
}

func TestSigned16LE(t *testing.T) {
	samples := []float32{1, -1, 0, 3}
	dst := make([]byte, 8)

	n := Signed16LE{}.Encode(dst, samples)
	if n != 8 {
		t.Fatalf("expected 8 bytes, got %d", n)
	}

	expected := []int16{32767, -32767, 0, 32767}
	for i, want := range expected {
		got := int16(binary.LittleEndian.Uint16(dst[i*2:]))
		if got != want {
			t.Errorf("sample %d: expected %d, got %d", i, want, got)
		}
	}
}

func TestUnsigned8(t *testing.T) {
	dst := make([]byte, 3)

	n := Unsigned8{}.Encode(dst, []float32{0, 1, -1})
	if n != 3 {
		t.Fatalf("expected 3 bytes, got %d", n)
	}

	if dst[0] != 128 || dst[1] != 255 || dst[2] != 1 {
		t.Errorf("unexpected u8 bytes: %v", dst)
	}
}
