package lzcodec

import (
	"bytes"
	"testing"
)

func TestTrivialASCII(t *testing.T) {
	src := []byte("ABCDEFGH")
	got := Compress(src)
	want := []byte{
		0x10, 0x08, 0x00, 0x00, // header: tag=0x10, size=8
		0x00,                   // flag byte: all literals
		'A', 'B', 'C', 'D', 'E', 'F', 'G', 'H',
		0x00, 0x00, 0x00, // pad 13 -> 16
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("Compress(%q) = % x, want % x", src, got, want)
	}
	if back := Decompress(got); !bytes.Equal(back, src) {
		t.Fatalf("round trip = %q, want %q", back, src)
	}
}

func TestRunLengthDistanceInvariant(t *testing.T) {
	src := bytes.Repeat([]byte{0x41}, 20)
	out := Compress(src)

	pos := 4
	for pos < len(out) {
		flag := out[pos]
		pos++
		for bit := 7; bit >= 0 && pos < len(out); bit-- {
			if flag&(1<<uint(bit)) == 0 {
				pos++
				continue
			}
			if pos+1 >= len(out) {
				break
			}
			b0, b1 := out[pos], out[pos+1]
			pos += 2
			dist := (int(b0&0x0F)<<8 | int(b1)) + 1
			if dist < 2 {
				t.Fatalf("emitted match with forbidden distance %d", dist)
			}
		}
	}

	if back := Decompress(out); !bytes.Equal(back, src) {
		t.Fatalf("round trip of repeated-byte run = % x, want % x", back, src)
	}
}

func TestRoundTrip(t *testing.T) {
	tests := [][]byte{
		nil,
		{},
		[]byte("a"),
		[]byte("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"),
		[]byte("the quick brown fox jumps over the lazy dog, the quick brown fox"),
		bytes.Repeat([]byte{0, 1, 2, 3}, 2000),
	}
	for _, src := range tests {
		out := Compress(src)
		back := Decompress(out)
		if !bytes.Equal(back, src) && !(len(back) == 0 && len(src) == 0) {
			t.Errorf("round trip of %d bytes failed: got %d bytes back", len(src), len(back))
		}
	}
}

func TestDecompressBadTag(t *testing.T) {
	src := []byte{0x30, 0x00, 0x00, 0x00}
	if got := Decompress(src); got != nil {
		t.Errorf("Decompress with wrong tag = % x, want nil", got)
	}
}

func TestDecompressTooShort(t *testing.T) {
	if got := Decompress([]byte{0x10, 0x00}); got != nil {
		t.Errorf("Decompress with truncated header = % x, want nil", got)
	}
}

func FuzzRoundTrip(f *testing.F) {
	f.Add([]byte("ABCDEFGH"))
	f.Add(bytes.Repeat([]byte{0x41}, 40))
	f.Add([]byte{})
	f.Fuzz(func(t *testing.T, src []byte) {
		out := Compress(src)
		back := Decompress(out)
		if !bytes.Equal(back, src) {
			t.Fatalf("round trip mismatch for % x", src)
		}
	})
}
