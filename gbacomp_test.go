package gbacomp

import (
	"bytes"
	"errors"
	"testing"
)

func TestRoundTripAllCodecs(t *testing.T) {
	inputs := [][]byte{
		nil,
		[]byte("ABCDEFGH"),
		bytes.Repeat([]byte{0x41}, 20),
		bytes.Repeat([]byte("AB"), 4),
		bytes.Repeat([]byte{0x41}, 16),
		[]byte("the quick brown fox jumps over the lazy dog, repeatedly, repeatedly"),
	}

	for _, in := range inputs {
		if got := DecompressLZ(CompressLZ(in)); !bytes.Equal(got, in) && len(in) > 0 {
			t.Errorf("LZ round trip: got %q, want %q", got, in)
		}
		if got := DecompressRLE(CompressRLE(in)); !bytes.Equal(got, in) && len(in) > 0 {
			t.Errorf("RLE round trip: got %q, want %q", got, in)
		}
		for _, w := range []int{Width4, Width8} {
			enc := EncodeHuffman(in, w)
			if got := DecodeHuffman(enc); !bytes.Equal(got, in) && len(in) > 0 {
				t.Errorf("Huffman(width=%d) round trip: got %q, want %q", w, got, in)
			}
			if got := DecodeHuffmanEmulator(enc); !bytes.Equal(got, in) && len(in) > 0 {
				t.Errorf("Huffman(width=%d) emulator round trip: got %q, want %q", w, got, in)
			}
		}
	}
}

func TestHuffmanDecoderParity(t *testing.T) {
	src := []byte("mississippi river runs through mississippi")
	for _, w := range []int{Width4, Width8} {
		enc := EncodeHuffman(src, w)
		direct := DecodeHuffman(enc)
		emu := DecodeHuffmanEmulator(enc)
		if !bytes.Equal(direct, emu) {
			t.Fatalf("width=%d: direct decoder and emulator disagree:\n direct=% x\n emu   =% x", w, direct, emu)
		}
	}
}

func TestCompressErrWrappersOnEmptyInput(t *testing.T) {
	if _, err := CompressLZErr(nil); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("CompressLZErr(nil) error = %v, want ErrEmptyInput", err)
	}
	if _, err := CompressRLEErr(nil); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("CompressRLEErr(nil) error = %v, want ErrEmptyInput", err)
	}
	if _, err := EncodeHuffmanErr(nil, Width8); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("EncodeHuffmanErr(nil) error = %v, want ErrEmptyInput", err)
	}
}

func TestEncodeHuffmanErrBadWidth(t *testing.T) {
	if _, err := EncodeHuffmanErr([]byte("x"), 5); !errors.Is(err, ErrBadWidth) {
		t.Errorf("EncodeHuffmanErr width=5 error = %v, want ErrBadWidth", err)
	}
}

func TestDecompressErrWrappersRejectWrongTag(t *testing.T) {
	src := []byte("hello, world")

	rle := CompressRLE(src)
	if _, err := DecompressLZErr(rle); !errors.Is(err, ErrBadTag) {
		t.Errorf("DecompressLZErr(rle stream) error = %v, want ErrBadTag", err)
	}

	lz := CompressLZ(src)
	if _, err := DecompressRLEErr(lz); !errors.Is(err, ErrBadTag) {
		t.Errorf("DecompressRLEErr(lz stream) error = %v, want ErrBadTag", err)
	}

	if _, err := DecodeHuffmanErr(lz); !errors.Is(err, ErrBadTag) {
		t.Errorf("DecodeHuffmanErr(lz stream) error = %v, want ErrBadTag", err)
	}
}

func TestDecompressErrWrappersRejectShortInput(t *testing.T) {
	short := []byte{0x10}
	if _, err := DecompressLZErr(short); !errors.Is(err, ErrShortHeader) {
		t.Errorf("DecompressLZErr(short) error = %v, want ErrShortHeader", err)
	}
	if _, err := DecompressRLEErr(short); !errors.Is(err, ErrShortHeader) {
		t.Errorf("DecompressRLEErr(short) error = %v, want ErrShortHeader", err)
	}
	if _, err := DecodeHuffmanErr(short); !errors.Is(err, ErrShortHeader) {
		t.Errorf("DecodeHuffmanErr(short) error = %v, want ErrShortHeader", err)
	}
}

func TestSuccessfulErrWrappersReturnSameBytesAsSilentLayer(t *testing.T) {
	src := []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZ")

	wantLZ := CompressLZ(src)
	gotLZ, err := CompressLZErr(src)
	if err != nil {
		t.Fatalf("CompressLZErr: %v", err)
	}
	if !bytes.Equal(gotLZ, wantLZ) {
		t.Errorf("CompressLZErr bytes differ from CompressLZ")
	}

	backLZ, err := DecompressLZErr(wantLZ)
	if err != nil {
		t.Fatalf("DecompressLZErr: %v", err)
	}
	if !bytes.Equal(backLZ, src) {
		t.Errorf("DecompressLZErr = %q, want %q", backLZ, src)
	}

	wantRLE := CompressRLE(src)
	gotRLE, err := CompressRLEErr(src)
	if err != nil {
		t.Fatalf("CompressRLEErr: %v", err)
	}
	if !bytes.Equal(gotRLE, wantRLE) {
		t.Errorf("CompressRLEErr bytes differ from CompressRLE")
	}

	enc, err := EncodeHuffmanErr(src, Width8)
	if err != nil {
		t.Fatalf("EncodeHuffmanErr: %v", err)
	}
	back, err := DecodeHuffmanErr(enc)
	if err != nil {
		t.Fatalf("DecodeHuffmanErr: %v", err)
	}
	if !bytes.Equal(back, src) {
		t.Errorf("DecodeHuffmanErr = %q, want %q", back, src)
	}
}
