// Package gbacomp implements byte-exact codecs compatible with a family of
// handheld-console BIOS decompression routines: a 12/4 sliding-window LZ77
// coder, an 8-bit run-length coder, and a canonical 4-bit/8-bit Huffman
// coder. Each compressed stream is framed with the shared 4-byte header from
// the [frame] package so a hardware decoder can route it by tag and
// preallocate output space.
//
// The three codecs live in internal/lzcodec, internal/rlecodec, and
// internal/huffcodec. Their Compress/Decompress (or Encode/Decode) entry
// points are silent by design, matching the BIOS routines they reproduce:
// malformed input never panics or returns an error. A tag mismatch or an
// input too short for its header yields a zero-length result; a truncated
// stream yields the bytes decoded before the data ran out. This package re-exposes them directly for callers who want that
// contract, plus an error-returning convenience layer for callers who'd
// rather test with errors.Is than sniff a zero-length slice.
package gbacomp

import (
	"errors"
	"fmt"

	"github.com/tincup/gbacomp/frame"
	"github.com/tincup/gbacomp/internal/huffcodec"
	"github.com/tincup/gbacomp/internal/lzcodec"
	"github.com/tincup/gbacomp/internal/rlecodec"
)

// Huffman symbol widths accepted by EncodeHuffman.
const (
	Width4 = 4
	Width8 = 8
)

// Errors returned by the convenience layer. The silent CompressX/DecompressX
// functions never return these; only the error-returning wrappers do.
var (
	// ErrEmptyInput is returned by a compress wrapper when src is empty.
	ErrEmptyInput = errors.New("gbacomp: empty input")
	// ErrBadTag is returned by a decompress wrapper when the header's
	// algorithm tag does not match the codec being invoked.
	ErrBadTag = errors.New("gbacomp: tag mismatch")
	// ErrShortHeader is returned when src is too short to hold a header.
	ErrShortHeader = errors.New("gbacomp: input shorter than header")
	// ErrBadWidth is returned by EncodeHuffmanErr for a width other than 4
	// or 8.
	ErrBadWidth = errors.New("gbacomp: huffman width must be 4 or 8")
)

// CompressLZ compresses src with the LZ77 ring-window coder and returns a
// framed stream (tag 0x10). Never returns an error; every input, including
// an empty one, yields a framed stream.
func CompressLZ(src []byte) []byte { return lzcodec.Compress(src) }

// DecompressLZ decodes a framed LZ stream produced by CompressLZ. A tag
// mismatch or truncated header yields a zero-length result.
func DecompressLZ(src []byte) []byte { return lzcodec.Decompress(src) }

// CompressRLE compresses src with the run/literal-stretch coder and returns
// a framed stream (tag 0x30).
func CompressRLE(src []byte) []byte { return rlecodec.Compress(src) }

// DecompressRLE decodes a framed RLE stream produced by CompressRLE.
func DecompressRLE(src []byte) []byte { return rlecodec.Decompress(src) }

// EncodeHuffman compresses src as a canonical Huffman stream at the given
// symbol width (Width4 or Width8) and returns a framed stream (tag 0x24 or
// 0x28). An invalid width is treated as Width8, matching the silent
// "never fatal" contract; callers that need validation should use
// [EncodeHuffmanErr].
func EncodeHuffman(src []byte, width int) []byte { return huffcodec.Encode(src, width) }

// DecodeHuffman decodes a framed Huffman stream produced by EncodeHuffman
// using the direct tree-walk decoder.
func DecodeHuffman(src []byte) []byte { return huffcodec.Decode(src) }

// DecodeHuffmanEmulator decodes a framed Huffman stream using the
// alternate, emulator-style decoder. It is grounded on a second independent
// reference decoder and is expected to agree byte-for-byte with
// [DecodeHuffman] on any stream either one produced; it is exposed so
// callers and tests can exercise the cross-decoder parity property
// directly instead of only internally.
func DecodeHuffmanEmulator(src []byte) []byte { return huffcodec.DecodeEmulator(src) }

// CompressLZErr is the error-returning counterpart to [CompressLZ].
func CompressLZErr(src []byte) ([]byte, error) {
	if len(src) == 0 {
		return nil, fmt.Errorf("gbacomp: compressing LZ stream: %w", ErrEmptyInput)
	}
	return CompressLZ(src), nil
}

// DecompressLZErr is the error-returning counterpart to [DecompressLZ].
func DecompressLZErr(src []byte) ([]byte, error) {
	if err := checkHeader(src, frame.TagLZ); err != nil {
		return nil, fmt.Errorf("gbacomp: decompressing LZ stream: %w", err)
	}
	return DecompressLZ(src), nil
}

// CompressRLEErr is the error-returning counterpart to [CompressRLE].
func CompressRLEErr(src []byte) ([]byte, error) {
	if len(src) == 0 {
		return nil, fmt.Errorf("gbacomp: compressing RLE stream: %w", ErrEmptyInput)
	}
	return CompressRLE(src), nil
}

// DecompressRLEErr is the error-returning counterpart to [DecompressRLE].
func DecompressRLEErr(src []byte) ([]byte, error) {
	if err := checkHeader(src, frame.TagRLE); err != nil {
		return nil, fmt.Errorf("gbacomp: decompressing RLE stream: %w", err)
	}
	return DecompressRLE(src), nil
}

// EncodeHuffmanErr is the error-returning counterpart to [EncodeHuffman]. It
// validates width before delegating, unlike the silent entry point.
func EncodeHuffmanErr(src []byte, width int) ([]byte, error) {
	if width != Width4 && width != Width8 {
		return nil, fmt.Errorf("gbacomp: encoding huffman stream: %w", ErrBadWidth)
	}
	if len(src) == 0 {
		return nil, fmt.Errorf("gbacomp: encoding huffman stream: %w", ErrEmptyInput)
	}
	return EncodeHuffman(src, width), nil
}

// DecodeHuffmanErr is the error-returning counterpart to [DecodeHuffman].
func DecodeHuffmanErr(src []byte) ([]byte, error) {
	if err := checkHuffmanHeader(src); err != nil {
		return nil, fmt.Errorf("gbacomp: decoding huffman stream: %w", err)
	}
	return DecodeHuffman(src), nil
}

// checkHeader validates that src is long enough to hold a frame header and
// that its tag matches want.
func checkHeader(src []byte, want byte) error {
	if len(src) < 4 {
		return ErrShortHeader
	}
	if tag, _ := frame.ParseHeader(src); tag != want {
		return ErrBadTag
	}
	return nil
}

// checkHuffmanHeader validates src against either Huffman tag, since
// EncodeHuffman's width selects between them.
func checkHuffmanHeader(src []byte) error {
	if len(src) < 4 {
		return ErrShortHeader
	}
	tag, _ := frame.ParseHeader(src)
	if tag != frame.TagHuff4 && tag != frame.TagHuff8 {
		return ErrBadTag
	}
	return nil
}
