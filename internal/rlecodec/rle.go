// Package rlecodec implements the 8-bit run-length coder (tag 0x30) used by
// the handheld-console BIOS decompression routines: a byte stream split
// into run stints (3-130 repeats of one byte) and literal stints (1-128
// verbatim bytes), each prefixed by a single control byte.
package rlecodec

import "github.com/tincup/gbacomp/frame"

const (
	minRun     = 3
	maxRun     = 130
	maxLiteral = 128
)

// Compress encodes src with the run/literal-stretch state machine and
// returns a framed stream (tag 0x30).
//
// The walk tracks two counters: rle, the length of the run currently
// accumulating around prev, and non, the length of the pending literal
// stretch plus one (the "+1" is the anchor byte that might yet turn out to
// start a run). The final loop iteration is a synthetic flush pass that
// forces whatever is pending to close out.
func Compress(src []byte) []byte {
	n := len(src)
	out := frame.AppendHeader(make([]byte, 0, 4+n+n/128+8), n, frame.TagRLE)
	if n == 0 {
		return frame.PadTo4(out)
	}

	prev := src[0]
	rle := 1
	non := 1

	for i := 1; i <= n; i++ {
		flush := i == n
		var realCurr byte
		if !flush {
			realCurr = src[i]
		}
		curr := realCurr
		if rle == maxRun || flush {
			curr = ^prev
		}

		switch {
		case rle < minRun && (non+rle > maxLiteral || flush):
			length := non + rle - 1
			start := i - length
			out = emitLiteral(out, src[start:i])
			non, rle = 1, 1

		case curr == prev:
			rle++
			if rle == minRun && non > 1 {
				length := non - 1
				start := i - non - 1
				out = emitLiteral(out, src[start:start+length])
				non = 1
			}

		default:
			if rle >= minRun {
				out = emitRun(out, rle, prev)
				non, rle = 0, 1
			}
			non += rle
			rle = 1
		}

		prev = realCurr
	}

	return frame.PadTo4(out)
}

func emitRun(out []byte, length int, value byte) []byte {
	return append(out, 0x80|byte(length-minRun), value)
}

func emitLiteral(out []byte, data []byte) []byte {
	out = append(out, byte(len(data)-1))
	return append(out, data...)
}

// Decompress decodes a framed RLE stream produced by Compress. A tag
// mismatch or a buffer too short to hold a header yields an empty result.
// A stint that would overshoot the recorded size is truncated, matching
// the hardware decoder's "stop at size bytes" contract.
func Decompress(src []byte) []byte {
	if len(src) < 4 {
		return nil
	}
	tag, size := frame.ParseHeader(src)
	if tag != frame.TagRLE {
		return nil
	}

	out := make([]byte, 0, size)
	pos := 4
	for len(out) < size && pos < len(src) {
		c := src[pos]
		pos++
		if c&0x80 != 0 {
			if pos >= len(src) {
				return out
			}
			length := int(c&0x7F) + minRun
			v := src[pos]
			pos++
			for i := 0; i < length && len(out) < size; i++ {
				out = append(out, v)
			}
		} else {
			length := int(c) + 1
			for i := 0; i < length && len(out) < size; i++ {
				if pos >= len(src) {
					return out
				}
				out = append(out, src[pos])
				pos++
			}
		}
	}
	return out
}
