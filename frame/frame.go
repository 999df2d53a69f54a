// Package frame builds and parses the 4-byte header word shared by every
// codec in this module, plus the little-endian primitives the codecs use
// to read and write their bitstreams.
//
// The header is a little-endian composite: the low byte is the algorithm
// tag, the upper three bytes are the uncompressed size. This matches the
// GBA/DS BIOS decompression header produced by cprs_create_header in the
// reference C source.
package frame

// Algorithm tags recognised by the header. Other tag values are never
// produced by this module's encoders.
const (
	TagLZ      = 0x10
	TagRLE     = 0x30
	TagHuffman = 0x20 // never emitted; marks the "find best width" sentinel
	TagHuff4   = 0x24
	TagHuff8   = 0x28
)

// MaxSize is the largest uncompressed size the 3-byte size field can hold
// (2^24 - 1).
const MaxSize = 1<<24 - 1

// MakeHeader composes the 4-byte little-endian header word: tag in the low
// byte, size in the upper three bytes. size must be <= MaxSize; callers
// that violate this truncate silently, matching the C source's plain byte
// masking.
func MakeHeader(size int, tag byte) uint32 {
	return uint32(tag) | uint32(size&MaxSize)<<8
}

// ParseHeader reads a little-endian header word from the first 4 bytes of
// b and returns the tag and uncompressed size it encodes. The caller must
// ensure len(b) >= 4.
func ParseHeader(b []byte) (tag byte, size int) {
	word := ReadLE32(b)
	return byte(word & 0xFF), int(word >> 8)
}

// ReadLE32 reads a little-endian 32-bit value from the first 4 bytes of b.
func ReadLE32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// WriteLE16 writes v as a little-endian 16-bit value into the first 2
// bytes of dst.
func WriteLE16(dst []byte, v uint16) {
	dst[0] = byte(v)
	dst[1] = byte(v >> 8)
}

// WriteLE32 writes v as a little-endian 32-bit value into the first 4
// bytes of dst.
func WriteLE32(dst []byte, v uint32) {
	WriteLE16(dst, uint16(v))
	WriteLE16(dst[2:], uint16(v>>16))
}

// AppendHeader appends the 4-byte header for (size, tag) to dst and
// returns the extended slice.
func AppendHeader(dst []byte, size int, tag byte) []byte {
	var hdr [4]byte
	WriteLE32(hdr[:], MakeHeader(size, tag))
	return append(dst, hdr[:]...)
}

// PadTo4 appends zero bytes to dst until its length is a multiple of 4,
// and returns the extended slice. Every codec's output stream is padded
// this way; decoders tolerate but ignore the padding.
func PadTo4(dst []byte) []byte {
	for len(dst)%4 != 0 {
		dst = append(dst, 0)
	}
	return dst
}
