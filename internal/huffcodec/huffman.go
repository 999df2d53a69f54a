// Package huffcodec implements the canonical 4-bit/8-bit Huffman coder (tags
// 0x24/0x28) used by the handheld-console BIOS decompression routines.
//
// The wire format after the shared 4-byte frame header is a one-byte leaf
// count minus one, a packed binary tree table, and a bitstream of 32-bit little-endian
// words read MSB first. Each tree-table entry is either a raw alphabet
// symbol (if the parent's flag bit marks it a leaf) or a 6-bit offset to the
// entry's own pair of children plus two flag bits describing whether those
// children are themselves leaves. A decoder walks the table by accumulating
// this offset into a running position, starting over from the root's own
// control byte (and a zeroed position) after every committed symbol.
package huffcodec

import (
	"sort"

	"github.com/tincup/gbacomp/frame"
)

// node is an arena-indexed Huffman tree node. Parent/child edges are plain
// integer indices into the owning slice rather than pointers, so the
// otherwise-cyclic parent/child references stay acyclic data.
type node struct {
	weight int
	leafs  int
	symbol byte
	leaf   bool
	dad    int32
	lson   int32
	rson   int32
}

// buildTree constructs the canonical Huffman tree for freq, injecting dummy
// leaves when fewer than two distinct symbols occur. It returns the arena,
// the index of the root node, and the number of leaves, dummy leaves
// included.
func buildTree(freq []int) (nodes []node, rootIdx int32, numLeafs int) {
	type cand struct {
		sym  byte
		freq int
	}
	var leaves []cand
	for s, f := range freq {
		if f > 0 {
			leaves = append(leaves, cand{byte(s), f})
		}
	}
	if len(leaves) == 1 {
		leaves[0].freq = 1
	}
	used := make([]bool, len(freq))
	for _, l := range leaves {
		used[l.sym] = true
	}
	for len(leaves) < 2 {
		for s := range freq {
			if !used[s] {
				leaves = append(leaves, cand{byte(s), 2})
				used[s] = true
				break
			}
		}
	}
	sort.Slice(leaves, func(i, j int) bool { return leaves[i].sym < leaves[j].sym })

	numLeafs = len(leaves)
	numNodes := 2*numLeafs - 1
	nodes = make([]node, numNodes)
	for i, l := range leaves {
		nodes[i] = node{weight: l.freq, leafs: 1, symbol: l.sym, leaf: true, dad: -1, lson: -1, rson: -1}
	}

	for next := numLeafs; next < numNodes; next++ {
		lidx, ridx := int32(-1), int32(-1)
		lweight, rweight := 0, 0
		for i := 0; i < next; i++ {
			if nodes[i].dad != -1 {
				continue
			}
			w := nodes[i].weight
			switch {
			case lweight == 0 || w < lweight:
				rweight, ridx = lweight, lidx
				lweight, lidx = w, int32(i)
			case rweight == 0 || w < rweight:
				rweight, ridx = w, int32(i)
			}
		}
		nodes[next] = node{
			weight: lweight + rweight,
			leafs:  nodes[lidx].leafs + nodes[ridx].leafs,
			dad:    -1,
			lson:   lidx,
			rson:   ridx,
		}
		nodes[lidx].dad = int32(next)
		nodes[ridx].dad = int32(next)
	}

	return nodes, int32(numNodes - 1), numLeafs
}

// maxOffset is the largest value the tree table's 6-bit offset field can
// hold (HUF_NEXT in the reference source).
const maxOffset = 0x3F

// maxSimpleLeafs bounds the subtree size a single breadth-first pass can
// place while keeping every offset within maxOffset by construction.
const maxSimpleLeafs = maxOffset + 1

// leafSentinel marks a codemask slot as holding a raw leaf symbol rather
// than a leaf-flag mask for a control byte, mirroring the reference
// source's codemask 0xFF sentinel. A real control byte's mask is at most
// lFlag|rFlag (0xC0), so the sentinel can never collide with one.
const leafSentinel = 0xFF

const (
	lFlag = 0x80 // left child is a leaf
	rFlag = 0x40 // right child is a leaf
)

// packer lays out the canonical tree table in two passes: createCodeBranch
// places every node using a fast but sometimes-overflowing scheme (a subtree
// with too many leaves can need an offset beyond maxOffset), then
// updateCodeTree slides any overflowing pair leftward until every offset
// fits in 6 bits. codetree holds the raw, unflagged offset (or a leaf's raw
// symbol byte) during both passes; codemask holds the two leaf-flag bits for
// a control slot, or leafSentinel for a slot holding a raw symbol. The two
// are only merged into the final transmitted byte once compaction is done.
type packer struct {
	nodes    []node
	codetree []byte
	codemask []byte
}

// createCodeBranch places the subtree rooted at idx, writing its own control
// byte (or leaf symbol) at slot p and reserving its children starting at q.
// Subtrees no larger than maxSimpleLeafs leaves are placed breadth-first in
// one contiguous run, which keeps every offset small by construction. Larger
// subtrees recurse into whichever child has fewer leaves first, placing it
// in the immediately adjacent pair; the other child's children are reserved
// past that entire span, which is what can push its own offset past
// maxOffset and require updateCodeTree to fix up afterward.
func (pk *packer) createCodeBranch(idx int32, p, q int) int {
	n := pk.nodes[idx]
	if n.leafs <= maxSimpleLeafs {
		pk.createBreadthFirst(idx, p, q)
		return n.leafs
	}

	var mask byte
	if pk.nodes[n.lson].leafs == 1 {
		mask |= lFlag
	}
	if pk.nodes[n.rson].leafs == 1 {
		mask |= rFlag
	}
	pk.codetree[p] = 0
	pk.codemask[p] = mask

	var lLeafs, rLeafs int
	if pk.nodes[n.lson].leafs <= pk.nodes[n.rson].leafs {
		lLeafs = pk.createCodeBranch(n.lson, q, q+2)
		rLeafs = pk.createCodeBranch(n.rson, q+1, q+lLeafs<<1)
		pk.codetree[q+1] = byte(lLeafs - 1)
	} else {
		rLeafs = pk.createCodeBranch(n.rson, q+1, q+2)
		lLeafs = pk.createCodeBranch(n.lson, q, q+rLeafs<<1)
		pk.codetree[q] = byte(rLeafs - 1)
	}
	return n.leafs
}

// createBreadthFirst lays out a subtree of at most maxSimpleLeafs leaves one
// level at a time, appending each level's children to a growing queue so
// every node's own offset is just its distance (in pairs) to the back of the
// queue at the moment it is dequeued.
func (pk *packer) createBreadthFirst(idx int32, p, q int) {
	queue := make([]int32, 0, pk.nodes[idx].leafs)
	queue = append(queue, idx)
	s, r := 0, 1
	for s < r {
		cur := queue[s]
		s++
		n := pk.nodes[cur]

		slot := q
		if s == 1 {
			slot = p
		}

		if n.leafs == 1 {
			pk.codetree[slot] = n.symbol
			pk.codemask[slot] = leafSentinel
		} else {
			var mask byte
			if pk.nodes[n.lson].leafs == 1 {
				mask |= lFlag
			}
			if pk.nodes[n.rson].leafs == 1 {
				mask |= rFlag
			}
			pk.codetree[slot] = byte((r - s) >> 1)
			pk.codemask[slot] = mask
			queue = append(queue, n.lson, n.rson)
			r += 2
		}

		if slot == q {
			q++
		}
	}
}

// updateCodeTree is the compacting pass: any control slot whose computed
// offset overflows maxOffset has its referenced child pair slid left (by
// inc pairs) until it fits, with every other slot's offset that pointed
// into the shifted range adjusted to keep pointing at the same node.
func (pk *packer) updateCodeTree() {
	max := (int(pk.codetree[0]) + 1) << 1
	for i := 1; i < max; i++ {
		if pk.codemask[i] == leafSentinel || int(pk.codetree[i]) <= maxOffset {
			continue
		}

		var inc int
		switch {
		case i&1 == 1 && pk.codetree[i-1] == maxOffset:
			i--
			inc = 1
		case i&1 == 0 && pk.codetree[i+1] == maxOffset:
			i++
			inc = 1
		default:
			inc = int(pk.codetree[i]) - maxOffset
		}

		n1 := (i >> 1) + 1 + int(pk.codetree[i])
		n0 := n1 - inc
		l1 := n1 << 1
		l0 := n0 << 1

		tmp0, tmp1 := pk.codetree[l1], pk.codetree[l1+1]
		tmpm0, tmpm1 := pk.codemask[l1], pk.codemask[l1+1]
		for j := l1; j > l0; j -= 2 {
			pk.codetree[j], pk.codetree[j+1] = pk.codetree[j-2], pk.codetree[j-1]
			pk.codemask[j], pk.codemask[j+1] = pk.codemask[j-2], pk.codemask[j-1]
		}
		pk.codetree[l0], pk.codetree[l0+1] = tmp0, tmp1
		pk.codemask[l0], pk.codemask[l0+1] = tmpm0, tmpm1

		pk.codetree[i] -= byte(inc)

		for j := i + 1; j < l0; j++ {
			if pk.codemask[j] != leafSentinel {
				k := (j >> 1) + 1 + int(pk.codetree[j])
				if k >= n0 && k < n1 {
					pk.codetree[j]++
				}
			}
		}

		if pk.codemask[l0] != leafSentinel {
			pk.codetree[l0] += byte(inc)
		}
		if pk.codemask[l0+1] != leafSentinel {
			pk.codetree[l0+1] += byte(inc)
		}

		for j := l0 + 2; j < l1+2; j++ {
			if pk.codemask[j] != leafSentinel {
				k := (j >> 1) + 1 + int(pk.codetree[j])
				if k > n1 {
					pk.codetree[j]--
				}
			}
		}

		i = (i | 1) - 2
	}
}

// packTree lays out the canonical tree table: one leading byte recording
// numLeafs-1, followed by 2*numLeafs-1 control/symbol bytes addressed as
// described in the package comment. Placement proceeds in two passes
// (createCodeBranch, then the updateCodeTree compaction), and only the final
// pass OR-merges each slot's leaf-flag mask into its transmitted byte -
// exactly mirroring HUF_CreateCodeTree's own two-pass structure.
func packTree(nodes []node, rootIdx int32, numLeafs int) []byte {
	// A couple of pairs of scratch room past the logical table length
	// absorbs the compaction pass reading one pair beyond the last node it
	// moves; the reference implementation over-allocates for the same
	// reason. The scratch bytes are never part of the final table.
	pk := &packer{
		nodes:    nodes,
		codetree: make([]byte, 2*numLeafs+2),
		codemask: make([]byte, 2*numLeafs+2),
	}
	pk.codetree[0] = byte(numLeafs - 1)
	pk.codemask[0] = leafSentinel

	pk.createCodeBranch(rootIdx, 1, 2)
	pk.updateCodeTree()

	for i := 1; i < 2*numLeafs; i++ {
		if pk.codemask[i] != leafSentinel {
			pk.codetree[i] |= pk.codemask[i]
		}
	}
	return pk.codetree[:2*numLeafs]
}

// codeFor returns the root-to-leaf bit sequence (true = right child) for
// the leaf at idx, walked by following dad links up from the leaf and then
// reversing.
func codeFor(nodes []node, idx int32) []bool {
	var bits []bool
	for nodes[idx].dad != -1 {
		dad := nodes[idx].dad
		bits = append(bits, nodes[dad].rson == idx)
		idx = dad
	}
	for i, j := 0, len(bits)-1; i < j; i, j = i+1, j-1 {
		bits[i], bits[j] = bits[j], bits[i]
	}
	return bits
}

func forEachSymbol(src []byte, width int, f func(byte)) {
	if width == 8 {
		for _, b := range src {
			f(b)
		}
		return
	}
	for _, b := range src {
		f(b & 0x0F)
		f(b >> 4)
	}
}

type bitWriter struct {
	word uint32
	mask uint32
}

func newBitWriter() *bitWriter { return &bitWriter{mask: 0x80000000} }

func (bw *bitWriter) writeBit(out *[]byte, bit bool) {
	if bit {
		bw.word |= bw.mask
	}
	bw.mask >>= 1
	if bw.mask == 0 {
		var buf [4]byte
		frame.WriteLE32(buf[:], bw.word)
		*out = append(*out, buf[:]...)
		bw.word = 0
		bw.mask = 0x80000000
	}
}

func (bw *bitWriter) flush(out *[]byte) {
	if bw.mask != 0x80000000 {
		var buf [4]byte
		frame.WriteLE32(buf[:], bw.word)
		*out = append(*out, buf[:]...)
	}
}

// Encode compresses src as a canonical Huffman stream at the given symbol
// width (4 or 8) and returns a framed stream (tag 0x24 or 0x28). Any width
// other than 4 is treated as 8; the root package's EncodeHuffmanErr rejects
// such widths instead.
func Encode(src []byte, width int) []byte {
	if width != 4 {
		width = 8
	}
	n := len(src)
	tag := byte(frame.TagHuff4)
	if width == 8 {
		tag = frame.TagHuff8
	}
	numSymbols := 1 << uint(width)

	freq := make([]int, numSymbols)
	forEachSymbol(src, width, func(s byte) { freq[s]++ })

	nodes, rootIdx, numLeafs := buildTree(freq)
	codetree := packTree(nodes, rootIdx, numLeafs)

	symToLeaf := make([]int32, numSymbols)
	for i := range symToLeaf {
		symToLeaf[i] = -1
	}
	for i := int32(0); i < int32(numLeafs); i++ {
		symToLeaf[nodes[i].symbol] = i
	}
	codes := make([][]bool, numSymbols)
	for s := 0; s < numSymbols; s++ {
		if symToLeaf[s] != -1 {
			codes[s] = codeFor(nodes, symToLeaf[s])
		}
	}

	out := frame.AppendHeader(make([]byte, 0, 5+len(codetree)+n), n, tag)
	out = append(out, codetree...)

	bw := newBitWriter()
	forEachSymbol(src, width, func(s byte) {
		for _, bit := range codes[s] {
			bw.writeBit(&out, bit)
		}
	})
	bw.flush(&out)

	return frame.PadTo4(out)
}

// bitReader walks a stream of 32-bit little-endian words MSB first, the
// mirror image of bitWriter.
type bitReader struct {
	stream []byte
	pos    int
	word   uint32
	mask   uint32
}

func newBitReader(stream []byte) *bitReader {
	br := &bitReader{stream: stream}
	br.refill()
	return br
}

func (br *bitReader) refill() bool {
	if br.pos+4 > len(br.stream) {
		return false
	}
	br.word = frame.ReadLE32(br.stream[br.pos:])
	br.pos += 4
	br.mask = 0x80000000
	return true
}

// next returns the next bit and whether one was available.
func (br *bitReader) next() (bit bool, ok bool) {
	if br.mask == 0 {
		if !br.refill() {
			return false, false
		}
	}
	bit = br.word&br.mask != 0
	br.mask >>= 1
	return bit, true
}

// Decode walks the tree table directly, one bit at a time, committing a
// symbol to the output whenever the parent's flag bit marks the node just
// read as a leaf.
func Decode(src []byte) []byte {
	if len(src) < 5 {
		return nil
	}
	tag, size := frame.ParseHeader(src)
	var width int
	switch tag {
	case frame.TagHuff4:
		width = 4
	case frame.TagHuff8:
		width = 8
	default:
		return nil
	}
	numLeafs := int(src[4]) + 1
	tableLen := 2 * numLeafs
	if len(src) < 4+tableLen {
		return nil
	}
	tree := src[4 : 4+tableLen]
	br := newBitReader(src[4+tableLen:])

	out := make([]byte, 0, size)
	pos := 0
	cur := tree[1]
	var acc byte
	haveBits := 0

	for len(out) < size {
		pos += (int(cur&0x3F) + 1) * 2
		if pos+1 >= len(tree) {
			break
		}

		bit, ok := br.next()
		if !ok {
			break
		}

		var leaf bool
		var next byte
		if bit {
			leaf = cur&0x40 != 0
			next = tree[pos+1]
		} else {
			leaf = cur&0x80 != 0
			next = tree[pos]
		}
		cur = next

		if leaf {
			acc |= cur << uint(haveBits)
			haveBits += width
			if haveBits == 8 {
				out = append(out, acc)
				acc = 0
				haveBits = 0
			}
			pos = 0
			cur = tree[1]
		}
	}
	return out
}

// DecodeEmulator decodes the same tree-table format as Decode but assembles
// output four bytes at a time into little-endian words via explicit
// byteCount/byteShift/halfLen bookkeeping, the structure emulator-style
// decoders use instead of appending one byte at a time. It must agree with
// Decode byte for byte on any stream either of them produced.
func DecodeEmulator(src []byte) []byte {
	if len(src) < 5 {
		return nil
	}
	tag, size := frame.ParseHeader(src)
	var width int
	switch tag {
	case frame.TagHuff4:
		width = 4
	case frame.TagHuff8:
		width = 8
	default:
		return nil
	}
	numLeafs := int(src[4]) + 1
	tableLen := 2 * numLeafs
	if len(src) < 4+tableLen {
		return nil
	}
	tree := src[4 : 4+tableLen]
	stream := src[4+tableLen:]

	rootByte := tree[1]
	pos := 0
	cur := rootByte

	var word, mask uint32
	wpos := 0
	refill := func() bool {
		if wpos+4 > len(stream) {
			return false
		}
		word = frame.ReadLE32(stream[wpos:])
		wpos += 4
		mask = 0x80000000
		return true
	}
	if !refill() {
		return nil
	}

	out := make([]byte, 0, size)
	var writeValue uint32
	byteShift := 0
	byteCount := 0
	halfLen := 0
	var value byte
	produced := 0

	flushWord := func() {
		var buf [4]byte
		frame.WriteLE32(buf[:], writeValue)
		take := 4
		if size-produced < 4 {
			take = size - produced
		}
		out = append(out, buf[:take]...)
		produced += take
		writeValue = 0
		byteCount = 0
		byteShift = 0
	}

	for produced < size {
		pos += (int(cur&0x3F) + 1) * 2
		if pos+1 >= len(tree) {
			break
		}

		if mask == 0 {
			if !refill() {
				break
			}
		}

		var leaf bool
		var next byte
		if word&mask != 0 {
			leaf = cur&0x40 != 0
			next = tree[pos+1]
		} else {
			leaf = cur&0x80 != 0
			next = tree[pos]
		}
		cur = next
		mask >>= 1

		if leaf {
			if width == 8 {
				writeValue |= uint32(cur) << uint(byteShift)
				byteShift += 8
				byteCount++
				if byteCount == 4 {
					flushWord()
				}
			} else {
				if halfLen == 0 {
					value |= cur
				} else {
					value |= cur << 4
				}
				halfLen += 4
				if halfLen == 8 {
					writeValue |= uint32(value) << uint(byteShift)
					byteShift += 8
					byteCount++
					halfLen = 0
					value = 0
					if byteCount == 4 {
						flushWord()
					}
				}
			}
			pos = 0
			cur = rootByte
		}
	}
	if produced < size && byteShift > 0 {
		flushWord()
	}
	return out
}
