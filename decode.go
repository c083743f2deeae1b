// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package hzr

import (
	"encoding/binary"

	"github.com/dsnet/hzr/internal/errors"
)

// DecodedLen returns the total decoded size announced by the master header.
func DecodedLen(src []byte) (int, error) {
	if len(src) < hdrSize {
		return 0, errorf(errors.Invalid, "input too short for stream header: %d", len(src))
	}
	return int(binary.LittleEndian.Uint32(src)), nil
}

// Verify walks every block header and recomputes the payload checksums
// without decoding any data. It returns the announced decoded size. Callers
// that decode untrusted input should Verify first; Decode itself assumes a
// structurally valid stream and does not checksum.
func Verify(src []byte) (n int, err error) {
	defer errors.Recover(&err)
	dsize, err := DecodedLen(src)
	if err != nil {
		return 0, err
	}
	decodeStream(nil, src, dsize)
	return dsize, nil
}

// Decode decompresses src and returns the decoded data. If dst is large
// enough to hold the announced decoded size it is used as the output buffer,
// otherwise a new buffer is allocated. All writes are bounded by that size.
func Decode(dst, src []byte) (buf []byte, err error) {
	defer errors.Recover(&err)
	dsize, err := DecodedLen(src)
	if err != nil {
		return nil, err
	}
	// Every block needs a header and at least one payload byte, so an input
	// too short to frame the announced size is rejected before the header
	// sizes the output buffer.
	if numBlocks := (dsize + maxBlockSize - 1) / maxBlockSize; len(src)-hdrSize < numBlocks*(blkHdrSize+1) {
		return nil, errorf(errors.Corrupted, "announced size exceeds input framing: %d", dsize)
	}
	if cap(dst) < dsize {
		dst = make([]byte, dsize)
	} else {
		dst = dst[:dsize]
	}
	decodeStream(dst, src, dsize)
	return dst, nil
}

// decodeStream walks the container block by block. With a nil dst it runs in
// verify mode: headers are parsed and payload checksums recomputed, but
// nothing is decoded. Errors are conveyed by panic and recovered at the API
// boundary.
func decodeStream(dst, src []byte, dsize int) {
	verify := dst == nil
	off := hdrSize
	for done := 0; done < dsize; {
		blkLen := dsize - done
		if blkLen > maxBlockSize {
			blkLen = maxBlockSize
		}

		if off+blkHdrSize > len(src) {
			panicf(errors.Corrupted, "truncated block header")
		}
		esize := int(binary.LittleEndian.Uint16(src[off:])) + 1
		crc := binary.LittleEndian.Uint32(src[off+2:])
		mode := src[off+6]
		off += blkHdrSize
		if off+esize > len(src) {
			panicf(errors.Corrupted, "block payload exceeds input: %d bytes", esize)
		}
		payload := src[off : off+esize]
		off += esize

		if mode > ModeFill {
			panicf(errors.Corrupted, "invalid encoding mode: %d", mode)
		}
		if verify {
			if crc32c(payload) != crc {
				panicf(errors.Corrupted, "mismatching block checksum")
			}
		} else {
			out := dst[done : done+blkLen]
			switch mode {
			case ModeCopy:
				if esize != blkLen {
					panicf(errors.Corrupted, "copy block size mismatch: %d != %d", esize, blkLen)
				}
				copy(out, payload)
			case ModeFill:
				if esize != 1 {
					panicf(errors.Corrupted, "fill block size mismatch: %d", esize)
				}
				fillBytes(out, payload[0])
			case ModeHuffRLE:
				decodeHuffRLE(out, payload)
			}
		}
		done += blkLen
	}
	if off != len(src) {
		panicf(errors.Corrupted, "trailing data after last block: %d bytes", len(src)-off)
	}
}

// decodeHuffRLE decodes a prefix-encoded payload into out, which has the
// exact decoded length of the block.
func decodeHuffRLE(out, payload []byte) {
	dt := new(decodeTree)
	var br bitReader
	br.Init(payload)
	dt.ReadTree(&br)

	// Fast loop: while the input tail holds the margin, a whole symbol and
	// its run suffix resolve within the buffer, so the unchecked reads
	// below cannot extend past it.
	outOff := 0
	for outOff < len(out) && br.off+fastMargin < len(payload) {
		e := &dt.lut[br.Peek8()]
		var sym int
		if e.node == lutNoNode {
			br.Advance(uint(e.nbits))
			sym = int(e.sym)
		} else {
			br.Advance(8)
			nd := &dt.nodes[e.node]
			for nd.sym < 0 {
				if br.ReadBit() == 0 {
					nd = &dt.nodes[nd.childA]
				} else {
					nd = &dt.nodes[nd.childB]
				}
			}
			sym = int(nd.sym)
		}

		if sym < numLitSyms {
			out[outOff] = byte(sym)
			outOff++
			continue
		}
		n := runBase[sym-numLitSyms]
		if rb := runBits[sym-numLitSyms]; rb > 0 {
			n += int(br.ReadBits(rb))
		}
		if outOff+n > len(out) {
			panicf(errors.Corrupted, "zero run exceeds block size")
		}
		fillBytes(out[outOff:outOff+n], 0)
		outOff += n
	}

	// Checked tail loop: identical logic over the checked bit operations.
	// Peeking stays safe near the end because the bit cache is zero-padded
	// past the buffer; the subsequent advance performs the bounds test.
	for outOff < len(out) {
		e := &dt.lut[br.Peek8()]
		var sym int
		if e.node == lutNoNode {
			br.AdvanceChecked(uint(e.nbits))
			sym = int(e.sym)
		} else {
			br.AdvanceChecked(8)
			nd := &dt.nodes[e.node]
			for nd.sym < 0 && !br.fail {
				if br.ReadBitChecked() == 0 {
					nd = &dt.nodes[nd.childA]
				} else {
					nd = &dt.nodes[nd.childB]
				}
			}
			sym = int(nd.sym)
		}
		if br.fail {
			panicf(errors.Corrupted, "truncated block payload")
		}

		if sym < numLitSyms {
			out[outOff] = byte(sym)
			outOff++
			continue
		}
		n := runBase[sym-numLitSyms]
		if rb := runBits[sym-numLitSyms]; rb > 0 {
			n += int(br.ReadBitsChecked(rb))
		}
		if br.fail {
			panicf(errors.Corrupted, "truncated block payload")
		}
		if outOff+n > len(out) {
			panicf(errors.Corrupted, "zero run exceeds block size")
		}
		fillBytes(out[outOff:outOff+n], 0)
		outOff += n
	}

	if !br.AtEnd() {
		panicf(errors.Corrupted, "trailing bits in block payload")
	}
}

func fillBytes(buf []byte, c byte) {
	for i := range buf {
		buf[i] = c
	}
}
