// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package hzr

import (
	"encoding/binary"
	"math"

	"github.com/dsnet/hzr/internal/errors"
)

// MaxEncodedSize returns the worst-case encoded size for an input of n bytes:
// the master header plus, per block, a block header and a full-size payload.
// A prefix-encoded block may expand up to the payload cap before the encoder
// falls back to a plain copy, so the bound is per-block cap, not input size.
func MaxEncodedSize(n int) int {
	if n <= 0 {
		return hdrSize
	}
	numBlocks := (n + maxBlockSize - 1) / maxBlockSize
	return hdrSize + numBlocks*(blkHdrSize+maxBlockSize)
}

// Encode compresses src and returns the encoded stream. If dst is large
// enough to hold MaxEncodedSize(len(src)) bytes it is used as the output
// buffer, otherwise a new buffer is allocated.
//
// Encoding is deterministic: the output is a pure function of src.
func Encode(dst, src []byte) ([]byte, error) {
	if uint64(len(src)) > math.MaxUint32 {
		return nil, errorf(errors.Invalid, "input exceeds maximum stream size: %d", len(src))
	}
	if max := MaxEncodedSize(len(src)); cap(dst) < max {
		dst = make([]byte, max)
	} else {
		dst = dst[:max]
	}

	binary.LittleEndian.PutUint32(dst, uint32(len(src)))
	off := hdrSize
	for base := 0; base < len(src); base += maxBlockSize {
		blk := src[base:]
		if len(blk) > maxBlockSize {
			blk = blk[:maxBlockSize]
		}
		off += encodeBlock(dst[off:], blk)
	}
	return dst[:off], nil
}

// encodeBlock writes one block header and payload into dst, choosing among
// the three encodings, and returns the total number of bytes written.
// The caller guarantees room for a header plus a full-size payload of
// maxBlockSize bytes, whatever the length of blk.
func encodeBlock(dst, blk []byte) int {
	payload := dst[blkHdrSize:]

	var size int
	var mode byte
	switch {
	case allEqual(blk):
		payload[0] = blk[0]
		size, mode = 1, ModeFill
	default:
		// Attempt prefix encoding within the payload cap. If the
		// payload grows to the cap, the block discards the progress
		// and falls back to a plain copy.
		if n, ok := encodeHuffRLE(payload[:maxBlockSize], blk); ok && n < maxBlockSize {
			size, mode = n, ModeHuffRLE
		} else {
			size, mode = copy(payload, blk), ModeCopy
		}
	}

	binary.LittleEndian.PutUint16(dst[0:], uint16(size-1))
	binary.LittleEndian.PutUint32(dst[2:], crc32c(payload[:size]))
	dst[6] = mode
	return blkHdrSize + size
}

// allEqual reports whether the block reduces to a single effective symbol.
func allEqual(buf []byte) bool {
	for _, c := range buf[1:] {
		if c != buf[0] {
			return false
		}
	}
	return true
}

// encodeHuffRLE prefix-encodes blk into dst. It reports failure when the
// encoded payload would exceed len(dst).
func encodeHuffRLE(dst, blk []byte) (int, bool) {
	he := new(huffEncoder)
	scanSymbols(blk, func(sym int, _ uint32, _ uint) {
		he.syms[sym].cnt++
	})
	he.Build()

	var bw bitWriter
	bw.Init(dst)
	he.EmitTree(&bw)
	if bw.fail {
		return 0, false
	}
	scanSymbols(blk, func(sym int, suffix uint32, nb uint) {
		si := &he.syms[sym]
		bw.WriteBits(si.code, uint(si.nbits))
		if nb > 0 {
			bw.WriteBits(suffix, nb)
		}
	})
	bw.ForceFlush()
	if bw.fail {
		return 0, false
	}
	return bw.BytesWritten(), true
}
