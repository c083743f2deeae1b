// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package hzr

import (
	"encoding/binary"

	"github.com/dsnet/hzr/internal/errors"
)

// BlockInfo describes a single block within an encoded stream.
type BlockInfo struct {
	Offset      int    // Byte offset of the block header within the stream
	EncodedSize int    // Size of the payload in bytes
	DecodedSize int    // Number of bytes the block decodes to
	CRC         uint32 // Stored CRC-32C of the payload
	Mode        byte   // One of ModeCopy, ModeHuffRLE, ModeFill
}

// Inspect parses the container structure and reports per-block metadata.
// It validates the framing only; payloads are neither decoded nor
// checksummed.
func Inspect(src []byte) (blocks []BlockInfo, err error) {
	defer errors.Recover(&err)
	dsize, err := DecodedLen(src)
	if err != nil {
		return nil, err
	}

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
		if mode > ModeFill {
			panicf(errors.Corrupted, "invalid encoding mode: %d", mode)
		}
		if off+blkHdrSize+esize > len(src) {
			panicf(errors.Corrupted, "block payload exceeds input: %d bytes", esize)
		}
		blocks = append(blocks, BlockInfo{
			Offset:      off,
			EncodedSize: esize,
			DecodedSize: blkLen,
			CRC:         crc,
			Mode:        mode,
		})
		off += blkHdrSize + esize
		done += blkLen
	}
	if off != len(src) {
		panicf(errors.Corrupted, "trailing data after last block: %d bytes", len(src)-off)
	}
	return blocks, nil
}
