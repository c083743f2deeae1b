// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package hzr implements the HZR compressed data format.
//
// HZR pairs a canonical Huffman entropy coder with a small run-length scheme
// that is specialized for runs of the zero byte. It is intended for
// entropy-reduced payloads such as prediction residuals and quantized
// transform coefficients, where most bytes are zero and the non-zero values
// cluster around small magnitudes. The format trades compression ratio for
// symmetric, very high throughput.
//
// Compression stack:
//	Zero run-length encoding (RLE)
//	Prefix encoding          (PE)
//
// A stream is a 4-byte master header holding the total decoded size, followed
// by a sequence of independently framed blocks of up to 64KiB of decoded data
// each. Every block carries its own 7-byte header with the payload size, a
// CRC-32C of the payload, and one of three payload encodings: a raw copy, a
// constant fill, or a prefix-encoded symbol stream.
package hzr

import (
	"fmt"

	"github.com/dsnet/hzr/internal/errors"
)

const (
	hdrSize    = 4 // Master header: u32le decoded size
	blkHdrSize = 7 // Block header: u16le size-1, u32le CRC-32C, u8 mode

	// maxBlockSize is the maximum number of decoded bytes within one block.
	maxBlockSize = 1 << 16
)

// Block encoding modes as stored in the block header.
const (
	ModeCopy    = byte(0) // Payload is the decoded data verbatim
	ModeHuffRLE = byte(1) // Payload is a prefix tree and a symbol stream
	ModeFill    = byte(2) // Payload is a single byte to fill the block with
)

const (
	// The alphabet is all 256 literal byte values, plus five tokens
	// describing runs of the zero byte.
	numLitSyms = 256
	numSyms    = 261

	symTwoZeros       = 256 // Run of 2 zeros
	symUpTo6Zeros     = 257 // Run of 3..6 zeros,      2 suffix bits
	symUpTo22Zeros    = 258 // Run of 7..22 zeros,     4 suffix bits
	symUpTo278Zeros   = 259 // Run of 23..278 zeros,   8 suffix bits
	symUpTo16662Zeros = 260 // Run of 279..16662 zeros, 14 suffix bits

	// maxZeroRun is the longest zero run a single token can describe.
	// Longer runs split into consecutive tokens.
	maxZeroRun = 16662

	// maxTreeNodes bounds the prefix tree for a 261-symbol alphabet.
	maxTreeNodes = 2*numSyms - 1
)

// fastMargin is the number of encoded bytes the fast decode loop keeps in
// reserve before switching to the checked tail loop: 6 bytes for the longest
// code with its run suffix, plus 4 bytes of bit-cache look-ahead.
const fastMargin = 10

func errorf(c int, f string, a ...interface{}) error {
	return errors.Error{Code: c, Pkg: "hzr", Msg: fmt.Sprintf(f, a...)}
}

func panicf(c int, f string, a ...interface{}) {
	errors.Panic(errorf(c, f, a...))
}
