// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package hzr

import "github.com/dsnet/hzr/internal/errors"

// The decode-side prefix coder. Recovery mirrors the encoder's preorder walk
// and produces a node pool plus a 256-entry direct-lookup table keyed by the
// next 8 input bits. A LUT entry either resolves a whole symbol (codes of 8
// bits or fewer) or points at the tree node to continue walking from after
// 8 bits have been consumed.

// lutNoNode marks a LUT entry as a terminal decode with no tree walk.
const lutNoNode = ^uint16(0)

type lutEntry struct {
	node  uint16 // Node to continue from, or lutNoNode on a terminal hit
	sym   uint16 // Decoded symbol when terminal
	nbits uint8  // Bits consumed by a terminal hit, else 8
}

type treeNode struct {
	childA uint16 // Branch taken on a 0 bit
	childB uint16 // Branch taken on a 1 bit
	sym    int16  // Symbol value for leaves, -1 for internal nodes
}

type decodeTree struct {
	nodes    [maxTreeNodes]treeNode
	numNodes int
	root     uint16
	lut      [256]lutEntry
}

// ReadTree consumes a preorder tree description from br. It panics with a
// Corrupted error on an over-long description, an out-of-range symbol, or a
// truncated bit stream.
func (dt *decodeTree) ReadTree(br *bitReader) {
	dt.numNodes = 0
	dt.root = dt.readNode(br, 0, 0)
	if br.fail {
		panicf(errors.Corrupted, "truncated tree description")
	}
}

func (dt *decodeTree) readNode(br *bitReader, code uint32, nbits uint) uint16 {
	// Sticky read failures keep returning zero flag bits, which this walk
	// interprets as an ever-deepening tree; the node bound cuts that off.
	if dt.numNodes >= maxTreeNodes {
		panicf(errors.Corrupted, "too many tree nodes")
	}
	idx := uint16(dt.numNodes)
	dt.numNodes++

	if br.ReadBitChecked() == 1 {
		sym := br.ReadBitsChecked(9)
		if sym >= numSyms {
			panicf(errors.Corrupted, "invalid symbol: %d", sym)
		}
		dt.nodes[idx] = treeNode{sym: int16(sym)}
		if nbits <= 8 {
			dt.fillLUT(code, nbits, uint16(sym))
		}
		return idx
	}

	dt.nodes[idx].sym = -1
	if nbits == 8 {
		// An internal node exactly 8 levels deep is where the LUT hands
		// the decode back to a tree walk.
		dt.lut[code] = lutEntry{node: idx, nbits: 8}
	}
	childA := dt.readNode(br, code, nbits+1)
	childB := dt.readNode(br, code|1<<nbits, nbits+1)
	dt.nodes[idx].childA = childA
	dt.nodes[idx].childB = childB
	return idx
}

// fillLUT populates every table slot whose low bits match the given code.
func (dt *decodeTree) fillLUT(code uint32, nbits uint, sym uint16) {
	nb := uint8(nbits)
	if nb == 0 {
		// The single-symbol tree still consumes one bit per decode.
		nb = 1
	}
	for i := code; i < 256; i += 1 << nbits {
		dt.lut[i] = lutEntry{node: lutNoNode, sym: sym, nbits: nb}
	}
}
