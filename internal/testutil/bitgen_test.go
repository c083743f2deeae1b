// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package testutil

import "testing"
import "github.com/stretchr/testify/assert"

func TestDecodeBitGen(t *testing.T) {
	b, err := DecodeBitGen("X:deadcafe")
	assert.Nil(t, err)
	assert.Equal(t, []byte{0xde, 0xad, 0xca, 0xfe}, b)

	// Bits are packed little-endian: the first bit lands in the LSB.
	b, err = DecodeBitGen("1 0 1 1")
	assert.Nil(t, err)
	assert.Equal(t, []byte{0x0d}, b)

	// Binary tokens write their right-most bits first.
	b, err = DecodeBitGen("10110101")
	assert.Nil(t, err)
	assert.Equal(t, []byte{0xb5}, b)

	// Numeric tokens write their least-significant bits first.
	b, err = DecodeBitGen("D3:7 H32:6000001f")
	assert.Nil(t, err)
	assert.Equal(t, []byte{0xff, 0x00, 0x00, 0x00, 0x03}, b)

	// Quantifiers replicate the preceding token.
	b, err = DecodeBitGen("0*4 1*4 X:ff*2")
	assert.Nil(t, err)
	assert.Equal(t, []byte{0xf0, 0xff, 0xff}, b)

	// Comments and blank lines are ignored.
	b, err = DecodeBitGen(`
		D8:1  # A single byte
		      # Nothing here
		D8:2
	`)
	assert.Nil(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, b)

	// Partial trailing bytes pad with zero bits.
	b, err = DecodeBitGen("D9:257")
	assert.Nil(t, err)
	assert.Equal(t, []byte{0x01, 0x01}, b)

	// Invalid inputs.
	_, err = DecodeBitGen("D2:9")
	assert.NotNil(t, err) // Overflows the bit-length
	_, err = DecodeBitGen("1 X:ab")
	assert.NotNil(t, err) // Unaligned raw bytes
	_, err = DecodeBitGen("Z:00")
	assert.NotNil(t, err) // Unknown token
}

func TestRand(t *testing.T) {
	// The generator must be stable across runs and Go releases.
	r1, r2 := NewRand(0), NewRand(0)
	assert.Equal(t, r1.Bytes(64), r2.Bytes(64))
	assert.Equal(t, r1.Int(), r2.Int())
	assert.Equal(t, r1.Perm(100), r2.Perm(100))

	r3 := NewRand(1)
	assert.NotEqual(t, NewRand(0).Bytes(64), r3.Bytes(64))
}
