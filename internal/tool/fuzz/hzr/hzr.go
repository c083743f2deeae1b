// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

//go:build gofuzz
// +build gofuzz

package hzr

import (
	"bytes"

	"github.com/dsnet/hzr"
)

// Fuzz treats the input both as raw data to round-trip and as a compressed
// stream to decode.
func Fuzz(data []byte) int {
	ok := testDecode(data)
	testRoundTrip(data)
	if ok {
		return 1 // Favor valid inputs
	}
	return 0
}

// testDecode runs the input through Verify and Decode. Neither may panic.
// Verify checks framing and checksums only, so a verified input may still be
// rejected by Decode; one that decodes must match the verified size.
func testDecode(data []byte) bool {
	n, err := hzr.Verify(data)
	if err != nil {
		return false
	}
	buf, err := hzr.Decode(nil, data)
	if err != nil {
		return false
	}
	if len(buf) != n {
		panic("mismatching decoded size")
	}
	return true
}

// testRoundTrip encodes the input and checks that the output verifies and
// decodes back to the input.
func testRoundTrip(data []byte) {
	enc, err := hzr.Encode(nil, data)
	if err != nil {
		panic(err)
	}
	if len(enc) > hzr.MaxEncodedSize(len(data)) {
		panic("encoded size exceeds bound")
	}
	if n, err := hzr.Verify(enc); err != nil || n != len(data) {
		panic("encoder output fails verification")
	}
	buf, err := hzr.Decode(nil, enc)
	if err != nil {
		panic(err)
	}
	if !bytes.Equal(buf, data) {
		panic("mismatching bytes")
	}
}
