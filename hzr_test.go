// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package hzr

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/dsnet/hzr/internal/errors"
	"github.com/dsnet/hzr/internal/testutil"
)

// mustEncode encodes buf or fails the test.
func mustEncode(t *testing.T, buf []byte) []byte {
	t.Helper()
	out, err := Encode(nil, buf)
	if err != nil {
		t.Fatalf("unexpected Encode error: %v", err)
	}
	return out
}

// ramp returns n bytes where b[i] = i & 255.
func ramp(n int) []byte {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = byte(i)
	}
	return buf
}

// residuals returns n bytes shaped like predictor output: mostly zeros with
// small magnitudes elsewhere.
func residuals(n, seed int) []byte {
	rand := testutil.NewRand(seed)
	buf := make([]byte, n)
	for i := range buf {
		if rand.Intn(4) == 0 {
			buf[i] = byte(rand.Intn(15) + 1)
		}
	}
	return buf
}

func TestRoundTrip(t *testing.T) {
	var vectors = []struct {
		name string
		data []byte
	}{
		{"Empty", nil},
		{"Zero", []byte{0x00}},
		{"Byte", []byte{0x2a}},
		{"Triple", []byte{1, 2, 3}},
		{"Ramp", ramp(500)},
		{"HalfZeros", append(make([]byte, 512), ramp(512)...)},
		{"Zeros", make([]byte, 500000)},
		{"Ones", bytes.Repeat([]byte{0x01}, 500000)},
		{"MaxRun", make([]byte, 16662)},
		{"MaxRunPlus", append(make([]byte, 16662), 0x01)},
		{"TwoBlocks", ramp(65537)},
		{"BlockEdge", ramp(65536)},
		{"Random", testutil.NewRand(0).Bytes(4096)},
		{"RandomBig", testutil.NewRand(1).Bytes(1 << 17)},
		{"Residuals", residuals(1<<17, 2)},
		{"Alternating", bytes.Repeat([]byte{0x00, 0x01}, 1<<12)},
	}

	for _, v := range vectors {
		t.Run(v.name, func(t *testing.T) {
			enc := mustEncode(t, v.data)
			if len(enc) > MaxEncodedSize(len(v.data)) {
				t.Errorf("encoded size %d exceeds MaxEncodedSize %d", len(enc), MaxEncodedSize(len(v.data)))
			}

			// Encoding is deterministic.
			enc2 := mustEncode(t, v.data)
			if !bytes.Equal(enc, enc2) {
				t.Errorf("non-deterministic encoding")
			}

			n, err := Verify(enc)
			if err != nil {
				t.Fatalf("unexpected Verify error: %v", err)
			}
			if n != len(v.data) {
				t.Errorf("Verify size = %d, want %d", n, len(v.data))
			}

			dec, err := Decode(nil, enc)
			if err != nil {
				t.Fatalf("unexpected Decode error: %v", err)
			}
			if !bytes.Equal(dec, v.data) {
				t.Errorf("round trip mismatch")
			}

			// A pre-sized destination buffer is reused.
			dst := make([]byte, MaxEncodedSize(len(v.data)))
			enc3, err := Encode(dst, v.data)
			if err != nil {
				t.Fatalf("unexpected Encode error: %v", err)
			}
			if !bytes.Equal(enc, enc3) {
				t.Errorf("encoding into provided buffer mismatch")
			}
		})
	}
}

func TestEncodeEmpty(t *testing.T) {
	enc := mustEncode(t, nil)
	if !bytes.Equal(enc, testutil.MustDecodeHex("00000000")) {
		t.Errorf("Encode(empty) = %x, want 00000000", enc)
	}
	if dec, err := Decode(nil, enc); err != nil || len(dec) != 0 {
		t.Errorf("Decode(%x) = (%d bytes, %v), want (0 bytes, nil)", enc, len(dec), err)
	}
}

func TestEncodeModes(t *testing.T) {
	// Constant blocks become single-byte fills, one per 64KiB.
	for _, c := range []byte{0x00, 0x01} {
		enc := mustEncode(t, bytes.Repeat([]byte{c}, 500000))
		if len(enc) != 68 {
			t.Errorf("fill value %#02x: encoded size = %d, want 68", c, len(enc))
		}
		blocks, err := Inspect(enc)
		if err != nil {
			t.Fatalf("unexpected Inspect error: %v", err)
		}
		if len(blocks) != 8 {
			t.Fatalf("got %d blocks, want 8", len(blocks))
		}
		for i, b := range blocks {
			if b.Mode != ModeFill || b.EncodedSize != 1 {
				t.Errorf("block %d: got mode %d with %d bytes, want fill with 1 byte", i, b.Mode, b.EncodedSize)
			}
			if v := enc[b.Offset+blkHdrSize]; v != c {
				t.Errorf("block %d: fill value %#02x, want %#02x", i, v, c)
			}
		}
	}

	// A single non-zero literal selects a fill carrying that byte.
	enc := mustEncode(t, bytes.Repeat([]byte{0x41}, 300))
	if blocks, _ := Inspect(enc); len(blocks) != 1 || blocks[0].Mode != ModeFill || enc[blocks[0].Offset+blkHdrSize] != 0x41 {
		t.Errorf("uniform literal input did not produce a fill block")
	}

	// A ramp trains a dense literal tree; the result stays prefix-encoded.
	enc = mustEncode(t, ramp(500))
	if blocks, _ := Inspect(enc); len(blocks) != 1 || blocks[0].Mode != ModeHuffRLE {
		t.Errorf("ramp input did not produce a prefix-encoded block")
	}

	// A maximal zero run next to a sentinel byte exercises the largest
	// run token inside a prefix-encoded block.
	enc = mustEncode(t, append(make([]byte, 16662), 0x01))
	if blocks, _ := Inspect(enc); len(blocks) != 1 || blocks[0].Mode != ModeHuffRLE {
		t.Errorf("zero run input did not produce a prefix-encoded block")
	}

	// Incompressible data at the full block size falls back to a copy.
	enc = mustEncode(t, testutil.NewRand(0).Bytes(maxBlockSize))
	if blocks, _ := Inspect(enc); len(blocks) != 1 || blocks[0].Mode != ModeCopy || blocks[0].EncodedSize != maxBlockSize {
		t.Errorf("random block did not fall back to a copy block")
	}

	// 65537 bytes split into a full block and a single-byte block.
	enc = mustEncode(t, ramp(65537))
	blocks, err := Inspect(enc)
	if err != nil {
		t.Fatalf("unexpected Inspect error: %v", err)
	}
	if len(blocks) != 2 || blocks[0].DecodedSize != maxBlockSize || blocks[1].DecodedSize != 1 {
		t.Errorf("two-block split mismatch: %+v", blocks)
	}
}

// TestEncodeVector checks the encoder bit-for-bit on a tiny input whose tree
// and code assignment are worked out by hand.
func TestEncodeVector(t *testing.T) {
	payload := testutil.MustDecodeBitGen(`
		# Preorder tree: symbol 3 gets code 0; symbols 1 and 2 pair up
		# under code 1 with codes 01 and 11.
		0        # Root is internal
		1 D9:3   # Leaf 3
		0        # Internal
		1 D9:1   # Leaf 1
		1 D9:2   # Leaf 2
		# Symbol stream for 1, 2, 3.
		D2:1 D2:3 D1:0
	`)

	want := binary.LittleEndian.AppendUint32(nil, 3) // Master header
	want = binary.LittleEndian.AppendUint16(want, uint16(len(payload)-1))
	want = binary.LittleEndian.AppendUint32(want, crc32c(payload))
	want = append(want, ModeHuffRLE)
	want = append(want, payload...)

	got := mustEncode(t, []byte{1, 2, 3})
	if !bytes.Equal(got, want) {
		t.Errorf("encoded stream mismatch:\ngot  %x\nwant %x", got, want)
	}
}

// blockStream assembles a master header and a single block around payload.
func blockStream(dsize int, mode byte, payload []byte) []byte {
	s := binary.LittleEndian.AppendUint32(nil, uint32(dsize))
	s = binary.LittleEndian.AppendUint16(s, uint16(len(payload)-1))
	s = binary.LittleEndian.AppendUint32(s, crc32c(payload))
	s = append(s, mode)
	return append(s, payload...)
}

// TestDecodeVectors decodes hand-scripted streams.
func TestDecodeVectors(t *testing.T) {
	var vectors = []struct {
		name   string
		input  []byte
		output []byte
	}{{
		name: "LiteralsAndRun",
		input: blockStream(4, ModeHuffRLE, testutil.MustDecodeBitGen(`
			0         # Root is internal
			1 D9:97   # Leaf 'a', code 0
			1 D9:256  # Leaf two-zeros, code 1
			D1:0 D1:1 D1:0  # 'a', two zeros, 'a'
		`)),
		output: []byte("a\x00\x00a"),
	}, {
		name: "Degenerate",
		input: blockStream(4, ModeHuffRLE, testutil.MustDecodeBitGen(`
			1 D9:65   # Lone leaf 'A' consumes one bit per symbol
			D4:0
		`)),
		output: []byte("AAAA"),
	}, {
		name:   "Fill",
		input:  blockStream(8, ModeFill, []byte{0xab}),
		output: bytes.Repeat([]byte{0xab}, 8),
	}, {
		name:   "Copy",
		input:  blockStream(3, ModeCopy, []byte{0xde, 0xad, 0x99}),
		output: []byte{0xde, 0xad, 0x99},
	}}

	for _, v := range vectors {
		t.Run(v.name, func(t *testing.T) {
			if n, err := Verify(v.input); err != nil || n != len(v.output) {
				t.Fatalf("Verify() = (%d, %v), want (%d, nil)", n, err, len(v.output))
			}
			got, err := Decode(nil, v.input)
			if err != nil {
				t.Fatalf("unexpected Decode error: %v", err)
			}
			if !bytes.Equal(got, v.output) {
				t.Errorf("decoded output mismatch:\ngot  %x\nwant %x", got, v.output)
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	var vectors = []struct {
		name    string
		input   []byte
		invalid bool // Expect an argument error rather than corruption
	}{{
		name:    "ShortHeader",
		input:   testutil.MustDecodeHex("0102"),
		invalid: true,
	}, {
		name:  "MissingBlocks",
		input: testutil.MustDecodeHex("0a000000"),
	}, {
		name:  "TrailingData",
		input: testutil.MustDecodeHex("00000000ff"),
	}, {
		name:  "BadMode",
		input: blockStream(1, 3, []byte{0x00}),
	}, {
		name:  "CopySizeMismatch",
		input: blockStream(2, ModeCopy, []byte{0xaa}),
	}, {
		name:  "FillSizeMismatch",
		input: blockStream(4, ModeFill, []byte{0xab, 0xab}),
	}, {
		name: "PayloadPastEnd",
		input: append(binary.LittleEndian.AppendUint32(nil, 16),
			0xff, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00), // Claims 256 payload bytes
	}, {
		name: "RunOverflowsBlock",
		input: blockStream(2, ModeHuffRLE, testutil.MustDecodeBitGen(`
			1 D9:259  # Lone leaf: 23..278 zeros
			D1:0 D8:0 # One token: 23 zeros into a 2-byte block
		`)),
	}, {
		name: "TruncatedSymbolStream",
		input: blockStream(64, ModeHuffRLE, testutil.MustDecodeBitGen(`
			0 1 D9:97 1 D9:98
			D1:0*4    # Only 4 of the announced 64 symbols
		`)),
	}}

	for _, v := range vectors {
		t.Run(v.name, func(t *testing.T) {
			_, err := Decode(nil, v.input)
			if v.invalid {
				if !errors.IsInvalid(err) {
					t.Errorf("Decode error = %v, want invalid argument", err)
				}
			} else if !errors.IsCorrupted(err) {
				t.Errorf("Decode error = %v, want corrupted", err)
			}
		})
	}
}

func TestVerifyTamper(t *testing.T) {
	data := testutil.NewRand(0).Bytes(4096)
	enc := mustEncode(t, data)
	if _, err := Verify(enc); err != nil {
		t.Fatalf("unexpected Verify error: %v", err)
	}

	blocks, err := Inspect(enc)
	if err != nil {
		t.Fatalf("unexpected Inspect error: %v", err)
	}

	// Flipping any single bit within a block payload must be caught.
	for _, b := range blocks {
		start, end := b.Offset+blkHdrSize, b.Offset+blkHdrSize+b.EncodedSize
		for _, pos := range []int{start, (start + end) / 2, end - 1} {
			tampered := append([]byte(nil), enc...)
			tampered[pos] ^= 0x10
			if _, err := Verify(tampered); !errors.IsCorrupted(err) {
				t.Errorf("Verify of payload tampered at %d: err = %v, want corrupted", pos, err)
			}
		}
	}
}

func TestMaxEncodedSize(t *testing.T) {
	var vectors = []struct {
		n    int
		want int
	}{
		{0, 4},
		{1, 4 + 7 + 65536},
		{65536, 4 + 7 + 65536},
		{65537, 4 + 2*(7+65536)},
		{500000, 4 + 8*(7+65536)},
	}
	for _, v := range vectors {
		if got := MaxEncodedSize(v.n); got != v.want {
			t.Errorf("MaxEncodedSize(%d) = %d, want %d", v.n, got, v.want)
		}
	}
}

func TestDecodedLen(t *testing.T) {
	if _, err := DecodedLen([]byte{0x00}); !errors.IsInvalid(err) {
		t.Errorf("DecodedLen error = %v, want invalid argument", err)
	}
	enc := mustEncode(t, make([]byte, 1000))
	if n, err := DecodedLen(enc); n != 1000 || err != nil {
		t.Errorf("DecodedLen() = (%d, %v), want (1000, nil)", n, err)
	}
}
