// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package hzr

import "hash/crc32"

// Every block payload is covered by a CRC-32C (Castagnoli) checksum. This is
// the same polynomial implemented by the SSE 4.2 and ARMv8 CRC instructions,
// which the standard library uses when available.
var crcTable = crc32.MakeTable(crc32.Castagnoli)

func crc32c(buf []byte) uint32 {
	return crc32.Checksum(buf, crcTable)
}
