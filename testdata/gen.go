// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

//go:build ignore
// +build ignore

// Generates the benchmark input files. The shapes mirror the payloads HZR is
// built for: prediction residuals that are mostly zero with small magnitudes
// elsewhere, long zero runs, and incompressible noise as a control.
package main

import (
	"math/rand"
	"os"
)

const size = 1 << 20

func main() {
	r := rand.New(rand.NewSource(0))

	// residuals.bin: ~75% zeros, the rest biased toward small magnitudes.
	residuals := make([]byte, size)
	for i := range residuals {
		if r.Intn(4) == 0 {
			v := 1 + r.Intn(15)
			if r.Intn(2) == 0 {
				v = 256 - v // Negative residuals wrap
			}
			residuals[i] = byte(v)
		}
	}
	write("residuals.bin", residuals)

	// zeros.bin: runs of 16383 zeros, each closed by a 0x01 marker every 16KiB.
	zeros := make([]byte, size)
	for i := 1 << 14; i < size; i += 1 << 14 {
		zeros[i] = 0x01
	}
	write("zeros.bin", zeros)

	// random.bin: incompressible control data.
	random := make([]byte, size)
	r.Read(random)
	write("random.bin", random)
}

func write(name string, buf []byte) {
	if err := os.WriteFile(name, buf, 0664); err != nil {
		panic(err)
	}
}
