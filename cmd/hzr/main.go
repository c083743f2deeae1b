// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Command hzr compresses, decompresses, and inspects HZR streams.
//
// The codec operates on whole buffers, so every command reads its input file
// into memory, transforms it, and writes the result in one shot.
package main

import (
	"fmt"
	"hash/crc32"
	"os"

	"github.com/dsnet/golib/hashutil"
	"github.com/dsnet/hzr"
	"github.com/spf13/cobra"
)

var force bool

var modeNames = map[byte]string{
	hzr.ModeCopy:    "copy",
	hzr.ModeHuffRLE: "huff+rle",
	hzr.ModeFill:    "fill",
}

func main() {
	root := &cobra.Command{
		Use:           "hzr",
		Short:         "compress, decompress, and inspect HZR streams",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	compress := &cobra.Command{
		Use:   "compress input output",
		Short: "compress a file into an HZR stream",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			output, err := hzr.Encode(nil, input)
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[1], output, 0664); err != nil {
				return err
			}
			fmt.Printf("%d => %d bytes (%.2fx)\n",
				len(input), len(output), float64(len(input))/float64(len(output)))
			return nil
		},
	}

	decompress := &cobra.Command{
		Use:   "decompress input output",
		Short: "decompress an HZR stream",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if !force {
				if _, err := hzr.Verify(input); err != nil {
					return err
				}
			}
			output, err := hzr.Decode(nil, input)
			if err != nil {
				return err
			}
			return os.WriteFile(args[1], output, 0664)
		},
	}
	decompress.Flags().BoolVarP(&force, "force", "f", false,
		"decode without checksum verification")

	inspect := &cobra.Command{
		Use:   "inspect input",
		Short: "print the block structure of an HZR stream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			dsize, err := hzr.DecodedLen(input)
			if err != nil {
				return err
			}
			blocks, err := hzr.Inspect(input)
			if err != nil {
				return err
			}

			fmt.Printf("stream: %d bytes encoded, %d bytes decoded, %d blocks\n",
				len(input), dsize, len(blocks))
			fmt.Printf("%5s %10s %9s %9s %10s %s\n",
				"block", "offset", "encoded", "decoded", "crc32c", "mode")
			var streamCRC uint32
			for i, b := range blocks {
				fmt.Printf("%5d %10d %9d %9d %10x %s\n",
					i, b.Offset, b.EncodedSize, b.DecodedSize, b.CRC, modeNames[b.Mode])
				streamCRC = hashutil.CombineCRC32(crc32.Castagnoli, streamCRC, b.CRC, int64(b.EncodedSize))
			}
			fmt.Printf("combined payload crc32c: %08x\n", streamCRC)
			return nil
		},
	}

	root.AddCommand(compress, decompress, inspect)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "hzr:", err)
		os.Exit(1)
	}
}
