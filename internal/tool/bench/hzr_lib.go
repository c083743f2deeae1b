// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

//go:build !no_hzr_lib
// +build !no_hzr_lib

package bench

import (
	"bytes"
	"io"

	"github.com/dsnet/hzr"
)

// The hzr codec is one-shot over whole buffers, so the streaming interfaces
// used by the suite are satisfied by buffering until Close or first Read.

type hzrEncoder struct {
	w   io.Writer
	buf bytes.Buffer
}

func (e *hzrEncoder) Write(p []byte) (int, error) {
	return e.buf.Write(p)
}

func (e *hzrEncoder) Close() error {
	out, err := hzr.Encode(nil, e.buf.Bytes())
	if err != nil {
		return err
	}
	_, err = e.w.Write(out)
	return err
}

type hzrDecoder struct {
	r   io.Reader
	out *bytes.Reader
}

func (d *hzrDecoder) Read(p []byte) (int, error) {
	if d.out == nil {
		in, err := io.ReadAll(d.r)
		if err != nil {
			return 0, err
		}
		if _, err := hzr.Verify(in); err != nil {
			return 0, err
		}
		out, err := hzr.Decode(nil, in)
		if err != nil {
			return 0, err
		}
		d.out = bytes.NewReader(out)
	}
	return d.out.Read(p)
}

func (d *hzrDecoder) Close() error { return nil }

func init() {
	RegisterEncoder(FormatHZR, "hzr",
		func(w io.Writer, lvl int) io.WriteCloser {
			return &hzrEncoder{w: w} // HZR has no compression levels
		})
	RegisterDecoder(FormatHZR, "hzr",
		func(r io.Reader) io.ReadCloser {
			return &hzrDecoder{r: r}
		})
}
