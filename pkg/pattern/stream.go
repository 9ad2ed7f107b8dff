// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package pattern

import "github.com/tinkershack/veriwipe/pkg/errors"

// Filler supplies random bytes, satisfied by *rng.DRBG without pattern
// importing the rng package's concrete type.
type Filler interface {
	Fill(b []byte) error
}

// Generator produces one pass's content into caller-supplied buffers,
// repeating a fixed pattern or drawing fresh randomness per PassContent.
type Generator struct {
	filler Filler
}

// NewGenerator builds a Generator backed by filler (normally C1's DRBG).
func NewGenerator(filler Filler) *Generator {
	return &Generator{filler: filler}
}

// Fill writes pc's content into buf, repeating a fixed pattern to cover the
// whole buffer or drawing buf from the DRBG when pc.Fixed is nil.
func (g *Generator) Fill(pc PassContent, buf []byte) error {
	if pc.Fixed == nil {
		if err := g.filler.Fill(buf); err != nil {
			return errors.Wrap(err, errors.PatternGenerationFailed).WithMetadata("pass", itoa(pc.Index))
		}
		return nil
	}
	if len(pc.Fixed) == 0 {
		return errors.New(errors.PatternGenerationFailed, "fixed pass has empty pattern").WithMetadata("pass", itoa(pc.Index))
	}
	for i := range buf {
		buf[i] = pc.Fixed[i%len(pc.Fixed)]
	}
	return nil
}

func itoa(v int) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var b [20]byte
	i := len(b)
	for v > 0 {
		i--
		b[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		b[i] = '-'
	}
	return string(b[i:])
}
