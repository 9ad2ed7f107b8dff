// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package rng

import "github.com/tinkershack/veriwipe/pkg/errors"

// healthTests implements the two continuous health tests
// requires on every block drawn: a repetition-count test (consecutive
// identical samples) and an adaptive-proportion test over a sliding window
// (NIST SP 800-90B style).
type healthTests struct {
	cfg Config

	lastByte     byte
	haveLast     bool
	repeatCount  int

	window    []byte
	windowPos int
	counts    [256]int
}

func newHealthTests(cfg Config) *healthTests {
	h := &healthTests{cfg: cfg}
	h.window = make([]byte, cfg.AdaptiveWindowSize)
	return h
}

func (h *healthTests) reset() {
	h.haveLast = false
	h.repeatCount = 0
	h.windowPos = 0
	for i := range h.window {
		h.window[i] = 0
	}
	for i := range h.counts {
		h.counts[i] = 0
	}
}

// observe feeds freshly generated output bytes through both tests. It
// returns a terminal HealthTestFailed-coded error the instant either test
// trips; callers must treat the DRBG as permanently failed afterward.
func (h *healthTests) observe(block []byte) error {
	for _, b := range block {
		if err := h.repetitionCount(b); err != nil {
			return err
		}
		h.adaptiveProportion(b)
		if h.counts[maxCountIndex(h.counts[:])] > h.cfg.AdaptiveMaxCount {
			return errors.New(errors.HealthTestFailed, "adaptive-proportion test exceeded threshold").
				WithMetadata("window_size", itoa(h.cfg.AdaptiveWindowSize)).
				WithMetadata("max_count", itoa(h.cfg.AdaptiveMaxCount))
		}
	}
	return nil
}

// repetitionCount fails if the same byte value repeats cfg.RepetitionWindow
// times in a row. A true random byte source repeating identically that many
// times in succession is astronomically unlikely.
func (h *healthTests) repetitionCount(b byte) error {
	if h.haveLast && b == h.lastByte {
		h.repeatCount++
		if h.repeatCount >= h.cfg.RepetitionWindow {
			return errors.New(errors.HealthTestFailed, "repetition-count test exceeded threshold").
				WithMetadata("value", itoa(int(b))).
				WithMetadata("repeat_count", itoa(h.repeatCount))
		}
	} else {
		h.repeatCount = 1
	}
	h.lastByte = b
	h.haveLast = true
	return nil
}

// adaptiveProportion maintains a sliding window over the last
// cfg.AdaptiveWindowSize bytes and a running histogram, evicting the oldest
// sample as each new one arrives.
func (h *healthTests) adaptiveProportion(b byte) {
	old := h.window[h.windowPos]
	h.counts[old]--
	h.window[h.windowPos] = b
	h.counts[b]++
	h.windowPos = (h.windowPos + 1) % len(h.window)
}

func maxCountIndex(counts []int) int {
	maxI := 0
	for i, c := range counts {
		if c > counts[maxI] {
			maxI = i
		}
	}
	return maxI
}

func itoa(v int) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
