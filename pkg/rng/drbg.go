// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package rng implements C1: a FIPS-aligned AES-CTR-DRBG with continuous
// health testing, seeded by whitening hardware/OS entropy, timing jitter,
// and a system-entropy snapshot together before each reseed.
package rng

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/stratastor/logger"
	"github.com/tinkershack/veriwipe/pkg/errors"
)

const (
	keySize       = 32 // AES-256
	counterSize   = 16
	defaultByteBudget = 1 << 30 // 1 GiB default reseed budget
)

// Config tunes the DRBG's reseed cadence and health-test windows.
type Config struct {
	ByteBudget          uint64        // reseed after this many bytes drawn
	RepetitionWindow    int           // consecutive identical samples tolerated before failing
	AdaptiveWindowSize  int           // sliding window size for the adaptive-proportion test
	AdaptiveMaxCount    int           // max occurrences of the most common byte within the window
	HealthCheckInterval time.Duration // unused for timing, kept for config-shape parity with other components
}

// DefaultConfig matches the documented reseed-budget and health-test
// defaults.
func DefaultConfig() Config {
	return Config{
		ByteBudget:         defaultByteBudget,
		RepetitionWindow:   64,
		AdaptiveWindowSize: 4096,
		AdaptiveMaxCount:   328, // NIST SP 800-90B APT cutoff for a continuous-entropy source
	}
}

// DRBG is a single-instance AES-CTR-DRBG. Its methods serialize on an
// internal mutex, so one instance may be shared across goroutines.
type DRBG struct {
	logger logger.Logger
	cfg    Config

	mu      sync.Mutex
	block   cipher.Block
	counter [counterSize]byte
	usage   uint64
	failed  bool

	health *healthTests
}

// New constructs a DRBG seeded from the whitened entropy pool. Fails closed:
// any seeding error returns a non-nil error and no DRBG.
func New(l logger.Logger, cfg Config) (*DRBG, error) {
	d := &DRBG{logger: l, cfg: cfg, health: newHealthTests(cfg)}
	if err := d.reseedLocked(); err != nil {
		return nil, err
	}
	return d, nil
}

// Fill draws len(b) uniform random bytes into b, running continuous health
// tests on every block produced. Returns the health test's HealthTestFailed
// error and leaves the DRBG permanently failed if a health test trips; every
// later Fill returns EntropyFailure.
func (d *DRBG) Fill(b []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.failed {
		return errors.New(errors.EntropyFailure, "DRBG is in failed state, refusing to produce output")
	}

	n := len(b)
	offset := 0
	for offset < n {
		blockSize := counterSize
		if n-offset < counterSize {
			blockSize = n - offset
		}
		incCounter(&d.counter)
		var out [counterSize]byte
		d.block.Encrypt(out[:], d.counter[:])
		copy(b[offset:offset+blockSize], out[:blockSize])

		if err := d.health.observe(out[:blockSize]); err != nil {
			d.failed = true
			d.logger.Error("DRBG continuous health test failed, entering failed state", "error", err)
			return err
		}

		offset += blockSize
	}

	d.usage += uint64(n)
	if d.usage >= d.cfg.ByteBudget {
		if err := d.reseedLocked(); err != nil {
			d.failed = true
			return err
		}
	}
	return nil
}

// Reseed forces an immediate reseed regardless of the byte budget.
func (d *DRBG) Reseed() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.reseedLocked()
}

// Failed reports whether the DRBG has entered its permanent failure state.
// No wipe pass may draw from a failed DRBG.
func (d *DRBG) Failed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.failed
}

// Close waits for any in-flight Fill to finish and marks the DRBG failed so
// no further draw succeeds. The DRBG is the one process-wide long-lived
// object in this system; teardown must be explicit and blocking.
func (d *DRBG) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failed = true
}

func (d *DRBG) reseedLocked() error {
	seed, err := whitenedSeed()
	if err != nil {
		return errors.Wrap(err, errors.ReseedFailed)
	}

	block, err := aes.NewCipher(seed[:keySize])
	if err != nil {
		return errors.Wrap(err, errors.ReseedFailed)
	}

	d.block = block
	copy(d.counter[:], seed[keySize:keySize+counterSize])
	d.usage = 0
	d.health.reset()
	return nil
}

// whitenedSeed combines the OS cryptographic source, high-resolution timing
// jitter, and a system-entropy snapshot into one seed.
// Hardware RNG is folded in implicitly: crypto/rand already prefers
// RDRAND/RDSEED or /dev/urandom as the platform provides.
func whitenedSeed() ([]byte, error) {
	seed := make([]byte, keySize+counterSize)
	if _, err := io.ReadFull(rand.Reader, seed); err != nil {
		return nil, errors.New(errors.SeedSourceUnavailable, "OS entropy source unavailable").WithMetadata("cause", err.Error())
	}

	jitter := timingJitter()
	snapshot := systemEntropySnapshot()

	for i := range seed {
		seed[i] ^= jitter[i%len(jitter)]
		seed[i] ^= snapshot[i%len(snapshot)]
	}
	return seed, nil
}

// timingJitter samples nanosecond-resolution clock deltas across a handful
// of iterations; scheduler and cache-timing noise make consecutive deltas
// unpredictable even though the clock itself is not a secret.
func timingJitter() []byte {
	var buf [8]byte
	prev := time.Now()
	for i := 0; i < 8; i++ {
		now := time.Now()
		delta := now.Sub(prev).Nanoseconds()
		buf[i] = byte(delta)
		prev = now
	}
	return buf[:]
}

func incCounter(v *[counterSize]byte) {
	for i := counterSize - 1; i >= 0; i-- {
		v[i]++
		if v[i] != 0 {
			break
		}
	}
}
