// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package ioengine implements C5: delivers pattern bytes to a device at
// near-media-rate, with alignment, adaptive buffering, thermal throttling,
// and a durability barrier after every pass.
package ioengine

import (
	"context"
	"sync"
	"time"

	"github.com/stratastor/logger"
	"github.com/tinkershack/veriwipe/pkg/drive"
	"github.com/tinkershack/veriwipe/pkg/errors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Device is the minimal surface the I/O Engine drives. Concrete
// implementations wrap an O_DIRECT file descriptor (async submission ring,
// direct aligned, memory-mapped, or portable buffered —
// submission-model ladder); tests substitute an in-memory fake.
type Device interface {
	WriteAt(ctx context.Context, p []byte, lba uint64) (n int, err error)
	Flush(ctx context.Context) error
}

// ThermalSource reports the drive's current temperature in Celsius.
type ThermalSource interface {
	TemperatureC(ctx context.Context) (float64, error)
}

// Thresholds holds the thermal-throttling boundaries.
type Thresholds struct {
	SoftC     float64 // reduce queue depth, inject sleeps proportional to overshoot
	HardC     float64 // suspend submission until back below soft
	CriticalC float64 // abort with ThermalCritical
}

// DefaultThresholds matches stated defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{SoftC: 65, HardC: 75, CriticalC: 85}
}

// bufferSize returns the adaptive buffer size's starting point for a media
// class.
func bufferSize(mk drive.MediaKind) int {
	switch mk {
	case drive.MediaRotating:
		return 4 << 20
	case drive.MediaNAND:
		return 8 << 20
	case drive.MediaSCM:
		return 16 << 20
	case drive.MediaEmbedded:
		return 1 << 20
	case drive.MediaShingled:
		return 256 << 20 // zone-size class default; real zone size overrides at runtime
	default:
		return 4 << 20
	}
}

// queueDepth returns the media-class default submission queue depth.
func queueDepth(mk drive.MediaKind) int {
	switch mk {
	case drive.MediaRotating:
		return 2
	case drive.MediaNAND:
		return 8
	case drive.MediaSCM:
		return 32
	case drive.MediaShingled:
		return 1 // zone-sequential: writes within a zone must never overlap or reorder
	default:
		return 8
	}
}

// Engine writes one pass of a pattern stream to a Device, honoring
// alignment, adaptive buffering, thermal throttling, and the post-pass
// durability barrier.
type Engine struct {
	logger    logger.Logger
	device    Device
	thermal   ThermalSource
	thresh    Thresholds
	mediaKind drive.MediaKind

	mu         sync.Mutex
	bufSize    int
	queueDepth int
	limiter    *rate.Limiter // gates submission rate during soft-threshold throttling
}

// New builds an Engine sized from d's media class.
func New(l logger.Logger, device Device, thermal ThermalSource, d *drive.Descriptor) *Engine {
	return &Engine{
		logger:     l,
		device:     device,
		thermal:    thermal,
		thresh:     DefaultThresholds(),
		mediaKind:  d.MediaKind,
		bufSize:    bufferSize(d.MediaKind),
		queueDepth: queueDepth(d.MediaKind),
		limiter:    rate.NewLimiter(rate.Inf, 1),
	}
}

// Chunk is one aligned unit of work: write content starting at lba.
type Chunk struct {
	LBA     uint64
	Content []byte
}

// WritePass submits every chunk in chunks, fanning out up to the engine's
// current queue depth, polling thermal state before each submission batch,
// and issuing the durability barrier only once every chunk has completed
// successfully. onDurable is invoked (from a single goroutine, in
// increasing LBA order is NOT guaranteed across workers) after the flush
// succeeds, to let the caller advance its checkpoint.
//
// Shingled media takes a separate zone-sequential path: concurrent or
// out-of-order writes within a zone corrupt the zone, so chunks are
// written one at a time in the order given, with a flush at each zone
// boundary before the next zone is opened.
func (e *Engine) WritePass(ctx context.Context, chunks []Chunk, logicalBlockSize, physicalBlockSize uint32, onDurable func(bytesWritten uint64)) error {
	for _, c := range chunks {
		if !aligned(c.LBA, logicalBlockSize, physicalBlockSize) {
			return errors.New(errors.AlignmentViolation, "chunk not aligned to required boundary").
				WithMetadata("lba", itoa(c.LBA))
		}
	}

	if e.mediaKind == drive.MediaShingled {
		return e.writePassZoneSequential(ctx, chunks, onDurable)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.currentQueueDepth())

	var total uint64
	var totalMu sync.Mutex

	for _, c := range chunks {
		c := c
		g.Go(func() error {
			if err := e.throttleForThermal(gctx); err != nil {
				return err
			}
			if err := e.limiter.Wait(gctx); err != nil {
				return err
			}
			if _, err := e.device.WriteAt(gctx, c.Content, c.LBA); err != nil {
				return errors.Wrap(err, errors.WriteFailed).WithMetadata("lba", itoa(c.LBA))
			}
			totalMu.Lock()
			total += uint64(len(c.Content))
			totalMu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	if err := e.device.Flush(ctx); err != nil {
		return errors.Wrap(err, errors.FlushFailed)
	}
	if onDurable != nil {
		onDurable(total)
	}
	return nil
}

// writePassZoneSequential writes chunks one at a time, strictly in the
// order given (callers generate them in ascending LBA order), flushing
// every time accumulated writes reach a zone boundary before the next
// zone is opened: seek to zone start, write zone, flush, advance.
func (e *Engine) writePassZoneSequential(ctx context.Context, chunks []Chunk, onDurable func(bytesWritten uint64)) error {
	var total uint64
	var sinceFlush uint64

	for _, c := range chunks {
		if err := e.throttleForThermal(ctx); err != nil {
			return err
		}
		if err := e.limiter.Wait(ctx); err != nil {
			return err
		}
		if _, err := e.device.WriteAt(ctx, c.Content, c.LBA); err != nil {
			return errors.Wrap(err, errors.WriteFailed).WithMetadata("lba", itoa(c.LBA))
		}

		n := uint64(len(c.Content))
		total += n
		sinceFlush += n

		if sinceFlush >= e.zoneBytes() {
			if err := e.device.Flush(ctx); err != nil {
				return errors.Wrap(err, errors.FlushFailed)
			}
			sinceFlush = 0
		}
	}

	if sinceFlush > 0 {
		if err := e.device.Flush(ctx); err != nil {
			return errors.Wrap(err, errors.FlushFailed)
		}
	}
	if onDurable != nil {
		onDurable(total)
	}
	return nil
}

// zoneBytes returns the byte span treated as one zone's worth of writes
// between durability barriers.
func (e *Engine) zoneBytes() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return uint64(e.bufSize)
}

// throttleForThermal polls the drive's temperature and blocks (soft/hard)
// or aborts (critical).
func (e *Engine) throttleForThermal(ctx context.Context) error {
	if e.thermal == nil {
		return nil
	}
	tempC, err := e.thermal.TemperatureC(ctx)
	if err != nil {
		return nil // thermal sensing is best-effort; absence is not fatal
	}

	if tempC >= e.thresh.CriticalC {
		return errors.New(errors.ThermalCritical, "drive temperature at or above critical threshold").
			WithMetadata("temperature_c", ftoa(tempC))
	}

	for tempC >= e.thresh.HardC {
		e.logger.Warn("suspending submission: temperature above hard threshold", "temperature_c", tempC)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
		tempC, err = e.thermal.TemperatureC(ctx)
		if err != nil {
			return nil
		}
		if tempC >= e.thresh.CriticalC {
			return errors.New(errors.ThermalCritical, "drive temperature reached critical threshold while suspended")
		}
	}

	if tempC >= e.thresh.SoftC {
		overshoot := tempC - e.thresh.SoftC
		sleep := time.Duration(overshoot*100) * time.Millisecond
		e.reduceQueueDepth()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}
	}
	return nil
}

func (e *Engine) currentQueueDepth() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queueDepth
}

// reduceQueueDepth halves the queue depth on backpressure; never
// below 1.
func (e *Engine) reduceQueueDepth() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.queueDepth > 1 {
		e.queueDepth /= 2
	}
}

// ReduceOnBackpressure is called by the Recovery Coordinator's circuit
// breaker to shed queue depth on a per-drive failure-rate signal.
func (e *Engine) ReduceOnBackpressure() {
	e.reduceQueueDepth()
}

func aligned(lba uint64, logicalBlockSize, physicalBlockSize uint32) bool {
	if logicalBlockSize == 0 || physicalBlockSize <= logicalBlockSize {
		return true
	}
	return lba%uint64(physicalBlockSize/logicalBlockSize) == 0
}
