// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package recovery

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/sony/gobreaker"
	"github.com/stratastor/logger"
	"github.com/tinkershack/veriwipe/pkg/errors"
)

// Config holds the coordinator's retry and circuit-breaker tuning.
type Config struct {
	MaxTransientRetries uint
	CircuitFailureRatio float64       // failure rate over the sliding window that opens the breaker
	CircuitWindow       time.Duration // sliding-window interval
	CircuitCooldown     time.Duration // open-state duration before a half-open probe
	MinRequestsToTrip   uint32
}

// DefaultConfig matches stated defaults.
func DefaultConfig() Config {
	return Config{
		MaxTransientRetries: 5,
		CircuitFailureRatio: 0.6,
		CircuitWindow:       30 * time.Second,
		CircuitCooldown:     60 * time.Second,
		MinRequestsToTrip:   10,
	}
}

// SelfHealer attempts a driver reload / device rescan in response to a
// Hardware-class failure, before the coordinator retries the operation.
type SelfHealer interface {
	SelfHeal(ctx context.Context, devicePath string) error
}

// BadSectorRecorder appends a bad-sector entry to the wipe's checkpoint
// record, satisfied by *checkpoint.Record without importing it here.
type BadSectorRecorder interface {
	AppendBadSector(lba uint64, length uint32, errorClass string)
}

// Coordinator is the per-drive Recovery Coordinator (C8).
type Coordinator struct {
	logger  logger.Logger
	cfg     Config
	healer  SelfHealer
	breaker *gobreaker.CircuitBreaker[struct{}]

	devicePath string
	method     SubmissionMethod
}

// New builds a Coordinator for one drive, devicePath, starting on the
// asynchronous submission ring.
func New(l logger.Logger, cfg Config, healer SelfHealer, devicePath string) *Coordinator {
	c := &Coordinator{logger: l, cfg: cfg, healer: healer, devicePath: devicePath, method: MethodAsyncSubmissionRing}

	settings := gobreaker.Settings{
		Name:        "recovery:" + devicePath,
		MaxRequests: 1,
		Interval:    cfg.CircuitWindow,
		Timeout:     cfg.CircuitCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequestsToTrip {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= cfg.CircuitFailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			l.Warn("recovery circuit breaker state change", "drive", name, "from", from, "to", to)
		},
	}
	c.breaker = gobreaker.NewCircuitBreaker[struct{}](settings)
	return c
}

// Attempt runs op, classifying any failure and applying the per-class
// policy from table. badSector is appended to rec on a
// BadSector classification rather than aborting the wipe.
func (c *Coordinator) Attempt(ctx context.Context, op func(ctx context.Context) error, classify Classifier, rec BadSectorRecorder, lba uint64, extentLen uint32) error {
	_, err := c.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, c.runClassified(ctx, op, classify, rec, lba, extentLen)
	})
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return errors.New(errors.CircuitOpen, "recovery circuit breaker open for drive").WithMetadata("device_path", c.devicePath)
	}
	return err
}

func (c *Coordinator) runClassified(ctx context.Context, op func(ctx context.Context) error, classify Classifier, rec BadSectorRecorder, lba uint64, extentLen uint32) error {
	firstErr := op(ctx)
	if firstErr == nil {
		return nil
	}
	class := classify(firstErr)

	switch class {
	case ClassTransient:
		return c.retryTransient(ctx, op)

	case ClassHardware:
		if c.healer != nil {
			if healErr := c.healer.SelfHeal(ctx, c.devicePath); healErr != nil {
				c.logger.Warn("self-heal failed", "device_path", c.devicePath, "error", healErr)
			}
		}
		return c.retryTransient(ctx, op)

	case ClassBadSector:
		if rec != nil {
			rec.AppendBadSector(lba, extentLen, string(class))
		}
		c.logger.Warn("bad sector recorded, skipping extent", "device_path", c.devicePath, "lba", lba, "length", extentLen)
		return nil

	default: // ClassFatal and anything unrecognized
		return errors.Wrap(firstErr, errors.FatalBusError).WithMetadata("device_path", c.devicePath)
	}
}

func (c *Coordinator) retryTransient(ctx context.Context, op func(ctx context.Context) error) error {
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, op(ctx)
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(c.cfg.MaxTransientRetries))
	if err != nil {
		return errors.Wrap(err, errors.RecoveryExhausted).WithMetadata("device_path", c.devicePath)
	}
	return nil
}

// SetMethod overrides the coordinator's currently tracked submission
// method, used when the I/O Engine has itself fallen back a rung.
func (c *Coordinator) SetMethod(m SubmissionMethod) {
	c.method = m
}

// Method returns the currently tracked submission method.
func (c *Coordinator) Method() SubmissionMethod {
	return c.method
}

// FallbackOnPersistentHardwareError transitions the coordinator's tracked
// method to the next rung of the ladder, or reports that degraded mode
// now applies.
func (c *Coordinator) FallbackOnPersistentHardwareError() (next SubmissionMethod, degraded bool) {
	n, ok := NextMethod(c.method)
	if !ok {
		return c.method, true
	}
	c.method = n
	return n, false
}
