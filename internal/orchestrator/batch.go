// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package orchestrator

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// BatchResult pairs one device's outcome with its WipeResult, since a
// wipe-all run must report every drive's result even when some fail.
type BatchResult struct {
	DevicePath string
	Result     *WipeResult
	Err        error
}

// WipeAll fans out opts.DevicePath-less WipeOptions across every device
// path in devicePaths, one goroutine per drive. A single drive's failure
// never aborts its siblings — each gets its own BatchResult.
func (o *Orchestrator) WipeAll(ctx context.Context, devicePaths []string, base WipeOptions) []BatchResult {
	results := make([]BatchResult, len(devicePaths))

	g, gctx := errgroup.WithContext(ctx)
	for i, path := range devicePaths {
		i, path := i, path
		g.Go(func() error {
			opts := base
			opts.DevicePath = path
			res, err := o.Wipe(gctx, opts)
			results[i] = BatchResult{DevicePath: path, Result: res, Err: err}
			return nil // never short-circuit siblings on one drive's failure
		})
	}
	_ = g.Wait()

	return results
}
