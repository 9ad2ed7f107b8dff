// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package checkpoint

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stratastor/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger(t *testing.T) logger.Logger {
	t.Helper()
	l, err := logger.NewTag(logger.Config{LogLevel: "debug"}, "test")
	require.NoError(t, err)
	return l
}

func TestCommitAndGetRoundtrip(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(testLogger(t), filepath.Join(dir, "checkpoints.json"))
	require.NoError(t, s.Load())

	r := NewRecord("fp1", "planhash1", 1000)
	r.Advance(500)
	require.NoError(t, s.Commit(r))

	got, ok := s.Get("fp1")
	require.True(t, ok)
	assert.Equal(t, uint64(500), got.BytesConfirmedDurable)
}

func TestCommitRejectsInvalidRecord(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(testLogger(t), filepath.Join(dir, "checkpoints.json"))

	r := NewRecord("fp1", "planhash1", 100)
	r.BytesConfirmedDurable = 200 // violates the invariant directly

	err := s.Commit(r)
	assert.Error(t, err)
}

func TestLoadPersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "checkpoints.json")

	s1 := NewStore(testLogger(t), path)
	require.NoError(t, s1.Load())
	r := NewRecord("fp1", "planhash1", 1000)
	r.Advance(300)
	require.NoError(t, s1.Commit(r))

	s2 := NewStore(testLogger(t), path)
	require.NoError(t, s2.Load())
	got, ok := s2.Get("fp1")
	require.True(t, ok)
	assert.Equal(t, uint64(300), got.BytesConfirmedDurable)
}

func TestResumeRefusesOnPlanHashMismatch(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(testLogger(t), filepath.Join(dir, "checkpoints.json"))
	require.NoError(t, s.Load())

	r := NewRecord("fp1", "planhash1", 1000)
	require.NoError(t, s.Commit(r))

	_, err := s.Resume("fp1", "different-plan-hash")
	assert.Error(t, err)
}

func TestResumeSucceedsOnMatchingPlanHash(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(testLogger(t), filepath.Join(dir, "checkpoints.json"))
	require.NoError(t, s.Load())

	r := NewRecord("fp1", "planhash1", 1000)
	require.NoError(t, s.Commit(r))

	got, err := s.Resume("fp1", "planhash1")
	require.NoError(t, err)
	assert.Equal(t, "fp1", got.Fingerprint)
}

func TestResumeNotFound(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(testLogger(t), filepath.Join(dir, "checkpoints.json"))
	require.NoError(t, s.Load())

	_, err := s.Resume("missing", "anyhash")
	assert.Error(t, err)
}

func TestMaybeCommitRespectsAmortizationBound(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(testLogger(t), filepath.Join(dir, "checkpoints.json"))
	require.NoError(t, s.Load())

	r := NewRecord("fp1", "planhash1", 10000)
	require.NoError(t, s.Commit(r))

	r.Advance(50) // 0.5% progress, below the 1% bound
	require.NoError(t, s.MaybeCommit(r))
	got, _ := s.Get("fp1")
	assert.Equal(t, uint64(0), got.BytesConfirmedDurable)

	r.Advance(150) // 1.5% progress, crosses the bound
	require.NoError(t, s.MaybeCommit(r))
	got, _ = s.Get("fp1")
	assert.Equal(t, uint64(150), got.BytesConfirmedDurable)
}

func TestClearRemovesRecord(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(testLogger(t), filepath.Join(dir, "checkpoints.json"))
	require.NoError(t, s.Load())

	r := NewRecord("fp1", "planhash1", 1000)
	require.NoError(t, s.Commit(r))
	require.NoError(t, s.Clear("fp1"))

	_, ok := s.Get("fp1")
	assert.False(t, ok)
}

func TestPruneRemovesStaleRecords(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(testLogger(t), filepath.Join(dir, "checkpoints.json"))
	require.NoError(t, s.Load())

	r := NewRecord("fp1", "planhash1", 1000)
	r.LastUpdated = time.Now().Add(-48 * time.Hour)
	s.tbl.Records["fp1"] = r

	removed, err := s.Prune(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, ok := s.Get("fp1")
	assert.False(t, ok)
}

func TestRecordInvariant(t *testing.T) {
	r := NewRecord("fp1", "hash", 1000)
	assert.True(t, r.Valid())
	r.BytesConfirmedDurable = 1001
	assert.False(t, r.Valid())
}
