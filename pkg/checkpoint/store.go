// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package checkpoint

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/stratastor/logger"
	"github.com/tinkershack/veriwipe/pkg/errors"
)

const defaultCommitFraction = 0.01 // commit at most every 1% of current-pass progress

// table is the on-disk shape: one durable table of records keyed by drive
// fingerprint, written and replaced as a single atomic unit.
type table struct {
	Records map[string]*Record `json:"records"`
}

// Store is the Checkpoint Store (C7). It is concurrent-safe across distinct
// drives; per-drive records are serialized by a per-fingerprint lock.
type Store struct {
	logger logger.Logger
	path   string

	mu     sync.Mutex // guards the table and per-fingerprint lock map
	tbl    *table
	locks  map[string]*sync.Mutex
	lastCommitFraction map[string]float64
}

// NewStore opens (without yet loading) a checkpoint table at path.
func NewStore(l logger.Logger, path string) *Store {
	return &Store{
		logger:             l,
		path:               path,
		tbl:                &table{Records: make(map[string]*Record)},
		locks:              make(map[string]*sync.Mutex),
		lastCommitFraction: make(map[string]float64),
	}
}

// Load reads the table from disk. A missing file is not an error — the
// store starts empty. A corrupted file is backed up and the store also
// starts empty, since after an unclean shutdown the store must expose
// either the last fully committed record or no record at all, never a
// torn one.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, errors.CheckpointCorrupted).WithMetadata("path", s.path)
	}

	var t table
	if err := json.Unmarshal(data, &t); err != nil {
		backupPath := s.path + ".corrupted." + time.Now().Format("20060102-150405")
		if renameErr := os.Rename(s.path, backupPath); renameErr != nil {
			s.logger.Error("failed to back up corrupted checkpoint table", "error", renameErr)
		}
		s.logger.Warn("checkpoint table corrupted, starting empty", "error", err, "backup", backupPath)
		return nil
	}
	if t.Records == nil {
		t.Records = make(map[string]*Record)
	}
	s.tbl = &t
	return nil
}

// lockFor returns (creating if needed) the per-fingerprint lock.
func (s *Store) lockFor(fingerprint string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[fingerprint]
	if !ok {
		l = &sync.Mutex{}
		s.locks[fingerprint] = l
	}
	return l
}

// Get returns the record for fingerprint, or (nil, false) if none exists.
func (s *Store) Get(fingerprint string) (*Record, bool) {
	fl := s.lockFor(fingerprint)
	fl.Lock()
	defer fl.Unlock()

	s.mu.Lock()
	r, ok := s.tbl.Records[fingerprint]
	s.mu.Unlock()
	return r, ok
}

// Commit unconditionally persists r, replacing any existing record for its
// fingerprint. Used at pass boundaries, where a commit is mandatory
// regardless of the 1% amortization bound.
func (s *Store) Commit(r *Record) error {
	if !r.Valid() {
		return errors.New(errors.CheckpointCorrupted, "refusing to commit record violating bytes_confirmed_durable <= total_bytes_per_pass").
			WithMetadata("fingerprint", r.Fingerprint)
	}

	fl := s.lockFor(r.Fingerprint)
	fl.Lock()
	defer fl.Unlock()

	s.mu.Lock()
	s.tbl.Records[r.Fingerprint] = r
	s.lastCommitFraction[r.Fingerprint] = r.ProgressFraction()
	s.mu.Unlock()

	return s.flush()
}

// MaybeCommit commits r only if its progress has advanced by at least the
// 1% amortization bound since the last commit for this fingerprint. Pass
// boundaries must call Commit directly, never this method, since a pass
// boundary commit is mandatory regardless of fractional progress.
func (s *Store) MaybeCommit(r *Record) error {
	s.mu.Lock()
	last := s.lastCommitFraction[r.Fingerprint]
	s.mu.Unlock()

	if r.ProgressFraction()-last < defaultCommitFraction {
		return nil
	}
	return s.Commit(r)
}

// flush serializes the whole table and writes it atomically: tmp file,
// backup of the previous table, then rename, so an unclean shutdown
// never exposes a torn file.
func (s *Store) flush() error {
	s.mu.Lock()
	data, err := json.MarshalIndent(s.tbl, "", "  ")
	s.mu.Unlock()
	if err != nil {
		return errors.Wrap(err, errors.CheckpointWriteFailed).WithMetadata("path", s.path)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return errors.Wrap(err, errors.CheckpointWriteFailed).WithMetadata("path", s.path).WithMetadata("operation", "mkdir")
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return errors.Wrap(err, errors.CheckpointWriteFailed).WithMetadata("path", tmpPath).WithMetadata("operation", "write_temp")
	}

	if _, err := os.Stat(s.path); err == nil {
		backupPath := s.path + ".backup"
		if err := os.Rename(s.path, backupPath); err != nil {
			s.logger.Warn("failed to back up previous checkpoint table", "error", err)
		}
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return errors.Wrap(err, errors.CheckpointWriteFailed).WithMetadata("path", s.path).WithMetadata("operation", "rename")
	}
	return nil
}

// Resume implements the resume protocol: a record resumes only
// if it exists and its plan hash matches requestedPlanHash. A mismatch is
// reported as ResumeIncompatible so the orchestrator can force an explicit
// user decision rather than silently restarting or silently resuming.
func (s *Store) Resume(fingerprint, requestedPlanHash string) (*Record, error) {
	r, ok := s.Get(fingerprint)
	if !ok {
		return nil, errors.New(errors.CheckpointNotFound, "no checkpoint for drive fingerprint").
			WithMetadata("fingerprint", fingerprint)
	}
	if r.PlanHash != requestedPlanHash {
		return nil, errors.New(errors.ResumeIncompatible, "checkpoint plan hash does not match requested plan").
			WithMetadata("fingerprint", fingerprint).
			WithMetadata("checkpoint_plan_hash", r.PlanHash).
			WithMetadata("requested_plan_hash", requestedPlanHash)
	}
	return r, nil
}

// Clear removes the record for fingerprint, used by the `checkpoint clear`
// CLI surface and after a wipe completes.
func (s *Store) Clear(fingerprint string) error {
	fl := s.lockFor(fingerprint)
	fl.Lock()
	defer fl.Unlock()

	s.mu.Lock()
	_, existed := s.tbl.Records[fingerprint]
	delete(s.tbl.Records, fingerprint)
	delete(s.lastCommitFraction, fingerprint)
	s.mu.Unlock()

	if !existed {
		return nil
	}
	return s.flush()
}

// Prune removes records older than maxAge and returns how many were
// removed, for the C7 scheduled pruning job.
func (s *Store) Prune(maxAge time.Duration) (int, error) {
	s.mu.Lock()
	cutoff := time.Now().Add(-maxAge)
	var stale []string
	for fp, r := range s.tbl.Records {
		if r.LastUpdated.Before(cutoff) {
			stale = append(stale, fp)
		}
	}
	for _, fp := range stale {
		delete(s.tbl.Records, fp)
		delete(s.lastCommitFraction, fp)
	}
	s.mu.Unlock()

	if len(stale) == 0 {
		return 0, nil
	}
	return len(stale), s.flush()
}

// List returns every currently known fingerprint, for `checkpoint status`.
func (s *Store) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.tbl.Records))
	for fp := range s.tbl.Records {
		out = append(out, fp)
	}
	return out
}
