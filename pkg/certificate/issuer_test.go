// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package certificate

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/stratastor/logger"
	"github.com/stretchr/testify/require"
	"github.com/tinkershack/veriwipe/pkg/drive"
	"github.com/tinkershack/veriwipe/pkg/pattern"
	"github.com/tinkershack/veriwipe/pkg/verify"
)

// plainFileOperations reads keys straight off disk, standing in for
// privilege.FileOperations in tests where no elevation is needed.
type plainFileOperations struct{}

func (plainFileOperations) ReadFile(_ context.Context, path string) ([]byte, error) {
	return os.ReadFile(path)
}
func (plainFileOperations) WriteFile(_ context.Context, path string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(path, data, perm)
}
func (plainFileOperations) AppendFile(context.Context, string, []byte) error { return nil }
func (plainFileOperations) DeleteFile(_ context.Context, path string) error  { return os.Remove(path) }
func (plainFileOperations) CopyFile(context.Context, string, string) error   { return nil }
func (plainFileOperations) Exists(_ context.Context, path string) (bool, error) {
	_, err := os.Stat(path)
	return err == nil, nil
}
func (plainFileOperations) ExecuteCommand(context.Context, string, ...string) ([]byte, error) {
	return nil, nil
}

func testLogger(t *testing.T) logger.Logger {
	t.Helper()
	l, err := logger.NewTag(logger.Config{LogLevel: "debug"}, "test")
	require.NoError(t, err)
	return l
}

func writeTestKey(t *testing.T) string {
	t.Helper()
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	key, err := jwk.Import(priv)
	require.NoError(t, err)

	raw, err := json.Marshal(key)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "signing.jwk")
	require.NoError(t, os.WriteFile(path, raw, 0o600))
	return path
}

func testPlan() *pattern.Plan {
	plan, _ := pattern.BuildPlan(pattern.AlgorithmDoD3Pass, "", &drive.Descriptor{}, pattern.VerifyL2Systematic, 90)
	return plan
}

func passingReport() *verify.Report {
	return &verify.Report{
		Level:      verify.L2Systematic,
		Confidence: 97,
		SubScores: verify.SubScores{
			EntropyUniformity:    0.99,
			StatisticalPassRatio: 1.0,
		},
		Verdict: true,
	}
}

func TestIssueProducesVerifiableCertificate(t *testing.T) {
	keyPath := writeTestKey(t)
	ctx := context.Background()

	signer, err := NewSigner(ctx, testLogger(t), plainFileOperations{}, keyPath)
	require.NoError(t, err)

	issuer := NewIssuer(signer)
	d := &drive.Descriptor{
		Model: "TEST-DRIVE", Serial: "SN123", Protocol: drive.ProtocolATA,
		LogicalBlockSize: 512, LogicalBlockCount: 1000,
	}

	cert, err := issuer.Issue(IssueInput{
		Drive:             d,
		Plan:              testPlan(),
		HiddenAreaPolicy:  "DETECT",
		PreWipeHiddenArea: "NONE",
		Started:           time.Unix(1700000000, 0),
		Completed:         time.Unix(1700000500, 0),
		Report:            passingReport(),
		RecoverySummary:   "clean",
		OperatorID:        "op-1",
		OperatorOrg:       "Acme Data Destruction",
	})
	require.NoError(t, err)
	require.NotEmpty(t, cert.Signature.Value)
	require.Contains(t, cert.Compliance, TagDoD)

	ok, err := Verify(cert, signer.pub)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestIssueRejectsUnverifiedWipe(t *testing.T) {
	keyPath := writeTestKey(t)
	ctx := context.Background()
	signer, err := NewSigner(ctx, testLogger(t), plainFileOperations{}, keyPath)
	require.NoError(t, err)

	issuer := NewIssuer(signer)
	report := passingReport()
	report.Verdict = false

	_, err = issuer.Issue(IssueInput{
		Drive:  &drive.Descriptor{},
		Plan:   testPlan(),
		Report: report,
	})
	require.Error(t, err)
}

func TestVerifyFailsOnTamperedField(t *testing.T) {
	keyPath := writeTestKey(t)
	ctx := context.Background()
	signer, err := NewSigner(ctx, testLogger(t), plainFileOperations{}, keyPath)
	require.NoError(t, err)

	issuer := NewIssuer(signer)
	cert, err := issuer.Issue(IssueInput{
		Drive:   &drive.Descriptor{Model: "X"},
		Plan:    testPlan(),
		Report:  passingReport(),
		Started: time.Unix(1700000000, 0), Completed: time.Unix(1700000100, 0),
	})
	require.NoError(t, err)

	cert.Drive.Model = "TAMPERED"

	ok, err := Verify(cert, signer.pub)
	require.NoError(t, err)
	require.False(t, ok)
}
