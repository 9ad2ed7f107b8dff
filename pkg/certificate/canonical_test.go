// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package certificate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCertificate() *Certificate {
	return &Certificate{
		CertificateVersion: SchemaVersion,
		CertificateUUID:    "11111111-1111-1111-1111-111111111111",
		Drive:              DriveInfo{Model: "X1", Serial: "S1", Size: 1000, Kind: "ATA"},
		Plan:               PlanInfo{Algorithm: "DOD_5220_22_M", Passes: 3, HiddenAreaPolicy: "DETECT", PreWipeHiddenArea: "NONE"},
		Timing: TimingInfo{
			Started:   time.Unix(1700000000, 0),
			Completed: time.Unix(1700000100, 0),
		},
		Verification: VerificationInfo{Level: 2, Confidence: 96},
		Compliance:   []string{TagDoD, TagNIST80088},
		Operator:     OperatorInfo{ID: "op", Organization: "org"},
	}
}

func TestCanonicalFieldsDeterministic(t *testing.T) {
	c := sampleCertificate()
	a, err := canonicalFields(c)
	require.NoError(t, err)
	b, err := canonicalFields(c)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCanonicalFieldsChangesWithData(t *testing.T) {
	c1 := sampleCertificate()
	c2 := sampleCertificate()
	c2.Drive.Model = "different"

	a, err := canonicalFields(c1)
	require.NoError(t, err)
	b, err := canonicalFields(c2)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestSerializeIncludesSignatureBlock(t *testing.T) {
	c := sampleCertificate()
	c.Signature = SignatureInfo{Algorithm: "ES256", KeyFingerprint: "abc", Value: "sig"}

	out, err := Serialize(c)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"value":"sig"`)
}
