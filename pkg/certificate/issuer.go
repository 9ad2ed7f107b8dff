// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package certificate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jws"
	"github.com/stratastor/logger"
	"github.com/tinkershack/veriwipe/internal/system/privilege"
	"github.com/tinkershack/veriwipe/pkg/drive"
	"github.com/tinkershack/veriwipe/pkg/errors"
	"github.com/tinkershack/veriwipe/pkg/pattern"
	"github.com/tinkershack/veriwipe/pkg/verify"
)

// Signer loads an externally-provisioned signing key and produces detached
// JWS signatures over canonical certificate bytes. It never generates or
// stores private keys — the key must already exist on disk,
// placed there by the operator's key-management process.
type Signer struct {
	logger logger.Logger
	files  privilege.FileOperations
	key    jwk.Key
	pub    jwk.Key
}

// NewSigner loads the signing key at keyPath (a JWK-formatted private key,
// typically root-owned under /etc/veriwipe/keys) through files, so a
// root-protected key never requires this process itself to run as root.
func NewSigner(ctx context.Context, l logger.Logger, files privilege.FileOperations, keyPath string) (*Signer, error) {
	raw, err := files.ReadFile(ctx, keyPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.SignatureUnavailable).WithMetadata("path", keyPath)
	}

	key, err := jwk.ParseKey(raw)
	if err != nil {
		return nil, errors.Wrap(err, errors.SignatureUnavailable).WithMetadata("operation", "parse_signing_key")
	}

	pub, err := jwk.PublicKeyOf(key)
	if err != nil {
		return nil, errors.Wrap(err, errors.SignatureUnavailable).WithMetadata("operation", "derive_public_key")
	}

	return &Signer{logger: l, files: files, key: key, pub: pub}, nil
}

// Fingerprint returns the signing key's JWK thumbprint, recorded in the
// certificate's signature block so a verifier can locate the matching
// public key without trusting the certificate to self-identify it.
func (s *Signer) Fingerprint() (string, error) {
	thumb, err := s.key.Thumbprint(jwkHashAlg)
	if err != nil {
		return "", errors.Wrap(err, errors.SignatureUnavailable).WithMetadata("operation", "thumbprint")
	}
	return fmt.Sprintf("%x", thumb), nil
}

// Sign produces a detached-payload compact JWS over payload, returning just
// the signature's compact-serialized bytes as a string. Detached signing
// keeps the certificate's own JSON the payload of record; the signature
// block only ever carries the signature value, not a re-encoded copy.
func (s *Signer) Sign(payload []byte) (string, error) {
	sig, err := jws.Sign(nil, jws.WithKey(signAlgFor(s.key), s.key), jws.WithDetachedPayload(payload))
	if err != nil {
		return "", errors.Wrap(err, errors.SignatureUnavailable).WithMetadata("operation", "jws_sign")
	}
	return string(sig), nil
}

// Algorithm reports the JWS algorithm identifier this signer uses, for the
// certificate's signature.algorithm field.
func (s *Signer) Algorithm() string {
	return signAlgFor(s.key).String()
}

// Issuer assembles Certificate values from a completed wipe's inputs and
// signs them. It is the only place in this package that mutates a
// Certificate after construction.
type Issuer struct {
	signer *Signer
}

// NewIssuer builds an Issuer bound to signer.
func NewIssuer(signer *Signer) *Issuer {
	return &Issuer{signer: signer}
}

// IssueInput collects everything needed to assemble one certificate; the
// orchestrator fills this in from the drive descriptor, the executed plan,
// wipe timing, and the verifier's report.
type IssueInput struct {
	Drive             *drive.Descriptor
	Plan              *pattern.Plan
	HiddenAreaPolicy  string
	PreWipeHiddenArea string
	Started           time.Time
	Completed         time.Time
	Report            *verify.Report
	RecoverySummary   string // "not_run" | "clean" | "files_recovered:N"
	OperatorID        string
	OperatorOrg       string
}

// Issue builds and signs a Certificate from in. A certificate is only
// issued for a verified wipe: if in.Report.Verdict is false, Issue returns
// VerificationFailed instead of producing a certificate asserting an
// outcome that did not hold.
func (iss *Issuer) Issue(in IssueInput) (*Certificate, error) {
	if in.Report == nil || !in.Report.Verdict {
		return nil, errors.New(errors.VerificationFailed, "refusing to issue a certificate for an unverified wipe")
	}

	var entropySum float64
	passed := 0
	for _, s := range in.Report.Samples {
		entropySum += s.Entropy
		if s.StatisticalPass {
			passed++
		}
	}
	entropyMean, passRatio := 0.0, 0.0
	if n := len(in.Report.Samples); n > 0 {
		entropyMean = entropySum / float64(n)
		passRatio = float64(passed) / float64(n)
	}

	cert := &Certificate{
		CertificateVersion: SchemaVersion,
		CertificateUUID:    uuid.NewString(),
		Drive: DriveInfo{
			Model:  in.Drive.Model,
			Serial: in.Drive.Serial,
			Size:   in.Drive.SizeBytes(),
			Kind:   string(in.Drive.Protocol),
		},
		Plan: PlanInfo{
			Algorithm:         string(in.Plan.Algorithm),
			Passes:            len(in.Plan.Passes),
			HiddenAreaPolicy:  in.HiddenAreaPolicy,
			PreWipeHiddenArea: in.PreWipeHiddenArea,
		},
		Timing: TimingInfo{
			Started:         in.Started,
			Completed:       in.Completed,
			DurationSeconds: in.Completed.Sub(in.Started).Seconds(),
		},
		Verification: VerificationInfo{
			Level:      int(in.Report.Level),
			Confidence: in.Report.Confidence,
			Entropy:    entropyMean,
			StatisticalResults: StatisticalResultsInfo{
				SamplesChecked: len(in.Report.Samples),
				PassRatio:      passRatio,
			},
			RecoveryResult:     in.RecoverySummary,
			HiddenAreasChecked: in.Report.HiddenAreaCoverage.HPAChecked || in.Report.HiddenAreaCoverage.DCOChecked,
		},
		Operator: OperatorInfo{
			ID:           in.OperatorID,
			Organization: in.OperatorOrg,
		},
	}
	cert.Compliance = EvaluateTags(in.Plan, in.Report)

	payload, err := canonicalFields(cert)
	if err != nil {
		return nil, err
	}

	fp, err := iss.signer.Fingerprint()
	if err != nil {
		return nil, err
	}
	sig, err := iss.signer.Sign(payload)
	if err != nil {
		return nil, err
	}

	cert.Signature = SignatureInfo{
		Algorithm:      iss.signer.Algorithm(),
		KeyFingerprint: fp,
		Value:          sig,
	}
	return cert, nil
}

// Verify independently checks that cert's signature covers cert's own
// canonical bytes under pub, the one property every downstream auditor
// relies on: mutating any field of the certificate invalidates it. Verify
// takes a public key directly rather than a Signer, since the verifying
// party is never assumed to hold (or need) the private key.
func Verify(cert *Certificate, pub jwk.Key) (bool, error) {
	payload, err := canonicalFields(cert)
	if err != nil {
		return false, err
	}

	_, err = jws.Verify([]byte(cert.Signature.Value), jws.WithKey(signAlgFor(pub), pub), jws.WithDetachedPayload(payload))
	if err != nil {
		return false, nil
	}
	return true, nil
}
