// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package certificate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tinkershack/veriwipe/pkg/pattern"
	"github.com/tinkershack/veriwipe/pkg/verify"
)

func TestEvaluateTagsUnverifiedYieldsNone(t *testing.T) {
	plan := testPlan()
	report := passingReport()
	report.Verdict = false

	tags := EvaluateTags(plan, report)
	assert.Empty(t, tags)
}

func TestEvaluateTagsDoD3Pass(t *testing.T) {
	plan := testPlan()
	report := passingReport()

	tags := EvaluateTags(plan, report)
	assert.Contains(t, tags, TagDoD)
	assert.Contains(t, tags, TagNIST80088)
	assert.Contains(t, tags, TagPCIDSS)
}

func TestEvaluateTagsNSARequiresForensicLevel(t *testing.T) {
	plan, err := pattern.BuildPlan(pattern.AlgorithmGutmann35Pass, "", nil, pattern.VerifyL4Forensic, 98)
	assert := assert.New(t)
	assert.NoError(err)

	report := &verify.Report{Confidence: 99, Verdict: true}
	tags := EvaluateTags(plan, report)
	assert.Contains(tags, TagNSA)
}

func TestEvaluateTagsLowConfidenceSkipsBroadTags(t *testing.T) {
	plan := testPlan()
	report := passingReport()
	report.Confidence = 60

	tags := EvaluateTags(plan, report)
	assert.NotContains(t, tags, TagPCIDSS)
}
