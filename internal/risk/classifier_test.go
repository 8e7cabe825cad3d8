package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		category string
		want     Tier
	}{
		{"First aid", TierLow},
		{"Near Miss", TierLow},
		{"Lost Time Injury (Other than Bodily Injury – Schedule 1)", TierHigh},
		{"Environmental Incident", TierHigh},
		{"Occupational Illness", TierHigh},
		{"Security Impact", TierHigh},
		{"Property Damage", TierHigh},
		{"Fatal", TierCritical},
		{"Lost Time Injury (Bodily Injury – Schedule 1)", TierCritical},
		{"Dangerous Occurrence", TierCritical},
	}
	for _, tc := range cases {
		t.Run(tc.category, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.category))
			// Re-classifying yields the same tier.
			assert.Equal(t, tc.want, Classify(tc.category))
		})
	}
}

func TestClassifyUnknown(t *testing.T) {
	assert.Equal(t, TierUnknown, Classify("Other"))
	assert.Equal(t, TierUnknown, Classify("Chemical spill in loading bay"))
	assert.Equal(t, TierUnknown, Classify(""))
	// Lookup is case-sensitive.
	assert.Equal(t, TierUnknown, Classify("first aid"))
	assert.Equal(t, TierUnknown, Classify("FATAL"))
}

func TestSLA(t *testing.T) {
	window, ok := TierHigh.SLA()
	require.True(t, ok)
	assert.Equal(t, 24*time.Hour, window)

	window, ok = TierCritical.SLA()
	require.True(t, ok)
	assert.Equal(t, 12*time.Hour, window)

	_, ok = TierLow.SLA()
	assert.False(t, ok)
	_, ok = TierUnknown.SLA()
	assert.False(t, ok)
}

func TestResponseDeadline(t *testing.T) {
	createdAt := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

	deadline := Classify("Fatal").ResponseDeadline(createdAt)
	require.NotNil(t, deadline)
	assert.Equal(t, time.Date(2025, 6, 1, 21, 30, 0, 0, time.UTC), *deadline)

	deadline = Classify("Environmental Incident").ResponseDeadline(createdAt)
	require.NotNil(t, deadline)
	assert.Equal(t, time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC), *deadline)

	assert.Nil(t, Classify("Near Miss").ResponseDeadline(createdAt))
	assert.Nil(t, Classify("Other").ResponseDeadline(createdAt))
}
