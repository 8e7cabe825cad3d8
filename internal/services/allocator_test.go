package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYearPrefix(t *testing.T) {
	assert.Equal(t, "25", yearPrefix(2025))
	assert.Equal(t, "99", yearPrefix(1999))
	assert.Equal(t, "00", yearPrefix(2100))
	assert.Equal(t, "07", yearPrefix(2007))
}

func TestNextInSequenceCases(t *testing.T) {
	t.Run("first allocation in a year", func(t *testing.T) {
		got, err := nextInSequence("25", "")
		require.NoError(t, err)
		assert.Equal(t, "25001", got)
	})

	t.Run("increments from max", func(t *testing.T) {
		got, err := nextInSequence("25", "25041")
		require.NoError(t, err)
		assert.Equal(t, "25042", got)
	})

	t.Run("sequence resets per year prefix", func(t *testing.T) {
		got, err := nextInSequence("26", "")
		require.NoError(t, err)
		assert.Equal(t, "26001", got)
	})

	t.Run("zero padding holds through the range", func(t *testing.T) {
		got, err := nextInSequence("25", "25009")
		require.NoError(t, err)
		assert.Equal(t, "25010", got)

		got, err = nextInSequence("25", "25099")
		require.NoError(t, err)
		assert.Equal(t, "25100", got)
	})

	t.Run("exhaustion at 999", func(t *testing.T) {
		_, err := nextInSequence("25", "25999")
		assert.Error(t, err)
	})

	t.Run("malformed max", func(t *testing.T) {
		_, err := nextInSequence("25", "25x41")
		assert.Error(t, err)

		_, err = nextInSequence("25", "2541")
		assert.Error(t, err)
	})
}

func TestNextInSequenceEnquiries(t *testing.T) {
	got, err := nextInSequence("", "")
	require.NoError(t, err)
	assert.Equal(t, "001", got)

	got, err = nextInSequence("", "007")
	require.NoError(t, err)
	assert.Equal(t, "008", got)

	_, err = nextInSequence("", "999")
	assert.Error(t, err)
}
