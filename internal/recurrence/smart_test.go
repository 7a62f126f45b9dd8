package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextSmartFallback(t *testing.T) {
	rule := mustRule(t, TypeSmart, Config{BaseMonths: 3})
	anchor := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

	t.Run("no completions steps from anchor", func(t *testing.T) {
		next, err := rule.Next(anchor, anchor, nil)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 4, 15, 9, 0, 0, 0, time.UTC), next)
	})

	t.Run("single completion still uses the base interval", func(t *testing.T) {
		history := []time.Time{time.Date(2024, 4, 20, 10, 0, 0, 0, time.UTC)}
		after := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
		next, err := rule.Next(anchor, after, history)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 7, 15, 9, 0, 0, 0, time.UTC), next)
	})

	t.Run("fallback skips past occurrences", func(t *testing.T) {
		after := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
		next, err := rule.Next(anchor, after, nil)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 10, 15, 9, 0, 0, 0, time.UTC), next)
	})

	t.Run("no baseMonths and thin history is a config error", func(t *testing.T) {
		bare := Rule{Type: TypeSmart}
		_, err := bare.Next(anchor, anchor, nil)
		assert.ErrorIs(t, err, ErrConfig)
	})
}

func TestNextSmartLearnedInterval(t *testing.T) {
	anchor := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	history := []time.Time{
		time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 4, 2, 9, 0, 0, 0, time.UTC), // 92 days later
		time.Date(2024, 7, 5, 9, 0, 0, 0, time.UTC), // 94 days later
	}
	after := time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC)

	t.Run("smoothed when learning is enabled", func(t *testing.T) {
		rule := mustRule(t, TypeSmart, Config{BaseMonths: 3, LearningEnabled: true, FlexibilityDays: 3})
		next, err := rule.Next(anchor, after, history)
		require.NoError(t, err)
		// 0.4*94 + 0.6*92 = 92.8 days after the last completion.
		want := time.Date(2024, 10, 6, 4, 12, 0, 0, time.UTC)
		assert.WithinDuration(t, want, next, time.Second)

		earliest, latest := rule.Window(next)
		assert.Equal(t, next.Add(-72*time.Hour), earliest)
		assert.Equal(t, next.Add(72*time.Hour), latest)
	})

	t.Run("plain mean when learning is disabled", func(t *testing.T) {
		rule := mustRule(t, TypeSmart, Config{BaseMonths: 3})
		next, err := rule.Next(anchor, after, history)
		require.NoError(t, err)
		// (92+94)/2 = 93 days after the last completion.
		assert.WithinDuration(t, time.Date(2024, 10, 6, 9, 0, 0, 0, time.UTC), next, time.Second)
	})
}

func TestNextSmartCatchesUp(t *testing.T) {
	rule := mustRule(t, TypeSmart, Config{LearningEnabled: false})
	anchor := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	history := []time.Time{
		time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 11, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 21, 9, 0, 0, 0, time.UTC), // steady 10-day cadence
	}
	// Long after several projected occurrences have passed.
	after := time.Date(2024, 2, 25, 12, 0, 0, 0, time.UTC)
	next, err := rule.Next(anchor, after, history)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), next, time.Second)
}

func TestNextSmartHistoryWindow(t *testing.T) {
	// Old gaps outside the trailing window must not influence the estimate.
	rule := mustRule(t, TypeSmart, Config{LearningEnabled: false})
	anchor := time.Date(2020, 1, 1, 9, 0, 0, 0, time.UTC)

	history := []time.Time{
		time.Date(2020, 1, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2022, 10, 1, 9, 0, 0, 0, time.UTC), // ancient, enormous gap
	}
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < SmartHistoryWindow; i++ {
		history = append(history, base.Add(time.Duration(i)*10*day))
	}

	last := history[len(history)-1]
	next, err := rule.Next(anchor, last, history)
	require.NoError(t, err)
	assert.WithinDuration(t, last.Add(10*day), next, time.Second)
}

func TestNextSmartDegenerateHistory(t *testing.T) {
	anchor := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	same := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	history := []time.Time{same, same, same}

	t.Run("falls back to base interval", func(t *testing.T) {
		rule := mustRule(t, TypeSmart, Config{BaseMonths: 2})
		next, err := rule.Next(anchor, same, history)
		require.NoError(t, err)
		assert.Equal(t, same.Add(60*day), next)
	})

	t.Run("errors without a base interval", func(t *testing.T) {
		bare := Rule{Type: TypeSmart}
		_, err := bare.Next(anchor, same, history)
		assert.ErrorIs(t, err, ErrConfig)
	})
}

func TestNextSmartUnsortedHistory(t *testing.T) {
	rule := mustRule(t, TypeSmart, Config{LearningEnabled: false})
	anchor := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	history := []time.Time{
		time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC),
	}
	after := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)
	next, err := rule.Next(anchor, after, history)
	require.NoError(t, err)
	// Gaps are 31 and 30 days once sorted; mean is 30.5.
	assert.WithinDuration(t, after.Add(30*day+12*time.Hour), next, time.Second)
}
