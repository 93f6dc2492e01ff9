package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return ts
}

func TestQuiz_StatusAt(t *testing.T) {
	start := mustParse(t, "2024-01-01T10:00:00Z")

	quiz := &Quiz{
		Title:           "Test Quiz",
		DurationMinutes: 30,
		StartTime:       &start,
		IsActive:        true,
	}

	t.Run("Upcoming before start", func(t *testing.T) {
		assert.Equal(t, QuizStatusUpcoming, quiz.StatusAt(mustParse(t, "2024-01-01T09:59:59Z")))
	})

	t.Run("Active at exact start", func(t *testing.T) {
		assert.Equal(t, QuizStatusActive, quiz.StatusAt(start))
	})

	t.Run("Active inside window", func(t *testing.T) {
		assert.Equal(t, QuizStatusActive, quiz.StatusAt(mustParse(t, "2024-01-01T10:15:00Z")))
	})

	t.Run("Active at exact end boundary", func(t *testing.T) {
		// Окно закрыто-закрытое: последняя секунда еще активна
		assert.Equal(t, QuizStatusActive, quiz.StatusAt(mustParse(t, "2024-01-01T10:30:00Z")))
	})

	t.Run("Expired one second after end", func(t *testing.T) {
		assert.Equal(t, QuizStatusExpired, quiz.StatusAt(mustParse(t, "2024-01-01T10:30:01Z")))
	})

	t.Run("Inactive overrides schedule", func(t *testing.T) {
		inactive := &Quiz{DurationMinutes: 30, StartTime: &start, IsActive: false}
		assert.Equal(t, QuizStatusInactive, inactive.StatusAt(mustParse(t, "2024-01-01T10:15:00Z")))
	})

	t.Run("Active without schedule", func(t *testing.T) {
		open := &Quiz{DurationMinutes: 30, IsActive: true}
		assert.Equal(t, QuizStatusActive, open.StatusAt(mustParse(t, "2030-06-15T00:00:00Z")))
	})
}

func TestQuiz_RemainingSeconds(t *testing.T) {
	start := mustParse(t, "2024-01-01T10:00:00Z")
	quiz := &Quiz{DurationMinutes: 30, StartTime: &start, IsActive: true}

	t.Run("Full window before start", func(t *testing.T) {
		remaining := quiz.RemainingSeconds(mustParse(t, "2024-01-01T09:50:00Z"))
		require.NotNil(t, remaining)
		assert.Equal(t, 2400, *remaining)
	})

	t.Run("Counts down inside window", func(t *testing.T) {
		remaining := quiz.RemainingSeconds(mustParse(t, "2024-01-01T10:29:00Z"))
		require.NotNil(t, remaining)
		assert.Equal(t, 60, *remaining)
	})

	t.Run("Zero at end boundary", func(t *testing.T) {
		remaining := quiz.RemainingSeconds(mustParse(t, "2024-01-01T10:30:00Z"))
		require.NotNil(t, remaining)
		assert.Equal(t, 0, *remaining)
	})

	t.Run("Never negative after expiry", func(t *testing.T) {
		remaining := quiz.RemainingSeconds(mustParse(t, "2024-01-02T00:00:00Z"))
		require.NotNil(t, remaining)
		assert.Equal(t, 0, *remaining)
	})

	t.Run("Nil without schedule", func(t *testing.T) {
		open := &Quiz{DurationMinutes: 30, IsActive: true}
		assert.Nil(t, open.RemainingSeconds(mustParse(t, "2024-01-01T10:00:00Z")))
	})
}

func TestQuiz_IsAttemptableAt(t *testing.T) {
	start := mustParse(t, "2024-01-01T10:00:00Z")
	quiz := &Quiz{DurationMinutes: 30, StartTime: &start, IsActive: true}

	assert.False(t, quiz.IsAttemptableAt(mustParse(t, "2024-01-01T09:00:00Z")))
	assert.True(t, quiz.IsAttemptableAt(mustParse(t, "2024-01-01T10:30:00Z")))
	assert.False(t, quiz.IsAttemptableAt(mustParse(t, "2024-01-01T10:30:01Z")))
}
