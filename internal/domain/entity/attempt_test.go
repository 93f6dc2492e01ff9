package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestion_IsCorrect(t *testing.T) {
	question := &Question{CorrectOption: "A"}

	assert.True(t, question.IsCorrect("A"))
	assert.False(t, question.IsCorrect("B"))
	// Регистр имеет значение
	assert.False(t, question.IsCorrect("a"))
	assert.False(t, question.IsCorrect(""))
}

func TestAnswerMap_ScanValue(t *testing.T) {
	t.Run("Round trip", func(t *testing.T) {
		original := AnswerMap{1: "A", 2: "C", 7: "D"}

		value, err := original.Value()
		require.NoError(t, err)

		var decoded AnswerMap
		err = decoded.Scan([]byte(value.(string)))
		require.NoError(t, err)
		assert.Equal(t, original, decoded)
	})

	t.Run("Nil value", func(t *testing.T) {
		var decoded AnswerMap
		err := decoded.Scan(nil)
		require.NoError(t, err)
		assert.Empty(t, decoded)
	})

	t.Run("Nil map serializes to empty object", func(t *testing.T) {
		var m AnswerMap
		value, err := m.Value()
		require.NoError(t, err)
		assert.Equal(t, "{}", value)
	})
}

func TestQuizAttempt_Percentage(t *testing.T) {
	t.Run("Rounds to two decimals", func(t *testing.T) {
		attempt := &QuizAttempt{Score: 2, TotalQuestions: 3}
		assert.Equal(t, 66.67, attempt.Percentage())
	})

	t.Run("Perfect score", func(t *testing.T) {
		attempt := &QuizAttempt{Score: 5, TotalQuestions: 5}
		assert.Equal(t, 100.0, attempt.Percentage())
	})

	t.Run("Zero questions", func(t *testing.T) {
		attempt := &QuizAttempt{Score: 0, TotalQuestions: 0}
		assert.Equal(t, 0.0, attempt.Percentage())
	})
}

func TestQuizAttempt_IsCompleted(t *testing.T) {
	attempt := &QuizAttempt{}
	assert.False(t, attempt.IsCompleted())

	now := time.Now()
	attempt.CompletedAt = &now
	assert.True(t, attempt.IsCompleted())
}
