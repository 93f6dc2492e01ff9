package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
)

func TestComputeScore(t *testing.T) {
	questions := []entity.Question{
		{ID: 1, CorrectOption: "A"},
		{ID: 2, CorrectOption: "B"},
		{ID: 3, CorrectOption: "C"},
	}

	t.Run("All correct", func(t *testing.T) {
		score, total := ComputeScore(questions, entity.AnswerMap{1: "A", 2: "B", 3: "C"})
		assert.Equal(t, 3, score)
		assert.Equal(t, 3, total)
	})

	t.Run("Missing answer counts as incorrect", func(t *testing.T) {
		score, total := ComputeScore(questions, entity.AnswerMap{1: "A"})
		assert.Equal(t, 1, score)
		assert.Equal(t, 3, total)
	})

	t.Run("Unknown question ids ignored", func(t *testing.T) {
		score, _ := ComputeScore(questions, entity.AnswerMap{1: "A", 999: "A", 1000: "B"})
		assert.Equal(t, 1, score)
	})

	t.Run("Case sensitive comparison", func(t *testing.T) {
		score, _ := ComputeScore(questions, entity.AnswerMap{1: "a", 2: "b", 3: "c"})
		assert.Equal(t, 0, score)
	})

	t.Run("Empty answers", func(t *testing.T) {
		score, total := ComputeScore(questions, entity.AnswerMap{})
		assert.Equal(t, 0, score)
		assert.Equal(t, 3, total)
	})

	t.Run("No questions", func(t *testing.T) {
		score, total := ComputeScore(nil, entity.AnswerMap{1: "A"})
		assert.Equal(t, 0, score)
		assert.Equal(t, 0, total)
	})
}
