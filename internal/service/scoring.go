package service

import (
	"github.com/yourusername/quizmaster-api/internal/domain/entity"
)

// ComputeScore подсчитывает число правильных ответов.
// Вопрос без ответа считается неправильным; ответы на чужие ID вопросов
// молча игнорируются. Функция чистая: не трогает ни БД, ни часы.
func ComputeScore(questions []entity.Question, answers entity.AnswerMap) (score, total int) {
	total = len(questions)
	for i := range questions {
		selected, ok := answers[questions[i].ID]
		if !ok {
			continue
		}
		if questions[i].IsCorrect(selected) {
			score++
		}
	}
	return score, total
}
