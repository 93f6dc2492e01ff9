package repository

import (
	"time"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
)

// AttemptRepository определяет методы для работы с попытками прохождения
type AttemptRepository interface {
	// Create вставляет новую попытку. Возвращает ErrAttemptInProgress,
	// если у пользователя уже есть незавершенная попытка этой викторины
	// (нарушение частичного уникального индекса).
	Create(attempt *entity.QuizAttempt) error
	GetByID(id uint) (*entity.QuizAttempt, error)
	// Complete атомарно завершает попытку: UPDATE ... WHERE completed_at IS NULL.
	// Возвращает ErrAttemptAlreadyCompleted, если попытка уже была завершена
	// конкурирующим запросом.
	Complete(attemptID uint, score, totalQuestions, timeTaken int, answers entity.AnswerMap, completedAt time.Time) error
	GetInProgress(userID, quizID uint) (*entity.QuizAttempt, error)
	ListByUser(userID uint) ([]entity.QuizAttempt, error)
	ListByQuiz(quizID uint) ([]entity.QuizAttempt, error)
	// ListCompletedSince возвращает завершенные попытки с completed_at >= since.
	// Нулевое since означает без ограничения по времени.
	ListCompletedSince(since time.Time) ([]entity.QuizAttempt, error)
	ListCompleted() ([]entity.QuizAttempt, error)
	Count() (int64, error)
	CountCompleted() (int64, error)
}
