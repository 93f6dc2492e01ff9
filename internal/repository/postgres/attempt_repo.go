package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
	"github.com/yourusername/quizmaster-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizmaster-api/internal/pkg/errors"
)

// AttemptRepo реализует repository.AttemptRepository
type AttemptRepo struct {
	db *gorm.DB
}

// NewAttemptRepo создает новый репозиторий попыток
func NewAttemptRepo(db *gorm.DB) *AttemptRepo {
	return &AttemptRepo{db: db}
}

// Create вставляет новую попытку.
// Частичный уникальный индекс (user_id, quiz_id) WHERE completed_at IS NULL
// атомарно закрывает гонку двух одновременных стартов: проигравшая вставка
// получает 23505 и маппится в ErrAttemptInProgress.
func (r *AttemptRepo) Create(attempt *entity.QuizAttempt) error {
	err := r.db.Create(attempt).Error
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrAttemptInProgress
		}
		return err
	}
	return nil
}

// GetByID возвращает попытку по ID
func (r *AttemptRepo) GetByID(id uint) (*entity.QuizAttempt, error) {
	var attempt entity.QuizAttempt
	err := r.db.First(&attempt, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &attempt, nil
}

// Complete атомарно завершает попытку через условный UPDATE.
// Условие completed_at IS NULL гарантирует, что из двух конкурирующих
// сабмитов выигрывает ровно один.
func (r *AttemptRepo) Complete(attemptID uint, score, totalQuestions, timeTaken int, answers entity.AnswerMap, completedAt time.Time) error {
	result := r.db.Model(&entity.QuizAttempt{}).
		Where("id = ? AND completed_at IS NULL", attemptID).
		Updates(map[string]interface{}{
			"score":           score,
			"total_questions": totalQuestions,
			"time_taken":      timeTaken,
			"answers":         answers,
			"completed_at":    completedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrAttemptAlreadyCompleted
	}
	return nil
}

// GetInProgress возвращает незавершенную попытку пользователя для викторины
func (r *AttemptRepo) GetInProgress(userID, quizID uint) (*entity.QuizAttempt, error) {
	var attempt entity.QuizAttempt
	err := r.db.Where("user_id = ? AND quiz_id = ? AND completed_at IS NULL", userID, quizID).
		First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &attempt, nil
}

// ListByUser возвращает попытки пользователя, свежие первыми
func (r *AttemptRepo) ListByUser(userID uint) ([]entity.QuizAttempt, error) {
	var attempts []entity.QuizAttempt
	err := r.db.Where("user_id = ?", userID).
		Order("started_at DESC").
		Find(&attempts).Error
	if err != nil {
		return nil, err
	}
	return attempts, nil
}

// ListByQuiz возвращает попытки по викторине
func (r *AttemptRepo) ListByQuiz(quizID uint) ([]entity.QuizAttempt, error) {
	var attempts []entity.QuizAttempt
	err := r.db.Where("quiz_id = ?", quizID).
		Order("started_at DESC").
		Find(&attempts).Error
	if err != nil {
		return nil, err
	}
	return attempts, nil
}

// ListCompletedSince возвращает завершенные попытки не старше since
func (r *AttemptRepo) ListCompletedSince(since time.Time) ([]entity.QuizAttempt, error) {
	query := r.db.Where("completed_at IS NOT NULL")
	if !since.IsZero() {
		query = query.Where("completed_at >= ?", since)
	}
	var attempts []entity.QuizAttempt
	err := query.Order("completed_at DESC").Find(&attempts).Error
	if err != nil {
		return nil, err
	}
	return attempts, nil
}

// ListCompleted возвращает все завершенные попытки
func (r *AttemptRepo) ListCompleted() ([]entity.QuizAttempt, error) {
	return r.ListCompletedSince(time.Time{})
}

// Count возвращает общее число попыток
func (r *AttemptRepo) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entity.QuizAttempt{}).Count(&count).Error
	return count, err
}

// CountCompleted возвращает число завершенных попыток
func (r *AttemptRepo) CountCompleted() (int64, error) {
	var count int64
	err := r.db.Model(&entity.QuizAttempt{}).
		Where("completed_at IS NOT NULL").
		Count(&count).Error
	return count, err
}
