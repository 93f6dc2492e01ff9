package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
	"github.com/yourusername/quizmaster-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizmaster-api/internal/pkg/errors"
)

// QuizRepo реализует repository.QuizRepository
type QuizRepo struct {
	db *gorm.DB
}

// NewQuizRepo создает новый репозиторий викторин
func NewQuizRepo(db *gorm.DB) *QuizRepo {
	return &QuizRepo{db: db}
}

// Create создает новую викторину
func (r *QuizRepo) Create(quiz *entity.Quiz) error {
	return r.db.Create(quiz).Error
}

// GetByID возвращает викторину по ID
func (r *QuizRepo) GetByID(id uint) (*entity.Quiz, error) {
	var quiz entity.Quiz
	err := r.db.First(&quiz, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &quiz, nil
}

// GetWithQuestions возвращает викторину вместе с вопросами
func (r *QuizRepo) GetWithQuestions(id uint) (*entity.Quiz, error) {
	var quiz entity.Quiz
	err := r.db.Preload("Questions").First(&quiz, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &quiz, nil
}

// GetWithQuestionsUnscoped возвращает викторину с вопросами,
// включая мягко удаленные викторины
func (r *QuizRepo) GetWithQuestionsUnscoped(id uint) (*entity.Quiz, error) {
	var quiz entity.Quiz
	err := r.db.Unscoped().Preload("Questions").First(&quiz, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &quiz, nil
}

// Update обновляет викторину
func (r *QuizRepo) Update(quiz *entity.Quiz) error {
	return r.db.Save(quiz).Error
}

// Delete выполняет мягкое удаление викторины
func (r *QuizRepo) Delete(id uint) error {
	result := r.db.Delete(&entity.Quiz{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// List возвращает список викторин с пагинацией
func (r *QuizRepo) List(limit, offset int) ([]entity.Quiz, error) {
	var quizzes []entity.Quiz
	err := r.db.Limit(limit).Offset(offset).Order("id").Find(&quizzes).Error
	if err != nil {
		return nil, err
	}
	return quizzes, nil
}

// ListWithFilters возвращает викторины по фильтрам вместе с общим количеством
func (r *QuizRepo) ListWithFilters(filters repository.QuizFilters, limit, offset int) ([]entity.Quiz, int64, error) {
	query := r.db.Model(&entity.Quiz{})

	if filters.ChapterID != 0 {
		query = query.Where("chapter_id = ?", filters.ChapterID)
	}
	if filters.OnlyOpen {
		query = query.Where("is_active = ?", true)
	}
	if filters.Search != "" {
		pattern := "%" + filters.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var quizzes []entity.Quiz
	err := query.Limit(limit).Offset(offset).Order("id").Find(&quizzes).Error
	if err != nil {
		return nil, 0, err
	}
	return quizzes, total, nil
}

// ListActive возвращает включенные викторины вместе с вопросами
func (r *QuizRepo) ListActive() ([]entity.Quiz, error) {
	var quizzes []entity.Quiz
	err := r.db.Preload("Questions").
		Where("is_active = ?", true).
		Order("start_time NULLS LAST").
		Find(&quizzes).Error
	if err != nil {
		return nil, err
	}
	return quizzes, nil
}

// Count возвращает общее число викторин
func (r *QuizRepo) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entity.Quiz{}).Count(&count).Error
	return count, err
}

// Search ищет викторины по подстроке в названии или описании
func (r *QuizRepo) Search(query string, limit int) ([]entity.Quiz, error) {
	var quizzes []entity.Quiz
	pattern := "%" + query + "%"
	err := r.db.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern).
		Limit(limit).
		Find(&quizzes).Error
	if err != nil {
		return nil, err
	}
	return quizzes, nil
}

// isUniqueViolation проверяет Postgres unique violation (23505) для pgconn и lib/pq драйверов
func isUniqueViolation(err error) bool {
	// pgx/v5 driver (pgconn.PgError)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	// lib/pq driver
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	return false
}
