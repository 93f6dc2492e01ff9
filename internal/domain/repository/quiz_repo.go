package repository

import (
	"github.com/yourusername/quizmaster-api/internal/domain/entity"
)

// QuizFilters определяет фильтры для поиска викторин
type QuizFilters struct {
	ChapterID uint   // 0 — без фильтра
	Search    string // Поиск по названию/описанию
	OnlyOpen  bool   // Только is_active = true
}

// QuizRepository определяет методы для работы с викторинами
type QuizRepository interface {
	Create(quiz *entity.Quiz) error
	GetByID(id uint) (*entity.Quiz, error)
	GetWithQuestions(id uint) (*entity.Quiz, error)
	// GetWithQuestionsUnscoped находит викторину даже после мягкого удаления:
	// начатые попытки должны завершаться независимо от судьбы викторины
	GetWithQuestionsUnscoped(id uint) (*entity.Quiz, error)
	Update(quiz *entity.Quiz) error
	// Delete выполняет мягкое удаление: история попыток сохраняется
	Delete(id uint) error
	List(limit, offset int) ([]entity.Quiz, error)
	ListWithFilters(filters QuizFilters, limit, offset int) ([]entity.Quiz, int64, error) // Возвращает также total count
	ListActive() ([]entity.Quiz, error)
	Count() (int64, error)
	Search(query string, limit int) ([]entity.Quiz, error)
}

// QuestionRepository определяет методы для работы с вопросами
type QuestionRepository interface {
	Create(question *entity.Question) error
	CreateBatch(questions []entity.Question) error
	GetByID(id uint) (*entity.Question, error)
	GetByQuizID(quizID uint) ([]entity.Question, error)
	Update(question *entity.Question) error
	Delete(id uint) error
	Count() (int64, error)
	Search(query string, limit int) ([]entity.Question, error)
}
