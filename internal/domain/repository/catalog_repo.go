package repository

import (
	"github.com/yourusername/quizmaster-api/internal/domain/entity"
)

// SubjectRepository определяет методы для работы с предметами
type SubjectRepository interface {
	Create(subject *entity.Subject) error
	GetByID(id uint) (*entity.Subject, error)
	GetWithChapters(id uint) (*entity.Subject, error)
	Update(subject *entity.Subject) error
	Delete(id uint) error
	List() ([]entity.Subject, error)
	Count() (int64, error)
	Search(query string, limit int) ([]entity.Subject, error)
}

// ChapterRepository определяет методы для работы с главами
type ChapterRepository interface {
	Create(chapter *entity.Chapter) error
	GetByID(id uint) (*entity.Chapter, error)
	Update(chapter *entity.Chapter) error
	Delete(id uint) error
	ListBySubject(subjectID uint) ([]entity.Chapter, error)
	Count() (int64, error)
	Search(query string, limit int) ([]entity.Chapter, error)
}
