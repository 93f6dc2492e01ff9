package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
	apperrors "github.com/yourusername/quizmaster-api/internal/pkg/errors"
)

// SubjectRepo реализует repository.SubjectRepository
type SubjectRepo struct {
	db *gorm.DB
}

// NewSubjectRepo создает новый репозиторий предметов
func NewSubjectRepo(db *gorm.DB) *SubjectRepo {
	return &SubjectRepo{db: db}
}

// Create создает новый предмет
func (r *SubjectRepo) Create(subject *entity.Subject) error {
	return r.db.Create(subject).Error
}

// GetByID возвращает предмет по ID
func (r *SubjectRepo) GetByID(id uint) (*entity.Subject, error) {
	var subject entity.Subject
	err := r.db.First(&subject, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &subject, nil
}

// GetWithChapters возвращает предмет вместе с главами
func (r *SubjectRepo) GetWithChapters(id uint) (*entity.Subject, error) {
	var subject entity.Subject
	err := r.db.Preload("Chapters").First(&subject, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &subject, nil
}

// Update обновляет предмет
func (r *SubjectRepo) Update(subject *entity.Subject) error {
	return r.db.Save(subject).Error
}

// Delete удаляет предмет (каскадно удаляются главы и викторины)
func (r *SubjectRepo) Delete(id uint) error {
	result := r.db.Delete(&entity.Subject{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// List возвращает все предметы
func (r *SubjectRepo) List() ([]entity.Subject, error) {
	var subjects []entity.Subject
	err := r.db.Order("name").Find(&subjects).Error
	if err != nil {
		return nil, err
	}
	return subjects, nil
}

// Count возвращает общее число предметов
func (r *SubjectRepo) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entity.Subject{}).Count(&count).Error
	return count, err
}

// Search ищет предметы по подстроке в названии или описании
func (r *SubjectRepo) Search(query string, limit int) ([]entity.Subject, error) {
	var subjects []entity.Subject
	pattern := "%" + query + "%"
	err := r.db.Where("name ILIKE ? OR description ILIKE ?", pattern, pattern).
		Limit(limit).
		Find(&subjects).Error
	if err != nil {
		return nil, err
	}
	return subjects, nil
}

// ChapterRepo реализует repository.ChapterRepository
type ChapterRepo struct {
	db *gorm.DB
}

// NewChapterRepo создает новый репозиторий глав
func NewChapterRepo(db *gorm.DB) *ChapterRepo {
	return &ChapterRepo{db: db}
}

// Create создает новую главу
func (r *ChapterRepo) Create(chapter *entity.Chapter) error {
	return r.db.Create(chapter).Error
}

// GetByID возвращает главу по ID
func (r *ChapterRepo) GetByID(id uint) (*entity.Chapter, error) {
	var chapter entity.Chapter
	err := r.db.First(&chapter, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &chapter, nil
}

// Update обновляет главу
func (r *ChapterRepo) Update(chapter *entity.Chapter) error {
	return r.db.Save(chapter).Error
}

// Delete удаляет главу
func (r *ChapterRepo) Delete(id uint) error {
	result := r.db.Delete(&entity.Chapter{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ListBySubject возвращает главы предмета
func (r *ChapterRepo) ListBySubject(subjectID uint) ([]entity.Chapter, error) {
	var chapters []entity.Chapter
	err := r.db.Where("subject_id = ?", subjectID).Order("id").Find(&chapters).Error
	if err != nil {
		return nil, err
	}
	return chapters, nil
}

// Count возвращает общее число глав
func (r *ChapterRepo) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entity.Chapter{}).Count(&count).Error
	return count, err
}

// Search ищет главы по подстроке в названии или описании
func (r *ChapterRepo) Search(query string, limit int) ([]entity.Chapter, error) {
	var chapters []entity.Chapter
	pattern := "%" + query + "%"
	err := r.db.Where("name ILIKE ? OR description ILIKE ?", pattern, pattern).
		Limit(limit).
		Find(&chapters).Error
	if err != nil {
		return nil, err
	}
	return chapters, nil
}
