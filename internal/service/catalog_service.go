package service

import (
	"fmt"
	"log"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
	"github.com/yourusername/quizmaster-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizmaster-api/internal/pkg/errors"
)

// CatalogService управляет предметами и главами
type CatalogService struct {
	subjectRepo repository.SubjectRepository
	chapterRepo repository.ChapterRepository
	sink        *InvalidationSink
}

// NewCatalogService создает новый сервис каталога
func NewCatalogService(
	subjectRepo repository.SubjectRepository,
	chapterRepo repository.ChapterRepository,
	sink *InvalidationSink,
) *CatalogService {
	return &CatalogService{
		subjectRepo: subjectRepo,
		chapterRepo: chapterRepo,
		sink:        sink,
	}
}

// CreateSubject создает новый предмет
func (s *CatalogService) CreateSubject(name, description string) (*entity.Subject, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: subject name is required", apperrors.ErrValidation)
	}
	subject := &entity.Subject{Name: name, Description: description}
	if err := s.subjectRepo.Create(subject); err != nil {
		return nil, err
	}
	s.sink.OnCatalogChanged()
	return subject, nil
}

// UpdateSubject обновляет предмет
func (s *CatalogService) UpdateSubject(id uint, name, description string) (*entity.Subject, error) {
	subject, err := s.subjectRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if name != "" {
		subject.Name = name
	}
	if description != "" {
		subject.Description = description
	}
	if err := s.subjectRepo.Update(subject); err != nil {
		return nil, err
	}
	s.sink.OnCatalogChanged()
	return subject, nil
}

// DeleteSubject удаляет предмет вместе с главами и викторинами
func (s *CatalogService) DeleteSubject(id uint) error {
	if err := s.subjectRepo.Delete(id); err != nil {
		return err
	}
	s.sink.OnCatalogChanged()
	log.Printf("[CatalogService] Предмет %d удален", id)
	return nil
}

// GetSubject возвращает предмет с главами
func (s *CatalogService) GetSubject(id uint) (*entity.Subject, error) {
	return s.subjectRepo.GetWithChapters(id)
}

// ListSubjects возвращает все предметы
func (s *CatalogService) ListSubjects() ([]entity.Subject, error) {
	return s.subjectRepo.List()
}

// CreateChapter создает главу в предмете
func (s *CatalogService) CreateChapter(subjectID uint, name, description string) (*entity.Chapter, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: chapter name is required", apperrors.ErrValidation)
	}
	// Предмет должен существовать
	if _, err := s.subjectRepo.GetByID(subjectID); err != nil {
		return nil, err
	}
	chapter := &entity.Chapter{SubjectID: subjectID, Name: name, Description: description}
	if err := s.chapterRepo.Create(chapter); err != nil {
		return nil, err
	}
	s.sink.OnCatalogChanged()
	return chapter, nil
}

// UpdateChapter обновляет главу
func (s *CatalogService) UpdateChapter(id uint, name, description string) (*entity.Chapter, error) {
	chapter, err := s.chapterRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if name != "" {
		chapter.Name = name
	}
	if description != "" {
		chapter.Description = description
	}
	if err := s.chapterRepo.Update(chapter); err != nil {
		return nil, err
	}
	s.sink.OnCatalogChanged()
	return chapter, nil
}

// DeleteChapter удаляет главу вместе с викторинами
func (s *CatalogService) DeleteChapter(id uint) error {
	if err := s.chapterRepo.Delete(id); err != nil {
		return err
	}
	s.sink.OnCatalogChanged()
	return nil
}

// ListChapters возвращает главы предмета
func (s *CatalogService) ListChapters(subjectID uint) ([]entity.Chapter, error) {
	return s.chapterRepo.ListBySubject(subjectID)
}
