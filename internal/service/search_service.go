package service

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
	"github.com/yourusername/quizmaster-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizmaster-api/internal/pkg/errors"
)

// searchLimit — максимум результатов на категорию
const searchLimit = 20

// searchCacheTTL — TTL кеша результатов поиска.
// Кеш сбрасывается и при изменениях каталога.
const searchCacheTTL = 2 * time.Minute

// SearchResults — результаты поиска по категориям.
// Users и Questions заполняются только для администратора.
type SearchResults struct {
	Subjects  []entity.Subject  `json:"subjects"`
	Chapters  []entity.Chapter  `json:"chapters"`
	Quizzes   []entity.Quiz     `json:"quizzes"`
	Users     []entity.User     `json:"users,omitempty"`
	Questions []entity.Question `json:"questions,omitempty"`
}

// SearchService ищет по каталогу, пользователям и вопросам
type SearchService struct {
	subjectRepo  repository.SubjectRepository
	chapterRepo  repository.ChapterRepository
	quizRepo     repository.QuizRepository
	questionRepo repository.QuestionRepository
	userRepo     repository.UserRepository
	cacheRepo    repository.CacheRepository
}

// NewSearchService создает новый сервис поиска
func NewSearchService(
	subjectRepo repository.SubjectRepository,
	chapterRepo repository.ChapterRepository,
	quizRepo repository.QuizRepository,
	questionRepo repository.QuestionRepository,
	userRepo repository.UserRepository,
	cacheRepo repository.CacheRepository,
) *SearchService {
	return &SearchService{
		subjectRepo:  subjectRepo,
		chapterRepo:  chapterRepo,
		quizRepo:     quizRepo,
		questionRepo: questionRepo,
		userRepo:     userRepo,
		cacheRepo:    cacheRepo,
	}
}

// Search выполняет поиск по подстроке. Администратору дополнительно
// возвращаются пользователи и тексты вопросов.
func (s *SearchService) Search(query string, isAdmin bool) (*SearchResults, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query is required", apperrors.ErrValidation)
	}

	// Области видимости у админа и пользователя разные, кешируются раздельно
	scope := "user"
	if isAdmin {
		scope = "admin"
	}
	cacheKey := fmt.Sprintf("%s%s:%s", cacheKeySearchPrefix, scope, strings.ToLower(query))

	var cached SearchResults
	if err := s.cacheRepo.GetJSON(cacheKey, &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		log.Printf("[SearchService] Ошибка чтения кеша поиска: %v", err)
	}

	results := &SearchResults{}
	var err error

	if results.Subjects, err = s.subjectRepo.Search(query, searchLimit); err != nil {
		return nil, err
	}
	if results.Chapters, err = s.chapterRepo.Search(query, searchLimit); err != nil {
		return nil, err
	}
	if results.Quizzes, err = s.quizRepo.Search(query, searchLimit); err != nil {
		return nil, err
	}

	if isAdmin {
		if results.Users, err = s.userRepo.Search(query, searchLimit); err != nil {
			return nil, err
		}
		if results.Questions, err = s.questionRepo.Search(query, searchLimit); err != nil {
			return nil, err
		}
	}

	if err := s.cacheRepo.SetJSON(cacheKey, results, searchCacheTTL); err != nil {
		log.Printf("[SearchService] Ошибка записи кеша поиска: %v", err)
	}
	return results, nil
}
