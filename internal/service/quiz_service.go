package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
	"github.com/yourusername/quizmaster-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizmaster-api/internal/pkg/errors"
	"github.com/yourusername/quizmaster-api/pkg/clock"
)

// availableCacheTTL — TTL кеша списка доступных викторин
const availableCacheTTL = 5 * time.Minute

// QuizStatusInfo — вычисленный статус викторины для клиента
type QuizStatusInfo struct {
	QuizID           uint   `json:"quiz_id"`
	Status           string `json:"status"`
	RemainingSeconds *int   `json:"remaining_seconds,omitempty"`
}

// AvailableQuiz — викторина в списке доступных для прохождения
type AvailableQuiz struct {
	Quiz             entity.Quiz `json:"quiz"`
	Status           string      `json:"status"`
	RemainingSeconds *int        `json:"remaining_seconds,omitempty"`
	QuestionCount    int         `json:"question_count"`
}

// QuizService предоставляет методы для работы с викторинами и вопросами
type QuizService struct {
	quizRepo     repository.QuizRepository
	questionRepo repository.QuestionRepository
	chapterRepo  repository.ChapterRepository
	cacheRepo    repository.CacheRepository
	sink         *InvalidationSink
	clk          clock.Clock
}

// NewQuizService создает новый сервис викторин
func NewQuizService(
	quizRepo repository.QuizRepository,
	questionRepo repository.QuestionRepository,
	chapterRepo repository.ChapterRepository,
	cacheRepo repository.CacheRepository,
	sink *InvalidationSink,
	clk clock.Clock,
) *QuizService {
	return &QuizService{
		quizRepo:     quizRepo,
		questionRepo: questionRepo,
		chapterRepo:  chapterRepo,
		cacheRepo:    cacheRepo,
		sink:         sink,
		clk:          clk,
	}
}

// CreateQuiz создает новую викторину в главе
func (s *QuizService) CreateQuiz(chapterID uint, title, description string, durationMinutes int, startTime *time.Time) (*entity.Quiz, error) {
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", apperrors.ErrValidation)
	}
	if durationMinutes < 0 {
		return nil, fmt.Errorf("%w: duration must be positive", apperrors.ErrValidation)
	}
	if durationMinutes == 0 {
		durationMinutes = entity.DefaultDurationMinutes
	}

	// Глава должна существовать
	if _, err := s.chapterRepo.GetByID(chapterID); err != nil {
		return nil, err
	}

	quiz := &entity.Quiz{
		Title:           title,
		Description:     description,
		ChapterID:       chapterID,
		DurationMinutes: durationMinutes,
		StartTime:       startTime,
		IsActive:        true,
	}
	if err := s.quizRepo.Create(quiz); err != nil {
		return nil, err
	}

	s.sink.OnCatalogChanged()
	log.Printf("[QuizService] Создана викторина %d: %s", quiz.ID, quiz.Title)
	return quiz, nil
}

// UpdateQuiz обновляет поля викторины
func (s *QuizService) UpdateQuiz(id uint, title, description string, durationMinutes int, startTime *time.Time, isActive *bool) (*entity.Quiz, error) {
	quiz, err := s.quizRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if title != "" {
		quiz.Title = title
	}
	if description != "" {
		quiz.Description = description
	}
	if durationMinutes > 0 {
		quiz.DurationMinutes = durationMinutes
	}
	if startTime != nil {
		quiz.StartTime = startTime
	}
	if isActive != nil {
		quiz.IsActive = *isActive
	}

	if err := s.quizRepo.Update(quiz); err != nil {
		return nil, err
	}
	s.sink.OnCatalogChanged()
	return quiz, nil
}

// DeleteQuiz мягко удаляет викторину. История попыток сохраняется
// для лидерборда и аналитики.
func (s *QuizService) DeleteQuiz(id uint) error {
	if err := s.quizRepo.Delete(id); err != nil {
		return err
	}
	s.sink.OnCatalogChanged()
	log.Printf("[QuizService] Викторина %d удалена (soft delete)", id)
	return nil
}

// GetQuiz возвращает викторину с вопросами
func (s *QuizService) GetQuiz(id uint) (*entity.Quiz, error) {
	return s.quizRepo.GetWithQuestions(id)
}

// ListQuizzes возвращает викторины по фильтрам с пагинацией
func (s *QuizService) ListQuizzes(filters repository.QuizFilters, limit, offset int) ([]entity.Quiz, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.quizRepo.ListWithFilters(filters, limit, offset)
}

// GetQuizStatus возвращает вычисленный статус викторины на текущий момент
func (s *QuizService) GetQuizStatus(id uint) (*QuizStatusInfo, error) {
	quiz, err := s.quizRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	now := s.clk.Now()
	return &QuizStatusInfo{
		QuizID:           quiz.ID,
		Status:           quiz.StatusAt(now),
		RemainingSeconds: quiz.RemainingSeconds(now),
	}, nil
}

// ListAvailable возвращает викторины, доступные пользователям: активные сейчас
// и предстоящие. Статусы вычисляются на момент запроса, поэтому кешируется
// только список викторин, а не их статусы.
func (s *QuizService) ListAvailable() ([]AvailableQuiz, error) {
	var quizzes []entity.Quiz
	err := s.cacheRepo.GetJSON(cacheKeyAvailableQuizzes, &quizzes)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			log.Printf("[QuizService] Ошибка чтения кеша доступных викторин: %v", err)
		}
		quizzes, err = s.quizRepo.ListActive()
		if err != nil {
			return nil, err
		}
		if cacheErr := s.cacheRepo.SetJSON(cacheKeyAvailableQuizzes, quizzes, availableCacheTTL); cacheErr != nil {
			log.Printf("[QuizService] Ошибка записи кеша доступных викторин: %v", cacheErr)
		}
	}

	now := s.clk.Now()
	available := make([]AvailableQuiz, 0, len(quizzes))
	for i := range quizzes {
		status := quizzes[i].StatusAt(now)
		if status != entity.QuizStatusActive && status != entity.QuizStatusUpcoming {
			continue
		}
		questionCount := len(quizzes[i].Questions)
		quiz := quizzes[i]
		quiz.Questions = nil // Вопросы не отдаются в списке
		available = append(available, AvailableQuiz{
			Quiz:             quiz,
			Status:           status,
			RemainingSeconds: quizzes[i].RemainingSeconds(now),
			QuestionCount:    questionCount,
		})
	}
	return available, nil
}

// AddQuestion добавляет вопрос в викторину
func (s *QuizService) AddQuestion(quizID uint, text, optionA, optionB, optionC, optionD, correctOption string) (*entity.Question, error) {
	if err := validateQuestion(text, optionA, optionB, optionC, optionD, correctOption); err != nil {
		return nil, err
	}
	if _, err := s.quizRepo.GetByID(quizID); err != nil {
		return nil, err
	}

	question := &entity.Question{
		QuizID:        quizID,
		Text:          text,
		OptionA:       optionA,
		OptionB:       optionB,
		OptionC:       optionC,
		OptionD:       optionD,
		CorrectOption: correctOption,
	}
	if err := s.questionRepo.Create(question); err != nil {
		return nil, err
	}
	s.sink.OnCatalogChanged()
	return question, nil
}

// UpdateQuestion обновляет вопрос
func (s *QuizService) UpdateQuestion(id uint, text, optionA, optionB, optionC, optionD, correctOption string) (*entity.Question, error) {
	if err := validateQuestion(text, optionA, optionB, optionC, optionD, correctOption); err != nil {
		return nil, err
	}
	question, err := s.questionRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	question.Text = text
	question.OptionA = optionA
	question.OptionB = optionB
	question.OptionC = optionC
	question.OptionD = optionD
	question.CorrectOption = correctOption

	if err := s.questionRepo.Update(question); err != nil {
		return nil, err
	}
	s.sink.OnCatalogChanged()
	return question, nil
}

// DeleteQuestion удаляет вопрос
func (s *QuizService) DeleteQuestion(id uint) error {
	if err := s.questionRepo.Delete(id); err != nil {
		return err
	}
	s.sink.OnCatalogChanged()
	return nil
}

func validateQuestion(text, optionA, optionB, optionC, optionD, correctOption string) error {
	if text == "" {
		return fmt.Errorf("%w: question text is required", apperrors.ErrValidation)
	}
	if optionA == "" || optionB == "" || optionC == "" || optionD == "" {
		return fmt.Errorf("%w: all four options are required", apperrors.ErrValidation)
	}
	switch correctOption {
	case "A", "B", "C", "D":
		return nil
	default:
		return fmt.Errorf("%w: correct option must be one of A, B, C, D", apperrors.ErrValidation)
	}
}
