package service

import (
	"errors"
	"fmt"
	"log"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
	"github.com/yourusername/quizmaster-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizmaster-api/internal/pkg/errors"
	"github.com/yourusername/quizmaster-api/pkg/clock"
)

// StartAttemptResult — данные, возвращаемые клиенту при старте попытки.
// Правильные ответы не сериализуются (json:"-" на уровне entity.Question).
type StartAttemptResult struct {
	Attempt          *entity.QuizAttempt `json:"attempt"`
	Questions        []entity.Question   `json:"questions"`
	RemainingSeconds *int                `json:"remaining_seconds,omitempty"`
}

// SubmitAttemptResult — итог завершенной попытки
type SubmitAttemptResult struct {
	AttemptID      uint    `json:"attempt_id"`
	Score          int     `json:"score"`
	TotalQuestions int     `json:"total_questions"`
	Percentage     float64 `json:"percentage"`
	TimeTaken      int     `json:"time_taken"`
}

// AttemptService управляет жизненным циклом попыток прохождения
type AttemptService struct {
	quizRepo    repository.QuizRepository
	attemptRepo repository.AttemptRepository
	sink        *InvalidationSink
	clk         clock.Clock
}

// NewAttemptService создает новый сервис попыток
func NewAttemptService(
	quizRepo repository.QuizRepository,
	attemptRepo repository.AttemptRepository,
	sink *InvalidationSink,
	clk clock.Clock,
) *AttemptService {
	return &AttemptService{
		quizRepo:    quizRepo,
		attemptRepo: attemptRepo,
		sink:        sink,
		clk:         clk,
	}
}

// StartAttempt начинает попытку прохождения викторины.
// Проверки выполняются в фиксированном порядке: выключена -> еще не открыта ->
// истекла -> нет вопросов -> уже есть незавершенная попытка. Последняя проверка
// не делается заранее по SELECT: гонку закрывает уникальный индекс при вставке.
func (s *AttemptService) StartAttempt(userID, quizID uint) (*StartAttemptResult, error) {
	quiz, err := s.quizRepo.GetWithQuestions(quizID)
	if err != nil {
		return nil, err
	}

	now := s.clk.Now()
	switch quiz.StatusAt(now) {
	case entity.QuizStatusInactive:
		return nil, ErrQuizInactive
	case entity.QuizStatusUpcoming:
		return nil, &QuizNotOpenError{StartTime: *quiz.StartTime}
	case entity.QuizStatusExpired:
		return nil, ErrQuizExpired
	}

	if len(quiz.Questions) == 0 {
		return nil, ErrNoQuestions
	}

	// Число вопросов фиксируется на момент старта: последующие изменения
	// состава викторины не влияют на знаменатель этой попытки
	attempt := &entity.QuizAttempt{
		UserID:         userID,
		QuizID:         quizID,
		TotalQuestions: len(quiz.Questions),
		StartedAt:      now,
	}
	if err := s.attemptRepo.Create(attempt); err != nil {
		if errors.Is(err, repository.ErrAttemptInProgress) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create attempt: %w", err)
	}

	log.Printf("[AttemptService] Пользователь %d начал попытку %d (викторина %d)", userID, attempt.ID, quizID)

	return &StartAttemptResult{
		Attempt:          attempt,
		Questions:        quiz.Questions,
		RemainingSeconds: quiz.RemainingSeconds(now),
	}, nil
}

// SubmitAttempt завершает попытку и подсчитывает результат.
// Завершение атомарно: условный UPDATE по completed_at IS NULL гарантирует,
// что из двух конкурирующих сабмитов выигрывает ровно один.
func (s *AttemptService) SubmitAttempt(userID, attemptID uint, answers entity.AnswerMap) (*SubmitAttemptResult, error) {
	attempt, err := s.attemptRepo.GetByID(attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	if attempt.IsCompleted() {
		return nil, repository.ErrAttemptAlreadyCompleted
	}

	// Викторина берется и после мягкого удаления: начатая попытка
	// должна иметь возможность завершиться
	quiz, err := s.quizRepo.GetWithQuestionsUnscoped(attempt.QuizID)
	if err != nil {
		return nil, err
	}

	// Счет сверяется с актуальным ключом ответов, а знаменатель —
	// зафиксированное при старте число вопросов
	score, _ := ComputeScore(quiz.Questions, answers)
	total := attempt.TotalQuestions

	now := s.clk.Now()
	timeTaken := int(now.Sub(attempt.StartedAt).Seconds())
	if timeTaken < 0 {
		timeTaken = 0
	}

	if err := s.attemptRepo.Complete(attemptID, score, total, timeTaken, answers, now); err != nil {
		return nil, err
	}

	s.sink.OnAttemptCompleted(userID)

	log.Printf("[AttemptService] Попытка %d завершена: %d/%d за %d сек", attemptID, score, total, timeTaken)

	completed := &entity.QuizAttempt{Score: score, TotalQuestions: total}
	return &SubmitAttemptResult{
		AttemptID:      attemptID,
		Score:          score,
		TotalQuestions: total,
		Percentage:     completed.Percentage(),
		TimeTaken:      timeTaken,
	}, nil
}

// GetAttempt возвращает попытку, проверяя владельца.
// Администратору доступны чужие попытки.
func (s *AttemptService) GetAttempt(attemptID, requesterID uint, isAdmin bool) (*entity.QuizAttempt, error) {
	attempt, err := s.attemptRepo.GetByID(attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != requesterID && !isAdmin {
		return nil, apperrors.ErrForbidden
	}
	return attempt, nil
}

// ListUserAttempts возвращает историю попыток пользователя
func (s *AttemptService) ListUserAttempts(userID uint) ([]entity.QuizAttempt, error) {
	return s.attemptRepo.ListByUser(userID)
}
