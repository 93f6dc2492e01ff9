package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
	"github.com/yourusername/quizmaster-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizmaster-api/internal/pkg/errors"
)

func newAttemptServiceForTest(quizRepo *MockQuizRepository, attemptRepo *MockAttemptRepository, cacheRepo *MockCacheRepository, now time.Time) *AttemptService {
	sink := NewInvalidationSink(cacheRepo, nil)
	return NewAttemptService(quizRepo, attemptRepo, sink, &fakeClock{now: now})
}

func scheduledQuiz(t *testing.T, questions []entity.Question) *entity.Quiz {
	t.Helper()
	start := mustParseTime(t, "2024-01-01T10:00:00Z")
	return &entity.Quiz{
		ID:              1,
		Title:           "Go Basics",
		DurationMinutes: 30,
		StartTime:       &start,
		IsActive:        true,
		Questions:       questions,
	}
}

func mustParseTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return ts
}

func threeQuestions() []entity.Question {
	return []entity.Question{
		{ID: 10, QuizID: 1, CorrectOption: "A"},
		{ID: 11, QuizID: 1, CorrectOption: "B"},
		{ID: 12, QuizID: 1, CorrectOption: "C"},
	}
}

func TestAttemptService_StartAttempt(t *testing.T) {
	t.Run("Success inside window", func(t *testing.T) {
		quizRepo := new(MockQuizRepository)
		attemptRepo := new(MockAttemptRepository)
		cacheRepo := new(MockCacheRepository)
		now := mustParseTime(t, "2024-01-01T10:05:00Z")
		svc := newAttemptServiceForTest(quizRepo, attemptRepo, cacheRepo, now)

		quizRepo.On("GetWithQuestions", uint(1)).Return(scheduledQuiz(t, threeQuestions()), nil)
		attemptRepo.On("Create", mock.AnythingOfType("*entity.QuizAttempt")).Run(func(args mock.Arguments) {
			args.Get(0).(*entity.QuizAttempt).ID = 42
		}).Return(nil)

		result, err := svc.StartAttempt(7, 1)
		require.NoError(t, err)
		assert.Equal(t, uint(42), result.Attempt.ID)
		assert.Equal(t, uint(7), result.Attempt.UserID)
		assert.Equal(t, 3, result.Attempt.TotalQuestions)
		assert.Equal(t, now, result.Attempt.StartedAt)
		assert.Len(t, result.Questions, 3)
		require.NotNil(t, result.RemainingSeconds)
		assert.Equal(t, 1500, *result.RemainingSeconds)
		attemptRepo.AssertExpectations(t)
	})

	t.Run("Inactive quiz rejected first", func(t *testing.T) {
		quizRepo := new(MockQuizRepository)
		attemptRepo := new(MockAttemptRepository)
		cacheRepo := new(MockCacheRepository)
		svc := newAttemptServiceForTest(quizRepo, attemptRepo, cacheRepo, mustParseTime(t, "2024-01-01T10:05:00Z"))

		quiz := scheduledQuiz(t, threeQuestions())
		quiz.IsActive = false
		quizRepo.On("GetWithQuestions", uint(1)).Return(quiz, nil)

		_, err := svc.StartAttempt(7, 1)
		assert.ErrorIs(t, err, ErrQuizInactive)
		attemptRepo.AssertNotCalled(t, "Create", mock.Anything)
	})

	t.Run("Not yet open carries start time", func(t *testing.T) {
		quizRepo := new(MockQuizRepository)
		attemptRepo := new(MockAttemptRepository)
		cacheRepo := new(MockCacheRepository)
		svc := newAttemptServiceForTest(quizRepo, attemptRepo, cacheRepo, mustParseTime(t, "2024-01-01T09:00:00Z"))

		quiz := scheduledQuiz(t, threeQuestions())
		quizRepo.On("GetWithQuestions", uint(1)).Return(quiz, nil)

		_, err := svc.StartAttempt(7, 1)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrQuizNotYetOpen)

		var notOpen *QuizNotOpenError
		require.ErrorAs(t, err, &notOpen)
		assert.Equal(t, *quiz.StartTime, notOpen.StartTime)
	})

	t.Run("Expired after closed-closed window", func(t *testing.T) {
		quizRepo := new(MockQuizRepository)
		attemptRepo := new(MockAttemptRepository)
		cacheRepo := new(MockCacheRepository)
		svc := newAttemptServiceForTest(quizRepo, attemptRepo, cacheRepo, mustParseTime(t, "2024-01-01T10:30:01Z"))

		quizRepo.On("GetWithQuestions", uint(1)).Return(scheduledQuiz(t, threeQuestions()), nil)

		_, err := svc.StartAttempt(7, 1)
		assert.ErrorIs(t, err, ErrQuizExpired)
	})

	t.Run("Boundary second still startable", func(t *testing.T) {
		quizRepo := new(MockQuizRepository)
		attemptRepo := new(MockAttemptRepository)
		cacheRepo := new(MockCacheRepository)
		svc := newAttemptServiceForTest(quizRepo, attemptRepo, cacheRepo, mustParseTime(t, "2024-01-01T10:30:00Z"))

		quizRepo.On("GetWithQuestions", uint(1)).Return(scheduledQuiz(t, threeQuestions()), nil)
		attemptRepo.On("Create", mock.AnythingOfType("*entity.QuizAttempt")).Return(nil)

		_, err := svc.StartAttempt(7, 1)
		assert.NoError(t, err)
	})

	t.Run("Empty quiz rejected", func(t *testing.T) {
		quizRepo := new(MockQuizRepository)
		attemptRepo := new(MockAttemptRepository)
		cacheRepo := new(MockCacheRepository)
		svc := newAttemptServiceForTest(quizRepo, attemptRepo, cacheRepo, mustParseTime(t, "2024-01-01T10:05:00Z"))

		quizRepo.On("GetWithQuestions", uint(1)).Return(scheduledQuiz(t, nil), nil)

		_, err := svc.StartAttempt(7, 1)
		assert.ErrorIs(t, err, ErrNoQuestions)
	})

	t.Run("Second concurrent start loses on unique index", func(t *testing.T) {
		quizRepo := new(MockQuizRepository)
		attemptRepo := new(MockAttemptRepository)
		cacheRepo := new(MockCacheRepository)
		svc := newAttemptServiceForTest(quizRepo, attemptRepo, cacheRepo, mustParseTime(t, "2024-01-01T10:05:00Z"))

		quizRepo.On("GetWithQuestions", uint(1)).Return(scheduledQuiz(t, threeQuestions()), nil)
		attemptRepo.On("Create", mock.AnythingOfType("*entity.QuizAttempt")).Return(repository.ErrAttemptInProgress)

		_, err := svc.StartAttempt(7, 1)
		assert.ErrorIs(t, err, repository.ErrAttemptInProgress)
	})

	t.Run("Quiz not found", func(t *testing.T) {
		quizRepo := new(MockQuizRepository)
		attemptRepo := new(MockAttemptRepository)
		cacheRepo := new(MockCacheRepository)
		svc := newAttemptServiceForTest(quizRepo, attemptRepo, cacheRepo, mustParseTime(t, "2024-01-01T10:05:00Z"))

		quizRepo.On("GetWithQuestions", uint(99)).Return(nil, apperrors.ErrNotFound)

		_, err := svc.StartAttempt(7, 99)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestAttemptService_SubmitAttempt(t *testing.T) {
	started := time.Date(2024, 1, 1, 10, 5, 0, 0, time.UTC)

	inProgressAttempt := func() *entity.QuizAttempt {
		return &entity.QuizAttempt{ID: 42, UserID: 7, QuizID: 1, TotalQuestions: 3, StartedAt: started}
	}

	t.Run("Scores and rounds percentage", func(t *testing.T) {
		quizRepo := new(MockQuizRepository)
		attemptRepo := new(MockAttemptRepository)
		cacheRepo := new(MockCacheRepository)
		now := mustParseTime(t, "2024-01-01T10:10:00Z")
		svc := newAttemptServiceForTest(quizRepo, attemptRepo, cacheRepo, now)

		attemptRepo.On("GetByID", uint(42)).Return(inProgressAttempt(), nil)
		quizRepo.On("GetWithQuestionsUnscoped", uint(1)).Return(scheduledQuiz(t, threeQuestions()), nil)
		attemptRepo.On("Complete", uint(42), 2, 3, 300, mock.Anything, now).Return(nil)
		cacheRepo.On("DeleteByPattern", mock.Anything).Return(nil)
		cacheRepo.On("Publish", mock.Anything, mock.Anything).Return(nil)
		cacheRepo.On("Delete", mock.Anything).Return(nil)

		// Два правильных, один неправильный
		answers := entity.AnswerMap{10: "A", 11: "B", 12: "D"}
		result, err := svc.SubmitAttempt(7, 42, answers)
		require.NoError(t, err)
		assert.Equal(t, 2, result.Score)
		assert.Equal(t, 3, result.TotalQuestions)
		assert.Equal(t, 66.67, result.Percentage)
		assert.Equal(t, 300, result.TimeTaken)
		attemptRepo.AssertExpectations(t)
	})

	t.Run("Missing and unknown answers", func(t *testing.T) {
		quizRepo := new(MockQuizRepository)
		attemptRepo := new(MockAttemptRepository)
		cacheRepo := new(MockCacheRepository)
		now := mustParseTime(t, "2024-01-01T10:10:00Z")
		svc := newAttemptServiceForTest(quizRepo, attemptRepo, cacheRepo, now)

		attemptRepo.On("GetByID", uint(42)).Return(inProgressAttempt(), nil)
		quizRepo.On("GetWithQuestionsUnscoped", uint(1)).Return(scheduledQuiz(t, threeQuestions()), nil)
		attemptRepo.On("Complete", uint(42), 1, 3, 300, mock.Anything, now).Return(nil)
		cacheRepo.On("DeleteByPattern", mock.Anything).Return(nil)
		cacheRepo.On("Publish", mock.Anything, mock.Anything).Return(nil)
		cacheRepo.On("Delete", mock.Anything).Return(nil)

		// Один правильный, один вопрос без ответа, один ответ на чужой вопрос
		answers := entity.AnswerMap{10: "A", 999: "B"}
		result, err := svc.SubmitAttempt(7, 42, answers)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Score)
	})

	t.Run("Question added after start keeps snapshot total", func(t *testing.T) {
		quizRepo := new(MockQuizRepository)
		attemptRepo := new(MockAttemptRepository)
		cacheRepo := new(MockCacheRepository)
		now := mustParseTime(t, "2024-01-01T10:10:00Z")
		svc := newAttemptServiceForTest(quizRepo, attemptRepo, cacheRepo, now)

		// Попытка стартовала на трех вопросах, четвертый добавлен позже
		grown := append(threeQuestions(), entity.Question{ID: 13, QuizID: 1, CorrectOption: "D"})
		attemptRepo.On("GetByID", uint(42)).Return(inProgressAttempt(), nil)
		quizRepo.On("GetWithQuestionsUnscoped", uint(1)).Return(scheduledQuiz(t, grown), nil)
		attemptRepo.On("Complete", uint(42), 3, 3, 300, mock.Anything, now).Return(nil)
		cacheRepo.On("DeleteByPattern", mock.Anything).Return(nil)
		cacheRepo.On("Publish", mock.Anything, mock.Anything).Return(nil)
		cacheRepo.On("Delete", mock.Anything).Return(nil)

		answers := entity.AnswerMap{10: "A", 11: "B", 12: "C"}
		result, err := svc.SubmitAttempt(7, 42, answers)
		require.NoError(t, err)
		assert.Equal(t, 3, result.Score)
		assert.Equal(t, 3, result.TotalQuestions)
		assert.Equal(t, 100.0, result.Percentage)
		attemptRepo.AssertExpectations(t)
	})

	t.Run("Soft-deleted quiz still submittable", func(t *testing.T) {
		quizRepo := new(MockQuizRepository)
		attemptRepo := new(MockAttemptRepository)
		cacheRepo := new(MockCacheRepository)
		now := mustParseTime(t, "2024-01-01T10:10:00Z")
		svc := newAttemptServiceForTest(quizRepo, attemptRepo, cacheRepo, now)

		attemptRepo.On("GetByID", uint(42)).Return(inProgressAttempt(), nil)
		quizRepo.On("GetWithQuestionsUnscoped", uint(1)).Return(scheduledQuiz(t, threeQuestions()), nil)
		attemptRepo.On("Complete", uint(42), 2, 3, 300, mock.Anything, now).Return(nil)
		cacheRepo.On("DeleteByPattern", mock.Anything).Return(nil)
		cacheRepo.On("Publish", mock.Anything, mock.Anything).Return(nil)
		cacheRepo.On("Delete", mock.Anything).Return(nil)

		result, err := svc.SubmitAttempt(7, 42, entity.AnswerMap{10: "A", 11: "B"})
		require.NoError(t, err)
		assert.Equal(t, 2, result.Score)
		quizRepo.AssertNotCalled(t, "GetWithQuestions", mock.Anything)
	})

	t.Run("Attempt not found", func(t *testing.T) {
		quizRepo := new(MockQuizRepository)
		attemptRepo := new(MockAttemptRepository)
		cacheRepo := new(MockCacheRepository)
		svc := newAttemptServiceForTest(quizRepo, attemptRepo, cacheRepo, mustParseTime(t, "2024-01-01T10:10:00Z"))

		attemptRepo.On("GetByID", uint(99)).Return(nil, apperrors.ErrNotFound)

		_, err := svc.SubmitAttempt(7, 99, entity.AnswerMap{})
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("Foreign attempt forbidden", func(t *testing.T) {
		quizRepo := new(MockQuizRepository)
		attemptRepo := new(MockAttemptRepository)
		cacheRepo := new(MockCacheRepository)
		svc := newAttemptServiceForTest(quizRepo, attemptRepo, cacheRepo, mustParseTime(t, "2024-01-01T10:10:00Z"))

		attemptRepo.On("GetByID", uint(42)).Return(inProgressAttempt(), nil)

		_, err := svc.SubmitAttempt(8, 42, entity.AnswerMap{})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("Already completed rejected", func(t *testing.T) {
		quizRepo := new(MockQuizRepository)
		attemptRepo := new(MockAttemptRepository)
		cacheRepo := new(MockCacheRepository)
		svc := newAttemptServiceForTest(quizRepo, attemptRepo, cacheRepo, mustParseTime(t, "2024-01-01T10:10:00Z"))

		completed := inProgressAttempt()
		completedAt := started.Add(5 * time.Minute)
		completed.CompletedAt = &completedAt
		attemptRepo.On("GetByID", uint(42)).Return(completed, nil)

		_, err := svc.SubmitAttempt(7, 42, entity.AnswerMap{})
		assert.ErrorIs(t, err, repository.ErrAttemptAlreadyCompleted)
	})

	t.Run("Concurrent submit loses on conditional update", func(t *testing.T) {
		quizRepo := new(MockQuizRepository)
		attemptRepo := new(MockAttemptRepository)
		cacheRepo := new(MockCacheRepository)
		now := mustParseTime(t, "2024-01-01T10:10:00Z")
		svc := newAttemptServiceForTest(quizRepo, attemptRepo, cacheRepo, now)

		attemptRepo.On("GetByID", uint(42)).Return(inProgressAttempt(), nil)
		quizRepo.On("GetWithQuestionsUnscoped", uint(1)).Return(scheduledQuiz(t, threeQuestions()), nil)
		attemptRepo.On("Complete", uint(42), mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(repository.ErrAttemptAlreadyCompleted)

		_, err := svc.SubmitAttempt(7, 42, entity.AnswerMap{})
		assert.ErrorIs(t, err, repository.ErrAttemptAlreadyCompleted)
	})
}
