package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
	apperrors "github.com/yourusername/quizmaster-api/internal/pkg/errors"
)

func completedAttempt(userID uint, score, total int) entity.QuizAttempt {
	completedAt := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	return entity.QuizAttempt{
		UserID:         userID,
		Score:          score,
		TotalQuestions: total,
		CompletedAt:    &completedAt,
	}
}

func TestAggregate(t *testing.T) {
	t.Run("Averages per-attempt percentages", func(t *testing.T) {
		// Пользователь 1: 100% и 50% -> 75%
		attempts := []entity.QuizAttempt{
			completedAttempt(1, 4, 4),
			completedAttempt(1, 2, 4),
		}
		entries := Aggregate(attempts)
		require.Len(t, entries, 1)
		assert.Equal(t, 75.0, entries[0].AvgPercentage)
		assert.Equal(t, 2, entries[0].AttemptCount)
		assert.Equal(t, 1, entries[0].Rank)
	})

	t.Run("Sorted by average descending", func(t *testing.T) {
		attempts := []entity.QuizAttempt{
			completedAttempt(1, 1, 4), // 25%
			completedAttempt(2, 4, 4), // 100%
			completedAttempt(3, 2, 4), // 50%
		}
		entries := Aggregate(attempts)
		require.Len(t, entries, 3)
		assert.Equal(t, uint(2), entries[0].UserID)
		assert.Equal(t, uint(3), entries[1].UserID)
		assert.Equal(t, uint(1), entries[2].UserID)
		assert.Equal(t, 1, entries[0].Rank)
		assert.Equal(t, 3, entries[2].Rank)
	})

	t.Run("Tie broken by attempt count", func(t *testing.T) {
		// Оба со средним 80%, но у пользователя 2 больше попыток
		attempts := []entity.QuizAttempt{
			completedAttempt(1, 4, 5),
			completedAttempt(2, 4, 5),
			completedAttempt(2, 4, 5),
			completedAttempt(2, 4, 5),
		}
		entries := Aggregate(attempts)
		require.Len(t, entries, 2)
		assert.Equal(t, uint(2), entries[0].UserID)
		assert.Equal(t, 3, entries[0].AttemptCount)
		assert.Equal(t, uint(1), entries[1].UserID)
	})

	t.Run("Incomplete attempts excluded", func(t *testing.T) {
		attempts := []entity.QuizAttempt{
			completedAttempt(1, 4, 4),
			{UserID: 1, Score: 0, TotalQuestions: 4}, // Не завершена
		}
		entries := Aggregate(attempts)
		require.Len(t, entries, 1)
		assert.Equal(t, 1, entries[0].AttemptCount)
		assert.Equal(t, 100.0, entries[0].AvgPercentage)
	})

	t.Run("Empty quiz attempt contributes zero", func(t *testing.T) {
		attempts := []entity.QuizAttempt{
			completedAttempt(1, 0, 0),
		}
		entries := Aggregate(attempts)
		require.Len(t, entries, 1)
		assert.Equal(t, 0.0, entries[0].AvgPercentage)
	})

	t.Run("No attempts", func(t *testing.T) {
		assert.Empty(t, Aggregate(nil))
	})
}

func TestAnalyticsService_Leaderboard(t *testing.T) {
	newService := func(attemptRepo *MockAttemptRepository, userRepo *MockUserRepository, cacheRepo *MockCacheRepository) *AnalyticsService {
		clk := &fakeClock{now: time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC)}
		return NewAnalyticsService(attemptRepo, userRepo, nil, nil, nil, nil, cacheRepo, clk)
	}

	t.Run("Unknown period rejected", func(t *testing.T) {
		svc := newService(new(MockAttemptRepository), new(MockUserRepository), new(MockCacheRepository))
		_, err := svc.Leaderboard("year", 10)
		assert.Error(t, err)
	})

	t.Run("All-time leaderboard with usernames", func(t *testing.T) {
		attemptRepo := new(MockAttemptRepository)
		userRepo := new(MockUserRepository)
		cacheRepo := new(MockCacheRepository)
		svc := newService(attemptRepo, userRepo, cacheRepo)

		cacheRepo.On("GetJSON", "leaderboard:all:10", mock.Anything).Return(apperrors.ErrNotFound)
		attemptRepo.On("ListCompletedSince", time.Time{}).Return([]entity.QuizAttempt{
			completedAttempt(1, 4, 4),
			completedAttempt(2, 2, 4),
		}, nil)
		userRepo.On("GetByID", uint(1)).Return(&entity.User{ID: 1, Username: "alice"}, nil)
		userRepo.On("GetByID", uint(2)).Return(&entity.User{ID: 2, Username: "bob"}, nil)
		cacheRepo.On("SetJSON", "leaderboard:all:10", mock.Anything, leaderboardCacheTTL).Return(nil)

		entries, err := svc.Leaderboard(PeriodAll, 10)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "alice", entries[0].Username)
		assert.Equal(t, "bob", entries[1].Username)
	})

	t.Run("User rank found outside top", func(t *testing.T) {
		attemptRepo := new(MockAttemptRepository)
		userRepo := new(MockUserRepository)
		cacheRepo := new(MockCacheRepository)
		svc := newService(attemptRepo, userRepo, cacheRepo)

		attemptRepo.On("ListCompletedSince", time.Time{}).Return([]entity.QuizAttempt{
			completedAttempt(1, 4, 4),
			completedAttempt(2, 3, 4),
			completedAttempt(3, 1, 4),
		}, nil)
		userRepo.On("GetByID", uint(3)).Return(&entity.User{ID: 3, Username: "carol"}, nil)

		entry, err := svc.UserRank(3, PeriodAll)
		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.Equal(t, 3, entry.Rank)
		assert.Equal(t, "carol", entry.Username)
		assert.Equal(t, 25.0, entry.AvgPercentage)
	})

	t.Run("User rank absent without attempts", func(t *testing.T) {
		attemptRepo := new(MockAttemptRepository)
		svc := newService(attemptRepo, new(MockUserRepository), new(MockCacheRepository))

		attemptRepo.On("ListCompletedSince", time.Time{}).Return([]entity.QuizAttempt{}, nil)

		entry, err := svc.UserRank(42, PeriodAll)
		require.NoError(t, err)
		assert.Nil(t, entry)
	})

	t.Run("Weekly window passed to repository", func(t *testing.T) {
		attemptRepo := new(MockAttemptRepository)
		userRepo := new(MockUserRepository)
		cacheRepo := new(MockCacheRepository)
		svc := newService(attemptRepo, userRepo, cacheRepo)

		cacheRepo.On("GetJSON", "leaderboard:week:10", mock.Anything).Return(apperrors.ErrNotFound)
		expectedSince := time.Date(2024, 1, 13, 12, 0, 0, 0, time.UTC)
		attemptRepo.On("ListCompletedSince", expectedSince).Return([]entity.QuizAttempt{}, nil)
		cacheRepo.On("SetJSON", "leaderboard:week:10", mock.Anything, leaderboardCacheTTL).Return(nil)

		entries, err := svc.Leaderboard(PeriodWeek, 10)
		require.NoError(t, err)
		assert.Empty(t, entries)
		attemptRepo.AssertExpectations(t)
	})
}

func TestAnalyticsService_SubjectStats(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	chapterRepo := new(MockChapterRepository)
	subjectRepo := new(MockSubjectRepository)
	svc := NewAnalyticsService(nil, nil, subjectRepo, chapterRepo, quizRepo, nil, nil, &fakeClock{})

	quizAttempt := func(quizID uint, score, total int) entity.QuizAttempt {
		a := completedAttempt(1, score, total)
		a.QuizID = quizID
		return a
	}

	quizRepo.On("GetByID", uint(10)).Return(&entity.Quiz{ID: 10, ChapterID: 100}, nil).Once()
	quizRepo.On("GetByID", uint(11)).Return(&entity.Quiz{ID: 11, ChapterID: 101}, nil).Once()
	quizRepo.On("GetByID", uint(99)).Return(nil, apperrors.ErrNotFound).Once()
	chapterRepo.On("GetByID", uint(100)).Return(&entity.Chapter{ID: 100, SubjectID: 5}, nil)
	chapterRepo.On("GetByID", uint(101)).Return(&entity.Chapter{ID: 101, SubjectID: 5}, nil)
	subjectRepo.On("GetByID", uint(5)).Return(&entity.Subject{ID: 5, Name: "Math"}, nil).Once()

	stats := svc.subjectStats([]entity.QuizAttempt{
		quizAttempt(10, 4, 4), // 100%
		quizAttempt(10, 2, 4), // 50%, викторина берется из мемо
		quizAttempt(11, 3, 4), // 75%, другая глава того же предмета
		quizAttempt(99, 4, 4), // Удаленная викторина пропускается
	})

	require.Len(t, stats, 1)
	assert.Equal(t, uint(5), stats[0].SubjectID)
	assert.Equal(t, "Math", stats[0].SubjectName)
	assert.Equal(t, 3, stats[0].AttemptCount)
	assert.Equal(t, 75.0, stats[0].AvgPercentage)
	quizRepo.AssertExpectations(t)
	subjectRepo.AssertExpectations(t)
}

func TestDailyActivity(t *testing.T) {
	now := time.Date(2024, 1, 20, 15, 0, 0, 0, time.UTC)

	at := func(day int) entity.QuizAttempt {
		completedAt := time.Date(2024, 1, day, 9, 0, 0, 0, time.UTC)
		return entity.QuizAttempt{Score: 1, TotalQuestions: 1, CompletedAt: &completedAt}
	}

	series := dailyActivity([]entity.QuizAttempt{
		at(20), at(20),
		at(14),
		at(13), // За пределами окна в 7 дней
	}, now)

	require.Len(t, series, 7)
	assert.Equal(t, "2024-01-14", series[0].Date)
	assert.Equal(t, 1, series[0].Count)
	assert.Equal(t, "2024-01-20", series[6].Date)
	assert.Equal(t, 2, series[6].Count)
	assert.Equal(t, 0, series[3].Count)
}
