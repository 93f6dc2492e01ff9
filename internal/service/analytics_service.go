package service

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
	"github.com/yourusername/quizmaster-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizmaster-api/internal/pkg/errors"
	"github.com/yourusername/quizmaster-api/pkg/clock"
)

// Периоды лидерборда
const (
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodAll   = "all"
)

// leaderboardCacheTTL — TTL кеша лидерборда и сводной аналитики
const leaderboardCacheTTL = 5 * time.Minute

// LeaderboardEntry — строка лидерборда
type LeaderboardEntry struct {
	Rank          int     `json:"rank"`
	UserID        uint    `json:"user_id"`
	Username      string  `json:"username"`
	AvgPercentage float64 `json:"avg_percentage"`
	AttemptCount  int     `json:"attempt_count"`
}

// UserPerformance — сводка результатов пользователя
type UserPerformance struct {
	UserID         uint                 `json:"user_id"`
	TotalAttempts  int                  `json:"total_attempts"`
	AvgPercentage  float64              `json:"avg_percentage"`
	BestPercentage float64              `json:"best_percentage"`
	SubjectStats   []SubjectStat        `json:"subject_stats"`
	RecentAttempts []entity.QuizAttempt `json:"recent_attempts"`
}

// SubjectStat — агрегат завершенных попыток в разрезе предмета
type SubjectStat struct {
	SubjectID     uint    `json:"subject_id"`
	SubjectName   string  `json:"subject_name"`
	AttemptCount  int     `json:"attempt_count"`
	AvgPercentage float64 `json:"avg_percentage"`
}

// DailyCount — число завершенных попыток за календарный день (UTC)
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// AdminOverview — сводная статистика для панели администратора
type AdminOverview struct {
	TotalUsers        int64              `json:"total_users"`
	TotalSubjects     int64              `json:"total_subjects"`
	TotalChapters     int64              `json:"total_chapters"`
	TotalQuizzes      int64              `json:"total_quizzes"`
	TotalQuestions    int64              `json:"total_questions"`
	TotalAttempts     int64              `json:"total_attempts"`
	CompletedAttempts int64              `json:"completed_attempts"`
	AvgPercentage     float64            `json:"avg_percentage"`
	TopPerformers     []LeaderboardEntry `json:"top_performers"`
	SubjectStats      []SubjectStat      `json:"subject_stats"`
	DailyActivity     []DailyCount       `json:"daily_activity"`
}

// AnalyticsService агрегирует результаты попыток
type AnalyticsService struct {
	attemptRepo  repository.AttemptRepository
	userRepo     repository.UserRepository
	subjectRepo  repository.SubjectRepository
	chapterRepo  repository.ChapterRepository
	quizRepo     repository.QuizRepository
	questionRepo repository.QuestionRepository
	cacheRepo    repository.CacheRepository
	clk          clock.Clock
}

// NewAnalyticsService создает новый сервис аналитики
func NewAnalyticsService(
	attemptRepo repository.AttemptRepository,
	userRepo repository.UserRepository,
	subjectRepo repository.SubjectRepository,
	chapterRepo repository.ChapterRepository,
	quizRepo repository.QuizRepository,
	questionRepo repository.QuestionRepository,
	cacheRepo repository.CacheRepository,
	clk clock.Clock,
) *AnalyticsService {
	return &AnalyticsService{
		attemptRepo:  attemptRepo,
		userRepo:     userRepo,
		subjectRepo:  subjectRepo,
		chapterRepo:  chapterRepo,
		quizRepo:     quizRepo,
		questionRepo: questionRepo,
		cacheRepo:    cacheRepo,
		clk:          clk,
	}
}

// Aggregate сводит завершенные попытки в строки лидерборда.
// Вклад каждой попытки — ее процент; итог пользователя — среднее по попыткам.
// Сортировка: средний процент по убыванию, при равенстве — больше попыток выше,
// далее по ID пользователя для детерминированности. Функция чистая.
func Aggregate(attempts []entity.QuizAttempt) []LeaderboardEntry {
	type acc struct {
		sum   float64
		count int
	}
	byUser := make(map[uint]*acc)
	for i := range attempts {
		if !attempts[i].IsCompleted() {
			continue
		}
		a, ok := byUser[attempts[i].UserID]
		if !ok {
			a = &acc{}
			byUser[attempts[i].UserID] = a
		}
		a.sum += attempts[i].Percentage()
		a.count++
	}

	entries := make([]LeaderboardEntry, 0, len(byUser))
	for userID, a := range byUser {
		avg := math.Round(a.sum/float64(a.count)*100) / 100
		entries = append(entries, LeaderboardEntry{
			UserID:        userID,
			AvgPercentage: avg,
			AttemptCount:  a.count,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].AvgPercentage != entries[j].AvgPercentage {
			return entries[i].AvgPercentage > entries[j].AvgPercentage
		}
		if entries[i].AttemptCount != entries[j].AttemptCount {
			return entries[i].AttemptCount > entries[j].AttemptCount
		}
		return entries[i].UserID < entries[j].UserID
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// Leaderboard возвращает лидерборд за период (week, month, all).
// Результат кешируется на 5 минут и сбрасывается при завершении попыток.
func (s *AnalyticsService) Leaderboard(period string, limit int) ([]LeaderboardEntry, error) {
	switch period {
	case PeriodWeek, PeriodMonth, PeriodAll:
	default:
		return nil, fmt.Errorf("%w: unknown period %q", apperrors.ErrValidation, period)
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	cacheKey := fmt.Sprintf("%s%s:%d", cacheKeyLeaderboardPrefix, period, limit)
	var cached []LeaderboardEntry
	if err := s.cacheRepo.GetJSON(cacheKey, &cached); err == nil {
		return cached, nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		log.Printf("[AnalyticsService] Ошибка чтения кеша лидерборда: %v", err)
	}

	attempts, err := s.attemptRepo.ListCompletedSince(periodSince(period, s.clk.Now()))
	if err != nil {
		return nil, err
	}

	entries := Aggregate(attempts)
	if len(entries) > limit {
		entries = entries[:limit]
	}
	s.fillUsernames(entries)

	if err := s.cacheRepo.SetJSON(cacheKey, entries, leaderboardCacheTTL); err != nil {
		log.Printf("[AnalyticsService] Ошибка записи кеша лидерборда: %v", err)
	}
	return entries, nil
}

// UserRank возвращает позицию пользователя в лидерборде за период.
// Пользователь без завершенных попыток за период получает nil.
func (s *AnalyticsService) UserRank(userID uint, period string) (*LeaderboardEntry, error) {
	switch period {
	case PeriodWeek, PeriodMonth, PeriodAll:
	default:
		return nil, fmt.Errorf("%w: unknown period %q", apperrors.ErrValidation, period)
	}

	attempts, err := s.attemptRepo.ListCompletedSince(periodSince(period, s.clk.Now()))
	if err != nil {
		return nil, err
	}
	for _, entry := range Aggregate(attempts) {
		if entry.UserID == userID {
			found := []LeaderboardEntry{entry}
			s.fillUsernames(found)
			return &found[0], nil
		}
	}
	return nil, nil
}

// periodSince переводит период лидерборда в нижнюю границу времени.
// Для PeriodAll возвращается нулевое время (без ограничения).
func periodSince(period string, now time.Time) time.Time {
	switch period {
	case PeriodWeek:
		return now.AddDate(0, 0, -7)
	case PeriodMonth:
		return now.AddDate(0, -1, 0)
	}
	return time.Time{}
}

// GetUserPerformance возвращает сводку результатов пользователя
func (s *AnalyticsService) GetUserPerformance(userID uint) (*UserPerformance, error) {
	var cached UserPerformance
	if err := s.cacheRepo.GetJSON(userPerfKey(userID), &cached); err == nil {
		return &cached, nil
	}

	attempts, err := s.attemptRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	perf := &UserPerformance{UserID: userID}
	var sum float64
	for i := range attempts {
		if !attempts[i].IsCompleted() {
			continue
		}
		p := attempts[i].Percentage()
		sum += p
		perf.TotalAttempts++
		if p > perf.BestPercentage {
			perf.BestPercentage = p
		}
	}
	if perf.TotalAttempts > 0 {
		perf.AvgPercentage = math.Round(sum/float64(perf.TotalAttempts)*100) / 100
	}

	perf.SubjectStats = s.subjectStats(attempts)

	// Последние 10 попыток (ListByUser возвращает свежие первыми)
	recent := attempts
	if len(recent) > 10 {
		recent = recent[:10]
	}
	perf.RecentAttempts = recent

	if err := s.cacheRepo.SetJSON(userPerfKey(userID), perf, leaderboardCacheTTL); err != nil {
		log.Printf("[AnalyticsService] Ошибка записи кеша производительности: %v", err)
	}
	return perf, nil
}

// GetAdminOverview возвращает сводную статистику для панели администратора
func (s *AnalyticsService) GetAdminOverview() (*AdminOverview, error) {
	var cached AdminOverview
	if err := s.cacheRepo.GetJSON(cacheKeyOverview, &cached); err == nil {
		return &cached, nil
	}

	overview := &AdminOverview{}
	var err error
	if overview.TotalUsers, err = s.userRepo.Count(); err != nil {
		return nil, err
	}
	if overview.TotalSubjects, err = s.subjectRepo.Count(); err != nil {
		return nil, err
	}
	if overview.TotalChapters, err = s.chapterRepo.Count(); err != nil {
		return nil, err
	}
	if overview.TotalQuizzes, err = s.quizRepo.Count(); err != nil {
		return nil, err
	}
	if overview.TotalQuestions, err = s.questionRepo.Count(); err != nil {
		return nil, err
	}
	if overview.TotalAttempts, err = s.attemptRepo.Count(); err != nil {
		return nil, err
	}
	if overview.CompletedAttempts, err = s.attemptRepo.CountCompleted(); err != nil {
		return nil, err
	}

	attempts, err := s.attemptRepo.ListCompleted()
	if err != nil {
		return nil, err
	}
	var sum float64
	var completed int
	for i := range attempts {
		sum += attempts[i].Percentage()
		completed++
	}
	if completed > 0 {
		overview.AvgPercentage = math.Round(sum/float64(completed)*100) / 100
	}

	top := Aggregate(attempts)
	if len(top) > 5 {
		top = top[:5]
	}
	s.fillUsernames(top)
	overview.TopPerformers = top

	overview.SubjectStats = s.subjectStats(attempts)
	overview.DailyActivity = dailyActivity(attempts, s.clk.Now())

	if err := s.cacheRepo.SetJSON(cacheKeyOverview, overview, leaderboardCacheTTL); err != nil {
		log.Printf("[AnalyticsService] Ошибка записи кеша сводки: %v", err)
	}
	return overview, nil
}

// subjectStats группирует завершенные попытки по предметам.
// Цепочка викторина -> глава -> предмет разрешается с мемоизацией,
// попытки по удаленным викторинам пропускаются.
func (s *AnalyticsService) subjectStats(attempts []entity.QuizAttempt) []SubjectStat {
	type acc struct {
		sum   float64
		count int
	}
	quizSubject := make(map[uint]uint) // quiz ID -> subject ID, 0 если не разрешился
	subjectNames := make(map[uint]string)
	bySubject := make(map[uint]*acc)

	for i := range attempts {
		if !attempts[i].IsCompleted() {
			continue
		}
		subjectID, ok := quizSubject[attempts[i].QuizID]
		if !ok {
			subjectID = s.resolveSubject(attempts[i].QuizID, subjectNames)
			quizSubject[attempts[i].QuizID] = subjectID
		}
		if subjectID == 0 {
			continue
		}
		a, ok := bySubject[subjectID]
		if !ok {
			a = &acc{}
			bySubject[subjectID] = a
		}
		a.sum += attempts[i].Percentage()
		a.count++
	}

	stats := make([]SubjectStat, 0, len(bySubject))
	for subjectID, a := range bySubject {
		stats = append(stats, SubjectStat{
			SubjectID:     subjectID,
			SubjectName:   subjectNames[subjectID],
			AttemptCount:  a.count,
			AvgPercentage: math.Round(a.sum/float64(a.count)*100) / 100,
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].SubjectID < stats[j].SubjectID })
	return stats
}

// resolveSubject находит предмет викторины и запоминает его имя.
// Возвращает 0, если викторина или глава недоступны.
func (s *AnalyticsService) resolveSubject(quizID uint, names map[uint]string) uint {
	quiz, err := s.quizRepo.GetByID(quizID)
	if err != nil {
		return 0
	}
	chapter, err := s.chapterRepo.GetByID(quiz.ChapterID)
	if err != nil {
		return 0
	}
	if _, ok := names[chapter.SubjectID]; !ok {
		subject, err := s.subjectRepo.GetByID(chapter.SubjectID)
		if err != nil {
			return 0
		}
		names[chapter.SubjectID] = subject.Name
	}
	return chapter.SubjectID
}

// dailyActivity считает завершенные попытки по календарным дням (UTC)
// за последние 7 дней, включая дни без попыток
func dailyActivity(attempts []entity.QuizAttempt, now time.Time) []DailyCount {
	const days = 7
	counts := make(map[string]int)
	cutoff := now.UTC().AddDate(0, 0, -(days - 1)).Truncate(24 * time.Hour)
	for i := range attempts {
		if attempts[i].CompletedAt == nil {
			continue
		}
		day := attempts[i].CompletedAt.UTC()
		if day.Before(cutoff) {
			continue
		}
		counts[day.Format("2006-01-02")]++
	}

	series := make([]DailyCount, 0, days)
	for d := 0; d < days; d++ {
		date := cutoff.AddDate(0, 0, d).Format("2006-01-02")
		series = append(series, DailyCount{Date: date, Count: counts[date]})
	}
	return series
}

// fillUsernames подставляет имена пользователей в строки лидерборда.
// Отсутствующий пользователь не срывает выдачу.
func (s *AnalyticsService) fillUsernames(entries []LeaderboardEntry) {
	for i := range entries {
		user, err := s.userRepo.GetByID(entries[i].UserID)
		if err != nil {
			log.Printf("[AnalyticsService] Не удалось получить пользователя %d: %v", entries[i].UserID, err)
			continue
		}
		entries[i].Username = user.Username
	}
}

func userPerfKey(userID uint) string {
	return fmt.Sprintf("%s%d", cacheKeyUserPerfPrefix, userID)
}
