package service

import (
	"log"

	"github.com/yourusername/quizmaster-api/internal/domain/repository"
)

// Ключи и шаблоны кеша
const (
	cacheKeyLeaderboardPrefix = "leaderboard:"
	cacheKeyOverview          = "analytics:overview"
	cacheKeyAvailableQuizzes  = "quizzes:available"
	cacheKeyUserPerfPrefix    = "performance:user:"
	cacheKeySearchPrefix      = "search:"
)

// invalidationChannel — pub/sub канал для фан-аута инвалидаций
// на другие инстансы приложения
const invalidationChannel = "cache:invalidation"

// Типы событий, которые sink рассылает подключенным клиентам
const (
	EventQuizChanged = "quiz:changed"
)

// Notifier рассылает события подключенным клиентам (реализуется ws.Hub)
type Notifier interface {
	Broadcast(eventType string, payload interface{})
}

// InvalidationSink централизует сброс кешей при изменении данных.
// Ошибки кеша логируются и не прерывают основную операцию.
type InvalidationSink struct {
	cacheRepo repository.CacheRepository
	notifier  Notifier
}

// NewInvalidationSink создает новый sink инвалидации.
// notifier может быть nil (события не рассылаются).
func NewInvalidationSink(cacheRepo repository.CacheRepository, notifier Notifier) *InvalidationSink {
	return &InvalidationSink{cacheRepo: cacheRepo, notifier: notifier}
}

func (s *InvalidationSink) drop(patterns ...string) {
	for _, p := range patterns {
		if err := s.cacheRepo.DeleteByPattern(p); err != nil {
			log.Printf("[Cache] Ошибка инвалидации по шаблону %s: %v", p, err)
		}
	}
	// Фан-аут на другие инстансы
	if err := s.cacheRepo.Publish(invalidationChannel, patterns); err != nil {
		log.Printf("[Cache] Ошибка публикации инвалидации: %v", err)
	}
}

// OnAttemptCompleted сбрасывает кеши, зависящие от завершенных попыток
func (s *InvalidationSink) OnAttemptCompleted(userID uint) {
	s.drop(
		cacheKeyLeaderboardPrefix+"*",
		cacheKeyOverview,
	)
	if err := s.cacheRepo.Delete(userPerfKey(userID)); err != nil {
		log.Printf("[Cache] Ошибка инвалидации производительности пользователя %d: %v", userID, err)
	}
}

// OnCatalogChanged сбрасывает кеши каталога (предметы, главы, викторины)
// и уведомляет подключенных клиентов
func (s *InvalidationSink) OnCatalogChanged() {
	s.drop(cacheKeyAvailableQuizzes, cacheKeyOverview, cacheKeySearchPrefix+"*")
	if s.notifier != nil {
		s.notifier.Broadcast(EventQuizChanged, nil)
	}
}
