package clock

import "time"

// Clock отдает текущее время. Внедряется в сервисы вместо прямых вызовов
// time.Now, чтобы логику расписаний можно было тестировать на литеральных
// моментах времени.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// New возвращает Clock на основе системных часов (UTC).
func New() Clock {
	return realClock{}
}
