package globaltime

import (
	"sync"
	"time"
)

var (
	mu      sync.RWMutex
	nowFunc = time.Now
)

func Now() time.Time {
	mu.RLock()
	defer mu.RUnlock()
	return nowFunc()
}

func UTC() time.Time {
	return Now().UTC()
}

// DaysAgo returns the UTC instant the given number of days before now.
func DaysAgo(days int) time.Time {
	return UTC().AddDate(0, 0, -days)
}

// HoursAgo returns the UTC instant the given number of hours before now.
func HoursAgo(hours int) time.Time {
	return UTC().Add(-time.Duration(hours) * time.Hour)
}

func SetMockTime(t time.Time) {
	mu.Lock()
	defer mu.Unlock()
	nowFunc = func() time.Time { return t }
}

func ResetTime() {
	mu.Lock()
	defer mu.Unlock()
	nowFunc = time.Now
}
