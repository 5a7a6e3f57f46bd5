package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// PromptRateLimiter limita cuántos prompts puede mandar una sesión por ventana,
// para no disparar invocaciones remotas sin control.
type PromptRateLimiter interface {
	Allow(key string) bool
}

const redisPromptAllowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`

type redisPromptRateLimiter struct {
	client redisEvaler
	window time.Duration
	max    int
	prefix string
}

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

func NewRedisPromptRateLimiter(client *redis.Client, window time.Duration, max int) PromptRateLimiter {
	if client == nil {
		return nil
	}
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return &redisPromptRateLimiter{
		client: client,
		window: window,
		max:    max,
		prefix: "chat:rl:",
	}
}

// Allow falla abierto si Redis no responde: el chat sigue usable.
func (l *redisPromptRateLimiter) Allow(key string) bool {
	if l == nil || l.client == nil {
		return true
	}
	normalizedKey := strings.TrimSpace(key)
	if normalizedKey == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	seconds := int(l.window.Seconds())
	if seconds <= 0 {
		seconds = 60
	}
	count, err := l.client.Eval(ctx, redisPromptAllowScript, []string{l.prefix + normalizedKey}, seconds).Int()
	if err != nil {
		return true
	}
	return count <= l.max
}

type memoryWindow struct {
	start time.Time
	count int
}

type memoryPromptRateLimiter struct {
	mu      sync.Mutex
	window  time.Duration
	max     int
	windows map[string]*memoryWindow
	now     func() time.Time
}

func NewMemoryPromptRateLimiter(window time.Duration, max int) PromptRateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return &memoryPromptRateLimiter{
		window:  window,
		max:     max,
		windows: make(map[string]*memoryWindow),
		now:     time.Now,
	}
}

func (l *memoryPromptRateLimiter) Allow(key string) bool {
	key = strings.TrimSpace(key)
	if key == "" {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for k, w := range l.windows {
		if now.Sub(w.start) >= l.window {
			delete(l.windows, k)
		}
	}

	w, ok := l.windows[key]
	if !ok {
		w = &memoryWindow{start: now}
		l.windows[key] = w
	}
	w.count++
	return w.count <= l.max
}
