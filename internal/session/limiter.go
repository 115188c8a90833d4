package session

import (
	"sync"
	"time"
)

// DefaultCreateWindow is used when NewCreateLimiter gets no window.
const DefaultCreateWindow = time.Minute

type ipBucket struct {
	count     int
	resetTime time.Time
}

// CreateLimiter caps how many sessions one client address may open per
// window.
type CreateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*ipBucket
	limit   int
	window  time.Duration
	now     func() time.Time
}

// NewCreateLimiter returns a fixed-window limiter. A non-positive limit
// disables limiting.
func NewCreateLimiter(limit int, window time.Duration) *CreateLimiter {
	if window <= 0 {
		window = DefaultCreateWindow
	}
	return &CreateLimiter{
		buckets: make(map[string]*ipBucket),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

// Allow records one creation for ip and reports whether it is permitted.
func (l *CreateLimiter) Allow(ip string) bool {
	if l == nil || l.limit <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	bucket, exists := l.buckets[ip]
	if !exists || now.After(bucket.resetTime) {
		l.buckets[ip] = &ipBucket{count: 1, resetTime: now.Add(l.window)}
		return true
	}

	if bucket.count >= l.limit {
		return false
	}
	bucket.count++
	return true
}

// Prune drops expired buckets.
func (l *CreateLimiter) Prune() {
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for ip, bucket := range l.buckets {
		if now.After(bucket.resetTime) {
			delete(l.buckets, ip)
		}
	}
}
