package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	bruteForceMaxAttempts = 10
	bruteForceWindow      = 15 * time.Minute
	bruteForceLockout     = 5 * time.Minute
	bruteForceCleanup     = 60 * time.Second
	bruteForceMaxRecords  = 10000
)

type failureRecord struct {
	attempts  int
	firstFail time.Time
	lockedAt  time.Time
}

// BruteForceGuard counts invalid-token attempts per client IP and locks out
// addresses that exceed the threshold within the tracking window.
type BruteForceGuard struct {
	mu      sync.Mutex
	records map[string]*failureRecord
	log     *logrus.Logger
	now     func() time.Time
}

// NewBruteForceGuard creates a guard whose cleanup goroutine stops when ctx
// is cancelled.
func NewBruteForceGuard(ctx context.Context, log *logrus.Logger) *BruteForceGuard {
	g := &BruteForceGuard{
		records: make(map[string]*failureRecord),
		log:     log,
		now:     time.Now,
	}
	go g.cleanupLoop(ctx)
	return g
}

// IsBlocked reports whether ip is currently locked out.
func (g *BruteForceGuard) IsBlocked(ip string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.records[ip]
	if !ok {
		return false
	}

	return !rec.lockedAt.IsZero() && g.now().Sub(rec.lockedAt) < bruteForceLockout
}

// RecordFailure records a failed authentication from ip.
func (g *BruteForceGuard) RecordFailure(ip string) {
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.records[ip]
	if !ok || now.Sub(rec.firstFail) > bruteForceWindow {
		g.records[ip] = &failureRecord{attempts: 1, firstFail: now}
		return
	}

	rec.attempts++
	if rec.attempts >= bruteForceMaxAttempts && rec.lockedAt.IsZero() {
		rec.lockedAt = now
		g.log.WithField("client_ip", ip).Warn("client locked out after repeated invalid tokens")
	}
}

func (g *BruteForceGuard) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(bruteForceCleanup)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.sweep()
		}
	}
}

func (g *BruteForceGuard) sweep() {
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	for ip, rec := range g.records {
		lockExpired := !rec.lockedAt.IsZero() && now.Sub(rec.lockedAt) >= bruteForceLockout
		windowExpired := rec.lockedAt.IsZero() && now.Sub(rec.firstFail) >= bruteForceWindow
		if lockExpired || windowExpired {
			delete(g.records, ip)
		}
	}

	// Over the cap, forget the oldest windows first.
	for len(g.records) > bruteForceMaxRecords {
		var oldestIP string
		var oldest time.Time
		for ip, rec := range g.records {
			if oldestIP == "" || rec.firstFail.Before(oldest) {
				oldestIP, oldest = ip, rec.firstFail
			}
		}
		delete(g.records, oldestIP)
	}
}

// BruteForceMiddleware rejects requests from locked-out client IPs before
// their token is checked.
func BruteForceMiddleware(guard *BruteForceGuard) gin.HandlerFunc {
	return func(c *gin.Context) {
		if guard.IsBlocked(c.ClientIP()) {
			respondError(c, http.StatusTooManyRequests, CodeRateLimited, "too many failed authentication attempts")
			return
		}

		c.Next()
	}
}
