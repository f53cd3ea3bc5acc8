package ratelimiter

import (
	"sync"
	"time"

	"github.com/SeakMengs/EventHub/internal/config"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const staleClientAfter = 10 * time.Minute

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ClientRateLimiter keeps one token bucket per client key (usually the IP address).
type ClientRateLimiter struct {
	mu      sync.Mutex
	clients map[string]*client
	limit   rate.Limit
	burst   int
	enabled bool
	logger  *zap.SugaredLogger
	done    chan struct{}
	once    sync.Once
}

func NewRateLimiter(cfg config.RateLimiterConfig, logger *zap.SugaredLogger) *ClientRateLimiter {
	// For unit test
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	timeFrame := cfg.TimeFrame
	if timeFrame <= 0 {
		timeFrame = time.Minute
	}
	burst := max(cfg.RequestsPerTimeFrame, 1)

	rl := &ClientRateLimiter{
		clients: make(map[string]*client),
		// RequestsPerTimeFrame tokens refill evenly over TimeFrame
		limit:   rate.Limit(float64(burst) / timeFrame.Seconds()),
		burst:   burst,
		enabled: cfg.Enabled,
		logger:  logger,
		done:    make(chan struct{}),
	}
	if rl.enabled {
		go rl.cleanup()
	}

	return rl
}

// Allow reports whether the client may proceed, and if not how long until it may retry.
func (rl *ClientRateLimiter) Allow(key string) (bool, time.Duration) {
	if !rl.enabled {
		return true, 0
	}

	rl.mu.Lock()
	c, ok := rl.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[key] = c
	}
	c.lastSeen = time.Now()
	rl.mu.Unlock()

	reservation := c.limiter.Reserve()
	if !reservation.OK() {
		return false, 0
	}
	delay := reservation.Delay()
	if delay == 0 {
		return true, 0
	}

	// give the token back, the request is rejected
	reservation.Cancel()
	rl.logger.Debugf("Rate limit exceeded for %s, retry after %s", key, delay)
	return false, delay
}

func (rl *ClientRateLimiter) cleanup() {
	ticker := time.NewTicker(staleClientAfter)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			for key, c := range rl.clients {
				if time.Since(c.lastSeen) > staleClientAfter {
					delete(rl.clients, key)
				}
			}
			rl.mu.Unlock()
		case <-rl.done:
			return
		}
	}
}

// Stop terminates the background cleanup goroutine.
func (rl *ClientRateLimiter) Stop() {
	rl.once.Do(func() { close(rl.done) })
}
