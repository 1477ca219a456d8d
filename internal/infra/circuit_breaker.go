package infra

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// BreakerState is the position of a Breaker: closed → open → half-open → closed.
type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrBreakerOpen is returned by Do while the breaker rejects calls.
var ErrBreakerOpen = errors.New("circuit breaker is open")

// BreakerConfig tunes a Breaker. Zero values fall back to DefaultBreakerConfig.
type BreakerConfig struct {
	Name           string
	MaxFailures    int           // consecutive failures that open the breaker
	ProbeSuccesses int           // half-open successes needed to close again
	CoolDown       time.Duration // time spent open before a probe is let through
}

// DefaultBreakerConfig suits the SMTP relay: five straight failures open it for a minute.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{Name: name, MaxFailures: 5, ProbeSuccesses: 2, CoolDown: time.Minute}
}

// Breaker fast-fails calls to a dependency that keeps failing.
type Breaker struct {
	cfg BreakerConfig
	now func() time.Time

	mu        sync.Mutex
	state     BreakerState
	failures  int
	successes int
	openedAt  time.Time
}

func NewBreaker(cfg BreakerConfig) *Breaker {
	def := DefaultBreakerConfig(cfg.Name)
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = def.MaxFailures
	}
	if cfg.ProbeSuccesses <= 0 {
		cfg.ProbeSuccesses = def.ProbeSuccesses
	}
	if cfg.CoolDown <= 0 {
		cfg.CoolDown = def.CoolDown
	}
	return &Breaker{cfg: cfg, now: time.Now}
}

// State reports the current state, moving open → half-open once the cool-down elapsed.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentLocked()
}

func (b *Breaker) currentLocked() BreakerState {
	if b.state == BreakerOpen && b.now().Sub(b.openedAt) >= b.cfg.CoolDown {
		b.transitionLocked(BreakerHalfOpen)
	}
	return b.state
}

// Do runs fn unless the breaker is open.
func (b *Breaker) Do(fn func() error) error {
	b.mu.Lock()
	if b.currentLocked() == BreakerOpen {
		b.mu.Unlock()
		return ErrBreakerOpen
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.failures++
		b.successes = 0
		if b.state == BreakerHalfOpen || b.failures >= b.cfg.MaxFailures {
			b.openedAt = b.now()
			b.transitionLocked(BreakerOpen)
		}
		return err
	}
	b.failures = 0
	if b.state == BreakerHalfOpen {
		b.successes++
		if b.successes >= b.cfg.ProbeSuccesses {
			b.transitionLocked(BreakerClosed)
		}
	}
	return nil
}

func (b *Breaker) transitionLocked(to BreakerState) {
	if b.state == to {
		return
	}
	log.Warn().Str("breaker", b.cfg.Name).
		Str("from", b.state.String()).Str("to", to.String()).
		Msg("circuit breaker state change")
	b.state = to
	if to != BreakerHalfOpen {
		b.successes = 0
	}
	if to == BreakerClosed {
		b.failures = 0
	}
}
