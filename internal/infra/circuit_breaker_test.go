package infra

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestBreaker() (*Breaker, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	b := NewBreaker(BreakerConfig{Name: "test", MaxFailures: 3, ProbeSuccesses: 2, CoolDown: 10 * time.Second})
	b.now = clock.now
	return b, clock
}

var errSend = errors.New("send failed")

func fail() error    { return errSend }
func succeed() error { return nil }

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	b, _ := newTestBreaker()

	for i := 0; i < 2; i++ {
		assert.ErrorIs(t, b.Do(fail), errSend)
	}
	assert.Equal(t, BreakerClosed, b.State())

	// A success resets the streak.
	assert.NoError(t, b.Do(succeed))
	for i := 0; i < 2; i++ {
		_ = b.Do(fail)
	}
	assert.Equal(t, BreakerClosed, b.State())

	_ = b.Do(fail)
	assert.Equal(t, BreakerOpen, b.State())

	called := false
	err := b.Do(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrBreakerOpen)
	assert.False(t, called)
}

func TestBreaker_HalfOpenProbesThenCloses(t *testing.T) {
	b, clock := newTestBreaker()
	for i := 0; i < 3; i++ {
		_ = b.Do(fail)
	}
	assert.Equal(t, BreakerOpen, b.State())

	clock.t = clock.t.Add(10 * time.Second)
	assert.Equal(t, BreakerHalfOpen, b.State())

	assert.NoError(t, b.Do(succeed))
	assert.Equal(t, BreakerHalfOpen, b.State())
	assert.NoError(t, b.Do(succeed))
	assert.Equal(t, BreakerClosed, b.State())
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	b, clock := newTestBreaker()
	for i := 0; i < 3; i++ {
		_ = b.Do(fail)
	}
	clock.t = clock.t.Add(11 * time.Second)

	assert.ErrorIs(t, b.Do(fail), errSend)
	assert.Equal(t, BreakerOpen, b.State())

	clock.t = clock.t.Add(5 * time.Second)
	assert.Equal(t, BreakerOpen, b.State(), "cool-down restarts on reopen")
}

func TestNewBreaker_Defaults(t *testing.T) {
	b := NewBreaker(BreakerConfig{Name: "smtp"})
	assert.Equal(t, DefaultBreakerConfig("smtp"), b.cfg)
	assert.Equal(t, "half-open", BreakerHalfOpen.String())
}
