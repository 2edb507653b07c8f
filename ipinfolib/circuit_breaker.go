package ipinfolib

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

type breakerState uint32

const (
	breakerClosed breakerState = iota
	breakerHalfOpen
	breakerOpen
)

func (b breakerState) String() string {
	switch b {
	case breakerClosed:
		return "closed"
	case breakerHalfOpen:
		return "half_open"
	}

	return "open"
}

type breakerOutcome int

const (
	outcomeSuccess breakerOutcome = iota
	outcomeFailure
	outcomeUnknown
)

// classifyOutcome tells if remote side is healthy. Client errors with
// 4xx (except 429) mean that remote is alive. Closed context of a caller
// tells nothing about remote at all.
func classifyOutcome(err error) breakerOutcome {
	var fetchErr *FetchError

	switch {
	case err == nil:
		return outcomeSuccess
	case errors.Is(err, context.Canceled):
		return outcomeUnknown
	case errors.As(err, &fetchErr) && fetchErr.StatusCode >= http.StatusBadRequest &&
		fetchErr.StatusCode < http.StatusInternalServerError &&
		fetchErr.StatusCode != http.StatusTooManyRequests:
		return outcomeSuccess
	}

	return outcomeFailure
}

// circuitBreaker stops sending batches to remote API after a series of
// failures. After probeAfter a single probe request is allowed. If
// it succeeds, breaker is closed again.
type circuitBreaker struct {
	state     uint32
	probeSent uint32

	mutex       sync.Mutex
	failures    uint32
	stopped     bool
	probeTimer  *time.Timer
	forgetTimer *time.Timer
	threshold   uint32
	probeAfter  time.Duration
	forgetAfter time.Duration
}

func (c *circuitBreaker) State() breakerState {
	return breakerState(atomic.LoadUint32(&c.state))
}

func (c *circuitBreaker) Do(callback func() (*http.Response, error)) (*http.Response, error) {
	switch c.State() {
	case breakerClosed:
		resp, err := callback()

		c.report(breakerClosed, classifyOutcome(err))

		return resp, err
	case breakerHalfOpen:
		if !atomic.CompareAndSwapUint32(&c.probeSent, 0, 1) {
			return nil, ErrCircuitBreakerOpened
		}

		resp, err := callback()

		c.report(breakerHalfOpen, classifyOutcome(err))

		return resp, err
	}

	return nil, ErrCircuitBreakerOpened
}

func (c *circuitBreaker) report(seenState breakerState, outcome breakerOutcome) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	current := breakerState(c.state)

	switch {
	case current != seenState:
	case outcome == outcomeUnknown:
		atomic.StoreUint32(&c.probeSent, 0)
	case outcome == outcomeSuccess:
		c.switchState(breakerClosed)
	case current == breakerHalfOpen:
		c.switchState(breakerOpen)
	default:
		c.failures++

		if c.failures > c.threshold {
			c.switchState(breakerOpen)
		}
	}
}

// has to be called with a taken mutex.
func (c *circuitBreaker) switchState(state breakerState) {
	if c.stopped {
		return
	}

	switch state {
	case breakerClosed:
		stopTimer(&c.probeTimer)

		if c.forgetTimer == nil {
			c.forgetTimer = time.AfterFunc(c.forgetAfter, c.forgetFailures)
		}
	case breakerHalfOpen:
		stopTimer(&c.probeTimer)
		stopTimer(&c.forgetTimer)
	case breakerOpen:
		stopTimer(&c.forgetTimer)

		if c.probeTimer == nil {
			c.probeTimer = time.AfterFunc(c.probeAfter, c.allowProbe)
		}
	}

	c.failures = 0

	atomic.StoreUint32(&c.probeSent, 0)
	atomic.StoreUint32(&c.state, uint32(state))
	metricCircuitBreakerState.Set(float64(state))
}

func (c *circuitBreaker) forgetFailures() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	stopTimer(&c.forgetTimer)

	if breakerState(c.state) == breakerClosed {
		c.switchState(breakerClosed)
	}
}

func (c *circuitBreaker) allowProbe() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	stopTimer(&c.probeTimer)

	if breakerState(c.state) == breakerOpen {
		c.switchState(breakerHalfOpen)
	}
}

func (c *circuitBreaker) Stop() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.stopped = true

	stopTimer(&c.probeTimer)
	stopTimer(&c.forgetTimer)
}

func stopTimer(timerRef **time.Timer) {
	if timer := *timerRef; timer != nil {
		timer.Stop()
		*timerRef = nil
	}
}

func newCircuitBreaker(threshold uint32, probeAfter, forgetAfter time.Duration) *circuitBreaker {
	cb := &circuitBreaker{
		threshold:   threshold,
		probeAfter:  probeAfter,
		forgetAfter: forgetAfter,
	}

	cb.mutex.Lock()
	cb.switchState(breakerClosed)
	cb.mutex.Unlock()

	return cb
}
