package infra

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/BAHUBALISID/smj/internal/clock"

	"github.com/rs/zerolog/log"
)

// ── Circuit Breaker ───────────────────────────────────────────────────────────
// Guards the optional dependencies: the redis rate cache and receipt object
// storage. Closed lets calls through; Open fast-fails them so callers take
// their fallback (database read, local file); after OpenTimeout a single probe
// is admitted (HalfOpen) and enough consecutive successes close it again.

type CBState int

const (
	CBClosed CBState = iota
	CBOpen
	CBHalfOpen
)

func (s CBState) String() string {
	switch s {
	case CBClosed:
		return "closed"
	case CBOpen:
		return "open"
	case CBHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned without calling fn while the breaker is open or
// a half-open probe is already in flight.
var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitBreakerConfig struct {
	Name             string
	Clock            clock.Clock
	FailureThreshold int           // consecutive failures that open the breaker (5)
	SuccessThreshold int           // probe successes that close it again (2)
	OpenTimeout      time.Duration // time spent open before probing (30s)
	// Neutral reports errors that say nothing about the dependency's health.
	// They are returned to the caller but neither count as a failure nor
	// reset the failure streak. Defaults to context cancellation.
	Neutral func(error) bool
}

func DefaultCBConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		OpenTimeout:      30 * time.Second,
	}
}

func canceled(err error) bool { return errors.Is(err, context.Canceled) }

// BreakerStatus is the health-endpoint view of a breaker.
type BreakerStatus struct {
	State    string     `json:"state"`
	Failures int        `json:"failures"`
	OpenedAt *time.Time `json:"opened_at,omitempty"`
}

type CircuitBreaker struct {
	cfg CircuitBreakerConfig

	mu        sync.Mutex
	state     CBState
	failures  int
	successes int
	openedAt  time.Time
	probing   bool
}

func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	def := DefaultCBConfig()
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = def.SuccessThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = def.OpenTimeout
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.System(nil)
	}
	if cfg.Neutral == nil {
		cfg.Neutral = canceled
	}
	return &CircuitBreaker{cfg: cfg}
}

// State reports the current state, moving open to half-open once the open
// timeout has elapsed.
func (cb *CircuitBreaker) State() CBState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.refresh()
	return cb.state
}

func (cb *CircuitBreaker) Status() BreakerStatus {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.refresh()
	st := BreakerStatus{State: cb.state.String(), Failures: cb.failures}
	if cb.state != CBClosed {
		at := cb.openedAt
		st.OpenedAt = &at
	}
	return st
}

// Execute runs fn unless the breaker rejects the call.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	probe, err := cb.admit()
	if err != nil {
		return err
	}

	err = fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if probe {
		cb.probing = false
	}
	switch {
	case err == nil:
		cb.onSuccess()
	case cb.cfg.Neutral(err):
	default:
		cb.onFailure()
	}
	return err
}

func (cb *CircuitBreaker) admit() (probe bool, err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.refresh()
	switch cb.state {
	case CBOpen:
		return false, ErrCircuitOpen
	case CBHalfOpen:
		if cb.probing {
			return false, ErrCircuitOpen
		}
		cb.probing = true
		return true, nil
	}
	return false, nil
}

// refresh must be called with mu held.
func (cb *CircuitBreaker) refresh() {
	if cb.state == CBOpen && cb.cfg.Clock.Now().Sub(cb.openedAt) >= cb.cfg.OpenTimeout {
		cb.successes = 0
		cb.transition(CBHalfOpen)
	}
}

func (cb *CircuitBreaker) onFailure() {
	cb.failures++
	switch cb.state {
	case CBClosed:
		if cb.failures >= cb.cfg.FailureThreshold {
			cb.open()
		}
	case CBHalfOpen:
		cb.open()
	}
}

func (cb *CircuitBreaker) onSuccess() {
	switch cb.state {
	case CBClosed:
		cb.failures = 0
	case CBHalfOpen:
		cb.successes++
		if cb.successes >= cb.cfg.SuccessThreshold {
			cb.failures = 0
			cb.successes = 0
			cb.transition(CBClosed)
		}
	}
}

func (cb *CircuitBreaker) open() {
	cb.openedAt = cb.cfg.Clock.Now()
	cb.successes = 0
	cb.transition(CBOpen)
}

func (cb *CircuitBreaker) transition(to CBState) {
	from := cb.state
	cb.state = to
	log.Warn().
		Str("breaker", cb.cfg.Name).
		Str("from", from.String()).
		Str("to", to.String()).
		Int("failures", cb.failures).
		Msg("circuit breaker state change")
}
