package sink

import (
	"context"
	"errors"

	"logbridge/internal/resilience/circuitbreaker"
)

// BreakerSink decorates a Sink with a circuit breaker so a Zabbix server that
// is down does not get a process spawned (or a connection dialed) for every
// extracted metric. Rejections while the circuit is open surface as dispatch
// failures and stay isolated per metric like any other sink error.
type BreakerSink struct {
	inner   Sink
	breaker *circuitbreaker.CircuitBreaker
}

// NewBreakerSink wraps inner with a circuit breaker using the sink defaults.
// Partial failures do not count toward tripping the circuit: the transport is
// healthy when the server answers, even if it rejects the value.
func NewBreakerSink(inner Sink) *BreakerSink {
	cfg := circuitbreaker.SinkConfig()
	cfg.IsSuccessful = func(err error) bool {
		if err == nil {
			return true
		}
		var partial *PartialError
		return errors.As(err, &partial)
	}
	return &BreakerSink{
		inner:   inner,
		breaker: circuitbreaker.New(cfg),
	}
}

// Submit forwards to the wrapped sink through the circuit breaker.
func (s *BreakerSink) Submit(ctx context.Context, target, key string, value float64) error {
	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, s.inner.Submit(ctx, target, key, value)
	})
	if err == nil {
		return nil
	}

	var partial *PartialError
	var dispatch *DispatchError
	if errors.As(err, &partial) || errors.As(err, &dispatch) {
		return err
	}
	// gobreaker's own errors (open circuit, too many half-open requests)
	// become dispatch failures: the mechanism was not invoked.
	return &DispatchError{Key: key, Err: err}
}

// IsOpen reports whether the circuit is currently open. Used by the health
// endpoint.
func (s *BreakerSink) IsOpen() bool {
	return s.breaker.IsOpen()
}
