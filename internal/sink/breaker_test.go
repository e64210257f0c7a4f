package sink

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSink returns a scripted sequence of errors.
type stubSink struct {
	errs  []error
	calls int
}

func (s *stubSink) Submit(_ context.Context, _, _ string, _ float64) error {
	err := s.errs[s.calls%len(s.errs)]
	s.calls++
	return err
}

func TestBreakerSink_PassesThroughSuccess(t *testing.T) {
	stub := &stubSink{errs: []error{nil}}
	bs := NewBreakerSink(stub)

	err := bs.Submit(context.Background(), "host", "mos.rating", 4.2)

	assert.NoError(t, err)
	assert.Equal(t, 1, stub.calls)
	assert.False(t, bs.IsOpen())
}

func TestBreakerSink_PreservesErrorTypes(t *testing.T) {
	partialErr := &PartialError{Key: "mos.rating", Output: "failed: 1"}
	dispatchErr := &DispatchError{Key: "mos.rating", Err: errors.New("no binary")}
	stub := &stubSink{errs: []error{partialErr, dispatchErr}}
	bs := NewBreakerSink(stub)

	var partial *PartialError
	require.ErrorAs(t, bs.Submit(context.Background(), "host", "mos.rating", 4.2), &partial)

	var dispatch *DispatchError
	require.ErrorAs(t, bs.Submit(context.Background(), "host", "mos.rating", 4.2), &dispatch)
}

func TestBreakerSink_PartialFailuresNeverOpenCircuit(t *testing.T) {
	stub := &stubSink{errs: []error{&PartialError{Key: "mos.rating", Output: "failed: 1"}}}
	bs := NewBreakerSink(stub)

	for i := 0; i < 50; i++ {
		err := bs.Submit(context.Background(), "host", "mos.rating", 4.2)
		var partial *PartialError
		require.ErrorAs(t, err, &partial)
	}

	assert.False(t, bs.IsOpen())
	assert.Equal(t, 50, stub.calls)
}

func TestBreakerSink_SustainedDispatchFailuresOpenCircuit(t *testing.T) {
	stub := &stubSink{errs: []error{&DispatchError{Key: "mos.rating", Err: errors.New("refused")}}}
	bs := NewBreakerSink(stub)

	for i := 0; i < 50; i++ {
		_ = bs.Submit(context.Background(), "host", "mos.rating", 4.2)
	}

	require.True(t, bs.IsOpen())

	// With the circuit open the inner sink is no longer invoked, and the
	// rejection surfaces as a dispatch failure.
	callsBefore := stub.calls
	err := bs.Submit(context.Background(), "host", "mos.rating", 4.2)

	var dispatch *DispatchError
	assert.ErrorAs(t, err, &dispatch)
	assert.Equal(t, callsBefore, stub.calls)
}
