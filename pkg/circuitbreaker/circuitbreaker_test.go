package circuitbreaker_test

import (
	"fmt"
	"testing"

	"github.com/maskwallet/walletd/pkg/circuitbreaker"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreaker(t *testing.T) {
	cb := circuitbreaker.NewCircuitBreaker("test")
	require.Equal(t, "test", cb.Name())

	failing := func() (interface{}, error) { return nil, fmt.Errorf("boom") }
	for i := 0; i <= circuitbreaker.MaxNumOfFailingRequests; i++ {
		_, err := cb.Execute(failing)
		require.Error(t, err)
	}
	require.Equal(t, gobreaker.StateOpen, cb.State())

	_, err := cb.Execute(func() (interface{}, error) { return nil, nil })
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestCircuitBreakerStaysClosed(t *testing.T) {
	cb := circuitbreaker.NewCircuitBreaker("test")

	for i := 0; i < 3*circuitbreaker.MaxNumOfFailingRequests; i++ {
		var fn func() (interface{}, error)
		if i%2 == 0 {
			fn = func() (interface{}, error) { return nil, fmt.Errorf("boom") }
		} else {
			fn = func() (interface{}, error) { return nil, nil }
		}
		cb.Execute(fn)
	}
	require.Equal(t, gobreaker.StateClosed, cb.State())
}
