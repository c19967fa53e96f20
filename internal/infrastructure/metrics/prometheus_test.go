package metrics

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheusMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewPrometheusMetrics(reg)
	require.NoError(t, err)

	m.ObserveDerivation("found", 1)
	m.ObserveDerivation("found", 3)
	m.ObserveDerivation("exceeded", 99)
	m.ObserveReconcile(0.2, 4, nil)
	m.ObserveReconcile(0.1, 0, fmt.Errorf("boom"))

	pm := m.(*prometheusMetrics)
	require.Equal(t, float64(2), testutil.ToFloat64(pm.derivations.WithLabelValues("found")))
	require.Equal(t, float64(1), testutil.ToFloat64(pm.derivations.WithLabelValues("exceeded")))
	require.Equal(t, float64(1), testutil.ToFloat64(pm.reconciles.WithLabelValues("ok")))
	require.Equal(t, float64(1), testutil.ToFloat64(pm.reconciles.WithLabelValues("error")))
	require.Equal(t, float64(4), testutil.ToFloat64(pm.accounts))

	_, err = NewPrometheusMetrics(reg)
	require.Error(t, err)
}
