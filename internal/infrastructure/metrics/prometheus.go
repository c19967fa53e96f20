package metrics

import (
	"github.com/maskwallet/walletd/internal/core/ports"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "walletd"

type prometheusMetrics struct {
	derivations        *prometheus.CounterVec
	derivationAttempts prometheus.Histogram
	reconciles         *prometheus.CounterVec
	reconcileDuration  prometheus.Histogram
	accounts           prometheus.Gauge
}

// NewPrometheusMetrics registers the wallet metrics with the given registerer.
func NewPrometheusMetrics(reg prometheus.Registerer) (ports.Metrics, error) {
	m := &prometheusMetrics{
		derivations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "derivations_total",
			Help:      "Number of wallet derivations by outcome.",
		}, []string{"outcome"}),
		derivationAttempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "derivation_attempts",
			Help:      "Number of paths tried by a wallet derivation.",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 99},
		}),
		reconciles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconciles_total",
			Help:      "Number of account list updates by result.",
		}, []string{"result"}),
		reconcileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reconcile_duration_seconds",
			Help:      "Duration of account list updates.",
			Buckets:   prometheus.DefBuckets,
		}),
		accounts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "accounts",
			Help:      "Number of accounts in the last computed list.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.derivations, m.derivationAttempts, m.reconciles,
		m.reconcileDuration, m.accounts,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *prometheusMetrics) ObserveDerivation(outcome string, attempts int) {
	m.derivations.WithLabelValues(outcome).Inc()
	m.derivationAttempts.Observe(float64(attempts))
}

func (m *prometheusMetrics) ObserveReconcile(seconds float64, accounts int, err error) {
	m.reconcileDuration.Observe(seconds)
	if err != nil {
		m.reconciles.WithLabelValues("error").Inc()
		return
	}
	m.reconciles.WithLabelValues("ok").Inc()
	m.accounts.Set(float64(accounts))
}
