package ports

// Metrics collects counters about derivations and reconciliations.
type Metrics interface {
	ObserveDerivation(outcome string, attempts int)
	ObserveReconcile(seconds float64, accounts int, err error)
}
