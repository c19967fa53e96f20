package wallet_test

import "github.com/stretchr/testify/mock"

type mockMetrics struct {
	mock.Mock
}

func newMockMetrics() *mockMetrics {
	m := &mockMetrics{}
	m.On("ObserveDerivation", mock.Anything, mock.Anything).Return()
	m.On("ObserveReconcile", mock.Anything, mock.Anything, mock.Anything).Return()
	return m
}

func (m *mockMetrics) ObserveDerivation(outcome string, attempts int) {
	m.Called(outcome, attempts)
}

func (m *mockMetrics) ObserveReconcile(seconds float64, accounts int, err error) {
	m.Called(seconds, accounts, err)
}
