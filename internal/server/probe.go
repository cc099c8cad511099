package server

import "math/rand/v2"

// DependencyProbe simulates the external dependency (database, downstream
// API) that the readiness endpoint reports on.
type DependencyProbe interface {
	// Healthy reports whether the dependency responded, given the
	// configured failure probability in [0,1].
	Healthy(failureRate float64) bool
}

// RandomProbe fails with the configured probability.
type RandomProbe struct{}

// Healthy draws from the process-wide PRNG, which is safe for concurrent use.
func (RandomProbe) Healthy(failureRate float64) bool {
	return rand.Float64() >= failureRate
}
