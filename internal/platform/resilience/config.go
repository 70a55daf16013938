package resilience

import "time"

type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
}

func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 5,
		OpenTimeout:      15 * time.Second,
	}
}

func (c CircuitBreakerConfig) Normalize() CircuitBreakerConfig {
	out := c
	if out.FailureThreshold < 1 {
		out.FailureThreshold = DefaultCircuitBreakerConfig().FailureThreshold
	}
	if out.OpenTimeout <= 0 {
		out.OpenTimeout = DefaultCircuitBreakerConfig().OpenTimeout
	}
	return out
}
