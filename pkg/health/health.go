// Package health reports the state of a running nodeflow session over HTTP.
package health

import (
	"time"
)

// NewHealthChecker creates a new health checker
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		started:     time.Now(),
		checks:      make(map[string]CheckFunc),
		readyChecks: make(map[string]CheckFunc),
	}
}

// RegisterCheck registers a health check
func (hc *HealthChecker) RegisterCheck(name string, check CheckFunc) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.checks[name] = check
}

// RegisterReadinessCheck registers a readiness check
func (hc *HealthChecker) RegisterReadinessCheck(name string, check CheckFunc) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.readyChecks[name] = check
}

// Check performs all health checks
func (hc *HealthChecker) Check() Response {
	return hc.run(func() map[string]CheckFunc { return hc.checks })
}

// CheckReadiness performs readiness checks
func (hc *HealthChecker) CheckReadiness() Response {
	return hc.run(func() map[string]CheckFunc { return hc.readyChecks })
}

// run copies the check set under the lock and calls the checks without it,
// so a slow check does not block registration.
func (hc *HealthChecker) run(set func() map[string]CheckFunc) Response {
	hc.mu.RLock()
	checks := make(map[string]CheckFunc, len(set()))
	for name, fn := range set() {
		checks[name] = fn
	}
	hc.mu.RUnlock()

	response := Response{
		Status:    StatusHealthy,
		Timestamp: time.Now(),
		Checks:    make(map[string]Check, len(checks)),
		Uptime:    time.Since(hc.started),
	}

	for name, checkFunc := range checks {
		start := time.Now()
		check := checkFunc()
		if check.Name == "" {
			check.Name = name
		}
		check.Duration = time.Since(start)
		check.LastChecked = start
		response.Checks[name] = check
		response.Status = worst(response.Status, check.Status)
	}

	return response
}

func worst(a, b Status) Status {
	rank := func(s Status) int {
		switch s {
		case StatusUnhealthy:
			return 2
		case StatusDegraded:
			return 1
		default:
			return 0
		}
	}
	if rank(b) > rank(a) {
		return b
	}
	return a
}
