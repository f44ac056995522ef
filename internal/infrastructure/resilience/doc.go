/*
Package resilience provides a circuit breaker for host control calls.

# Overview

Request/response operations against the view host (navigate-back,
devtools state and toggle) run through a circuit breaker so a dead or
wedged host process fails fast instead of stacking timed-out retries.

# States

  - Closed: normal operation, requests pass through
  - Open: host considered unavailable, requests fail immediately
  - Half-Open: probing whether the host recovered

# Usage

	breaker := resilience.New("host-control", resilience.Settings{
		Timeout: 15 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})

	result, err := breaker.Execute(func() (interface{}, error) {
		return client.Call()
	})
*/
package resilience
