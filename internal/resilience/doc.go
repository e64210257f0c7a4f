// Package resilience provides fault tolerance patterns for the application.
//
// The only pattern in use is the circuit breaker guarding the Zabbix
// submission mechanism. Retry logic is deliberately absent: failed data point
// submissions are dropped, never replayed, so a flapping Zabbix server cannot
// build a backlog inside the bridge.
//
// Usage:
//
//	cb := circuitbreaker.New(circuitbreaker.SinkConfig())
//	_, err := cb.Execute(func() (interface{}, error) {
//	    return nil, submitDataPoint()
//	})
package resilience
