// Package rbpmetrics defines the observability seams for the
// TransactionEngine and reliability Window: a small set of interfaces
// here, a Prometheus implementation behind an optional sub-package
// (pkg/rbpmetrics/prometheus), nil-safe so collection can be disabled
// with zero overhead.
package rbpmetrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	mu       sync.RWMutex
	registry *prometheus.Registry
	enabled  bool
)

// InitRegistry enables metrics collection and creates the
// process-wide Prometheus registry. Calling it with enabled=false (or
// never calling it) leaves IsEnabled() false and GetRegistry() nil,
// so every New*Metrics constructor returns nil for zero overhead.
func InitRegistry(enabledArg bool) *prometheus.Registry {
	mu.Lock()
	defer mu.Unlock()

	enabled = enabledArg
	if !enabled {
		registry = nil
		return nil
	}
	registry = prometheus.NewRegistry()
	return registry
}

// IsEnabled reports whether metrics collection is active.
func IsEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// GetRegistry returns the process-wide registry, or nil if metrics
// are disabled.
func GetRegistry() *prometheus.Registry {
	mu.RLock()
	defer mu.RUnlock()
	return registry
}
