package health

import (
	"fmt"
	"runtime"
	"time"
)

// SimpleCheck creates a simple health check that always returns healthy
func SimpleCheck(name string) CheckFunc {
	return func() Check {
		return Check{
			Name:        name,
			Status:      StatusHealthy,
			LastChecked: time.Now(),
		}
	}
}

// StoreCheck reports the spatial graph store. probe should take a snapshot
// of the store and report its size; a panic in probe makes the store
// unhealthy.
func StoreCheck(probe func() (nodes, edges int)) CheckFunc {
	return func() (check Check) {
		check = Check{
			Name:        "graph_store",
			Details:     make(map[string]any),
			LastChecked: time.Now(),
		}
		defer func() {
			if r := recover(); r != nil {
				check.Status = StatusUnhealthy
				check.Message = fmt.Sprintf("snapshot failed: %v", r)
			}
		}()

		nodes, edges := probe()

		check.Details["nodes"] = nodes
		check.Details["edges"] = edges
		check.Status = StatusHealthy
		if nodes == 0 {
			check.Message = "Empty graph"
		} else {
			check.Message = "Serving snapshots"
		}
		return check
	}
}

// TransportCheck reports whether the NNG listener is accepting requests.
// A disabled transport is healthy.
func TransportCheck(enabled bool, listening func() bool) CheckFunc {
	return func() Check {
		check := Check{Name: "nng_transport"}

		switch {
		case !enabled:
			check.Status = StatusHealthy
			check.Message = "Transport disabled"
		case listening():
			check.Status = StatusHealthy
			check.Message = "Listening"
		default:
			check.Status = StatusUnhealthy
			check.Message = "Listener not running"
		}
		return check
	}
}

// MemoryCheck degrades when the live heap exceeds limitBytes. A zero limit
// disables the threshold.
func MemoryCheck(limitBytes uint64) CheckFunc {
	return func() Check {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		check := Check{
			Name: "memory",
			Details: map[string]any{
				"alloc_bytes": m.Alloc,
				"sys_bytes":   m.Sys,
				"goroutines":  runtime.NumGoroutine(),
			},
			Status:  StatusHealthy,
			Message: "Memory usage normal",
		}
		if limitBytes > 0 && m.Alloc > limitBytes {
			check.Status = StatusDegraded
			check.Message = "High memory usage"
		}
		return check
	}
}
