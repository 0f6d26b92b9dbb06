package main

import "runtime"

// MaxWorkers bounds --workers.
const MaxWorkers = 32

// resolveWorkers determines the worker count.
// Priority: explicit value > GOMAXPROCS-based calculation.
func resolveWorkers(n int) int {
	if n > 0 {
		return min(n, MaxWorkers)
	}

	// GOMAXPROCS is adjusted by automaxprocs for containers.
	// Conversion is CPU-bound, so use every available processor up to 8.
	return max(1, min(runtime.GOMAXPROCS(0), 8))
}
