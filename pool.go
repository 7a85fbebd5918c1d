package md2tex

import "runtime"

// Worker pool sizing constants.
const (
	// MinPoolSize ensures at least one worker is available.
	MinPoolSize = 1

	// MaxPoolSize caps concurrent documents; each may run a LaTeX engine.
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for the engine processes.
	cpuDivisor = 2
)

// ResolvePoolSize determines the number of documents converted at once.
// Priority: explicit workers > GOMAXPROCS-based calculation.
// Exported for use by servers and CLIs.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}

	// GOMAXPROCS is adjusted by automaxprocs for containers.
	available := runtime.GOMAXPROCS(0)
	n := available / cpuDivisor

	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}
