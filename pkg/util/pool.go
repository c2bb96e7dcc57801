package util

import "runtime"

// GetOptimalPoolSize returns the pool size for CPU-bound tasks.
//
// Formula: min(max(runtime.NumCPU() * 2, 4), 32)
//
// Tree-sitter parsing is CGO-heavy, so two workers per core keep the CPU
// busy while goroutines are parked in C. The parser pool and the file worker
// pool share this number so workers never wait on a parser.
func GetOptimalPoolSize() int {
	poolSize := runtime.NumCPU() * 2
	if poolSize < 4 {
		poolSize = 4
	}
	if poolSize > 32 {
		poolSize = 32
	}
	return poolSize
}

// WorkerCount caps the optimal pool size by the number of jobs.
// An override > 0 wins (tests, tuning); the result is always >= 1.
func WorkerCount(jobs, override int) int {
	n := GetOptimalPoolSize()
	if override > 0 {
		n = override
	}
	if jobs > 0 && n > jobs {
		n = jobs
	}
	if n < 1 {
		n = 1
	}
	return n
}
