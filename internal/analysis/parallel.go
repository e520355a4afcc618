package analysis

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// span is a half-open byte range [lo, hi) owned by one worker.
type span struct {
	lo, hi int
}

// workers resolves a requested job count.
func workers(jobs int) int {
	if jobs <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return jobs
}

// partition splits n bytes into at most parts contiguous spans. Every span
// except the last has a length that is a multiple of align.
func partition(n, parts, align int) []span {
	if n <= 0 {
		return nil
	}
	if parts < 1 {
		parts = 1
	}
	if align < 1 {
		align = 1
	}
	size := (n + parts - 1) / parts
	if r := size % align; r != 0 {
		size += align - r
	}

	spans := make([]span, 0, parts)
	for lo := 0; lo < n; lo += size {
		spans = append(spans, span{lo: lo, hi: min(lo+size, n)})
	}
	return spans
}

// fork runs fn once per span on at most jobs goroutines and returns the
// per-span results in span order once every worker has finished.
func fork[R any](spans []span, jobs int, fn func(s span) R) []R {
	out := make([]R, len(spans))
	var g errgroup.Group
	g.SetLimit(workers(jobs))
	for i, s := range spans {
		g.Go(func() error {
			out[i] = fn(s)
			return nil
		})
	}
	_ = g.Wait() // workers never fail
	return out
}
