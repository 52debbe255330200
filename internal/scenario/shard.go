package scenario

import "golang.org/x/sync/errgroup"

// shard splits [0, total) into one contiguous range per worker, gives each
// worker its own accumulator and merges the accumulators in range order.
// Counters only ever add, so the merged result does not depend on how the
// range was split.
func shard[T any](total uint64, workers int, newAcc func() T, visit func(acc T, from, to uint64), merge func(dst, src T)) T {
	if workers < 1 {
		workers = 1
	}
	if uint64(workers) > total {
		workers = int(total)
	}

	accs := make([]T, workers)
	chunk := total / uint64(workers)
	extra := total % uint64(workers)

	var g errgroup.Group
	from := uint64(0)
	for w := 0; w < workers; w++ {
		size := chunk
		if uint64(w) < extra {
			size++
		}
		lo, hi := from, from+size
		acc := newAcc()
		accs[w] = acc
		g.Go(func() error {
			visit(acc, lo, hi)
			return nil
		})
		from = hi
	}
	_ = g.Wait()

	result := accs[0]
	for _, acc := range accs[1:] {
		merge(result, acc)
	}
	return result
}
