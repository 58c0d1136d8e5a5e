package pipel

import (
	"context"

	"github.com/pkg/errors"
)

// fetch is the tagged reply to one prefetch pull.
type fetch[T any] struct {
	batch []T
	end   bool
	err   error
}

// prefetcher runs a batcher in its own goroutine so that the next batch is
// being filled while the consumer still processes the current one. The
// consumer sends a pull token over pull and receives the tagged reply over
// results; at most one pull is outstanding at any time, which bounds the
// prefetch depth at exactly one batch.
type prefetcher[T any] struct {
	pull    chan struct{}
	results chan fetch[T]
	cancel  context.CancelFunc
	done    chan struct{}
}

// newPrefetcher starts the worker and primes the first pull, so the first
// batch is already being filled before the consumer asks for it.
func newPrefetcher[T any](ctx context.Context, batches *batcher[T]) *prefetcher[T] {
	wCtx, cancel := context.WithCancel(ctx)
	pf := &prefetcher[T]{
		// Capacity one: the consumer holds at most one token in flight, so
		// sending a pull never blocks.
		pull:    make(chan struct{}, 1),
		results: make(chan fetch[T]),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go pf.work(wCtx, batches)
	pf.pull <- struct{}{}

	return pf
}

func (pf *prefetcher[T]) work(ctx context.Context, batches *batcher[T]) {
	defer close(pf.done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-pf.pull:
		}
		batch, end, err := batches.next(ctx)
		select {
		case <-ctx.Done():
			return
		case pf.results <- fetch[T]{batch: batch, end: end, err: err}:
		}
		if end || err != nil {
			close(pf.results)

			return
		}
	}
}

// next returns the reply to the outstanding pull and, unless the stream
// ended, immediately sends the pull for the batch after it.
func (pf *prefetcher[T]) next(ctx context.Context) ([]T, bool, error) {
	select {
	case <-ctx.Done():
		return nil, false, errors.Wrap(ctx.Err(), "unable to receive prefetched batch")
	case res, ok := <-pf.results:
		if !ok {
			return nil, true, nil
		}
		if res.end || res.err != nil {
			return nil, res.end, res.err
		}
		pf.pull <- struct{}{}

		return res.batch, false, nil
	}
}

// stop tears the worker down, abandoning any in-flight pull. It is safe to
// call after exhaustion and blocks until the goroutine has exited.
func (pf *prefetcher[T]) stop() {
	pf.cancel()
	<-pf.done
}
