package pipel

import (
	"context"

	"github.com/pkg/errors"
)

// batchSource yields consecutive batches of the underlying stream. end
// reports exhaustion explicitly so that no payload value ever doubles as a
// control signal. It is satisfied by batcher and prefetcher.
type batchSource[T any] interface {
	next(ctx context.Context) (batch []T, end bool, err error)
}

// batcher slices a Source into groups of at most size elements. Every batch
// except the last has exactly size elements; an empty source ends
// immediately with zero batches produced.
type batcher[T any] struct {
	source Source[T]
	size   int
}

func (b *batcher[T]) next(ctx context.Context) ([]T, bool, error) {
	batch := make([]T, 0, b.size)
	for len(batch) < b.size {
		if err := ctx.Err(); err != nil {
			return nil, false, errors.Wrap(err, "unable to fill batch")
		}
		el, err := b.source.Next(ctx)
		if errors.Is(err, ErrSourceExhausted) {
			break
		}
		if err != nil {
			return nil, false, errors.Wrap(err, "unable to pull from source")
		}
		batch = append(batch, el)
	}
	if len(batch) == 0 {
		return nil, true, nil
	}

	return batch, false, nil
}
