package pipel

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// executeBatch applies fn to every element of batch in place. With more than
// one worker the batch is split into contiguous index ranges across an
// errgroup; every index is written exactly once at its original position, so
// the gathered result equals the sequential one regardless of scheduling.
// An error from any element aborts the whole batch.
func executeBatch[T any](ctx context.Context, batch []T, fn Transform[T], workers int) error {
	if workers <= 1 || len(batch) <= 1 {
		for idx, el := range batch {
			out, err := fn(ctx, el)
			if err != nil {
				return err
			}
			batch[idx] = out
		}

		return nil
	}

	if workers > len(batch) {
		workers = len(batch)
	}

	errGrp, dCtx := errgroup.WithContext(ctx)
	errGrp.SetLimit(workers)

	chunk := (len(batch) + workers - 1) / workers
	for start := 0; start < len(batch); start += chunk {
		end := start + chunk
		if end > len(batch) {
			end = len(batch)
		}
		part := batch[start:end]
		errGrp.Go(func() error {
			for idx, el := range part {
				// stop filling the batch as soon as any worker failed
				if err := dCtx.Err(); err != nil {
					return err
				}
				out, err := fn(dCtx, el)
				if err != nil {
					return err
				}
				part[idx] = out
			}

			return nil
		})
	}

	return errGrp.Wait()
}
