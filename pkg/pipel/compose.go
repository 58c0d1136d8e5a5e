package pipel

import "context"

// Transform applies one stage to one element. Transforms must be safe to
// invoke from any goroutine: captured state, if any, is either immutable or
// independently owned by each invocation.
type Transform[T any] func(ctx context.Context, el T) (T, error)

// Compose chains transforms into a single Transform that applies them in
// list order. The empty list composes to the identity. An error from any
// transform stops the chain and propagates unmodified.
func Compose[T any](transforms ...Transform[T]) Transform[T] {
	return func(ctx context.Context, el T) (T, error) {
		var err error
		for _, fn := range transforms {
			el, err = fn(ctx, el)
			if err != nil {
				return el, err
			}
		}

		return el, nil
	}
}
