package pipel

import (
	"bufio"
	"context"
	"io"

	"github.com/pkg/errors"
)

// ErrSourceExhausted signals normal end of a source. It is a completion
// marker, not a failure.
var ErrSourceExhausted = errors.New("source exhausted")

// Source produces elements lazily, one per call. Implementations return
// ErrSourceExhausted once no elements remain. A source is consumed once and
// is not restartable.
type Source[T any] interface {
	Next(ctx context.Context) (T, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc[T any] func(ctx context.Context) (T, error)

func (fn SourceFunc[T]) Next(ctx context.Context) (T, error) {
	return fn(ctx)
}

// SliceSource returns a Source yielding the elements of elements in order.
func SliceSource[T any](elements []T) Source[T] {
	idx := 0

	return SourceFunc[T](func(_ context.Context) (T, error) {
		if idx >= len(elements) {
			var zero T

			return zero, ErrSourceExhausted
		}
		el := elements[idx]
		idx++

		return el, nil
	})
}

// ChanSource returns a Source that receives from input until it is closed.
func ChanSource[T any](input <-chan T) Source[T] {
	return SourceFunc[T](func(ctx context.Context) (T, error) {
		var zero T
		select {
		case <-ctx.Done():
			return zero, errors.Wrap(ctx.Err(), "unable to receive from source channel")
		case el, ok := <-input:
			if !ok {
				return zero, ErrSourceExhausted
			}

			return el, nil
		}
	})
}

// LineSource returns a Source yielding the lines of r without their trailing
// newline.
func LineSource(r io.Reader) Source[string] {
	scanner := bufio.NewScanner(r)

	return SourceFunc[string](func(_ context.Context) (string, error) {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", errors.Wrap(err, "unable to scan line")
			}

			return "", ErrSourceExhausted
		}

		return scanner.Text(), nil
	})
}
