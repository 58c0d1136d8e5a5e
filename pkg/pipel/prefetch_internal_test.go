package pipel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefetcherTransparent(t *testing.T) {
	t.Parallel()

	const size = 4
	tcs := map[string]struct {
		length int
	}{
		"empty":            {length: 0},
		"single":           {length: 1},
		"exactly size":     {length: size},
		"size plus one":    {length: size + 1},
		"multiple of size": {length: 3 * size},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			input := make([]int, tc.length)
			for i := range input {
				input[i] = i
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			prefetch := newPrefetcher(ctx, &batcher[int]{source: SliceSource(input), size: size})
			defer prefetch.stop()

			got := make([]int, 0, tc.length)
			var batchLens []int
			for {
				batch, end, err := prefetch.next(ctx)
				require.NoError(t, err)
				if end {
					break
				}
				got = append(got, batch...)
				batchLens = append(batchLens, len(batch))
			}

			assert.Equal(t, input, got)
			for i, l := range batchLens {
				if i < len(batchLens)-1 {
					assert.Equal(t, size, l)
				}
			}
		})
	}
}

func TestPrefetcherStopMidStream(t *testing.T) {
	t.Parallel()

	input := make([]int, 100)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	prefetch := newPrefetcher(ctx, &batcher[int]{source: SliceSource(input), size: 10})

	batch, end, err := prefetch.next(ctx)
	require.NoError(t, err)
	require.False(t, end)
	require.Len(t, batch, 10)

	// the in-flight pull for the next batch is abandoned, not completed
	prefetch.stop()
}

func TestPrefetcherStopAfterExhaustion(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	prefetch := newPrefetcher(ctx, &batcher[int]{source: SliceSource([]int{1}), size: 10})

	_, end, err := prefetch.next(ctx)
	require.NoError(t, err)
	require.False(t, end)

	_, end, err = prefetch.next(ctx)
	require.NoError(t, err)
	require.True(t, end)

	prefetch.stop()
}

func TestPrefetcherSourceError(t *testing.T) {
	t.Parallel()

	source := SourceFunc[int](func(_ context.Context) (int, error) {
		return 0, assert.AnError
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	prefetch := newPrefetcher(ctx, &batcher[int]{source: source, size: 10})
	defer prefetch.stop()

	_, _, err := prefetch.next(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}
