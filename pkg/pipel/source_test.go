package pipel_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordiae/pipel/pkg/pipel"
)

func TestSliceSource(t *testing.T) {
	t.Parallel()

	source := pipel.SliceSource([]int{1, 2, 3})
	ctx := context.Background()

	for _, want := range []int{1, 2, 3} {
		got, err := source.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := source.Next(ctx)
	assert.ErrorIs(t, err, pipel.ErrSourceExhausted)
	_, err = source.Next(ctx)
	assert.ErrorIs(t, err, pipel.ErrSourceExhausted)
}

func TestChanSource(t *testing.T) {
	t.Parallel()

	input := make(chan string, 2)
	input <- "a"
	input <- "b"
	close(input)

	source := pipel.ChanSource(input)
	ctx := context.Background()

	got, err := source.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", got)

	got, err = source.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", got)

	_, err = source.Next(ctx)
	assert.ErrorIs(t, err, pipel.ErrSourceExhausted)
}

func TestChanSourceCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	source := pipel.ChanSource(make(chan int))
	_, err := source.Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLineSource(t *testing.T) {
	t.Parallel()

	source := pipel.LineSource(strings.NewReader("one\ntwo\nthree\n"))
	ctx := context.Background()

	var got []string
	for {
		line, err := source.Next(ctx)
		if err != nil {
			assert.ErrorIs(t, err, pipel.ErrSourceExhausted)

			break
		}
		got = append(got, line)
	}

	assert.Equal(t, []string{"one", "two", "three"}, got)
}
