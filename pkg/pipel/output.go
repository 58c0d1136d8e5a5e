package pipel

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// Output writes one ordered, already transformed batch to its destination.
type Output[T any] func(ctx context.Context, batch []T) error

// outputTask is the single slot holding an in-flight background write. The
// orchestrator owns it exclusively: joining the previous task before
// launching the next one is the only synchronization enforcing write order,
// so the output destination never sees two writers at once.
type outputTask struct {
	name string
	errc chan error
}

func launchOutput[T any](ctx context.Context, name string, outputFn Output[T], batch []T, mt *metric) *outputTask {
	task := &outputTask{
		name: name,
		errc: make(chan error, 1),
	}
	go func() {
		defer close(task.errc)
		start := time.Now()
		err := outputFn(ctx, batch)
		if mt != nil {
			mt.add(time.Since(start))
		}
		if err != nil {
			task.errc <- err
		}
	}()

	return task
}

// join blocks until the task finishes. A failure observed here happened one
// batch earlier; the caller must abort the run with it.
func (t *outputTask) join() error {
	err := <-t.errc
	if err != nil {
		return errors.Wrap(err, t.name)
	}

	return nil
}
