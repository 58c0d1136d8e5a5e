package pipel

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	// DefaultBatchSize is the number of elements pulled into memory per
	// batch when WithBatchSize is not given.
	DefaultBatchSize = 1000
	// DefaultLogInterval is the number of batches between progress records
	// when WithLogInterval is not given.
	DefaultLogInterval = 10000
)

const (
	stateIdle int32 = iota
	stateRunning
	stateDone
)

const (
	stageSource    = "source"
	stageBatch     = "batch"
	stagePrefetch  = "prefetch"
	stageTransform = "transform"
	stageOutput    = "output"
)

// Pipeline applies an ordered chain of transforms to a lazily produced
// stream and writes every batch in source order. In parallel mode the
// prefetch of batch N+1, the transformation of batch N and the write of
// batch N-1 overlap, while the output stays identical to a sequential run.
type Pipeline[T any] struct {
	id       string
	source   Source[T]
	composed Transform[T]
	output   Output[T]

	batchSize int
	parallel  bool
	workers   int
	logger    *Logger
	logEvery  int
	measure   *measure
	drawer    *drawer

	state atomic.Int32
}

// New builds a pipeline over source, transforms and output. By default it
// runs in parallel with batches of DefaultBatchSize and one worker per CPU.
func New[T any](source Source[T], transforms []Transform[T], output Output[T], opts ...Option[T]) (*Pipeline[T], error) {
	pipe := &Pipeline[T]{
		id:        uuid.NewString(),
		source:    source,
		composed:  Compose(transforms...),
		output:    output,
		batchSize: DefaultBatchSize,
		parallel:  true,
		workers:   runtime.NumCPU(),
		logEvery:  DefaultLogInterval,
	}
	for _, opt := range opts {
		opt(pipe)
	}

	if pipe.source == nil {
		return nil, ErrSourceMustBeSet
	}
	if pipe.output == nil {
		return nil, ErrOutputMustBeSet
	}
	if pipe.batchSize < 1 {
		return nil, ErrBatchSize
	}
	if pipe.workers < 1 {
		return nil, ErrWorkerCount
	}
	if pipe.logEvery < 1 {
		return nil, ErrLogInterval
	}

	if pipe.drawer != nil {
		err := pipe.buildGraph()
		if err != nil {
			return nil, errors.Wrap(err, "unable to build stage graph")
		}
	}

	return pipe, nil
}

// ID returns the run identifier attached to the pipeline's log records.
func (p *Pipeline[T]) ID() string {
	return p.id
}

// Stats returns the per-stage timings of a run started with WithMeasure.
func (p *Pipeline[T]) Stats() RunStats {
	if p.measure == nil {
		return RunStats{}
	}

	return p.measure.stats()
}

// Run drives the batch, transform and output loop until the source is
// exhausted. It can be called exactly once; later calls fail with
// ErrAlreadyRun. Any transform or output failure aborts the run and leaves
// the pipeline non-resumable.
func (p *Pipeline[T]) Run(ctx context.Context) error {
	if !p.state.CompareAndSwap(stateIdle, stateRunning) {
		return ErrAlreadyRun
	}

	start := time.Now()
	err := p.run(ctx)
	if err != nil {
		return err
	}
	if p.measure != nil {
		p.measure.totalDuration = time.Since(start)
	}

	err = p.finishRun()
	if err != nil {
		return err
	}
	p.state.Store(stateDone)

	return nil
}

func (p *Pipeline[T]) run(ctx context.Context) error {
	dCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := p.workers
	if !p.parallel {
		workers = 1
	}

	batches := &batcher[T]{source: p.source, size: p.batchSize}

	var source batchSource[T] = batches
	if p.parallel {
		prefetch := newPrefetcher(dCtx, batches)
		defer prefetch.stop()
		source = prefetch
	}

	var outputMetric *metric
	if p.measure != nil {
		outputMetric = p.measure.output
	}

	var outstanding *outputTask
	// the output slot is released even when the loop aborts early
	defer func() {
		if outstanding != nil {
			_ = outstanding.join()
		}
	}()

	for idx := 0; ; idx++ {
		fetchStart := time.Now()
		batch, end, err := source.next(dCtx)
		if err != nil {
			return errors.Wrapf(err, "batch %d", idx+1)
		}
		if end {
			break
		}
		if p.measure != nil {
			p.measure.fetch.add(time.Since(fetchStart))
		}

		computeStart := time.Now()
		err = executeBatch(dCtx, batch, p.composed, workers)
		if err != nil {
			return errors.Wrapf(err, "unable to transform batch %d", idx+1)
		}
		if p.measure != nil {
			p.measure.compute.add(time.Since(computeStart))
			p.measure.batches++
		}

		if p.parallel {
			if outstanding != nil {
				err = outstanding.join()
				if err != nil {
					return err
				}
			}
			p.logProgress(idx)
			outstanding = launchOutput(dCtx, fmt.Sprintf("output batch %d", idx+1), p.output, batch, outputMetric)

			continue
		}

		p.logProgress(idx)
		outputStart := time.Now()
		err = p.output(dCtx, batch)
		if outputMetric != nil {
			outputMetric.add(time.Since(outputStart))
		}
		if err != nil {
			return errors.Wrapf(err, "output batch %d", idx+1)
		}
	}

	if outstanding != nil {
		err := outstanding.join()
		if err != nil {
			return err
		}
	}

	return nil
}

func (p *Pipeline[T]) logProgress(idx int) {
	if p.logger == nil || idx%p.logEvery != 0 {
		return
	}
	p.logger.Logf("pipeline/"+p.id, "processed batch %d", idx+1)
}

func (p *Pipeline[T]) buildGraph() error {
	fetchStage := stageBatch
	if p.parallel {
		fetchStage = stagePrefetch
	}
	stages := []string{stageSource, fetchStage, stageTransform, stageOutput}
	for _, name := range stages {
		err := p.drawer.addStage(name)
		if err != nil {
			return err
		}
	}
	for i := 1; i < len(stages); i++ {
		err := p.drawer.addLink(stages[i-1], stages[i])
		if err != nil {
			return err
		}
	}

	return nil
}

func (p *Pipeline[T]) finishRun() error {
	if p.drawer == nil {
		return nil
	}

	if p.measure != nil {
		fetchStage := stageBatch
		if p.parallel {
			fetchStage = stagePrefetch
		}
		elapsed := map[string]time.Duration{
			fetchStage:     p.measure.fetch.avg(),
			stageTransform: p.measure.compute.avg(),
			stageOutput:    p.measure.output.avg(),
		}
		slowest := time.Duration(0)
		for _, d := range elapsed {
			if d > slowest {
				slowest = d
			}
		}
		for name, d := range elapsed {
			err := p.drawer.setElapsed(name, d, slowest)
			if err != nil {
				return errors.Wrap(err, "unable to colour stage graph")
			}
		}
	}

	err := p.drawer.draw()
	if err != nil {
		return errors.Wrap(err, "unable to draw stage graph")
	}

	return nil
}
