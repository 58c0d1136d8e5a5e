package pipel

// Option configures a Pipeline at construction time.
type Option[T any] func(p *Pipeline[T])

// WithBatchSize sets how many elements are pulled into memory per batch.
func WithBatchSize[T any](size int) Option[T] {
	return func(p *Pipeline[T]) {
		p.batchSize = size
	}
}

// WithSequential disables the staged parallel mode. Everything runs in the
// caller's goroutine.
func WithSequential[T any]() Option[T] {
	return func(p *Pipeline[T]) {
		p.parallel = false
	}
}

// WithWorkers sets how many goroutines transform one batch. The default is
// the number of CPUs.
func WithWorkers[T any](workers int) Option[T] {
	return func(p *Pipeline[T]) {
		p.workers = workers
	}
}

// WithLogger attaches the bridge the pipeline reports progress through.
// Transforms may share the same bridge.
func WithLogger[T any](logger *Logger) Option[T] {
	return func(p *Pipeline[T]) {
		p.logger = logger
	}
}

// WithLogInterval sets how many batches pass between progress records.
func WithLogInterval[T any](every int) Option[T] {
	return func(p *Pipeline[T]) {
		p.logEvery = every
	}
}

// WithMeasure records per-stage durations, available from Stats after Run.
func WithMeasure[T any]() Option[T] {
	return func(p *Pipeline[T]) {
		p.measure = newMeasure()
	}
}

// WithDrawer renders the stage graph to svgFileName when Run finishes. When
// combined with WithMeasure the stages are coloured by their average
// duration.
func WithDrawer[T any](svgFileName string) Option[T] {
	return func(p *Pipeline[T]) {
		p.drawer = newDrawer(svgFileName)
	}
}
