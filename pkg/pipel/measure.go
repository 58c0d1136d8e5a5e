package pipel

import (
	"sync"
	"time"
)

type metric struct {
	mu      sync.Mutex
	elapsed time.Duration
	total   int64
}

func (mt *metric) add(elapsed time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.total++
	mt.elapsed += elapsed
}

func (mt *metric) avg() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	if mt.total == 0 {
		return time.Duration(0)
	}

	return round(time.Duration(float64(mt.elapsed) / float64(mt.total)))
}

// measure aggregates per-stage timings for one run: time the orchestrator
// spent waiting for a batch, transforming it and writing it. The output
// metric is fed from the background task goroutine, hence the mutex in
// metric.
type measure struct {
	fetch   *metric
	compute *metric
	output  *metric

	batches       int64
	totalDuration time.Duration
}

func newMeasure() *measure {
	return &measure{
		fetch:   &metric{},
		compute: &metric{},
		output:  &metric{},
	}
}

// RunStats is the per-stage timing snapshot of a finished run.
type RunStats struct {
	// Batches is the number of batches processed.
	Batches int64
	// AvgFetch is the average time spent waiting for a batch. With
	// prefetching enabled it measures only the wait, not the fill.
	AvgFetch time.Duration
	// AvgCompute is the average time spent transforming one batch.
	AvgCompute time.Duration
	// AvgOutput is the average time spent writing one batch.
	AvgOutput time.Duration
	// Total is the wall-clock duration of the run.
	Total time.Duration
}

func (m *measure) stats() RunStats {
	return RunStats{
		Batches:    m.batches,
		AvgFetch:   m.fetch.avg(),
		AvgCompute: m.compute.avg(),
		AvgOutput:  m.output.avg(),
		Total:      m.totalDuration,
	}
}

func round(d time.Duration) time.Duration {
	switch {
	case d > time.Second:
		d = d.Round(time.Second)
	case d > time.Millisecond:
		d = d.Round(time.Millisecond)
	case d > time.Microsecond:
		d = d.Round(time.Microsecond)
	}

	return d
}
