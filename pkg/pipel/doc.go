// Package pipel applies an ordered chain of per-element transforms to a
// lazily produced stream, writing the transformed stream batch by batch to an
// output procedure.
//
// The pipeline slices the source into fixed-size batches and processes them
// one at a time. In parallel mode three stages overlap: a background worker
// prefetches the next batch while the current one is being transformed across
// a worker pool, and the previous batch is being written by a background
// output task. The output of a parallel run is guaranteed to be identical to
// a sequential run over the same source, because batches are gathered in
// their original order and at most one output task is in flight at any time.
//
// The pipeline stops on the first encountered error. A transform failure
// aborts the in-flight batch with nothing from it emitted; an output failure
// in parallel mode surfaces at the next join point. A pipeline runs exactly
// once and is then discarded.
package pipel
