package pipel

import (
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"
)

// Record is one log message tagged with the stage or transform that emitted
// it. Callers pass the tag explicitly; the bridge never inspects who is
// calling.
type Record struct {
	Tag     string
	Message string
}

const recordBuffer = 1024

// Logger bridges log records emitted from any goroutine to one consolidated
// zerolog sink. Producers may log concurrently; a single forwarder goroutine
// serializes the records, so the sink never sees interleaved writes. Total
// ordering across producers is not guaranteed.
type Logger struct {
	sink    zerolog.Logger
	records chan Record
	done    chan struct{}

	mu     sync.Mutex
	closed bool
}

// NewLogger creates a bridge in front of sink and starts its forwarder.
// Callers must Close the bridge to flush buffered records.
func NewLogger(sink zerolog.Logger) *Logger {
	l := &Logger{
		sink:    sink,
		records: make(chan Record, recordBuffer),
		done:    make(chan struct{}),
	}
	go l.forward()

	return l
}

// NewWriterLogger creates a bridge writing JSON records to w.
func NewWriterLogger(w io.Writer) *Logger {
	return NewLogger(zerolog.New(w).With().Timestamp().Logger())
}

func (l *Logger) forward() {
	defer close(l.done)
	for rec := range l.records {
		l.sink.Info().Str("tag", rec.Tag).Msg(rec.Message)
	}
}

// Log emits one record. Safe for concurrent use; it blocks only while the
// bridge buffer is full. Records sent after Close are dropped.
func (l *Logger) Log(tag, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.records <- Record{Tag: tag, Message: message}
}

// Logf emits one formatted record.
func (l *Logger) Logf(tag, format string, args ...any) {
	l.Log(tag, fmt.Sprintf(format, args...))
}

// Close flushes buffered records and stops the forwarder. It is idempotent.
func (l *Logger) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()

		return
	}
	l.closed = true
	close(l.records)
	l.mu.Unlock()
	<-l.done
}
