package logger

import (
	"bufio"
	"errors"
	"io"
	"sync"
)

// asyncWriter decouples log emission from sink I/O: lines are queued and a
// single goroutine fans them out to every sink. Pending lines are drained in
// batches so a burst costs one flush, not one per line.
type asyncWriter struct {
	lines     chan []byte
	flushReq  chan chan error
	done      chan struct{}
	closeOnce sync.Once

	mu    sync.Mutex
	sinks []*bufio.Writer
	err   error
}

func newAsyncWriter(writers []io.Writer, bufSize int) *asyncWriter {
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	w := &asyncWriter{
		lines:    make(chan []byte, 256),
		flushReq: make(chan chan error),
		done:     make(chan struct{}),
	}
	for _, out := range writers {
		if out == nil {
			continue
		}
		w.sinks = append(w.sinks, bufio.NewWriterSize(out, bufSize))
	}
	go w.run()
	return w
}

// Write queues one log line. It blocks when the queue is full rather than
// dropping the line.
func (w *asyncWriter) Write(p []byte) error {
	if err := w.stickyErr(); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}
	line := make([]byte, len(p))
	copy(line, p)
	w.lines <- line
	return nil
}

// Flush blocks until everything queued so far has reached the sinks. After
// Close it returns immediately; the close path has already flushed.
func (w *asyncWriter) Flush() error {
	if err := w.stickyErr(); err != nil {
		return err
	}
	ack := make(chan error, 1)
	select {
	case w.flushReq <- ack:
		return <-ack
	case <-w.done:
		return w.stickyErr()
	}
}

// Close drains the queue, flushes the sinks and reports the first write error.
func (w *asyncWriter) Close() error {
	w.closeOnce.Do(func() {
		close(w.lines)
	})
	<-w.done
	return w.stickyErr()
}

func (w *asyncWriter) run() {
	for {
		select {
		case line, ok := <-w.lines:
			if !ok {
				w.flushSinks()
				close(w.done)
				return
			}
			w.writeBatch(line)
		case ack := <-w.flushReq:
			// Lines queued before the flush request must land first.
			w.drainPending()
			ack <- w.flushSinks()
		}
	}
}

func (w *asyncWriter) drainPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for {
		select {
		case line, ok := <-w.lines:
			if !ok {
				return
			}
			w.writeLocked(line)
		default:
			return
		}
	}
}

// writeBatch writes the line plus whatever else is already queued, then
// flushes once.
func (w *asyncWriter) writeBatch(line []byte) {
	w.mu.Lock()
	w.writeLocked(line)
drain:
	for {
		select {
		case next, ok := <-w.lines:
			if !ok {
				break drain
			}
			w.writeLocked(next)
		default:
			break drain
		}
	}
	w.mu.Unlock()
	w.flushSinks()
}

// writeLocked fans one line out to every sink; callers hold the mutex.
func (w *asyncWriter) writeLocked(line []byte) {
	if len(line) == 0 {
		return
	}
	for _, sink := range w.sinks {
		if _, err := sink.Write(line); err != nil {
			w.recordErr(err)
		}
	}
}

func (w *asyncWriter) flushSinks() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	var errs []error
	for _, sink := range w.sinks {
		if err := sink.Flush(); err != nil {
			errs = append(errs, err)
			w.recordErr(err)
		}
	}
	return errors.Join(errs...)
}

func (w *asyncWriter) stickyErr() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// recordErr keeps the first failure; later ones are usually symptoms of the
// same broken sink. Callers hold the mutex.
func (w *asyncWriter) recordErr(err error) {
	if w.err == nil {
		w.err = err
	}
}
