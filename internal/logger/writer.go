package logger

import (
	"bufio"
	"errors"
	"io"
	"sync"
)

// Sizing for this bot's log volume: one receipt plus one summary line per
// update and occasional sender events, so small buffers and a short queue
// keep lines on disk promptly without stalling handler goroutines.
const (
	sinkQueueDepth = 128
	sinkBufBytes   = 8 * 1024
)

// logSink fans completed log lines out to stdout and the optional bot log
// file from a single background goroutine. Handlers hand off whole lines and
// never block on disk; ordering across sinks is preserved.
type logSink struct {
	lines chan []byte
	flush chan chan error
	done  chan struct{}
	once  sync.Once

	mu      sync.Mutex
	outs    []*bufio.Writer
	sinkErr error
}

func newLogSink(writers []io.Writer) *logSink {
	outs := make([]*bufio.Writer, 0, len(writers))
	for _, w := range writers {
		if w == nil {
			continue
		}
		outs = append(outs, bufio.NewWriterSize(w, sinkBufBytes))
	}
	s := &logSink{
		lines: make(chan []byte, sinkQueueDepth),
		flush: make(chan chan error),
		done:  make(chan struct{}),
		outs:  outs,
	}
	go s.run()
	return s
}

func (s *logSink) run() {
	for {
		select {
		case line, ok := <-s.lines:
			if !ok {
				s.syncOuts()
				close(s.done)
				return
			}
			s.writeLine(line)
		case ack := <-s.flush:
			ack <- s.syncOuts()
		}
	}
}

// Write enqueues one line; it blocks only when the queue is full so a burst
// of updates slows logging down rather than dropping lines.
func (s *logSink) Write(line []byte) error {
	if err := s.firstErr(); err != nil {
		return err
	}
	if len(line) == 0 {
		return nil
	}
	buf := make([]byte, len(line))
	copy(buf, line)
	s.lines <- buf
	return nil
}

// Flush waits until everything queued so far has reached the sinks.
func (s *logSink) Flush() error {
	if err := s.firstErr(); err != nil {
		return err
	}
	ack := make(chan error, 1)
	s.flush <- ack
	return <-ack
}

// Close drains the queue and reports the first write error encountered.
func (s *logSink) Close() error {
	s.once.Do(func() {
		close(s.lines)
	})
	<-s.done
	return s.firstErr()
}

func (s *logSink) writeLine(line []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, out := range s.outs {
		if _, err := out.Write(line); err != nil {
			s.recordErr(err)
			return
		}
		if err := out.Flush(); err != nil {
			s.recordErr(err)
			return
		}
	}
}

func (s *logSink) syncOuts() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var errs []error
	for _, out := range s.outs {
		if err := out.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *logSink) firstErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sinkErr
}

// recordErr keeps the first failure; callers hold s.mu.
func (s *logSink) recordErr(err error) {
	if s.sinkErr == nil {
		s.sinkErr = err
	}
}
