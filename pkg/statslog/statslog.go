// Package statslog writes the human-readable refresh-statistics log that
// the FTL core flushes periodically. Unlike a write-ahead log it carries
// no LSN and is never replayed: the simulator persists nothing across
// runs, so the log exists purely for a human (or an offline analysis
// script) to read after the fact.
package statslog

import (
	"bufio"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Log appends human-readable lines to a file, buffering writes and
// flushing them on an explicit cadence rather than after every line.
type Log struct {
	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
	runID  uuid.UUID
	lines  int
}

// Open creates or truncates the log file at path and writes a run header.
func Open(path string) (*Log, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("statslog: open %s: %w", path, err)
	}

	l := &Log{
		file:   f,
		writer: bufio.NewWriter(f),
		runID:  uuid.New(),
	}

	fmt.Fprintf(l.writer, "# ftlsim refresh-statistics log, run=%s, started=%s\n",
		l.runID, time.Now().UTC().Format(time.RFC3339))

	return l, l.writer.Flush()
}

// Append writes one formatted line to the log. It does not flush.
func (l *Log) Append(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintf(l.writer, format, args...)
	l.writer.WriteByte('\n')
	l.lines++
}

// Flush forces buffered lines to disk. Called periodically by the
// refresh engine after a sweep, and once more on Close.
func (l *Log) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.writer.Flush()
}

// Lines returns the number of lines appended since Open.
func (l *Log) Lines() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lines
}

// Close flushes and closes the underlying file.
func (l *Log) Close() error {
	if err := l.Flush(); err != nil {
		l.file.Close()
		return err
	}
	return l.file.Close()
}
