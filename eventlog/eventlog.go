package eventlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/minaorangina/flip7/protocol"
	"github.com/sirupsen/logrus"
)

// Recorder keeps every event in memory
type Recorder struct {
	mu     sync.Mutex
	events []protocol.Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Emit(e protocol.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *Recorder) Events() []protocol.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]protocol.Event(nil), r.events...)
}

// Types lists the recorded event types in order
func (r *Recorder) Types() []protocol.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]protocol.EventType, len(r.events))
	for i, e := range r.events {
		types[i] = e.Type
	}
	return types
}

// Filter returns the recorded events of one type
func (r *Recorder) Filter(t protocol.EventType) []protocol.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []protocol.Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// Writer encodes each event as one line of JSON.
// Encoding errors are logged and the first one is kept for Err.
type Writer struct {
	mu     sync.Mutex
	enc    *json.Encoder
	closer io.Closer
	err    error
	logger logrus.FieldLogger
}

func NewWriter(w io.Writer, logger logrus.FieldLogger) *Writer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	jw := &Writer{enc: json.NewEncoder(w), logger: logger}
	if c, ok := w.(io.Closer); ok {
		jw.closer = c
	}
	return jw
}

// OpenFile creates <dir>/<gameID>.jsonl for a game's events
func OpenFile(dir, gameID string, logger logrus.FieldLogger) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating replay dir: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, gameID+".jsonl"))
	if err != nil {
		return nil, fmt.Errorf("creating replay file: %w", err)
	}
	return NewWriter(f, logger), nil
}

func (w *Writer) Emit(e protocol.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.enc.Encode(e); err != nil {
		w.logger.WithError(err).WithField("seq", e.Seq).Error("could not write event")
		if w.err == nil {
			w.err = err
		}
	}
}

func (w *Writer) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

func (w *Writer) Close() error {
	if w.closer == nil {
		return nil
	}
	return w.closer.Close()
}

// ReadAll decodes a JSON-lines event log, as written by Writer
func ReadAll(r io.Reader) ([]protocol.Event, error) {
	var events []protocol.Event
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var e protocol.Event
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			return events, fmt.Errorf("line %d: %w", line, err)
		}
		events = append(events, e)
	}
	return events, scanner.Err()
}

// Multi fans every event out to each sink in turn
func Multi(sinks ...protocol.Sink) protocol.Sink {
	return protocol.SinkFunc(func(e protocol.Event) {
		for _, s := range sinks {
			if s != nil {
				s.Emit(e)
			}
		}
	})
}
