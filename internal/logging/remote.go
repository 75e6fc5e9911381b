// Package logging provides the best-effort remote log sink. Every entry is
// pushed to an external HTTP endpoint from a background goroutine; delivery
// failures are noted on stderr and discarded, and the request path never
// waits on the sink.
package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"
)

// Entry is one structured log record as the remote endpoint expects it.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Stack     string    `json:"stack"`
	Package   string    `json:"package"`
	Message   string    `json:"message"`
}

// RemoteSink forwards log entries to a remote HTTP endpoint. Entries are
// buffered on a channel; when the buffer is full new entries are dropped
// rather than blocking the caller.
type RemoteSink struct {
	url       string
	stack     string
	client    *http.Client
	entries   chan Entry
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewRemoteSink creates a sink pushing to url and starts its forwarder.
// The stack label is attached to every entry.
func NewRemoteSink(url, stack string, timeout time.Duration, bufferSize int) *RemoteSink {
	s := &RemoteSink{
		url:     url,
		stack:   stack,
		client:  &http.Client{Timeout: timeout},
		entries: make(chan Entry, bufferSize),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	go s.forward()

	return s
}

// Emit queues an entry for delivery. It never blocks: a full buffer drops
// the entry, and so does a closed sink. The entries channel is never
// closed, so emitting concurrently with or after Close is safe.
func (s *RemoteSink) Emit(e Entry) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	e.Stack = s.stack

	select {
	case <-s.quit:
	default:
		select {
		case s.entries <- e:
		default:
		}
	}
}

// Close stops the forwarder and waits for the buffer to drain, up to the
// given context's deadline. It is idempotent.
func (s *RemoteSink) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		close(s.quit)
	})

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *RemoteSink) forward() {
	defer close(s.done)

	for {
		select {
		case e := <-s.entries:
			s.push(e)
		case <-s.quit:
			for {
				select {
				case e := <-s.entries:
					s.push(e)
				default:
					return
				}
			}
		}
	}
}

// push delivers one entry. Failures are reported on stderr only; the sink
// must never raise into the request path.
func (s *RemoteSink) push(e Entry) {
	body, err := json.Marshal(e)
	if err != nil {
		fmt.Fprintf(os.Stderr, "remote log: failed to marshal entry: %v\n", err)
		return
	}

	req, err := http.NewRequest(http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		fmt.Fprintf(os.Stderr, "remote log: failed to create request: %v\n", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "remote log: push failed: %v\n", err)
		return
	}
	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		fmt.Fprintf(os.Stderr, "remote log: endpoint returned %d\n", resp.StatusCode)
	}
}

// TeeHandler is a slog.Handler that forwards every record to a RemoteSink
// and then to the wrapped handler. The sink sees the record's level, message
// and the value of its "package" attribute when one is present.
type TeeHandler struct {
	next slog.Handler
	sink *RemoteSink
	pkg  string
}

// NewTeeHandler wraps next so its records also feed sink.
func NewTeeHandler(next slog.Handler, sink *RemoteSink) *TeeHandler {
	return &TeeHandler{next: next, sink: sink}
}

func (h *TeeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *TeeHandler) Handle(ctx context.Context, rec slog.Record) error {
	pkg := h.pkg
	rec.Attrs(func(a slog.Attr) bool {
		if a.Key == "package" {
			pkg = a.Value.String()
			return false
		}
		return true
	})

	h.sink.Emit(Entry{
		Timestamp: rec.Time,
		Level:     rec.Level.String(),
		Package:   pkg,
		Message:   rec.Message,
	})

	return h.next.Handle(ctx, rec)
}

func (h *TeeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	cp := *h
	cp.next = h.next.WithAttrs(attrs)
	for _, a := range attrs {
		if a.Key == "package" {
			cp.pkg = a.Value.String()
		}
	}
	return &cp
}

func (h *TeeHandler) WithGroup(name string) slog.Handler {
	cp := *h
	cp.next = h.next.WithGroup(name)
	return &cp
}
