// Package screen holds the state behind the order entry and trade booking
// desks: the form being edited, the last fetched list, filters, selection,
// and the status line. Every mutating action goes to the backend and then
// refetches the full list; nothing is patched locally.
package screen

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"
)

// Sink receives exported files.
type Sink interface {
	// Save writes src under name and returns where it went.
	Save(name string, src io.WriterTo) (string, error)
}

// DirSink saves files into a directory, creating it on first use.
type DirSink string

func (d DirSink) Save(name string, src io.WriterTo) (string, error) {
	dir := string(d)
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := src.WriteTo(f); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}

type env struct {
	log  *zap.Logger
	sink Sink
	copy func(string) error
	now  func() time.Time
	loc  *time.Location
}

func newEnv(opts []Option) env {
	e := env{
		log:  zap.NewNop(),
		sink: DirSink("."),
		copy: clipboard.WriteAll,
		now:  time.Now,
		loc:  time.Local,
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// Option configures a screen.
type Option func(*env)

func WithLogger(log *zap.Logger) Option {
	return func(e *env) {
		if log != nil {
			e.log = log
		}
	}
}

func WithSink(s Sink) Option {
	return func(e *env) {
		if s != nil {
			e.sink = s
		}
	}
}

// WithClipboard replaces the system clipboard writer.
func WithClipboard(write func(string) error) Option {
	return func(e *env) {
		if write != nil {
			e.copy = write
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *env) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLocation sets the zone timestamps are shown and filtered in.
func WithLocation(loc *time.Location) Option {
	return func(e *env) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// status is the message line shared by both screens, plus the error behind
// the last failed action.
type status struct {
	message string
	err     error
}

// Message is the status line as the user sees it.
func (s *status) Message() string { return s.message }

// Err is the failure behind the current message, or nil.
func (s *status) Err() error { return s.err }

func (s *status) set(msg string, err error) {
	s.message = msg
	s.err = err
}
