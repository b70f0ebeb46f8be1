// store/store.go

// Package store persists the mood log under a single key of a kv.Backend.
//
// The log is stored as one JSON array of {mood, note, date} objects. Every
// operation goes to the backend; nothing is cached between calls.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ViniZap4/moodlog-server/domain"
	"github.com/ViniZap4/moodlog-server/kv"
)

const DefaultKey = "moods"

type Kind int

const (
	StorageUnavailable Kind = iota + 1
	MalformedData
)

func (k Kind) String() string {
	switch k {
	case StorageUnavailable:
		return "storage unavailable"
	case MalformedData:
		return "malformed data"
	default:
		return "unknown"
	}
}

var (
	ErrStorageUnavailable = &Error{Kind: StorageUnavailable}
	ErrMalformedData      = &Error{Kind: MalformedData}
)

// Error is the outcome of a failed store operation.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Kind.String()
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so the package sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

type Option func(*Store)

func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// Store owns the persisted mood log.
type Store struct {
	backend kv.Backend
	key     string
	log     zerolog.Logger
	// mu serializes read-modify-write cycles issued from this process.
	mu sync.Mutex
}

func New(backend kv.Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		key:     DefaultKey,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With().Str("component", "store").Str("key", s.key).Logger()
	return s
}

func (s *Store) Key() string { return s.key }

// ReadAll returns the log in insertion order. On failure the returned log is
// empty and err is a *Error the caller may choose to ignore.
func (s *Store) ReadAll(ctx context.Context) (domain.Log, error) {
	return s.read(ctx, "read")
}

// Snapshot is ReadAll for display paths: failures are logged and read as an
// empty log.
func (s *Store) Snapshot(ctx context.Context) domain.Log {
	entries, err := s.ReadAll(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("reading mood log failed, showing empty history")
	}
	return entries
}

// Append adds entry to the end of the log. Stored entries are copied back
// byte for byte. A malformed stored value is replaced; an unreadable backend
// aborts the append without writing.
func (s *Store) Append(ctx context.Context, entry domain.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raws, err := s.readRaw(ctx, "append")
	if err != nil {
		if !errors.Is(err, ErrMalformedData) {
			return err
		}
		s.log.Warn().Err(err).Msg("discarding malformed mood log")
		raws = nil
	}

	encoded, err := json.Marshal(entry)
	if err != nil {
		return &Error{Op: "append", Kind: MalformedData, Err: err}
	}
	raws = append(raws, encoded)

	data := make([]byte, 0, 2+len(raws)*len(encoded))
	data = append(data, '[')
	data = append(data, bytes.Join(raws, []byte(","))...)
	data = append(data, ']')

	if err := s.backend.Set(ctx, s.key, data); err != nil {
		return &Error{Op: "append", Kind: StorageUnavailable, Err: err}
	}

	s.log.Debug().Str("mood", entry.Mood.String()).Int("total", len(raws)).Msg("mood appended")
	return nil
}

// Clear deletes the whole log.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Delete(ctx, s.key); err != nil {
		return &Error{Op: "clear", Kind: StorageUnavailable, Err: err}
	}
	s.log.Info().Msg("mood log cleared")
	return nil
}

func (s *Store) read(ctx context.Context, op string) (domain.Log, error) {
	raws, err := s.readRaw(ctx, op)
	if err != nil {
		return domain.Log{}, err
	}

	entries := make(domain.Log, 0, len(raws))
	for i, raw := range raws {
		var e domain.Entry
		if err := json.Unmarshal(raw, &e); err != nil {
			return domain.Log{}, &Error{Op: op, Kind: MalformedData, Err: fmt.Errorf("entry %d: %w", i, err)}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// readRaw returns the stored entries undecoded. Only a value that is not a
// JSON array of objects counts as malformed.
func (s *Store) readRaw(ctx context.Context, op string) ([][]byte, error) {
	data, err := s.backend.Get(ctx, s.key)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &Error{Op: op, Kind: StorageUnavailable, Err: err}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, &Error{Op: op, Kind: MalformedData, Err: err}
	}

	raws := make([][]byte, 0, len(items))
	for i, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || item[0] != '{' {
			return nil, &Error{Op: op, Kind: MalformedData, Err: fmt.Errorf("entry %d is not an object", i)}
		}
		raws = append(raws, item)
	}
	return raws, nil
}
