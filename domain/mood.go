// domain/mood.go
package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidMood = errors.New("invalid mood")
	ErrEmptyNote   = errors.New("note is required")
)

// Mood is one of the four fixed labels. The zero value means "no mood".
type Mood string

const (
	Sad    Mood = "Sad"
	Normal Mood = "Normal"
	Good   Mood = "Good"
	Happy  Mood = "Happy"
)

// Moods lists every label in canonical order. Statistics use the same order
// to break ties.
var Moods = []Mood{Sad, Normal, Good, Happy}

func ParseMood(s string) (Mood, error) {
	for _, m := range Moods {
		if strings.EqualFold(strings.TrimSpace(s), string(m)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMood, s)
}

func (m Mood) Valid() bool {
	for _, known := range Moods {
		if m == known {
			return true
		}
	}
	return false
}

func (m Mood) String() string { return string(m) }

// normalizeMood maps known labels to their canonical spelling and keeps
// anything else verbatim so stored history is never rejected.
func normalizeMood(s string) Mood {
	if m, err := ParseMood(s); err == nil {
		return m
	}
	return Mood(s)
}

func (m *Mood) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*m = normalizeMood(s)
	return nil
}

func (m *Mood) UnmarshalYAML(node *yaml.Node) error {
	*m = normalizeMood(node.Value)
	return nil
}

// Entry is one recorded mood. Entries are never edited after creation.
type Entry struct {
	Mood Mood      `json:"mood" yaml:"mood"`
	Note string    `json:"note" yaml:"note"`
	Date time.Time `json:"date" yaml:"date"`
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate accepts RFC 3339 and the common zone-less ISO-8601 forms, read as
// UTC. Anything else yields the zero time.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// UnmarshalJSON reads any JSON object. Fields of the wrong type or with
// unparsable values decode as zero values instead of failing the entry.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*e = Entry{
		Mood: normalizeMood(stringField(fields["mood"])),
		Note: stringField(fields["note"]),
		Date: ParseDate(stringField(fields["date"])),
	}
	return nil
}

func stringField(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

// NewEntry stamps a new entry with now (in UTC). A blank note is rejected.
func NewEntry(mood Mood, note string, now time.Time) (Entry, error) {
	if !mood.Valid() {
		return Entry{}, fmt.Errorf("%w: %q", ErrInvalidMood, string(mood))
	}
	if strings.TrimSpace(note) == "" {
		return Entry{}, ErrEmptyNote
	}
	return Entry{Mood: mood, Note: note, Date: now.UTC()}, nil
}

// Log is the full history, oldest first.
type Log []Entry

// NewestFirst returns a reversed copy for display.
func (l Log) NewestFirst() Log {
	out := make(Log, len(l))
	for i, e := range l {
		out[len(l)-1-i] = e
	}
	return out
}
