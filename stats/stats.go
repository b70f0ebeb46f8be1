// stats/stats.go

// Package stats aggregates a mood log into counts, percentages and the most
// common mood.
package stats

import (
	"github.com/ViniZap4/moodlog-server/domain"
)

// Summary is derived from one snapshot of the log.
type Summary struct {
	Total       int                     `json:"total" yaml:"total"`
	Counts      map[domain.Mood]int     `json:"counts" yaml:"counts"`
	Percentages map[domain.Mood]float64 `json:"percentages" yaml:"percentages"`
	// Mode is the most frequent mood, empty when the log is empty. Ties go to
	// the mood listed first in domain.Moods (Sad, Normal, Good, Happy).
	Mode domain.Mood `json:"mode,omitempty" yaml:"mode,omitempty"`
}

// Compute is pure; entries with an unknown mood are counted in Total only.
func Compute(entries []domain.Entry) Summary {
	s := Summary{
		Total:       len(entries),
		Counts:      make(map[domain.Mood]int, len(domain.Moods)),
		Percentages: make(map[domain.Mood]float64, len(domain.Moods)),
	}
	for _, m := range domain.Moods {
		s.Counts[m] = 0
		s.Percentages[m] = 0
	}

	for _, e := range entries {
		if _, ok := s.Counts[e.Mood]; ok {
			s.Counts[e.Mood]++
		}
	}

	if s.Total == 0 {
		return s
	}

	best := 0
	for _, m := range domain.Moods {
		c := s.Counts[m]
		s.Percentages[m] = float64(c) / float64(s.Total) * 100
		if c > best {
			best = c
			s.Mode = m
		}
	}
	return s
}

// Bar is one column of the statistics chart.
type Bar struct {
	Mood    domain.Mood `json:"mood"`
	Count   int         `json:"count"`
	Percent float64     `json:"percent"`
}

// Bars returns the chart series in canonical mood order.
func (s Summary) Bars() []Bar {
	bars := make([]Bar, 0, len(domain.Moods))
	for _, m := range domain.Moods {
		bars = append(bars, Bar{Mood: m, Count: s.Counts[m], Percent: s.Percentages[m]})
	}
	return bars
}
