// Package stats accumulates per-session search statistics.
package stats

import (
	"sort"
	"strings"

	"github.com/altin/linesearch/internal/model"
)

type TermCount struct {
	Term  string
	Count int
}

// Stats only grows; nothing is ever reset or decremented during a session.
type Stats struct {
	searches     int
	totalMatches int
	terms        map[string]int
	order        []string // first-seen order of terms
}

func New() *Stats {
	return &Stats{terms: make(map[string]int)}
}

// RecordAttempt counts a search that had no usable terms.
func (s *Stats) RecordAttempt() {
	s.searches++
}

// Record counts one completed search. Frequencies come from the query's
// term counts; the query order decides first-seen order.
func (s *Stats) Record(results *model.SearchResults) {
	s.searches++
	s.totalMatches += results.TotalCount
	for _, t := range results.Query.Terms {
		t = strings.ToLower(t)
		if _, ok := s.terms[t]; !ok {
			s.order = append(s.order, t)
			s.terms[t] = 0
		}
	}
	for t, n := range results.TermCounts {
		if _, ok := s.terms[t]; !ok {
			s.order = append(s.order, t)
		}
		s.terms[t] += n
	}
}

func (s *Stats) Searches() int     { return s.searches }
func (s *Stats) TotalMatches() int { return s.totalMatches }

func (s *Stats) TermFrequency(term string) int {
	return s.terms[strings.ToLower(term)]
}

// MostFrequent lists every recorded term, most frequent first. Ties keep
// the order in which the terms were first searched.
func (s *Stats) MostFrequent() []TermCount {
	out := make([]TermCount, 0, len(s.order))
	for _, t := range s.order {
		out = append(out, TermCount{Term: t, Count: s.terms[t]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}
