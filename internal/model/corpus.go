package model

import "iter"

// Corpus is the ordered, read-only set of lines a session searches.
type Corpus struct {
	lines []string
}

// NewCorpus copies lines so later changes to the caller's slice are not visible.
func NewCorpus(lines []string) *Corpus {
	c := &Corpus{lines: make([]string, len(lines))}
	copy(c.lines, lines)
	return c
}

func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.lines)
}

// Line returns the line at 0-based index i.
func (c *Corpus) Line(i int) string {
	return c.lines[i]
}

// All yields 0-based index and content in load order.
func (c *Corpus) All() iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		if c == nil {
			return
		}
		for i, line := range c.lines {
			if !yield(i, line) {
				return
			}
		}
	}
}
