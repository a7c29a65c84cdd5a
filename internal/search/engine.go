package search

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/altin/linesearch/internal/model"
)

// ErrNoTerms is returned when a search is requested without usable terms.
var ErrNoTerms = errors.New("no search terms provided")

// EmptyTerms controls what happens to empty terms produced by stray commas.
type EmptyTerms string

const (
	// SkipEmpty drops empty terms before they are recorded or matched.
	SkipEmpty EmptyTerms = "skip"
	// MatchEmpty keeps them; an empty pattern matches every line.
	MatchEmpty EmptyTerms = "match"
)

func ParseEmptyTerms(s string) (EmptyTerms, error) {
	switch EmptyTerms(strings.ToLower(s)) {
	case "", SkipEmpty:
		return SkipEmpty, nil
	case MatchEmpty:
		return MatchEmpty, nil
	}
	return "", fmt.Errorf("invalid empty terms policy %q (want %q or %q)", s, SkipEmpty, MatchEmpty)
}

type Engine struct {
	emptyTerms EmptyTerms
}

func New(emptyTerms EmptyTerms) *Engine {
	if emptyTerms == "" {
		emptyTerms = SkipEmpty
	}
	return &Engine{emptyTerms: emptyTerms}
}

// ParseQuery joins the argument tokens with single spaces and splits the
// result on commas. Terms keep their inner and surrounding spaces.
func (e *Engine) ParseQuery(args []string) (model.SearchQuery, error) {
	if len(args) == 0 {
		return model.SearchQuery{}, ErrNoTerms
	}
	raw := strings.Split(strings.Join(args, " "), ",")

	terms := make([]string, 0, len(raw))
	for _, t := range raw {
		if t == "" && e.emptyTerms == SkipEmpty {
			continue
		}
		terms = append(terms, t)
	}
	if len(terms) == 0 {
		return model.SearchQuery{}, ErrNoTerms
	}
	return model.SearchQuery{Terms: terms}, nil
}

// Search scans every corpus line in order. Per line, each term counts its
// non-overlapping case-insensitive occurrences in the original text and
// upper-cases its spans in a working copy, so later terms see the spans
// earlier terms already raised.
func (e *Engine) Search(corpus *model.Corpus, query model.SearchQuery) *model.SearchResults {
	results := &model.SearchResults{
		Query:      query,
		TermCounts: make(map[string]int),
	}

	matchers := make([]*regexp.Regexp, len(query.Terms))
	for i, term := range query.Terms {
		results.TermCounts[strings.ToLower(term)]++
		matchers[i] = buildMatcher(term)
	}

	for _, line := range corpus.All() {
		highlighted := line
		count := 0
		for _, re := range matchers {
			n := len(re.FindAllStringIndex(line, -1))
			if n == 0 {
				continue
			}
			count += n
			highlighted = re.ReplaceAllStringFunc(highlighted, strings.ToUpper)
		}
		if count == 0 {
			continue
		}
		results.Matches = append(results.Matches, model.LineMatch{
			Highlighted: highlighted,
			Count:       count,
		})
		results.TotalCount += count
	}

	return results
}

func buildMatcher(term string) *regexp.Regexp {
	return regexp.MustCompile("(?i)" + regexp.QuoteMeta(term))
}
