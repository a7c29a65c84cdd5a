package model

// LineMatch is one corpus line that matched at least one term.
type LineMatch struct {
	Highlighted string
	Count       int
}

type SearchQuery struct {
	Terms []string
}

type SearchResults struct {
	Query      SearchQuery
	Matches    []LineMatch
	TermCounts map[string]int // lower-cased term -> times it appears in the query
	TotalCount int
}
