// Package session ties the corpus, the search engine and the statistics
// together behind a single Execute entry point used by both front ends.
package session

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/altin/linesearch/internal/command"
	"github.com/altin/linesearch/internal/model"
	"github.com/altin/linesearch/internal/search"
	"github.com/altin/linesearch/internal/stats"
	"github.com/altin/linesearch/internal/ui"
)

type Options struct {
	EmptyTerms search.EmptyTerms
	// Styles defaults to plain text when nil.
	Styles *ui.Styles
	Logger *zap.Logger
}

type Session struct {
	corpus *model.Corpus
	engine *search.Engine
	stats  *stats.Stats
	styles ui.Styles
	log    *zap.Logger

	exitOnce sync.Once
	done     atomic.Bool
}

func New(corpus *model.Corpus, opts Options) *Session {
	s := &Session{
		corpus: corpus,
		engine: search.New(opts.EmptyTerms),
		stats:  stats.New(),
		log:    opts.Logger,
	}
	if opts.Styles != nil {
		s.styles = *opts.Styles
	} else {
		s.styles = ui.NewStyles(io.Discard)
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

func (s *Session) Stats() *stats.Stats { return s.stats }
func (s *Session) CorpusLen() int      { return s.corpus.Len() }

// Done reports whether the exit summary has been printed.
func (s *Session) Done() bool { return s.done.Load() }

func (s *Session) Welcome(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, s.styles.Header.Render("Welcome to the search tool..."))
	fmt.Fprintln(w, s.styles.Muted.Render(fmt.Sprintf("%d lines loaded. Type 'help' for available commands.", s.corpus.Len())))
}

// Execute runs one line of user input and reports whether the session has
// ended. Invalid input is reported and leaves all state untouched.
func (s *Session) Execute(w io.Writer, input string) bool {
	if s.Done() {
		return true
	}

	parsed, err := command.Parse(input)
	if err != nil {
		s.printInvalid(w, err)
		return false
	}

	switch parsed.Kind {
	case command.Help:
		s.Help(w)
	case command.Search:
		s.Search(w, parsed.Args)
	case command.Exit:
		s.Exit(w)
		return true
	}
	return false
}

func (s *Session) printInvalid(w io.Writer, err error) {
	msg := "Invalid command. Type 'help' for available commands."
	var invalid *command.InvalidCommandError
	if errors.As(err, &invalid) {
		if invalid.Suggestion != "" {
			msg += fmt.Sprintf(" Did you mean '%s'?", invalid.Suggestion)
		}
		s.log.Debug("invalid command", zap.String("name", invalid.Name))
	}
	fmt.Fprintln(w, s.styles.Error.Render(msg))
}

func (s *Session) Help(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, s.styles.Header.Render("Available commands:"))
	for _, c := range command.Registry {
		name, usage := c.Usage()
		fmt.Fprintf(w, "%s: %s\n", name, usage)
	}
	fmt.Fprintln(w)
}

// Search counts the attempt even when no usable terms were given.
func (s *Session) Search(w io.Writer, args []string) *model.SearchResults {
	query, err := s.engine.ParseQuery(args)
	if err != nil {
		s.stats.RecordAttempt()
		fmt.Fprintln(w, s.styles.Error.Render("Error: No search terms provided."))
		return nil
	}

	results := s.engine.Search(s.corpus, query)
	s.stats.Record(results)

	for _, m := range results.Matches {
		fmt.Fprintln(w, m.Highlighted)
	}
	if len(results.Matches) == 0 {
		fmt.Fprintln(w, s.styles.Warning.Render("No matches found."))
	} else {
		fmt.Fprintln(w, s.styles.Total.Render(fmt.Sprintf("Total matches in this search: %d", results.TotalCount)))
		fmt.Fprintln(w)
	}

	s.log.Debug("search",
		zap.Strings("terms", query.Terms),
		zap.Int("lines", len(results.Matches)),
		zap.Int("matches", results.TotalCount),
	)
	return results
}

// Exit prints the summary once. Later calls, from either exit path, print
// nothing and return false.
func (s *Session) Exit(w io.Writer) bool {
	return s.finish(w, false)
}

// Interrupt is Exit preceded by a notice about the signal.
func (s *Session) Interrupt(w io.Writer) bool {
	return s.finish(w, true)
}

func (s *Session) finish(w io.Writer, interrupted bool) bool {
	printed := false
	s.exitOnce.Do(func() {
		printed = true
		if interrupted {
			fmt.Fprintln(w)
			fmt.Fprintln(w, s.styles.Warning.Render("Received interrupt signal. Exiting gracefully..."))
		}
		s.printSummary(w)
		s.done.Store(true)
		s.log.Info("session ended",
			zap.Bool("interrupted", interrupted),
			zap.Int("searches", s.stats.Searches()),
			zap.Int("matches", s.stats.TotalMatches()),
		)
	})
	return printed
}

func (s *Session) printSummary(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, s.styles.Info.Render("Exiting the program..."))
	fmt.Fprintln(w, s.styles.Header.Render("Summary:"))
	fmt.Fprintf(w, "Total searches performed: %d\n", s.stats.Searches())
	fmt.Fprintf(w, "Total words matched across all input files: %d\n", s.stats.TotalMatches())

	terms := s.stats.MostFrequent()
	if len(terms) == 0 {
		return
	}
	fmt.Fprintln(w, s.styles.Header.Render("Most frequent search terms:"))
	for _, tc := range terms {
		fmt.Fprintf(w, "%s: %d times\n", tc.Term, tc.Count)
	}
}
