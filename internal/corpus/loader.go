// Package corpus loads the lines a session searches from files and from
// GitHub Actions job logs.
package corpus

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/altin/linesearch/internal/model"
	"github.com/altin/linesearch/internal/ui"
)

var (
	ErrNotFound = errors.New("source not found")
	ErrEmpty    = errors.New("source is empty")
)

// SourceError ties a load failure to the source identifier that caused it.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

type Source interface {
	Name() string
	Lines(ctx context.Context) ([]string, error)
}

type FileSource struct {
	Path string
}

func (f FileSource) Name() string { return f.Path }

func (f FileSource) Lines(ctx context.Context) ([]string, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return nil, err
	}
	defer file.Close()
	return ReadLines(file)
}

// ReadLines splits r into lines with surrounding whitespace trimmed.
// Blank lines are kept so line positions match the source. Lines may be
// of any length.
func ReadLines(r io.Reader) ([]string, error) {
	reader := bufio.NewReader(r)

	var lines []string
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			lines = append(lines, strings.TrimSpace(line))
		}
		if errors.Is(err, io.EOF) {
			return lines, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// LoadReport summarizes one Load call.
type LoadReport struct {
	Loaded int
	Empty  int
	Failed int
	Lines  int
	Errors []error
}

type Loader struct {
	out    io.Writer
	styles ui.Styles
	log    *zap.Logger
	github *GitHubSources
}

type Option func(*Loader)

func WithStyles(s ui.Styles) Option {
	return func(l *Loader) { l.styles = s }
}

func WithLogger(log *zap.Logger) Option {
	return func(l *Loader) { l.log = log }
}

func WithGitHub(gh *GitHubSources) Option {
	return func(l *Loader) { l.github = gh }
}

// NewLoader reports per-source problems to out.
func NewLoader(out io.Writer, opts ...Option) *Loader {
	l := &Loader{
		out:    out,
		styles: ui.NewStyles(out),
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Loader) Resolve(id string) (Source, error) {
	if strings.HasPrefix(id, GitHubPrefix) {
		if l.github == nil {
			return nil, fmt.Errorf("GitHub sources are not enabled")
		}
		return l.github.Parse(id)
	}
	return FileSource{Path: id}, nil
}

// Load reads every source in order. A failing or empty source is reported
// and skipped; it never stops the remaining sources from loading.
func (l *Loader) Load(ctx context.Context, ids []string) (*model.Corpus, *LoadReport) {
	report := &LoadReport{}
	var lines []string

	for _, id := range ids {
		select {
		case <-ctx.Done():
			report.Failed++
			report.Errors = append(report.Errors, &SourceError{Source: id, Err: ctx.Err()})
			continue
		default:
		}

		got, err := l.loadOne(ctx, id)
		if err != nil {
			report.Errors = append(report.Errors, &SourceError{Source: id, Err: err})
			if errors.Is(err, ErrEmpty) {
				report.Empty++
			} else {
				report.Failed++
			}
			continue
		}
		report.Loaded++
		lines = append(lines, got...)
	}

	report.Lines = len(lines)
	return model.NewCorpus(lines), report
}

func (l *Loader) loadOne(ctx context.Context, id string) ([]string, error) {
	src, err := l.Resolve(id)
	if err != nil {
		l.printError(fmt.Sprintf("Error reading %s: %v", id, err))
		return nil, err
	}

	lines, err := src.Lines(ctx)
	switch {
	case errors.Is(err, ErrNotFound):
		if _, ok := src.(FileSource); ok {
			l.printError(fmt.Sprintf("Error: File %s not found.", id))
		} else {
			l.printError(fmt.Sprintf("Error: Source %s not found.", id))
		}
		l.log.Debug("source not found", zap.String("source", id), zap.Error(err))
		return nil, err
	case err != nil:
		l.printError(fmt.Sprintf("Error reading %s: %v", id, err))
		l.log.Debug("source failed", zap.String("source", id), zap.Error(err))
		return nil, err
	case len(lines) == 0:
		fmt.Fprintln(l.out, l.styles.Warning.Render(fmt.Sprintf("Warning: %s is empty, continuing without error.", id)))
		l.log.Debug("source empty", zap.String("source", id))
		return nil, ErrEmpty
	}

	l.log.Debug("source loaded", zap.String("source", id), zap.Int("lines", len(lines)))
	return lines, nil
}

func (l *Loader) printError(msg string) {
	fmt.Fprintln(l.out, l.styles.Error.Render(msg))
}
