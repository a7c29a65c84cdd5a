package corpus

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/cli/go-gh/v2/pkg/repository"
	"go.uber.org/zap"

	"github.com/altin/linesearch/internal/api"
	"github.com/altin/linesearch/internal/cache"
	"github.com/altin/linesearch/internal/model"
	"github.com/altin/linesearch/internal/ops"
)

// GitHubPrefix marks a source identifier of the form
// gh:OWNER/REPO/jobs/JOB_ID, gh:OWNER/REPO/runs/RUN_ID or
// gh:OWNER/REPO/runs/latest[@BRANCH]. Run sources take an optional query
// of name and conclusion job filters; latest runs also take event and status.
const GitHubPrefix = "gh:"

const latestRun = "latest"

// JobLogClient is the part of api.Client the GitHub sources use.
type JobLogClient interface {
	LatestRun(filter api.RunsFilter) (*model.Run, error)
	ListAllJobs(runID int64) ([]model.Job, error)
	DownloadJobLog(ctx context.Context, jobID int64) (io.ReadCloser, error)
}

type ClientFactory func(owner, repo string) (JobLogClient, error)

// DefaultClientFactory authenticates through the local gh installation.
func DefaultClientFactory(owner, repo string) (JobLogClient, error) {
	c, err := api.NewClient(owner, repo)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Each job log line starts with an RFC 3339 timestamp added by the runner.
var timestampPrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?Z ?`)

type GitHubSources struct {
	newClient ClientFactory
	cache     *cache.LogCache
	log       *zap.Logger
}

// NewGitHubSources accepts a nil cache; logs are then downloaded every time.
func NewGitHubSources(newClient ClientFactory, lc *cache.LogCache, log *zap.Logger) *GitHubSources {
	if newClient == nil {
		newClient = DefaultClientFactory
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &GitHubSources{newClient: newClient, cache: lc, log: log}
}

type GitHubSource struct {
	id     string
	repo   repository.Repository
	kind   string // "jobs" or "runs"
	number int64
	latest bool
	branch string
	filter ops.JobFilter
	runs   ops.RunFilter
	gh     *GitHubSources
}

func (g *GitHubSources) Parse(id string) (*GitHubSource, error) {
	parts := strings.SplitN(strings.TrimPrefix(id, GitHubPrefix), "/", 4)
	if len(parts) != 4 {
		return nil, fmt.Errorf("want %sOWNER/REPO/jobs/ID or %sOWNER/REPO/runs/ID", GitHubPrefix, GitHubPrefix)
	}
	repo, err := repository.ParseWithHost(parts[0]+"/"+parts[1], "github.com")
	if err != nil {
		return nil, fmt.Errorf("parse repository: %w", err)
	}
	kind := parts[2]
	if kind != "jobs" && kind != "runs" {
		return nil, fmt.Errorf("unknown GitHub source kind %q (want jobs or runs)", kind)
	}
	src := &GitHubSource{id: id, repo: repo, kind: kind, gh: g}

	ref, rawQuery, hasQuery := strings.Cut(parts[3], "?")
	if hasQuery {
		if kind != "runs" {
			return nil, fmt.Errorf("job filters only apply to runs")
		}
		if src.filter, src.runs, err = ops.ParseFilters(rawQuery); err != nil {
			return nil, err
		}
	}

	if kind == "runs" {
		if name, branch, ok := strings.Cut(ref, "@"); name == latestRun {
			if ok && branch == "" {
				return nil, fmt.Errorf("empty branch in %q", ref)
			}
			src.latest = true
			src.branch = branch
			return src, nil
		}
	}
	if !src.runs.IsZero() {
		return nil, fmt.Errorf("event and status filters only apply to %s runs", latestRun)
	}

	n, err := strconv.ParseInt(ref, 10, 64)
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("invalid %s id %q", strings.TrimSuffix(kind, "s"), ref)
	}
	src.number = n
	return src, nil
}

func (s *GitHubSource) Name() string { return s.id }

func (s *GitHubSource) repoName() string {
	return s.repo.Owner + "/" + s.repo.Name
}

// Lines concatenates the logs of the selected jobs in API order. Jobs whose
// log cannot be fetched are skipped with a warning unless every one fails.
func (s *GitHubSource) Lines(ctx context.Context) ([]string, error) {
	client, err := s.gh.newClient(s.repo.Owner, s.repo.Name)
	if err != nil {
		return nil, err
	}

	jobIDs, err := s.jobIDs(client)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	if len(jobIDs) == 0 {
		return nil, nil
	}

	fetch := func(ctx context.Context, jobID int64) (string, error) {
		return s.gh.jobLog(ctx, client, s.repoName(), jobID)
	}
	progress := func(done, total int) {
		s.gh.log.Debug("job logs fetched", zap.String("source", s.id), zap.Int("done", done), zap.Int("total", total))
	}
	res, err := ops.FetchJobLogs(ctx, jobIDs, fetch, progress)
	if err != nil {
		return nil, err
	}
	if res.Completed == 0 {
		return nil, wrapNotFound(res.Errors[0])
	}
	for _, jobErr := range res.Errors {
		s.gh.log.Warn("skipping job log", zap.String("source", s.id), zap.Error(jobErr))
	}

	var lines []string
	for _, text := range res.Logs {
		if text == "" {
			continue
		}
		got, err := ReadLines(strings.NewReader(strings.TrimPrefix(text, "\ufeff")))
		if err != nil {
			return nil, err
		}
		for i, line := range got {
			got[i] = timestampPrefix.ReplaceAllString(line, "")
		}
		lines = append(lines, got...)
	}
	return lines, nil
}

func (s *GitHubSource) jobIDs(client JobLogClient) ([]int64, error) {
	if s.kind == "jobs" {
		return []int64{s.number}, nil
	}

	runID := s.number
	if s.latest {
		run, err := client.LatestRun(api.RunsFilter{
			Branch: s.branch,
			Event:  s.runs.Event,
			Status: s.runs.Status,
		})
		if err != nil {
			return nil, err
		}
		s.gh.log.Debug("resolved latest run",
			zap.String("source", s.id),
			zap.Int64("run", run.ID),
			zap.String("sha", run.ShortSHA()),
		)
		runID = run.ID
	}

	jobs, err := client.ListAllJobs(runID)
	if err != nil {
		return nil, err
	}
	if !s.filter.IsZero() {
		jobs = ops.FilterJobs(jobs, s.filter)
	}
	ids := make([]int64, 0, len(jobs))
	for _, j := range jobs {
		ids = append(ids, j.ID)
	}
	return ids, nil
}

func (g *GitHubSources) jobLog(ctx context.Context, client JobLogClient, repo string, jobID int64) (string, error) {
	if g.cache != nil && g.cache.HasJobLog(repo, jobID) {
		text, err := g.cache.GetJobLog(repo, jobID)
		if err == nil {
			fields := []zap.Field{zap.String("repo", repo), zap.Int64("job", jobID)}
			if meta, err := g.cache.ReadMeta(repo, jobID); err == nil {
				fields = append(fields, zap.Time("stored_at", meta.StoredAt))
			}
			g.log.Debug("job log cache hit", fields...)
			return text, nil
		}
		g.log.Warn("cached job log unreadable", zap.Int64("job", jobID), zap.Error(err))
	}

	rc, err := client.DownloadJobLog(ctx, jobID)
	if err != nil {
		return "", err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("read job log %d: %w", jobID, err)
	}

	if g.cache != nil {
		if err := g.cache.StoreJobLog(repo, jobID, bytes.NewReader(data)); err != nil {
			g.log.Warn("caching job log failed", zap.Int64("job", jobID), zap.Error(err))
		}
	}
	g.log.Debug("job log downloaded", zap.String("repo", repo), zap.Int64("job", jobID), zap.Int("bytes", len(data)))
	return string(data), nil
}

func wrapNotFound(err error) error {
	if errors.Is(err, api.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}
