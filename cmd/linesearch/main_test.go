package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/altin/linesearch/internal/api"
	"github.com/altin/linesearch/internal/config"
	"github.com/altin/linesearch/internal/corpus"
	"github.com/altin/linesearch/internal/model"
)

func runWith(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("LINESEARCH_CONFIG", "")
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), strings.NewReader(stdin), &stdout, &stderr, args)
	return stdout.String(), stderr.String(), err
}

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunWithoutSourcesExitsWithUsage(t *testing.T) {
	stdout, stderr, err := runWith(t, "")

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 1, exitErr.Code)
	require.Contains(t, stderr, usageLine)
	require.Empty(t, stdout)
}

func TestRunSession(t *testing.T) {
	a := writeInput(t, "a.txt", "The cat sat\n  on the mat  \n")
	b := writeInput(t, "b.txt", "a Dog and a cat\n")

	stdout, _, err := runWith(t, "help\nsearch cat,dog\nsearch\nexit\n", a, b)

	require.NoError(t, err)
	require.Contains(t, stdout, "Welcome to the search tool...")
	require.Contains(t, stdout, "Available commands:")
	require.Contains(t, stdout, "The CAT sat\n")
	require.Contains(t, stdout, "a DOG and a CAT\n")
	require.Contains(t, stdout, "Total matches in this search: 3")
	require.Contains(t, stdout, "Error: No search terms provided.")
	require.Contains(t, stdout, "Total searches performed: 2")
	require.Contains(t, stdout, "Total words matched across all input files: 3")
	require.Contains(t, stdout, "cat: 1 times\ndog: 1 times")
}

func TestRunReportsBadSources(t *testing.T) {
	good := writeInput(t, "good.txt", "needle\n")
	empty := writeInput(t, "empty.txt", "")
	missing := filepath.Join(t.TempDir(), "missing.txt")

	stdout, _, err := runWith(t, "search needle\n", missing, empty, good)

	require.NoError(t, err)
	require.Contains(t, stdout, "Error: File "+missing+" not found.")
	require.Contains(t, stdout, "Warning: "+empty+" is empty, continuing without error.")
	require.Contains(t, stdout, "NEEDLE\n")
	require.Contains(t, stdout, "Total searches performed: 1")
}

func TestRunFlagsOverrideConfigFile(t *testing.T) {
	input := writeInput(t, "in.txt", "x\n")
	cfgPath := writeInput(t, "linesearch.yaml", "prompt: \"file> \"\nempty_terms: match\nsources:\n  - "+input+"\n")

	stdout, _, err := runWith(t, "exit\n", "-config", cfgPath, "-prompt", "flag> ")

	require.NoError(t, err)
	require.Contains(t, stdout, "flag> ")
	require.NotContains(t, stdout, "file> ")
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	input := writeInput(t, "in.txt", "x\n")

	_, _, err := runWith(t, "", "-empty-terms", "sometimes", input)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 1, exitErr.Code)
	require.Contains(t, exitErr.Message, "sometimes")
}

func TestRunVersion(t *testing.T) {
	stdout, _, err := runWith(t, "", "-version")

	require.NoError(t, err)
	require.Equal(t, "linesearch "+version+"\n", stdout)
}

// stalledClient never finishes a log download until its context ends.
type stalledClient struct {
	started chan struct{}
}

func (c *stalledClient) LatestRun(api.RunsFilter) (*model.Run, error) {
	return &model.Run{ID: 1}, nil
}

func (c *stalledClient) ListAllJobs(int64) ([]model.Job, error) {
	return []model.Job{{ID: 1}}, nil
}

func (c *stalledClient) DownloadJobLog(ctx context.Context, jobID int64) (io.ReadCloser, error) {
	close(c.started)
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestLoadCorpusStopsOnInterrupt(t *testing.T) {
	client := &stalledClient{started: make(chan struct{})}
	factory := func(owner, repo string) (corpus.JobLogClient, error) { return client, nil }
	later := writeInput(t, "later.txt", "never loaded\n")
	var out bytes.Buffer
	loader := corpus.NewLoader(&out, corpus.WithGitHub(corpus.NewGitHubSources(factory, nil, nil)))
	interrupts := make(chan os.Signal, 1)

	type result struct {
		report      *corpus.LoadReport
		interrupted bool
	}
	finished := make(chan result, 1)
	go func() {
		_, report, interrupted := loadCorpus(context.Background(), loader, []string{"gh:o/r/jobs/1", later}, interrupts)
		finished <- result{report, interrupted}
	}()

	<-client.started
	interrupts <- os.Interrupt

	select {
	case res := <-finished:
		require.True(t, res.interrupted)
		require.Zero(t, res.report.Loaded)
		require.Equal(t, 2, res.report.Failed)
	case <-time.After(5 * time.Second):
		t.Fatal("loading did not stop after the interrupt")
	}
}

func TestLoadCorpusWithoutInterrupt(t *testing.T) {
	input := writeInput(t, "in.txt", "x\n")
	interrupts := make(chan os.Signal, 1)

	loaded, report, interrupted := loadCorpus(context.Background(), corpus.NewLoader(io.Discard), []string{input}, interrupts)

	require.False(t, interrupted)
	require.Equal(t, 1, report.Loaded)
	require.Equal(t, 1, loaded.Len())
	require.Empty(t, interrupts)
}

func TestOpenCacheLogsSize(t *testing.T) {
	cfg := config.Default()
	cfg.Sources = []string{"gh:o/r/jobs/1"}
	cfg.Cache.Dir = t.TempDir()
	core, logs := observer.New(zap.DebugLevel)

	lc := openCache(cfg, false, io.Discard, zap.New(core))

	require.NotNil(t, lc)
	entries := logs.FilterMessage("log cache ready").All()
	require.Len(t, entries, 1)
	require.Equal(t, int64(0), entries[0].ContextMap()["bytes"])
}

func TestOpenCacheSkippedForFiles(t *testing.T) {
	cfg := config.Default()
	cfg.Sources = []string{"a.txt"}

	require.Nil(t, openCache(cfg, false, io.Discard, zap.NewNop()))
}
