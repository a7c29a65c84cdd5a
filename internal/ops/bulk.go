package ops

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/altin/linesearch/internal/model"
)

type JobFilter struct {
	Name       string
	Conclusion string
}

// RunFilter narrows which run is picked as the latest one.
type RunFilter struct {
	Event  string
	Status string
}

func (f RunFilter) IsZero() bool {
	return f.Event == "" && f.Status == ""
}

// ParseFilters reads job filters (name, conclusion) and run filters
// (event, status) from a URL query string.
func ParseFilters(rawQuery string) (JobFilter, RunFilter, error) {
	v, err := url.ParseQuery(rawQuery)
	if err != nil {
		return JobFilter{}, RunFilter{}, fmt.Errorf("parse source filter: %w", err)
	}
	for k := range v {
		switch k {
		case "name", "conclusion", "event", "status":
		default:
			return JobFilter{}, RunFilter{}, fmt.Errorf("unknown source filter %q (want name, conclusion, event or status)", k)
		}
	}
	jobs := JobFilter{Name: v.Get("name"), Conclusion: v.Get("conclusion")}
	runs := RunFilter{Event: v.Get("event"), Status: v.Get("status")}
	return jobs, runs, nil
}

func (f JobFilter) IsZero() bool {
	return f.Name == "" && f.Conclusion == ""
}

func FilterJobs(jobs []model.Job, filter JobFilter) []model.Job {
	var matched []model.Job
	for _, j := range jobs {
		if filter.Name != "" && !strings.EqualFold(j.Name, filter.Name) {
			continue
		}
		if filter.Conclusion != "" && j.Conclusion != filter.Conclusion {
			continue
		}
		matched = append(matched, j)
	}
	return matched
}

type FetchFunc func(ctx context.Context, jobID int64) (string, error)

// FetchResult keeps logs in job order; a failed job leaves an empty entry.
type FetchResult struct {
	Logs      []string
	Completed int
	Failed    int
	Errors    []error
}

// FetchJobLogs downloads logs one job at a time. A failing job is recorded
// and the rest are still fetched; only cancellation stops early.
func FetchJobLogs(ctx context.Context, jobIDs []int64, fetch FetchFunc, onProgress func(completed, total int)) (*FetchResult, error) {
	result := &FetchResult{Logs: make([]string, len(jobIDs))}
	total := len(jobIDs)

	for i, id := range jobIDs {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		text, err := fetch(ctx, id)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Errorf("job %d: %w", id, err))
		} else {
			result.Logs[i] = text
			result.Completed++
		}

		if onProgress != nil {
			onProgress(i+1, total)
		}
	}

	return result, nil
}
