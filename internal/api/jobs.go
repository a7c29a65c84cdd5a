package api

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/altin/linesearch/internal/model"
)

type JobsFilter struct {
	Filter  string // "latest", "all"
	PerPage int
	Page    int
}

func (f JobsFilter) QueryString() string {
	v := url.Values{}
	if f.Filter != "" {
		v.Set("filter", f.Filter)
	}
	if f.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(f.PerPage))
	} else {
		v.Set("per_page", "100")
	}
	if f.Page > 0 {
		v.Set("page", strconv.Itoa(f.Page))
	}
	if qs := v.Encode(); qs != "" {
		return "?" + qs
	}
	return ""
}

func (c *Client) ListJobs(runID int64, filter JobsFilter) (*model.JobsResponse, error) {
	var resp model.JobsResponse
	path := fmt.Sprintf("actions/runs/%d/jobs%s", runID, filter.QueryString())
	if err := c.Get(path, &resp); err != nil {
		return nil, fmt.Errorf("list jobs for run %d: %w", runID, err)
	}
	return &resp, nil
}

// ListAllJobs pages through every job of the latest attempt of a run.
func (c *Client) ListAllJobs(runID int64) ([]model.Job, error) {
	const perPage = 100
	var jobs []model.Job
	for page := 1; ; page++ {
		resp, err := c.ListJobs(runID, JobsFilter{Filter: "latest", PerPage: perPage, Page: page})
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, resp.Jobs...)
		if len(resp.Jobs) < perPage || len(jobs) >= resp.TotalCount {
			return jobs, nil
		}
	}
}
