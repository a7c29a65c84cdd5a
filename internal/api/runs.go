package api

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/altin/linesearch/internal/model"
)

type RunsFilter struct {
	Branch  string
	Event   string
	Status  string
	PerPage int
	Page    int
}

func (f RunsFilter) QueryString() string {
	v := url.Values{}
	if f.Branch != "" {
		v.Set("branch", f.Branch)
	}
	if f.Event != "" {
		v.Set("event", f.Event)
	}
	if f.Status != "" {
		v.Set("status", f.Status)
	}
	if f.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(f.PerPage))
	} else {
		v.Set("per_page", "30")
	}
	if f.Page > 0 {
		v.Set("page", strconv.Itoa(f.Page))
	}
	if qs := v.Encode(); qs != "" {
		return "?" + qs
	}
	return ""
}

func (c *Client) ListRuns(filter RunsFilter) (*model.RunsResponse, error) {
	var resp model.RunsResponse
	if err := c.Get("actions/runs"+filter.QueryString(), &resp); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return &resp, nil
}

// LatestRun returns the most recently created run matching filter. Paging
// fields are ignored. No matching run yields ErrNotFound.
func (c *Client) LatestRun(filter RunsFilter) (*model.Run, error) {
	filter.PerPage = 1
	filter.Page = 0
	resp, err := c.ListRuns(filter)
	if err != nil {
		return nil, err
	}
	if len(resp.Runs) == 0 {
		return nil, fmt.Errorf("no runs matching %s: %w", strings.TrimPrefix(filter.QueryString(), "?"), ErrNotFound)
	}
	return &resp.Runs[0], nil
}
