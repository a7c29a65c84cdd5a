package api

import (
	"errors"
	"net/http"
	"testing"
)

func TestRunsFilterQueryString(t *testing.T) {
	tests := []struct {
		name   string
		filter RunsFilter
		want   string
	}{
		{
			name:   "empty filter",
			filter: RunsFilter{},
			want:   "?per_page=30",
		},
		{
			name:   "branch filter",
			filter: RunsFilter{Branch: "main", PerPage: 1},
			want:   "?branch=main&per_page=1",
		},
		{
			name:   "status and event",
			filter: RunsFilter{Status: "failure", Event: "push"},
			want:   "?event=push&per_page=30&status=failure",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.filter.QueryString()
			if got != tt.want {
				t.Errorf("QueryString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLatestRun(t *testing.T) {
	var query string
	c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		query = req.URL.RawQuery
		if req.URL.Query().Get("branch") == "empty" {
			return respond(req, http.StatusOK, `{"total_count":0,"workflow_runs":[]}`, nil), nil
		}
		return respond(req, http.StatusOK, `{"total_count":2,"workflow_runs":[{"id":99,"name":"CI","head_sha":"abcdef123456"}]}`, nil), nil
	})

	run, err := c.LatestRun(RunsFilter{Branch: "main", Event: "push", Status: "failure", PerPage: 50})
	if err != nil {
		t.Fatalf("LatestRun() error = %v", err)
	}
	if run.ID != 99 || run.ShortSHA() != "abcdef1" {
		t.Errorf("LatestRun() = %+v", run)
	}
	if query != "branch=main&event=push&per_page=1&status=failure" {
		t.Errorf("query = %q", query)
	}

	if _, err := c.LatestRun(RunsFilter{Branch: "empty"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("LatestRun() on empty branch error = %v, want ErrNotFound", err)
	}
}
