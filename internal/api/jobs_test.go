package api

import "testing"

func TestJobsFilterQueryString(t *testing.T) {
	tests := []struct {
		name   string
		filter JobsFilter
		want   string
	}{
		{
			name:   "empty filter",
			filter: JobsFilter{},
			want:   "?per_page=100",
		},
		{
			name:   "latest second page",
			filter: JobsFilter{Filter: "latest", PerPage: 50, Page: 2},
			want:   "?filter=latest&page=2&per_page=50",
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
