package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"testing"

	ghAPI "github.com/cli/go-gh/v2/pkg/api"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func respond(req *http.Request, status int, body string, header http.Header) *http.Response {
	if header == nil {
		header = http.Header{}
	}
	if header.Get("Content-Type") == "" {
		header.Set("Content-Type", "application/json")
	}
	return &http.Response{
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    req,
	}
}

func newTestClient(t *testing.T, rt roundTripFunc) *Client {
	t.Helper()
	c, err := NewClientWithOptions("octocat", "hello-world", ghAPI.ClientOptions{
		Host:      "github.com",
		AuthToken: "test-token",
		Transport: rt,
	})
	if err != nil {
		t.Fatalf("NewClientWithOptions: %v", err)
	}
	return c
}

func TestRepoPath(t *testing.T) {
	c := &Client{owner: "octocat", repo: "hello-world"}
	got := c.repoPath("actions/jobs/1/logs")
	want := "repos/octocat/hello-world/actions/jobs/1/logs"
	if got != want {
		t.Errorf("repoPath() = %q, want %q", got, want)
	}
}

func TestAPIURL(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{host: "github.com", want: "https://api.github.com/repos/a/b"},
		{host: "acme.ghe.com", want: "https://api.acme.ghe.com/repos/a/b"},
		{host: "git.example.com", want: "https://git.example.com/api/v3/repos/a/b"},
	}
	for _, tt := range tests {
		c := &Client{host: tt.host}
		if got := c.apiURL("repos/a/b"); got != tt.want {
			t.Errorf("apiURL() with host %s = %q, want %q", tt.host, got, tt.want)
		}
	}
}

func TestDownloadJobLogFollowsRedirect(t *testing.T) {
	var authOnRedirect string
	c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		switch {
		case req.URL.Host == "api.github.com" && req.URL.Path == "/repos/octocat/hello-world/actions/jobs/7/logs":
			h := http.Header{}
			h.Set("Location", "https://logs.example.com/job-7.txt")
			return respond(req, http.StatusFound, "", h), nil
		case req.URL.Host == "logs.example.com":
			authOnRedirect = req.Header.Get("Authorization")
			return respond(req, http.StatusOK, "line one\nline two\n", nil), nil
		}
		return respond(req, http.StatusNotFound, `{"message":"Not Found"}`, nil), nil
	})

	rc, err := c.DownloadJobLog(context.Background(), 7)
	if err != nil {
		t.Fatalf("DownloadJobLog() error = %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "line one\nline two\n" {
		t.Errorf("log = %q", data)
	}
	if authOnRedirect != "" {
		t.Errorf("redirect request carried Authorization %q", authOnRedirect)
	}
}

func TestDownloadJobLogNotFound(t *testing.T) {
	c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return respond(req, http.StatusNotFound, `{"message":"Not Found"}`, nil), nil
	})

	_, err := c.DownloadJobLog(context.Background(), 99)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("DownloadJobLog() error = %v, want ErrNotFound", err)
	}
}

func TestListAllJobsPages(t *testing.T) {
	var pages []string
	c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/repos/octocat/hello-world/actions/runs/5/jobs" {
			return respond(req, http.StatusNotFound, `{"message":"Not Found"}`, nil), nil
		}
		page := req.URL.Query().Get("page")
		pages = append(pages, page)
		if page == "1" {
			var b strings.Builder
			b.WriteString(`{"total_count":101,"jobs":[`)
			for i := 1; i <= 100; i++ {
				if i > 1 {
					b.WriteString(",")
				}
				b.WriteString(`{"id":` + strconv.Itoa(i) + `,"name":"job"}`)
			}
			b.WriteString(`]}`)
			return respond(req, http.StatusOK, b.String(), nil), nil
		}
		return respond(req, http.StatusOK, `{"total_count":101,"jobs":[{"id":101,"name":"last"}]}`, nil), nil
	})

	jobs, err := c.ListAllJobs(5)
	if err != nil {
		t.Fatalf("ListAllJobs() error = %v", err)
	}
	if len(jobs) != 101 {
		t.Errorf("got %d jobs, want 101", len(jobs))
	}
	if jobs[100].Name != "last" {
		t.Errorf("last job = %q, want %q", jobs[100].Name, "last")
	}
	if strings.Join(pages, ",") != "1,2" {
		t.Errorf("requested pages %v, want 1,2", pages)
	}
}

func TestListJobsNotFound(t *testing.T) {
	c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return respond(req, http.StatusNotFound, `{"message":"Not Found"}`, nil), nil
	})

	_, err := c.ListJobs(1, JobsFilter{})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("ListJobs() error = %v, want ErrNotFound", err)
	}
}
