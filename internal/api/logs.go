package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// DownloadJobLog downloads the plain-text log of a single job.
// GitHub returns a 302 redirect to a short-lived URL.
func (c *Client) DownloadJobLog(ctx context.Context, jobID int64) (io.ReadCloser, error) {
	return c.downloadLogs(ctx, c.repoPath(fmt.Sprintf("actions/jobs/%d/logs", jobID)))
}

func (c *Client) downloadLogs(ctx context.Context, apiPath string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL(apiPath), nil)
	if err != nil {
		return nil, fmt.Errorf("build log request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("log request failed: %w", err)
	}

	// The redirect target is pre-signed, so it is fetched without auth.
	if resp.StatusCode == http.StatusFound || resp.StatusCode == http.StatusTemporaryRedirect {
		location := resp.Header.Get("Location")
		resp.Body.Close()
		if location == "" {
			return nil, fmt.Errorf("redirect with no Location header")
		}
		redirectReq, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
		if err != nil {
			return nil, fmt.Errorf("create redirect request: %w", err)
		}
		resp, err = c.redirect.Do(redirectReq)
		if err != nil {
			return nil, fmt.Errorf("follow redirect: %w", err)
		}
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return resp.Body, nil
	case http.StatusNotFound, http.StatusGone:
		resp.Body.Close()
		return nil, fmt.Errorf("%s: %w", apiPath, ErrNotFound)
	default:
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d downloading logs", resp.StatusCode)
	}
}
