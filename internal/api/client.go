package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	ghAPI "github.com/cli/go-gh/v2/pkg/api"
)

// ErrNotFound is returned when GitHub answers 404 for a run, job or log.
var ErrNotFound = errors.New("not found on GitHub")

type Client struct {
	rest     *ghAPI.RESTClient
	http     *http.Client // authenticated, does not follow redirects
	redirect *http.Client // for the unauthenticated archive URL
	host     string
	owner    string
	repo     string
}

// NewClient uses the credentials of the local gh installation.
func NewClient(owner, repo string) (*Client, error) {
	rest, err := ghAPI.DefaultRESTClient()
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub client (is gh authenticated?): %w", err)
	}
	httpClient, err := ghAPI.DefaultHTTPClient()
	if err != nil {
		return nil, fmt.Errorf("create http client: %w", err)
	}
	return newClient(rest, httpClient, http.DefaultClient, "github.com", owner, repo), nil
}

// NewClientWithOptions builds a client from explicit go-gh options. The
// options' Transport is also used to follow log redirects.
func NewClientWithOptions(owner, repo string, opts ghAPI.ClientOptions) (*Client, error) {
	rest, err := ghAPI.NewRESTClient(opts)
	if err != nil {
		return nil, fmt.Errorf("create GitHub client: %w", err)
	}
	httpClient, err := ghAPI.NewHTTPClient(opts)
	if err != nil {
		return nil, fmt.Errorf("create http client: %w", err)
	}
	host := opts.Host
	if host == "" {
		host = "github.com"
	}
	return newClient(rest, httpClient, &http.Client{Transport: opts.Transport}, host, owner, repo), nil
}

func newClient(rest *ghAPI.RESTClient, httpClient, redirect *http.Client, host, owner, repo string) *Client {
	httpClient.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &Client{rest: rest, http: httpClient, redirect: redirect, host: host, owner: owner, repo: repo}
}

func (c *Client) Repo() string {
	return fmt.Sprintf("%s/%s", c.owner, c.repo)
}

func (c *Client) repoPath(path string) string {
	return fmt.Sprintf("repos/%s/%s/%s", c.owner, c.repo, path)
}

func (c *Client) apiURL(path string) string {
	if c.host == "github.com" || strings.HasSuffix(c.host, ".ghe.com") {
		return fmt.Sprintf("https://api.%s/%s", c.host, path)
	}
	return fmt.Sprintf("https://%s/api/v3/%s", c.host, path)
}

func (c *Client) Get(path string, result interface{}) error {
	err := c.rest.Get(c.repoPath(path), result)
	if isNotFound(err) {
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	return err
}

func isNotFound(err error) bool {
	var httpErr *ghAPI.HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound
}
