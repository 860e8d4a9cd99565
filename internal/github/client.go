// Package github is a thin client for the GitHub REST API used by the
// dictionary's contribution workflow.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"resty.dev/v3"
)

const (
	defaultBaseURL = "https://api.github.com"
	acceptHeader   = "application/vnd.github.v3+json"

	issuesPerPage = 20
)

// Client wraps the GitHub REST API for a single repository.
// It injects the bearer credential when one is set and translates failures
// into typed errors. It never retries; retry policy belongs to callers.
type Client struct {
	httpClient *resty.Client
	owner      string
	repo       string
	token      string
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.httpClient.SetBaseURL(baseURL)
	}
}

// WithTransport installs a custom transport, e.g. the offline cache proxy.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.httpClient.SetTransport(rt)
	}
}

// NewClient creates a Client for the given repository.
func NewClient(owner, repo string, opts ...Option) *Client {
	httpClient := resty.New()
	httpClient.SetBaseURL(defaultBaseURL)
	httpClient.SetHeader("Accept", acceptHeader)
	httpClient.SetHeader("Content-Type", "application/json")

	c := &Client{
		httpClient: httpClient,
		owner:      owner,
		repo:       repo,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close releases the underlying HTTP client.
func (c *Client) Close() error {
	return c.httpClient.Close()
}

// SetToken sets the bearer credential injected on subsequent requests.
// An empty token switches the client back to anonymous requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) repoPath(suffix string) string {
	return fmt.Sprintf("/repos/%s/%s%s", c.owner, c.repo, suffix)
}

func (c *Client) request(ctx context.Context) *resty.Request {
	req := c.httpClient.R().SetContext(ctx)
	if c.token != "" {
		req.SetAuthToken(c.token)
	}
	return req
}

func decode(res *resty.Response, out any) error {
	if res.IsError() {
		return &APIError{Status: res.StatusCode(), StatusText: http.StatusText(res.StatusCode())}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(res.Bytes(), out); err != nil {
		return &DecodeError{Err: err}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query map[string]string, out any) error {
	req := c.request(ctx)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	res, err := req.Get(path)
	if err != nil {
		return &NetworkError{URL: path, Err: err}
	}
	return decode(res, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	res, err := c.request(ctx).SetBody(body).Post(path)
	if err != nil {
		return &NetworkError{URL: path, Err: err}
	}
	return decode(res, out)
}

// GetRepository returns the repository metadata.
func (c *Client) GetRepository(ctx context.Context) (Repository, error) {
	var repo Repository
	if err := c.get(ctx, c.repoPath(""), nil, &repo); err != nil {
		return Repository{}, fmt.Errorf("c.get() > %w", err)
	}
	return repo, nil
}

// GetContributors returns the repository's contributors.
func (c *Client) GetContributors(ctx context.Context) ([]Contributor, error) {
	var contributors []Contributor
	if err := c.get(ctx, c.repoPath("/contributors"), nil, &contributors); err != nil {
		return nil, fmt.Errorf("c.get() > %w", err)
	}
	return contributors, nil
}

// GetCommits returns up to limit recent commits.
func (c *Client) GetCommits(ctx context.Context, limit int) ([]Commit, error) {
	var commits []Commit
	query := map[string]string{"per_page": strconv.Itoa(limit)}
	if err := c.get(ctx, c.repoPath("/commits"), query, &commits); err != nil {
		return nil, fmt.Errorf("c.get() > %w", err)
	}
	return commits, nil
}

// GetIssues returns issues filtered by state ("open" or "closed").
func (c *Client) GetIssues(ctx context.Context, state string) ([]Issue, error) {
	var issues []Issue
	query := map[string]string{"state": state, "per_page": strconv.Itoa(issuesPerPage)}
	if err := c.get(ctx, c.repoPath("/issues"), query, &issues); err != nil {
		return nil, fmt.Errorf("c.get() > %w", err)
	}
	return issues, nil
}

// GetBranches returns the repository's branches.
func (c *Client) GetBranches(ctx context.Context) ([]Branch, error) {
	var branches []Branch
	if err := c.get(ctx, c.repoPath("/branches"), nil, &branches); err != nil {
		return nil, fmt.Errorf("c.get() > %w", err)
	}
	return branches, nil
}

// CreateIssue opens a new issue on the repository.
func (c *Client) CreateIssue(ctx context.Context, title, body string, labels []string) (Issue, error) {
	if title == "" {
		return Issue{}, fmt.Errorf("issue title is required")
	}
	request := createIssueRequest{Title: title, Body: body, Labels: labels}
	var issue Issue
	if err := c.post(ctx, c.repoPath("/issues"), request, &issue); err != nil {
		return Issue{}, fmt.Errorf("c.post() > %w", err)
	}
	return issue, nil
}

// GetAuthenticatedUser returns the user the current token belongs to.
func (c *Client) GetAuthenticatedUser(ctx context.Context) (User, error) {
	var user User
	if err := c.get(ctx, "/user", nil, &user); err != nil {
		return User{}, fmt.Errorf("c.get() > %w", err)
	}
	return user, nil
}

// RepositoryStats aggregates the headline numbers shown on the community tab.
func (c *Client) RepositoryStats(ctx context.Context) (Stats, error) {
	repo, err := c.GetRepository(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("c.GetRepository() > %w", err)
	}
	contributors, err := c.GetContributors(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("c.GetContributors() > %w", err)
	}
	commits, err := c.GetCommits(ctx, 1)
	if err != nil {
		return Stats{}, fmt.Errorf("c.GetCommits() > %w", err)
	}

	stats := Stats{
		Stars:        repo.StargazersCount,
		Forks:        repo.ForksCount,
		OpenIssues:   repo.OpenIssuesCount,
		Contributors: len(contributors),
		Size:         repo.Size,
		Language:     repo.Language,
	}
	if len(commits) > 0 {
		stats.LastCommit = commits[0].Commit.Author.Date
	}
	return stats, nil
}

type createIssueRequest struct {
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	Labels []string `json:"labels"`
}

// Repository is the subset of repository metadata this application reads.
type Repository struct {
	Name            string `json:"name"`
	FullName        string `json:"full_name"`
	Description     string `json:"description"`
	StargazersCount int    `json:"stargazers_count"`
	ForksCount      int    `json:"forks_count"`
	OpenIssuesCount int    `json:"open_issues_count"`
	Size            int    `json:"size"`
	Language        string `json:"language"`
}

// Contributor is a repository contributor.
type Contributor struct {
	Login         string `json:"login"`
	Contributions int    `json:"contributions"`
}

// Commit is a single commit from the commits listing.
type Commit struct {
	SHA    string       `json:"sha"`
	Commit CommitDetail `json:"commit"`
}

// CommitDetail carries the commit message and author metadata.
type CommitDetail struct {
	Message string       `json:"message"`
	Author  CommitAuthor `json:"author"`
}

// CommitAuthor identifies who wrote a commit and when.
type CommitAuthor struct {
	Name string    `json:"name"`
	Date time.Time `json:"date"`
}

// Issue is an issue or pull request.
type Issue struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	State     string    `json:"state"`
	HTMLURL   string    `json:"html_url"`
	CreatedAt time.Time `json:"created_at"`
}

// Branch is a repository branch.
type Branch struct {
	Name string `json:"name"`
}

// User is the authenticated GitHub user.
type User struct {
	Login string `json:"login"`
}

// Stats aggregates the repository numbers polled for the community display.
type Stats struct {
	Stars        int
	Forks        int
	OpenIssues   int
	Contributors int
	LastCommit   time.Time
	Size         int
	Language     string
}
