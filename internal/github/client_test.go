package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient("amharic-dictionary", "enhanced-dictionary", WithBaseURL(server.URL))
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client
}

func TestClient_Headers(t *testing.T) {
	var gotAccept, gotAuthorization string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		gotAuthorization = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"name":"enhanced-dictionary"}`))
	}))

	_, err := client.GetRepository(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "application/vnd.github.v3+json", gotAccept)
	assert.Empty(t, gotAuthorization)

	client.SetToken("ghp_example")
	_, err = client.GetRepository(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer ghp_example", gotAuthorization)
}

func TestClient_GetRepository(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/amharic-dictionary/enhanced-dictionary", r.URL.Path)
		_, _ = w.Write([]byte(`{"name":"enhanced-dictionary","stargazers_count":1200,"forks_count":150,"open_issues_count":25,"language":"JavaScript"}`))
	}))

	repo, err := client.GetRepository(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1200, repo.StargazersCount)
	assert.Equal(t, 150, repo.ForksCount)
	assert.Equal(t, "JavaScript", repo.Language)
}

func TestClient_GetCommits(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/amharic-dictionary/enhanced-dictionary/commits", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("per_page"))
		_, _ = w.Write([]byte(`[{"sha":"abc123","commit":{"message":"Add word","author":{"name":"abebe","date":"2025-03-14T09:26:53Z"}}}]`))
	}))

	commits, err := client.GetCommits(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, commits, 1)
	assert.Equal(t, "Add word", commits[0].Commit.Message)
}

func TestClient_GetIssues(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "open", r.URL.Query().Get("state"))
		assert.Equal(t, "20", r.URL.Query().Get("per_page"))
		_, _ = w.Write([]byte(`[{"number":7,"title":"New word definition: selam","state":"open"}]`))
	}))

	issues, err := client.GetIssues(context.Background(), "open")
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, 7, issues[0].Number)
}

func TestClient_CreateIssue(t *testing.T) {
	var payload createIssueRequest
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/repos/amharic-dictionary/enhanced-dictionary/issues", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"number":42,"title":"New word definition: selam","state":"open"}`))
	}))

	issue, err := client.CreateIssue(context.Background(), "New word definition: selam", "body text", []string{"contribution"})
	require.NoError(t, err)
	assert.Equal(t, 42, issue.Number)
	assert.Equal(t, "New word definition: selam", payload.Title)
	assert.Equal(t, "body text", payload.Body)
	assert.Equal(t, []string{"contribution"}, payload.Labels)
}

func TestClient_CreateIssue_RequiresTitle(t *testing.T) {
	calls := 0
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))

	_, err := client.CreateIssue(context.Background(), "", "body", nil)
	require.Error(t, err)
	assert.Zero(t, calls)
}

func TestClient_ErrorTranslation(t *testing.T) {
	t.Run("non-2xx becomes APIError", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))

		_, err := client.GetAuthenticatedUser(context.Background())
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
		assert.Equal(t, "Unauthorized", apiErr.StatusText)
	})

	t.Run("malformed body becomes DecodeError", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{not json`))
		}))

		_, err := client.GetRepository(context.Background())
		var decodeErr *DecodeError
		require.ErrorAs(t, err, &decodeErr)
	})

	t.Run("unreachable endpoint becomes NetworkError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		client := NewClient("amharic-dictionary", "enhanced-dictionary", WithBaseURL(server.URL))
		defer func() {
			_ = client.Close()
		}()

		_, err := client.GetBranches(context.Background())
		var netErr *NetworkError
		require.ErrorAs(t, err, &netErr)
	})
}

func TestClient_RepositoryStats(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/amharic-dictionary/enhanced-dictionary":
			_, _ = w.Write([]byte(`{"stargazers_count":1200,"forks_count":150,"open_issues_count":25,"size":5000,"language":"JavaScript"}`))
		case "/repos/amharic-dictionary/enhanced-dictionary/contributors":
			_, _ = w.Write([]byte(`[{"login":"abebe"},{"login":"sara"}]`))
		case "/repos/amharic-dictionary/enhanced-dictionary/commits":
			_, _ = w.Write([]byte(`[{"sha":"abc","commit":{"author":{"date":"2025-03-14T09:26:53Z"}}}]`))
		default:
			http.NotFound(w, r)
		}
	}))

	stats, err := client.RepositoryStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1200, stats.Stars)
	assert.Equal(t, 2, stats.Contributors)
	assert.Equal(t, 2025, stats.LastCommit.Year())
}
