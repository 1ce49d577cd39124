package testhelpers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/google/go-github/v62/github"
)

// MockGitHubServerConfig configures the behavior of a mock GitHub server
type MockGitHubServerConfig struct {
	// Branches lists the repository's branches; Protected marks branch protection
	Branches []MockBranch
	// PageSize overrides the per_page the client asks for, to force pagination
	PageSize int
	// FailWith makes every request answer with this status code
	FailWith int
	// Owner and Repo for the mock server
	Owner string
	Repo  string

	mu       sync.Mutex
	Requests int
}

// MockBranch is one branch served by the mock server
type MockBranch struct {
	Name      string
	Protected bool
}

// NewMockGitHubServerConfig creates a new mock server config with defaults
func NewMockGitHubServerConfig() *MockGitHubServerConfig {
	return &MockGitHubServerConfig{
		Owner: "owner",
		Repo:  "repo",
	}
}

// RequestCount returns how many API requests the server has answered
func (c *MockGitHubServerConfig) RequestCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Requests
}

// NewMockGitHubServer creates an httptest server that mocks the GitHub
// list-branches endpoint, honouring the protected filter and pagination.
func NewMockGitHubServer(t *testing.T, config *MockGitHubServerConfig) *httptest.Server {
	t.Helper()
	if config == nil {
		config = NewMockGitHubServerConfig()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/"+config.Owner+"/"+config.Repo+"/branches", func(w http.ResponseWriter, r *http.Request) {
		config.mu.Lock()
		config.Requests++
		config.mu.Unlock()

		if config.FailWith != 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(config.FailWith)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": http.StatusText(config.FailWith)})
			return
		}
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		onlyProtected := r.URL.Query().Get("protected") == "true"
		var matched []*github.Branch
		for _, b := range config.Branches {
			if onlyProtected && !b.Protected {
				continue
			}
			matched = append(matched, &github.Branch{
				Name:      github.String(b.Name),
				Protected: github.Bool(b.Protected),
			})
		}

		perPage := config.PageSize
		if perPage == 0 {
			perPage, _ = strconv.Atoi(r.URL.Query().Get("per_page"))
		}
		if perPage <= 0 {
			perPage = 30
		}
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page <= 0 {
			page = 1
		}

		start := (page - 1) * perPage
		end := start + perPage
		if start > len(matched) {
			start = len(matched)
		}
		if end > len(matched) {
			end = len(matched)
		}

		if end < len(matched) {
			next := *r.URL
			q := next.Query()
			q.Set("page", strconv.Itoa(page+1))
			next.RawQuery = q.Encode()
			w.Header().Set("Link", `<http://`+r.Host+next.String()+`>; rel="next"`)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(matched[start:end])
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}
