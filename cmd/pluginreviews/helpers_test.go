package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
)

// reviewBlock renders one review in the catalog markup.
func reviewBlock(user, title, date, rating string) string {
	return `<div class="review">` +
		`<h4 class="review-title">` + title + `</h4>` +
		`<span class="screen-reader-text">` + rating + `</span>` +
		`<a href="https://profiles.wordpress.org/` + user + `">` + user + `</a>` +
		`<img src="https://secure.gravatar.com/avatar/` + user + `?s=16">` +
		`<span class="review-date">` + date + `</span>` +
		`<div class="review-body">Body of ` + title + `</div>` +
		`</div>`
}

var twoReviews = reviewBlock("alice", "Five stars", "January 1, 2020", "5 stars") +
	reviewBlock("bob", "Two stars", "February 1, 2020", "2 stars")

// upstream is a fake plugin information API. The slug "missing" is unknown.
type upstream struct {
	*httptest.Server
	hits atomic.Int32
}

func newUpstream(t *testing.T) *upstream {
	t.Helper()

	u := &upstream{}
	u.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.hits.Add(1)
		w.Header().Set("Content-Type", "application/json")

		slug := r.URL.Query().Get("request[slug]")
		if slug == "missing" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"error":"Plugin not found."}`)
			return
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"name":     "Demo",
			"slug":     slug,
			"sections": map[string]string{"reviews": twoReviews},
		})
	}))
	t.Cleanup(u.Close)
	return u
}

// writeConfig writes a configuration file into a fresh directory.
func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".pluginreviews")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

// globalArgs points the CLI at the fake upstream with an isolated config.
func (u *upstream) globalArgs(configPath string) []string {
	return []string{
		"--config", configPath,
		"--base-url", u.URL + "/plugins/info/1.2/",
	}
}

// runCLI executes the root command with args and returns its stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}
