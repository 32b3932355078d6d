package github

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/changetower/pkg/httputil"
	"github.com/matzehuels/changetower/pkg/integrations"
)

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	shared := integrations.NewClient(integrations.Options{
		Retry: httputil.RetryOptions{InitialDelay: time.Millisecond, MaxDelay: time.Millisecond},
	})
	return NewClient(shared, baseURL)
}

func TestPackagePath(t *testing.T) {
	tests := []struct{ in, want string }{
		{"expo-camera", "expo-camera"},
		{"@expo/cli", "%40expo/cli"},
		{"@expo/config-plugins", "%40expo/config-plugins"},
	}
	for _, tt := range tests {
		if got := PackagePath(tt.in); got != tt.want {
			t.Errorf("PackagePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestChangelogURL(t *testing.T) {
	c := testClient(t, "")
	want := "https://raw.githubusercontent.com/expo/expo/sdk-54/packages/%40expo/cli/CHANGELOG.md"
	if got := c.ChangelogURL("@expo/cli", "sdk-54"); got != want {
		t.Errorf("ChangelogURL() = %q, want %q", got, want)
	}
}

func TestFetchChangelog(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.EscapedPath() != "/main/packages/%40expo/cli/CHANGELOG.md" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("# Changelog\n\n## 1.0.0\n- Initial"))
	}))
	defer server.Close()

	c := testClient(t, server.URL)
	md, err := c.FetchChangelog(context.Background(), "@expo/cli", "main")
	if err != nil {
		t.Fatalf("FetchChangelog() error: %v", err)
	}
	if md != "# Changelog\n\n## 1.0.0\n- Initial" {
		t.Errorf("FetchChangelog() = %q", md)
	}
}

func TestFetchChangelogNotFoundIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer server.Close()

	c := testClient(t, server.URL)
	_, err := c.FetchChangelog(context.Background(), "expo-nope", "main")
	if !errors.Is(err, integrations.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestFetchChangelogRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("## 2.0.0"))
	}))
	defer server.Close()

	c := testClient(t, server.URL)
	md, err := c.FetchChangelog(context.Background(), "expo-av", "main")
	if err != nil {
		t.Fatalf("FetchChangelog() error: %v", err)
	}
	if md != "## 2.0.0" || calls.Load() != 3 {
		t.Errorf("got %q after %d calls, want ## 2.0.0 after 3", md, calls.Load())
	}
}
