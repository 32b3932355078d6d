package npm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matzehuels/changetower/pkg/httputil"
	"github.com/matzehuels/changetower/pkg/integrations"
)

func testClient(baseURL string) *Client {
	shared := integrations.NewClient(integrations.Options{
		Retry: httputil.RetryOptions{InitialDelay: time.Millisecond, MaxDelay: time.Millisecond},
	})
	return NewClient(shared, baseURL)
}

func TestFetchManifest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/expo/54.0.1":
			json.NewEncoder(w).Encode(map[string]any{
				"name":             "expo",
				"version":          "54.0.1",
				"dependencies":     map[string]string{"expo-modules-core": "~3.0.1"},
				"peerDependencies": map[string]string{"react": "*"},
				"dist":             map[string]string{"tarball": "ignored"},
			})
		case "/@expo/cli/0.24.0":
			json.NewEncoder(w).Encode(map[string]any{"name": "@expo/cli", "version": "0.24.0"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := testClient(server.URL)
	ctx := context.Background()

	m, err := c.FetchManifest(ctx, "expo", "54.0.1")
	if err != nil {
		t.Fatalf("FetchManifest() error: %v", err)
	}
	if m.Dependencies["expo-modules-core"] != "~3.0.1" || m.PeerDependencies["react"] != "*" {
		t.Errorf("unexpected manifest: %+v", m)
	}
	if m.DevDependencies == nil {
		t.Error("missing sections should decode as empty maps")
	}

	if _, err := c.FetchManifest(ctx, "@expo/cli", "0.24.0"); err != nil {
		t.Errorf("scoped FetchManifest() error: %v", err)
	}

	_, err = c.FetchManifest(ctx, "expo", "0.0.0")
	if !errors.Is(err, integrations.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestFetchManifestClientErrorNotRetried(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := testClient(server.URL).FetchManifest(context.Background(), "expo", "1.0.0")
	if !errors.Is(err, integrations.ErrNetwork) {
		t.Errorf("error = %v, want ErrNetwork", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
