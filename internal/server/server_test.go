package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/changetower/pkg/catalog"
	"github.com/matzehuels/changetower/pkg/deps"
	"github.com/matzehuels/changetower/pkg/errors"
	"github.com/matzehuels/changetower/pkg/pipeline"
)

type fakeLoader struct {
	modules []string
	branch  string
	force   bool
	cleared bool
	ctxErr  error
	state   pipeline.State
}

func (f *fakeLoader) Load(ctx context.Context, modules []string, branch string, force bool, _ pipeline.ProgressFunc) (pipeline.Outcome, error) {
	if len(modules) == 0 {
		return pipeline.Outcome{}, errors.New(errors.ErrCodeInvalidInput, "no modules selected")
	}
	f.modules, f.branch, f.force = modules, branch, force
	f.ctxErr = ctx.Err()
	f.state = pipeline.State{Branch: branch}
	for _, m := range modules {
		f.state.Results = append(f.state.Results, pipeline.Result{Module: m, Content: "## 1.0.0"})
	}
	return pipeline.Outcome{RequestID: "req-1", Fetched: modules, State: f.state}, nil
}

func (f *fakeLoader) State() pipeline.State        { return f.state }
func (f *fakeLoader) ClearCache(_ context.Context) { f.cleared = true }

type fakeExplainer struct {
	pkg, oldV, newV string
}

func (f *fakeExplainer) BuildAll(_ context.Context, pkg, oldVersion, newVersion string) []*deps.Node {
	f.pkg, f.oldV, f.newV = pkg, oldVersion, newVersion
	return []*deps.Node{{PackageName: "expo-font", OldVersion: "13.0.0", NewVersion: "13.0.1", HasRealChanges: true}}
}

func newTestServer() (*Server, *fakeLoader, *fakeExplainer) {
	l := &fakeLoader{}
	e := &fakeExplainer{}
	s := New(Options{
		Loader:        l,
		Explainer:     e,
		DefaultBranch: "sdk-54",
		StoreReady:    func() bool { return true },
		Logger:        log.New(&strings.Builder{}),
	})
	return s, l, e
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestLoad(t *testing.T) {
	s, l, _ := newTestServer()

	rec := do(t, s, http.MethodPost, "/api/load", `{"modules":["expo-camera","expo-av"],"force":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if l.branch != "sdk-54" {
		t.Errorf("branch = %q, want default sdk-54", l.branch)
	}
	if !l.force {
		t.Error("force not passed through")
	}

	var out pipeline.Outcome
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.RequestID != "req-1" || len(out.State.Results) != 2 {
		t.Errorf("outcome = %+v", out)
	}
}

func TestLoadOutlivesClientDisconnect(t *testing.T) {
	s, l, _ := newTestServer()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/load", strings.NewReader(`{"modules":["expo-av"]}`)).WithContext(ctx)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if l.ctxErr != nil {
		t.Errorf("loader saw ctx error %v, want load detached from the request", l.ctxErr)
	}
}

func TestLoadRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		body string
		code errors.Code
	}{
		{"malformed body", `{`, errors.ErrCodeInvalidInput},
		{"bad branch", `{"modules":["expo-av"],"branch":"../x"}`, errors.ErrCodeInvalidBranch},
		{"bad module", `{"modules":["Expo AV"]}`, errors.ErrCodeInvalidPackage},
		{"empty selection", `{"modules":[]}`, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, _ := newTestServer()
			rec := do(t, s, http.MethodPost, "/api/load", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			var body errorResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if body.Code != tt.code {
				t.Errorf("code = %s, want %s", body.Code, tt.code)
			}
		})
	}
}

func TestChangelogs(t *testing.T) {
	s, l, _ := newTestServer()
	l.state = pipeline.State{Branch: "main", Results: []pipeline.Result{{Module: "expo-av"}}}

	rec := do(t, s, http.MethodGet, "/api/changelogs", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var state pipeline.State
	if err := json.NewDecoder(rec.Body).Decode(&state); err != nil {
		t.Fatal(err)
	}
	if state.Branch != "main" || len(state.Results) != 1 || state.Results[0].Module != "expo-av" {
		t.Errorf("state = %+v", state)
	}
}

func TestTree(t *testing.T) {
	s, _, e := newTestServer()

	rec := do(t, s, http.MethodGet, "/api/tree/@expo/vector-icons?old=14.0.0&new=14.0.1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if e.pkg != "@expo/vector-icons" || e.oldV != "14.0.0" || e.newV != "14.0.1" {
		t.Errorf("explainer called with %s %s %s", e.pkg, e.oldV, e.newV)
	}

	var body treeResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.Trees) != 1 || body.Trees[0].PackageName != "expo-font" {
		t.Errorf("trees = %+v", body.Trees)
	}
}

func TestTreeRejectsBadVersion(t *testing.T) {
	s, _, _ := newTestServer()
	rec := do(t, s, http.MethodGet, "/api/tree/expo-av?old=latest&new=14.0.1", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestClearCache(t *testing.T) {
	s, l, _ := newTestServer()
	rec := do(t, s, http.MethodDelete, "/api/cache", "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if !l.cleared {
		t.Error("cache not cleared")
	}
}

func TestModules(t *testing.T) {
	s, _, _ := newTestServer()

	rec := do(t, s, http.MethodGet, "/api/modules", "")
	var all []catalog.Module
	if err := json.NewDecoder(rec.Body).Decode(&all); err != nil {
		t.Fatal(err)
	}
	if len(all) != len(catalog.Modules) {
		t.Errorf("got %d modules, want %d", len(all), len(catalog.Modules))
	}

	cat := catalog.Modules[0].Category
	rec = do(t, s, http.MethodGet, "/api/modules?category="+url.QueryEscape(cat), "")
	var some []catalog.Module
	if err := json.NewDecoder(rec.Body).Decode(&some); err != nil {
		t.Fatal(err)
	}
	for _, m := range some {
		if m.Category != cat {
			t.Errorf("module %s has category %s, want %s", m.Name, m.Category, cat)
		}
	}

	rec = do(t, s, http.MethodGet, "/api/modules?category=nope", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown category status = %d, want 404", rec.Code)
	}
}

func TestBranches(t *testing.T) {
	s, _, _ := newTestServer()
	rec := do(t, s, http.MethodGet, "/api/branches", "")
	var branches []catalog.Branch
	if err := json.NewDecoder(rec.Body).Decode(&branches); err != nil {
		t.Fatal(err)
	}
	if len(branches) == 0 || branches[0].Value != "main" {
		t.Errorf("branches = %+v", branches)
	}
}

func TestHealth(t *testing.T) {
	s, _, _ := newTestServer()
	rec := do(t, s, http.MethodGet, "/healthz", "")
	var body healthResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "ok" || !body.Store || body.Build.Version == "" {
		t.Errorf("health = %+v", body)
	}
}

func TestRequestID(t *testing.T) {
	s, _, _ := newTestServer()

	rec := do(t, s, http.MethodGet, "/healthz", "")
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("missing generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("request id = %q, want echoed abc-123", got)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code errors.Code
		want int
	}{
		{errors.ErrCodeInvalidPackage, http.StatusBadRequest},
		{errors.ErrCodeChangelogNotFound, http.StatusNotFound},
		{errors.ErrCodeNetwork, http.StatusBadGateway},
		{errors.ErrCodeCacheUnavailable, http.StatusServiceUnavailable},
		{"", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.code); got != tt.want {
			t.Errorf("statusFor(%q) = %d, want %d", tt.code, got, tt.want)
		}
	}
}
