package pipeline

import (
	"context"
	"reflect"
	"sync"
	"testing"
	"time"

	cterrors "github.com/matzehuels/changetower/pkg/errors"
)

type fakeBatcher struct {
	mu      sync.Mutex
	calls   [][]string
	failing map[string]bool
	block   map[string]chan struct{}
	started chan string
	cleared int
}

func (b *fakeBatcher) FetchMany(ctx context.Context, pkgs []string, _ string, force bool, onProgress ProgressFunc) []Result {
	b.mu.Lock()
	b.calls = append(b.calls, append([]string(nil), pkgs...))
	b.mu.Unlock()

	if b.started != nil {
		b.started <- pkgs[0]
	}
	for _, p := range pkgs {
		if ch, ok := b.block[p]; ok {
			<-ch
		}
	}

	results := make([]Result, len(pkgs))
	for i, p := range pkgs {
		if err := ctx.Err(); err != nil {
			results[i] = Result{Module: p, Error: "fetch failed: " + err.Error()}
			continue
		}
		if b.failing[p] {
			results[i] = Result{Module: p, Error: "no changelog on main"}
			continue
		}
		results[i] = Result{Module: p, Content: "## 1.0.0", Cached: !force}
	}
	if onProgress != nil {
		onProgress(Progress{Loaded: len(pkgs), Total: len(pkgs)})
	}
	return results
}

func (b *fakeBatcher) ClearCache(context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cleared++
}

func (b *fakeBatcher) lastCall() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[len(b.calls)-1]
}

func newTestLoader(b Batcher) *Loader {
	return NewLoader(b, Options{MinLoadTime: -1})
}

func TestLoadIncrementalMerge(t *testing.T) {
	ctx := context.Background()
	b := &fakeBatcher{}
	l := newTestLoader(b)

	if _, err := l.Load(ctx, []string{"a", "b"}, "main", false, nil); err != nil {
		t.Fatal(err)
	}
	out, err := l.Load(ctx, []string{"a", "b", "c"}, "main", false, nil)
	if err != nil {
		t.Fatal(err)
	}

	if got := b.lastCall(); !reflect.DeepEqual(got, []string{"c"}) {
		t.Errorf("second load fetched %v, want [c]", got)
	}
	if !out.Incremental {
		t.Error("Incremental = false, want true")
	}
	if got := l.State().Modules(); !reflect.DeepEqual(got, []string{"c", "a", "b"}) {
		t.Errorf("modules = %v, want [c a b]", got)
	}
}

func TestLoadSameSelectionRefetches(t *testing.T) {
	ctx := context.Background()
	b := &fakeBatcher{}
	l := newTestLoader(b)

	l.Load(ctx, []string{"a", "b"}, "main", false, nil)
	out, _ := l.Load(ctx, []string{"b", "a"}, "main", false, nil)

	if out.Incremental || !reflect.DeepEqual(b.lastCall(), []string{"b", "a"}) {
		t.Errorf("outcome = %+v, fetched %v", out, b.lastCall())
	}
	if got := l.State().Modules(); !reflect.DeepEqual(got, []string{"b", "a"}) {
		t.Errorf("modules = %v", got)
	}
}

func TestLoadForceReplaces(t *testing.T) {
	ctx := context.Background()
	b := &fakeBatcher{failing: map[string]bool{"x": true}}
	l := newTestLoader(b)

	l.Load(ctx, []string{"a", "x"}, "main", false, nil)
	if errs := l.State().Errors; !reflect.DeepEqual(errs, []string{"x: no changelog on main"}) {
		t.Errorf("errors = %v", errs)
	}

	l.Load(ctx, []string{"a", "b"}, "main", true, nil)
	if got := b.lastCall(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("force load fetched %v, want [a b]", got)
	}
	st := l.State()
	if !reflect.DeepEqual(st.Modules(), []string{"b", "a"}) || len(st.Errors) != 0 {
		t.Errorf("state = %+v", st)
	}
}

func TestLoadBranchChangeIsFullLoad(t *testing.T) {
	ctx := context.Background()
	b := &fakeBatcher{}
	l := newTestLoader(b)

	l.Load(ctx, []string{"a"}, "main", false, nil)
	out, _ := l.Load(ctx, []string{"a", "b"}, "sdk-54", false, nil)

	if out.Incremental || !reflect.DeepEqual(b.lastCall(), []string{"a", "b"}) {
		t.Errorf("outcome = %+v, fetched %v", out, b.lastCall())
	}
	if st := l.State(); st.Branch != "sdk-54" || !reflect.DeepEqual(st.Modules(), []string{"a", "b"}) {
		t.Errorf("state = %+v", st)
	}
}

func TestLoadIncrementalErrorsAccumulate(t *testing.T) {
	ctx := context.Background()
	b := &fakeBatcher{failing: map[string]bool{"x": true, "y": true}}
	l := newTestLoader(b)

	l.Load(ctx, []string{"a", "x"}, "main", false, nil)
	l.Load(ctx, []string{"a", "x", "y"}, "main", false, nil)

	want := []string{"x: no changelog on main", "y: no changelog on main"}
	if errs := l.State().Errors; !reflect.DeepEqual(errs, want) {
		t.Errorf("errors = %v, want %v", errs, want)
	}
}

func TestLoadIncrementalDropsDeselectedErrors(t *testing.T) {
	ctx := context.Background()
	b := &fakeBatcher{failing: map[string]bool{"x": true}}
	l := newTestLoader(b)

	l.Load(ctx, []string{"a", "x"}, "main", false, nil)
	out, _ := l.Load(ctx, []string{"a", "b"}, "main", false, nil)

	if !out.Incremental || !reflect.DeepEqual(b.lastCall(), []string{"b"}) {
		t.Fatalf("outcome = %+v, fetched %v", out, b.lastCall())
	}
	st := l.State()
	if !reflect.DeepEqual(st.Modules(), []string{"b", "a"}) {
		t.Errorf("modules = %v, want [b a]", st.Modules())
	}
	if len(st.Errors) != 0 {
		t.Errorf("errors = %v, want none for deselected x", st.Errors)
	}
}

func TestLoadCancelledKeepsState(t *testing.T) {
	tests := []struct {
		name  string
		force bool
	}{
		{"normal", false},
		{"force", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &fakeBatcher{}
			l := newTestLoader(b)
			if _, err := l.Load(context.Background(), []string{"expo-a", "expo-b"}, "main", false, nil); err != nil {
				t.Fatal(err)
			}
			before := l.State()

			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			out, err := l.Load(ctx, []string{"expo-a", "expo-b"}, "main", tt.force, nil)
			if err != nil {
				t.Fatal(err)
			}
			if !out.Stale {
				t.Error("cancelled load should be reported stale")
			}

			st := l.State()
			if st.Loading || st.RequestID != "" {
				t.Errorf("loading = %v, request = %q after cancelled load", st.Loading, st.RequestID)
			}
			if !reflect.DeepEqual(st.Modules(), before.Modules()) || len(st.Errors) != 0 {
				t.Errorf("state = %+v, want results of the earlier load", st)
			}
		})
	}
}

func TestLoadDiscardsStaleResults(t *testing.T) {
	ctx := context.Background()
	release := make(chan struct{})
	b := &fakeBatcher{
		block:   map[string]chan struct{}{"a": release},
		started: make(chan string, 2),
	}
	l := newTestLoader(b)

	first := make(chan Outcome, 1)
	go func() {
		out, _ := l.Load(ctx, []string{"a"}, "main", false, nil)
		first <- out
	}()
	if got := <-b.started; got != "a" {
		t.Fatalf("first load started with %q", got)
	}

	second, err := l.Load(ctx, []string{"b"}, "main", false, nil)
	if err != nil {
		t.Fatal(err)
	}
	<-b.started
	if second.Stale {
		t.Fatal("second load reported stale")
	}

	close(release)
	var out Outcome
	select {
	case out = <-first:
	case <-time.After(5 * time.Second):
		t.Fatal("first load did not finish")
	}
	if !out.Stale {
		t.Error("first load applied after being superseded")
	}
	if got := l.State().Modules(); !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("modules = %v, want [b]", got)
	}
}

func TestLoadRejectsEmptySelection(t *testing.T) {
	_, err := newTestLoader(&fakeBatcher{}).Load(context.Background(), nil, "main", false, nil)
	if !cterrors.Is(err, cterrors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestLoadMinimumDuration(t *testing.T) {
	l := NewLoader(&fakeBatcher{}, Options{MinLoadTime: 30 * time.Millisecond})
	start := time.Now()
	l.Load(context.Background(), []string{"a"}, "main", false, nil)
	if d := time.Since(start); d < 30*time.Millisecond {
		t.Errorf("Load() took %v, want at least 30ms", d)
	}
}

func TestLoaderClearCache(t *testing.T) {
	ctx := context.Background()
	b := &fakeBatcher{}
	l := newTestLoader(b)
	l.Load(ctx, []string{"a"}, "main", false, nil)

	l.ClearCache(ctx)
	if b.cleared != 1 || len(l.State().Results) != 0 {
		t.Errorf("cleared = %d, state = %+v", b.cleared, l.State())
	}
}
