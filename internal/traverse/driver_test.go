package traverse_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"datefixer/internal/exiftool"
	"datefixer/internal/logging"
	"datefixer/internal/reconcile"
	"datefixer/internal/traverse"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingReconciler struct {
	mu    sync.Mutex
	paths []string
	execs map[exiftool.Executor]struct{}
	fail  map[string]bool
	hook  func(path string)
}

func newRecorder() *recordingReconciler {
	return &recordingReconciler{execs: map[exiftool.Executor]struct{}{}, fail: map[string]bool{}}
}

func (r *recordingReconciler) factory(_ int, exec exiftool.Executor) traverse.Reconciler {
	r.mu.Lock()
	r.execs[exec] = struct{}{}
	r.mu.Unlock()
	return reconcilerFunc(func(_ context.Context, path string) (reconcile.Action, error) {
		r.mu.Lock()
		r.paths = append(r.paths, path)
		hook := r.hook
		failed := r.fail[filepath.Base(path)]
		r.mu.Unlock()
		if hook != nil {
			hook(path)
		}
		if failed {
			return reconcile.ActionNone, errors.New("boom")
		}
		return reconcile.ActionWriteMetadata, nil
	})
}

func (r *recordingReconciler) seen(root string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.paths))
	for _, p := range r.paths {
		rel, _ := filepath.Rel(root, p)
		out = append(out, filepath.ToSlash(rel))
	}
	sort.Strings(out)
	return out
}

type reconcilerFunc func(ctx context.Context, path string) (reconcile.Action, error)

func (f reconcilerFunc) Reconcile(ctx context.Context, path string) (reconcile.Action, error) {
	return f(ctx, path)
}

func newPool(t *testing.T, size int) *exiftool.Pool {
	t.Helper()
	pool := exiftool.NewPool(size, func() *exiftool.Supervisor {
		return exiftool.NewSupervisor(exiftool.WithBinary("exiftool-not-started"))
	})
	t.Cleanup(func() { _ = pool.Close() })
	return pool
}

func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", f, err)
		}
	}
}

func TestRunVisitsFilesHonouringExclusions(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"a.jpg",
		"b.png",
		"sub/c.jpg",
		"skip/d.jpg",
		"skip/deeper/e.jpg",
		".hidden/f.jpg",
		".g.jpg",
		"sub/excluded.jpg",
	)

	rec := newRecorder()
	stats := &reconcile.Stats{}
	driver, err := traverse.New(traverse.Config{
		Pool:          newPool(t, 3),
		NewReconciler: rec.factory,
		Stats:         stats,
		Exclude:       []string{filepath.Join(root, "skip"), filepath.Join(root, "sub", "excluded.jpg")},
		SkipHidden:    true,
		Logger:        logging.NewNop(),
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := driver.Run(context.Background(), []string{root}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := []string{"a.jpg", "b.png", "sub/c.jpg"}
	if diff := cmp.Diff(want, rec.seen(root)); diff != "" {
		t.Fatalf("visited files mismatch (-want +got):\n%s", diff)
	}
	if got := stats.FoldersProcessed.Load(); got != 2 {
		t.Fatalf("expected 2 folders processed, got %d", got)
	}
	if got := stats.FoldersSkipped.Load(); got != 1 {
		t.Fatalf("expected 1 folder skipped, got %d", got)
	}
	if got := stats.FilesSkipped.Load(); got != 1 {
		t.Fatalf("expected 1 file skipped, got %d", got)
	}
	if len(rec.execs) > 3 {
		t.Fatalf("expected at most 3 executors, got %d", len(rec.execs))
	}
}

func TestRunIncludesHiddenFilesByDefault(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, ".hidden/f.jpg", ".g.jpg")

	rec := newRecorder()
	driver, err := traverse.New(traverse.Config{Pool: newPool(t, 1), NewReconciler: rec.factory, Logger: logging.NewNop()})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := driver.Run(context.Background(), []string{root}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if diff := cmp.Diff([]string{".g.jpg", ".hidden/f.jpg"}, rec.seen(root)); diff != "" {
		t.Fatalf("visited files mismatch (-want +got):\n%s", diff)
	}
}

func TestRunContinuesPastFileErrors(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "bad.jpg", "good1.jpg", "good2.jpg")

	rec := newRecorder()
	rec.fail["bad.jpg"] = true
	driver, err := traverse.New(traverse.Config{Pool: newPool(t, 2), NewReconciler: rec.factory, Logger: logging.NewNop()})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := driver.Run(context.Background(), []string{root}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := len(rec.seen(root)); got != 3 {
		t.Fatalf("expected all 3 files visited, got %d", got)
	}
}

func TestRunCountsUnreadableRoot(t *testing.T) {
	rec := newRecorder()
	stats := &reconcile.Stats{}
	driver, err := traverse.New(traverse.Config{Pool: newPool(t, 1), NewReconciler: rec.factory, Stats: stats, Logger: logging.NewNop()})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	missing := filepath.Join(t.TempDir(), "missing")
	if err := driver.Run(context.Background(), []string{missing}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := stats.Errors.Load(); got != 1 {
		t.Fatalf("expected 1 error, got %d", got)
	}
}

func TestRunAcceptsFileRoot(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "only.jpg", "other.jpg")

	rec := newRecorder()
	driver, err := traverse.New(traverse.Config{Pool: newPool(t, 1), NewReconciler: rec.factory, Logger: logging.NewNop()})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := driver.Run(context.Background(), []string{filepath.Join(root, "only.jpg")}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if diff := cmp.Diff([]string{"only.jpg"}, rec.seen(root)); diff != "" {
		t.Fatalf("visited files mismatch (-want +got):\n%s", diff)
	}
}

func TestCancelStopsDispatch(t *testing.T) {
	root := t.TempDir()
	var files []string
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		files = append(files, name+".jpg")
	}
	writeTree(t, root, files...)

	rec := newRecorder()
	driver, err := traverse.New(traverse.Config{Pool: newPool(t, 1), NewReconciler: rec.factory, Logger: logging.NewNop()})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	rec.hook = func(string) { driver.Cancel() }

	if err := driver.Run(context.Background(), []string{root}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !driver.Cancelled() {
		t.Fatal("expected driver to report cancellation")
	}
	if got := len(rec.seen(root)); got != 1 {
		t.Fatalf("expected only the in-flight file to finish, got %d", got)
	}
}

func TestRunReturnsContextError(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a.jpg")

	rec := newRecorder()
	driver, err := traverse.New(traverse.Config{Pool: newPool(t, 1), NewReconciler: rec.factory, Logger: logging.NewNop()})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := driver.Run(ctx, []string{root}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if got := len(rec.seen(root)); got != 0 {
		t.Fatalf("expected no files after cancellation, got %d", got)
	}
}

func TestNewRequiresPoolAndFactory(t *testing.T) {
	if _, err := traverse.New(traverse.Config{}); err == nil {
		t.Fatal("expected error without pool")
	}
	if _, err := traverse.New(traverse.Config{Pool: newPool(t, 1)}); err == nil {
		t.Fatal("expected error without reconciler factory")
	}
}
