package watch_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-sitecontent/internal/watch"
)

type recordingClearer struct {
	cleared chan string
}

func (r *recordingClearer) ClearPageCache(pageID string) {
	r.cleared <- pageID
}

func TestPageIDFromPath(t *testing.T) {
	cases := map[string]struct {
		id string
		ok bool
	}{
		"content/pages/home.json":    {"home", true},
		"content/es/pages/team.JSON": {"team", true},
		"content/pages/notes.txt":    {"", false},
		"content/pages/.home.json":   {"", false},
	}
	for path, want := range cases {
		id, ok := watch.PageIDFromPath(path)
		if id != want.id || ok != want.ok {
			t.Fatalf("PageIDFromPath(%q) = %q, %v; want %q, %v", path, id, ok, want.id, want.ok)
		}
	}
}

func TestWatcherClearsChangedPage(t *testing.T) {
	root := t.TempDir()
	pagesDir := filepath.Join(root, "pages")
	if err := os.MkdirAll(pagesDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	target := &recordingClearer{cleared: make(chan string, 16)}
	w, err := watch.New(root, target)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	if err := os.WriteFile(filepath.Join(pagesDir, "about.json"), []byte(`{}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case id := <-target.cleared:
		if id != "about" {
			t.Fatalf("expected about cleared, got %q", id)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for cache clear")
	}
}

func TestNewRequiresTarget(t *testing.T) {
	if _, err := watch.New(t.TempDir(), nil); err == nil {
		t.Fatalf("expected error without a cache target")
	}
}
