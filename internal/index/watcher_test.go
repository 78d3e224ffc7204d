package index

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/starford/mad/internal/models"
	"github.com/starford/mad/internal/scan"
	"github.com/starford/mad/internal/testutil"
)

// watcherTestEnv sets up a vault dir and a cache backed by a real scanner.
func watcherTestEnv(t *testing.T) (string, *Cache) {
	t.Helper()
	root, store := testutil.TestVault(t, nil)
	c, err := New(filepath.Join(t.TempDir(), "cache"), root, scan.New(store, testutil.Logger()), testutil.Logger())
	if err != nil {
		t.Fatal(err)
	}
	return root, c
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestWatcher_NewFileRebuildsCache(t *testing.T) {
	vaultDir, c := watcherTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var changed []string

	go Watch(ctx, c, vaultDir, 50*time.Millisecond, testutil.Logger(), func(paths []string, err error) {
		mu.Lock()
		if err == nil {
			changed = append(changed, paths...)
		}
		mu.Unlock()
	})

	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(vaultDir, "new.md"), []byte("{ #fresh }\n"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return slices.Contains(changed, "new.md")
	}, "rebuild not triggered for new.md")

	p, err := c.LoadPrimary()
	if err != nil {
		t.Fatalf("LoadPrimary: %v", err)
	}
	if p.Root.Lookup(models.NewTagPath("fresh")) == nil {
		t.Error("cache missing tag from new note")
	}
}

func TestWatcher_IgnoresNonMarkdown(t *testing.T) {
	vaultDir, c := watcherTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	rebuilds := 0
	go Watch(ctx, c, vaultDir, 50*time.Millisecond, testutil.Logger(), func([]string, error) {
		mu.Lock()
		rebuilds++
		mu.Unlock()
	})

	time.Sleep(100 * time.Millisecond)
	_ = os.WriteFile(filepath.Join(vaultDir, "image.png"), []byte("x"), 0o644)
	time.Sleep(300 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if rebuilds != 0 {
		t.Errorf("rebuilds = %d, want 0", rebuilds)
	}
}

func TestWatcher_StopsOnCancel(t *testing.T) {
	vaultDir, c := watcherTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- Watch(ctx, c, vaultDir, 0, testutil.Logger(), nil) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Watch: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
