package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

const indexV1 = `
types:
  - name: com.example.SecurityConfig
`

const indexV2 = `
types:
  - name: com.example.SecurityConfig
  - name: com.example.ApiConfig
`

func startWatcher(t *testing.T, path string, onError func(error)) *Watcher {
	t.Helper()

	w := New(path, onError)
	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := w.Start(ctx); err != nil {
			t.Errorf("Start: %v", err)
		}
	}()
	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})
	return w
}

func TestWatcher_ReloadOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.yaml")
	if err := os.WriteFile(path, []byte(indexV1), 0o600); err != nil {
		t.Fatal(err)
	}

	w := startWatcher(t, path, nil)

	// Give the watcher a moment to register before the write.
	time.Sleep(200 * time.Millisecond)
	if err := os.WriteFile(path, []byte(indexV2), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case idx := <-w.Changes():
		if len(idx.Types) != 2 {
			t.Errorf("reloaded index has %d types, want 2", len(idx.Types))
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after file write")
	}
}

func TestWatcher_RenameStyleReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.yaml")
	if err := os.WriteFile(path, []byte(indexV1), 0o600); err != nil {
		t.Fatal(err)
	}

	w := startWatcher(t, path, nil)
	time.Sleep(200 * time.Millisecond)

	// Extraction tools write a temp file and rename it into place.
	tmp := filepath.Join(dir, "index.yaml.tmp")
	if err := os.WriteFile(tmp, []byte(indexV2), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}

	select {
	case idx := <-w.Changes():
		if len(idx.Types) != 2 {
			t.Errorf("reloaded index has %d types, want 2", len(idx.Types))
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after rename")
	}
}

func TestWatcher_BadReloadKeepsWatching(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.yaml")
	if err := os.WriteFile(path, []byte(indexV1), 0o600); err != nil {
		t.Fatal(err)
	}

	errCh := make(chan error, 4)
	w := startWatcher(t, path, func(err error) { errCh <- err })
	time.Sleep(200 * time.Millisecond)

	// Broken document: reported through onError, nothing emitted.
	if err := os.WriteFile(path, []byte("types:\n  - super: x\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	select {
	case <-errCh:
	case <-time.After(5 * time.Second):
		t.Fatal("reload failure not reported")
	}
	select {
	case <-w.Changes():
		t.Fatal("broken document emitted as a reload")
	case <-time.After(200 * time.Millisecond):
	}

	// A good rewrite recovers.
	if err := os.WriteFile(path, []byte(indexV2), 0o600); err != nil {
		t.Fatal(err)
	}
	select {
	case idx := <-w.Changes():
		if len(idx.Types) != 2 {
			t.Errorf("reloaded index has %d types, want 2", len(idx.Types))
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after recovery")
	}
}

func TestWatcher_IgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.yaml")
	if err := os.WriteFile(path, []byte(indexV1), 0o600); err != nil {
		t.Fatal(err)
	}

	w := startWatcher(t, path, nil)
	time.Sleep(200 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case <-w.Changes():
		t.Fatal("unrelated file triggered a reload")
	case <-time.After(400 * time.Millisecond):
	}
}

func TestWatcher_CloseStopsStart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.yaml")
	if err := os.WriteFile(path, []byte(indexV1), 0o600); err != nil {
		t.Fatal(err)
	}

	w := New(path, nil)
	done := make(chan error, 1)
	go func() { done <- w.Start(context.Background()) }()

	time.Sleep(100 * time.Millisecond)
	w.Close()
	w.Close() // idempotent

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after Close")
	}

	if _, ok := <-w.Changes(); ok {
		t.Error("change channel not closed after shutdown")
	}
}
