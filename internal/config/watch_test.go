package config

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestWatch_FiresOnceAfterWriteBurst(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("bar:\n  size: 30\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var fired atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, nil, func() { fired.Add(1) })
	}()

	// Give the watcher time to attach before mutating the file.
	time.Sleep(100 * time.Millisecond)

	// An editor-style burst of writes must coalesce into one reload.
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte("bar:\n  size: 40\n"), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	deadline := time.Now().Add(3 * time.Second)
	for fired.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if got := fired.Load(); got != 1 {
		t.Fatalf("onChange fired %d times, want 1", got)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("watch returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Watch did not stop on cancellation")
	}
}

func TestWatch_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var fired atomic.Int32
	go Watch(ctx, path, nil, func() { fired.Add(1) })
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	time.Sleep(2 * watchQuietPeriod)
	if got := fired.Load(); got != 0 {
		t.Fatalf("onChange fired %d times for an unrelated file", got)
	}
}
