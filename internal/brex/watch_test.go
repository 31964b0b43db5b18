// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package brex

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pdiddy/techpub-engine/pkg/types"
)

func TestWatchReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	if err := os.WriteFile(path, []byte("id: v1\nname: first"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan types.Ruleset, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, nil, func(rs types.Ruleset) { changes <- rs })
	}()

	// Give the watcher time to register before the first write.
	time.Sleep(300 * time.Millisecond)

	if err := os.WriteFile(path, []byte("id: v2\nname: second"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case rs := <-changes:
		if rs.ID != "v2" {
			t.Errorf("reloaded ruleset ID = %q, want v2", rs.ID)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}

	// A malformed write keeps the previous ruleset; the next good write
	// still comes through.
	if err := os.WriteFile(path, []byte("{{{{"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(500 * time.Millisecond)

	if err := os.WriteFile(path, []byte("id: v3\nname: third"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case rs := <-changes:
		if rs.ID != "v3" {
			t.Errorf("reloaded ruleset ID = %q, want v3 (malformed write must be skipped)", rs.ID)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for second reload")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch() returned %v after cancel, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch() did not return after cancel")
	}
}

func TestWatchMissingDirectory(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "missing", "rules.yaml"), nil, func(types.Ruleset) {})
	if err == nil {
		t.Fatal("Watch() succeeded for missing directory")
	}
}
