package envwatch

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestService_EmitsOnTokenChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("ANALYTICS_TOKEN=first\n"), 0o600); err != nil {
		t.Fatalf("writing env file: %v", err)
	}

	svc, err := New(path)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer func() { _ = svc.Close() }()

	if err := os.WriteFile(path, []byte("ANALYTICS_TOKEN=rotated\n"), 0o600); err != nil {
		t.Fatalf("rewriting env file: %v", err)
	}

	select {
	case event := <-svc.Events():
		if event.Err != nil {
			t.Fatalf("unexpected event error: %v", event.Err)
		}
		if event.Token != "rotated" {
			t.Errorf("event token = %q, want rotated", event.Token)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for env change event")
	}
}

func TestService_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("ANALYTICS_TOKEN=abc\n"), 0o600); err != nil {
		t.Fatalf("writing env file: %v", err)
	}

	svc, err := New(path)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer func() { _ = svc.Close() }()

	other := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(other, []byte("unrelated\n"), 0o600); err != nil {
		t.Fatalf("writing other file: %v", err)
	}

	select {
	case event := <-svc.Events():
		t.Fatalf("unexpected event for unrelated file: %+v", event)
	case <-time.After(500 * time.Millisecond):
	}
}

func TestService_DisabledWithoutPath(t *testing.T) {
	svc, err := New("")
	if err != nil {
		t.Fatalf("New with empty path failed: %v", err)
	}
	if svc.Path() != "" {
		t.Errorf("Path() = %q, want empty", svc.Path())
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}
