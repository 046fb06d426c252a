package credential_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"todo/internal/credential"
)

func TestAcquireLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth.lock")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	lock, err := credential.AcquireLock(path, now)
	if err != nil {
		t.Fatalf("first acquire failed: %v", err)
	}

	if _, err := credential.AcquireLock(path, now.Add(time.Minute)); !errors.Is(err, credential.ErrLocked) {
		t.Errorf("expected ErrLocked while held, got %v", err)
	}

	if err := lock.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected lock file removed on release")
	}

	again, err := credential.AcquireLock(path, now.Add(2*time.Minute))
	if err != nil {
		t.Fatalf("acquire after release failed: %v", err)
	}
	again.Release()
}

func TestAcquireLock_BreaksStaleLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth.lock")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	old, err := credential.AcquireLock(path, now)
	if err != nil {
		t.Fatal(err)
	}

	fresh, err := credential.AcquireLock(path, now.Add(credential.LockStaleAfter+time.Second))
	if err != nil {
		t.Fatalf("expected stale lock to be broken, got %v", err)
	}

	// The previous holder no longer owns the file and must not remove it.
	if err := old.Release(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected new holder's lock to survive, got %v", err)
	}
	fresh.Release()
}

func TestAcquireLock_UnreadableLockIsBroken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth.lock")
	if err := os.WriteFile(path, []byte("garbage"), 0600); err != nil {
		t.Fatal(err)
	}

	lock, err := credential.AcquireLock(path, time.Now())
	if err != nil {
		t.Fatalf("expected garbage lock to be broken, got %v", err)
	}
	lock.Release()
}
