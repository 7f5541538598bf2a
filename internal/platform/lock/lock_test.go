package lock

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeLocker struct {
	held     map[string]bool
	unlocked []string
	err      error
}

func (f *fakeLocker) Lock(_ context.Context, key string, _ time.Duration) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.held[key] {
		return false, nil
	}
	f.held[key] = true
	return true, nil
}

func (f *fakeLocker) Unlock(_ context.Context, key string) error {
	delete(f.held, key)
	f.unlocked = append(f.unlocked, key)
	return nil
}

func TestGuardRunsAndReleases(t *testing.T) {
	locker := &fakeLocker{held: map[string]bool{}}
	ran := false
	err := Guard(context.Background(), locker, "leave:1", time.Second, func(context.Context) error {
		ran = true
		if !locker.held["leave:1"] {
			t.Fatal("expected key held during fn")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ran {
		t.Fatal("expected fn to run")
	}
	if len(locker.unlocked) != 1 || locker.unlocked[0] != "leave:1" {
		t.Fatalf("expected release, got %v", locker.unlocked)
	}
}

func TestGuardHeldKey(t *testing.T) {
	locker := &fakeLocker{held: map[string]bool{"leave:1": true}}
	err := Guard(context.Background(), locker, "leave:1", time.Second, func(context.Context) error {
		t.Fatal("fn must not run")
		return nil
	})
	if !errors.Is(err, ErrNotAcquired) {
		t.Fatalf("expected ErrNotAcquired, got %v", err)
	}
}

func TestGuardPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	if err := Guard(context.Background(), &fakeLocker{err: boom}, "k", time.Second, func(context.Context) error { return nil }); !errors.Is(err, boom) {
		t.Fatalf("expected lock error, got %v", err)
	}
	fnErr := errors.New("fn")
	locker := &fakeLocker{held: map[string]bool{}}
	if err := Guard(context.Background(), locker, "k", time.Second, func(context.Context) error { return fnErr }); !errors.Is(err, fnErr) {
		t.Fatalf("expected fn error, got %v", err)
	}
	if locker.held["k"] {
		t.Fatal("expected key released after fn error")
	}
}

func TestNilAndNoopLocker(t *testing.T) {
	calls := 0
	fn := func(context.Context) error { calls++; return nil }
	if err := Guard(context.Background(), nil, "k", time.Second, fn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Guard(context.Background(), Noop{}, "k", time.Second, fn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}
