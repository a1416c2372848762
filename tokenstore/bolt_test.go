package tokenstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func newBoltStore(t *testing.T) *BoltStore {
	t.Helper()

	store, err := OpenBolt(filepath.Join(t.TempDir(), "session.db"))
	if err != nil {
		t.Fatalf("open bolt: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestBoltLifecycle(t *testing.T) {
	store := newBoltStore(t)
	ctx := context.Background()

	if _, err := store.Load(ctx, "default"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	want := sampleRecord()
	if err := store.Save(ctx, "default", want); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := store.Load(ctx, "default")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if *got != *want {
		t.Fatalf("load mismatch:\n got %+v\nwant %+v", got, want)
	}

	if err := store.SetAccessToken(ctx, "default", "access-2", "refresh-2"); err != nil {
		t.Fatalf("set access token failed: %v", err)
	}
	got, err = store.Load(ctx, "default")
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got.AccessToken != "access-2" || got.RefreshToken != "refresh-2" {
		t.Fatalf("rotation not applied: %+v", got)
	}
	if got.UserID != want.UserID {
		t.Fatal("rotation clobbered profile fields")
	}

	if err := store.Clear(ctx, "default"); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if _, err := store.Load(ctx, "default"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound after clear", err)
	}
}

func TestBoltSetAccessTokenKeepsRefreshWhenEmpty(t *testing.T) {
	store := newBoltStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "default", sampleRecord()); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := store.SetAccessToken(ctx, "default", "access-2", ""); err != nil {
		t.Fatalf("set access token failed: %v", err)
	}

	got, err := store.Load(ctx, "default")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.RefreshToken != sampleRecord().RefreshToken {
		t.Fatalf("empty rotation overwrote refresh token: %q", got.RefreshToken)
	}
}

func TestBoltSetAccessTokenMissingRecord(t *testing.T) {
	store := newBoltStore(t)

	err := store.SetAccessToken(context.Background(), "default", "access-2", "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestBoltProfilesAreIsolated(t *testing.T) {
	store := newBoltStore(t)
	ctx := context.Background()

	a := sampleRecord()
	b := sampleRecord()
	b.UserID = "u-200"

	if err := store.Save(ctx, "front", a); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := store.Save(ctx, "bar", b); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := store.Clear(ctx, "front"); err != nil {
		t.Fatalf("clear failed: %v", err)
	}

	got, err := store.Load(ctx, "bar")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.UserID != "u-200" {
		t.Fatalf("wrong record survived: %+v", got)
	}
}
