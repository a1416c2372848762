package tokenstore

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryLifecycle(t *testing.T) {
	store := NewMemoryStore()
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
		t.Fatalf("load mismatch: %+v", got)
	}

	// Loaded records must be detached from the stored bytes.
	got.AccessToken = "tampered"
	again, err := store.Load(ctx, "default")
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if again.AccessToken == "tampered" {
		t.Fatal("loaded record aliases store state")
	}

	if err := store.SetAccessToken(ctx, "default", "access-2", ""); err != nil {
		t.Fatalf("set access token failed: %v", err)
	}
	got, _ = store.Load(ctx, "default")
	if got.AccessToken != "access-2" || got.RefreshToken != want.RefreshToken {
		t.Fatalf("rotation wrong: %+v", got)
	}

	if err := store.Clear(ctx, "default"); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if _, err := store.Load(ctx, "default"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound after clear", err)
	}
}
