package storage

import (
	"bytes"
	"io"
	"testing"
)

func TestLocalStorePutGet(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	content := []byte("artifact bytes")
	path, err := store.Put("file_chunk_1_of_3.png", bytes.NewReader(content))
	if err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if path != store.Path("file_chunk_1_of_3.png") {
		t.Errorf("put returned %q, Path gives %q", path, store.Path("file_chunk_1_of_3.png"))
	}

	rc, err := store.Get("file_chunk_1_of_3.png")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	defer rc.Close()

	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("retrieved artifact differs")
	}
}

func TestLocalStoreGetMissing(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if _, err := store.Get("nope.png"); err == nil {
		t.Errorf("expected error for missing artifact")
	}
}
