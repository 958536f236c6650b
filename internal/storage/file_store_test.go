package storage

import (
	"bytes"
	"context"
	"testing"
)

func TestFileStoreWriteRead(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "http://localhost:3001/uploads/processed/")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	data := []byte("jpeg bytes here")
	url, err := store.Write(context.Background(), "bedroom-option-1-abc.jpg", data, "image/jpeg")
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if url != "http://localhost:3001/uploads/processed/bedroom-option-1-abc.jpg" {
		t.Errorf("url = %q", url)
	}

	got, err := store.Read(context.Background(), "bedroom-option-1-abc.jpg")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("Read returned different bytes than written")
	}
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "http://localhost")
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"", "..", "a/b.jpg", `a\b.jpg`} {
		if _, err := store.Write(context.Background(), name, []byte("x"), "image/jpeg"); err == nil {
			t.Errorf("Write(%q) succeeded, want error", name)
		}
		if _, err := store.Read(context.Background(), name); err == nil {
			t.Errorf("Read(%q) succeeded, want error", name)
		}
	}
}
