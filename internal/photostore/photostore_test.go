package photostore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStore_SaveAndRemove(t *testing.T) {
	store := New(t.TempDir())

	ref, err := store.Save("S1", []byte("jpeg-bytes"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !strings.HasSuffix(ref, ".jpg") {
		t.Errorf("expected .jpg ref, got %q", ref)
	}
	if filepath.Base(filepath.Dir(ref)) != "S1" {
		t.Errorf("expected capture under student directory, got %q", ref)
	}

	data, err := os.ReadFile(ref)
	if err != nil {
		t.Fatalf("reading saved capture failed: %v", err)
	}
	if string(data) != "jpeg-bytes" {
		t.Errorf("capture content changed: %q", data)
	}

	if err := store.Remove(ref); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := os.Stat(ref); !os.IsNotExist(err) {
		t.Error("expected capture to be deleted")
	}
}

func TestStore_SaveRejectsPathTraversal(t *testing.T) {
	store := New(t.TempDir())

	for _, id := range []string{"", "..", "a/b", `a\b`} {
		if _, err := store.Save(id, []byte("x")); err == nil {
			t.Errorf("expected error for student ID %q", id)
		}
	}
}

func TestStore_RemoveRejectsOutsideRoot(t *testing.T) {
	store := New(t.TempDir())

	outside := filepath.Join(t.TempDir(), "file.jpg")
	if err := os.WriteFile(outside, []byte("x"), 0o640); err != nil {
		t.Fatalf("writing fixture failed: %v", err)
	}

	if err := store.Remove(outside); err == nil {
		t.Error("expected error removing file outside the store root")
	}
	if _, err := os.Stat(outside); err != nil {
		t.Error("file outside the root must not be deleted")
	}
}
