// Package photostore persists enrollment captures on disk.
package photostore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store writes enrollment captures under a root directory, one
// subdirectory per student.
type Store struct {
	root string
}

// New creates a photo store rooted at dir.
func New(dir string) *Store {
	return &Store{root: dir}
}

// Save writes the image under <root>/<studentID>/<uuid>.jpg and returns
// the stored path, which callers use as the identity's photo ref.
func (s *Store) Save(studentID string, imageData []byte) (string, error) {
	if studentID == "" {
		return "", fmt.Errorf("student ID is required")
	}
	// Student IDs come from request paths; never let one climb out of the root.
	if strings.ContainsAny(studentID, `/\`) || studentID == ".." {
		return "", fmt.Errorf("invalid student ID %q", studentID)
	}

	dir := filepath.Join(s.root, studentID)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create capture directory: %w", err)
	}

	path := filepath.Join(dir, uuid.NewString()+".jpg")
	if err := os.WriteFile(path, imageData, 0o640); err != nil {
		return "", fmt.Errorf("write capture: %w", err)
	}
	return path, nil
}

// Remove deletes a previously saved capture. Refs outside the store
// root are rejected.
func (s *Store) Remove(ref string) error {
	rel, err := filepath.Rel(s.root, ref)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("ref %q is outside the photo store", ref)
	}
	if err := os.Remove(ref); err != nil {
		return fmt.Errorf("remove capture: %w", err)
	}
	return nil
}
