package persistence

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/dfryer1193/wizardry/wizard/domain"
	"github.com/spf13/afero"
)

var _ domain.AttachmentStore = (*FileAttachmentStore)(nil)

// FileAttachmentStore keeps attachment files flat under a single root.
type FileAttachmentStore struct {
	fs afero.Fs
}

// NewFileAttachmentStore roots the store at dir on the OS filesystem,
// creating dir if needed.
func NewFileAttachmentStore(dir string) (*FileAttachmentStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("attachment root cannot be empty")
	}

	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create attachment root: %w", err)
	}

	return NewAttachmentStore(afero.NewBasePathFs(osFs, dir)), nil
}

// NewAttachmentStore uses fsys as the attachment root.
func NewAttachmentStore(fsys afero.Fs) *FileAttachmentStore {
	return &FileAttachmentStore{fs: fsys}
}

// Write creates or truncates the named file.
func (s *FileAttachmentStore) Write(name string, content []byte) error {
	if err := validateName(name); err != nil {
		return err
	}

	if err := afero.WriteFile(s.fs, name, content, 0644); err != nil {
		return fmt.Errorf("failed to write attachment %s: %w", name, err)
	}

	return nil
}

func (s *FileAttachmentStore) Read(name string) ([]byte, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	content, err := afero.ReadFile(s.fs, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read attachment %s: %w", name, err)
	}

	return content, nil
}

// Remove deletes the named file. A file that is already gone is not an error.
func (s *FileAttachmentStore) Remove(name string) error {
	if err := validateName(name); err != nil {
		return err
	}

	if err := s.fs.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove attachment %s: %w", name, err)
	}

	return nil
}

// List returns all files in the root, sorted by name.
func (s *FileAttachmentStore) List() ([]domain.StoredFile, error) {
	entries, err := afero.ReadDir(s.fs, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to list attachment root: %w", err)
	}

	files := make([]domain.StoredFile, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			files = append(files, domain.StoredFile{Name: entry.Name(), ModTime: entry.ModTime()})
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	return files, nil
}

// validateName rejects anything that is not a plain file name, so callers
// cannot escape the root.
func validateName(name string) error {
	if name == "" || name == "." || name == ".." {
		return fmt.Errorf("invalid attachment name %q", name)
	}
	if filepath.Base(name) != name {
		return fmt.Errorf("attachment name %q must not contain a path", name)
	}
	return nil
}
