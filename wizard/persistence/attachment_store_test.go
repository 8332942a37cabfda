package persistence

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spf13/afero"
)

func TestFileAttachmentStore_WriteReadRemove(t *testing.T) {
	store := NewAttachmentStore(afero.NewMemMapFs())

	if err := store.Write("1700000000001.png", []byte("PNGDATA")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	content, err := store.Read("1700000000001.png")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(content) != "PNGDATA" {
		t.Errorf("Read = %q, want %q", content, "PNGDATA")
	}

	// overwrite truncates
	if err := store.Write("1700000000001.png", []byte("NEW")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	content, err = store.Read("1700000000001.png")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(content) != "NEW" {
		t.Errorf("Read after overwrite = %q, want %q", content, "NEW")
	}

	if err := store.Remove("1700000000001.png"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := store.Read("1700000000001.png"); err == nil {
		t.Error("Expected error reading removed attachment")
	}

	// already gone is satisfied
	if err := store.Remove("1700000000001.png"); err != nil {
		t.Errorf("Remove of missing file error = %v, want nil", err)
	}
}

func TestFileAttachmentStore_List(t *testing.T) {
	store := NewAttachmentStore(afero.NewMemMapFs())

	for _, name := range []string{"b.png", "a.jpg", "c.gif"} {
		if err := store.Write(name, []byte(name)); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}

	files, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name)
		if f.ModTime.IsZero() {
			t.Errorf("ModTime of %s is zero", f.Name)
		}
	}

	want := []string{"a.jpg", "b.png", "c.gif"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("List = %v, want %v", names, want)
	}
}

func TestFileAttachmentStore_InvalidNames(t *testing.T) {
	store := NewAttachmentStore(afero.NewMemMapFs())

	tests := []struct {
		name string
		file string
	}{
		{name: "Empty", file: ""},
		{name: "Dot", file: "."},
		{name: "Parent", file: ".."},
		{name: "Traversal", file: "../etc/passwd"},
		{name: "Nested", file: "sub/image.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := store.Write(tt.file, []byte("x")); err == nil {
				t.Errorf("Write(%q) expected error", tt.file)
			}
			if _, err := store.Read(tt.file); err == nil {
				t.Errorf("Read(%q) expected error", tt.file)
			}
			if err := store.Remove(tt.file); err == nil {
				t.Errorf("Remove(%q) expected error", tt.file)
			}
		})
	}
}

func TestNewFileAttachmentStore(t *testing.T) {
	root := filepath.Join(t.TempDir(), "files")

	store, err := NewFileAttachmentStore(root)
	if err != nil {
		t.Fatalf("NewFileAttachmentStore failed: %v", err)
	}

	if err := store.Write("42.png", []byte("content")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	onDisk, err := os.ReadFile(filepath.Join(root, "42.png"))
	if err != nil {
		t.Fatalf("file not written under root: %v", err)
	}
	if string(onDisk) != "content" {
		t.Errorf("file content = %q, want %q", onDisk, "content")
	}

	if _, err := NewFileAttachmentStore(""); err == nil {
		t.Error("Expected error for empty root")
	}
}
