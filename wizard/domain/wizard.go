package domain

import (
	"context"
	"io"
	"time"
)

// Wizard represents a single row of the wizards table.
// ImageName is nil when no image is attached; otherwise it names a file
// under the attachment root.
type Wizard struct {
	ID        int64
	Name      string
	Title     string
	Age       int
	ImageName *string
}

// CreateWizard carries the mutable fields of a wizard. It is used for both
// creation and update; images are attached separately.
type CreateWizard struct {
	Name  string
	Title string
	Age   int
}

// Upload is an uploaded image as received from the boundary layer.
type Upload struct {
	Filename string
	Content  io.Reader
}

// Attachment is a stored image read back from the attachment root.
type Attachment struct {
	Name    string
	Content []byte
}

type WizardRepository interface {
	Create(ctx context.Context, w CreateWizard) (*Wizard, error)
	List(ctx context.Context) ([]*Wizard, error)
	Get(ctx context.Context, id int64) (*Wizard, error)

	// Exists is a point-in-time probe. It is not a concurrency guard.
	Exists(ctx context.Context, id int64) (bool, error)

	// Update and Delete are conditional on the row existing; both report
	// ErrWizardNotFound when no row matched.
	Update(ctx context.Context, id int64, w CreateWizard) (*Wizard, error)
	Delete(ctx context.Context, id int64) (imageName *string, err error)

	// SwapImage sets the image reference (nil clears it) and returns the
	// reference it replaced.
	SwapImage(ctx context.Context, id int64, imageName *string) (previous *string, err error)

	// ImageNames returns every image reference currently held by a record.
	ImageNames(ctx context.Context) ([]string, error)
}

// StoredFile describes a file in the attachment root.
type StoredFile struct {
	Name    string
	ModTime time.Time
}

// AttachmentStore is the attachment root. Names are flat file names.
type AttachmentStore interface {
	Write(name string, content []byte) error
	Read(name string) ([]byte, error)

	// Remove deletes a file; a missing file is not an error.
	Remove(name string) error
	List() ([]StoredFile, error)
}
