package application

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/dfryer1193/wizardry/wizard/domain"
)

const defaultExtension = "png"

type ServiceConfig struct {
	// DefaultExtension is used when an upload has no file extension.
	DefaultExtension string
	Naming           NameStrategy
	Observer         Observer
	Now              func() time.Time
}

// WizardService owns the wizard lifecycle and the image file tied to each
// wizard. Every error it returns is a *domain.Error.
type WizardService struct {
	repo  domain.WizardRepository
	store domain.AttachmentStore

	defaultExt string
	naming     NameStrategy
	observer   Observer
	now        func() time.Time
}

func NewWizardService(repo domain.WizardRepository, store domain.AttachmentStore, cfg ServiceConfig) *WizardService {
	s := &WizardService{
		repo:       repo,
		store:      store,
		defaultExt: strings.TrimPrefix(cfg.DefaultExtension, "."),
		naming:     cfg.Naming,
		observer:   cfg.Observer,
		now:        cfg.Now,
	}

	if s.defaultExt == "" {
		s.defaultExt = defaultExtension
	}
	if s.naming == nil {
		s.naming = TokenNaming{}
	}
	if s.observer == nil {
		s.observer = nopObserver{}
	}
	if s.now == nil {
		s.now = time.Now
	}

	return s
}

func (s *WizardService) Create(ctx context.Context, req domain.CreateWizard) (*domain.Wizard, error) {
	const op = "create wizard"

	req, err := validate(op, req)
	if err != nil {
		return nil, err
	}

	wizard, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, domain.Persistence(op, err)
	}

	return wizard, nil
}

// GetAll lists wizards in ascending id order.
func (s *WizardService) GetAll(ctx context.Context) ([]*domain.Wizard, error) {
	wizards, err := s.repo.List(ctx)
	if err != nil {
		return nil, domain.Persistence("list wizards", err)
	}

	return wizards, nil
}

func (s *WizardService) GetByID(ctx context.Context, id int64) (*domain.Wizard, error) {
	const op = "get wizard"

	wizard, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, classify(op, err)
	}

	return wizard, nil
}

// Exists reports whether a wizard currently exists. The answer can be stale
// by the time the caller acts on it.
func (s *WizardService) Exists(ctx context.Context, id int64) (bool, error) {
	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		return false, domain.Persistence("check wizard", err)
	}

	return exists, nil
}

// Update overwrites name, title and age. The image reference is untouched.
func (s *WizardService) Update(ctx context.Context, id int64, req domain.CreateWizard) (*domain.Wizard, error) {
	const op = "update wizard"

	req, err := validate(op, req)
	if err != nil {
		return nil, err
	}

	if err := s.gate(ctx, op, id); err != nil {
		return nil, err
	}

	wizard, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, classify(op, err)
	}

	return wizard, nil
}

// Delete removes the wizard and then reclaims its image file. The record is
// gone once the row is deleted; a file that cannot be removed afterwards is
// reported to the observer as an orphan.
func (s *WizardService) Delete(ctx context.Context, id int64) error {
	const op = "delete wizard"

	if err := s.gate(ctx, op, id); err != nil {
		return err
	}

	imageName, err := s.repo.Delete(ctx, id)
	if err != nil {
		return classify(op, err)
	}

	if imageName != nil {
		if err := s.store.Remove(*imageName); err != nil {
			s.observer.OrphanedAttachment(id, *imageName, err)
		}
	}

	return nil
}

// AttachImage stores upload as the wizard's image and returns the stored
// file name. The new file is written and the reference swapped before the
// displaced file is removed, so the record never points at a missing file.
func (s *WizardService) AttachImage(ctx context.Context, id int64, upload domain.Upload) (string, error) {
	const op = "attach image"

	if _, err := s.repo.Get(ctx, id); err != nil {
		return "", classify(op, err)
	}

	if upload.Content == nil {
		return "", domain.BadRequest(op, "upload has no content")
	}
	content, err := io.ReadAll(upload.Content)
	if err != nil {
		return "", domain.BadRequest(op, "upload payload unreadable")
	}

	name := s.naming.FileName(id, extensionOf(upload.Filename, s.defaultExt), s.now())

	if err := s.store.Write(name, content); err != nil {
		return "", domain.StorageIO(op, err)
	}

	previous, err := s.repo.SwapImage(ctx, id, &name)
	if err != nil {
		if rmErr := s.store.Remove(name); rmErr != nil {
			s.observer.OrphanedAttachment(id, name, rmErr)
		}
		return "", classify(op, err)
	}

	if previous != nil && *previous != name {
		if err := s.store.Remove(*previous); err != nil {
			s.observer.StaleAttachment(id, *previous, err)
		}
	}

	return name, nil
}

// RemoveAttachment clears the wizard's image reference and deletes the file.
// A wizard without an image, or whose file is already gone, is left as is.
func (s *WizardService) RemoveAttachment(ctx context.Context, id int64) error {
	const op = "remove image"

	wizard, err := s.repo.Get(ctx, id)
	if err != nil {
		return classify(op, err)
	}
	if wizard.ImageName == nil {
		return nil
	}

	previous, err := s.repo.SwapImage(ctx, id, nil)
	if err != nil {
		return classify(op, err)
	}
	if previous == nil {
		return nil
	}

	if err := s.store.Remove(*previous); err != nil {
		return domain.StorageIO(op, err)
	}

	return nil
}

// FetchImage returns the wizard's stored image. A wizard without an image
// yields a NotFound error wrapping domain.ErrNoAttachment.
func (s *WizardService) FetchImage(ctx context.Context, id int64) (*domain.Attachment, error) {
	const op = "fetch image"

	wizard, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, classify(op, err)
	}
	if wizard.ImageName == nil {
		return nil, domain.NotFound(op, domain.ErrNoAttachment)
	}

	content, err := s.store.Read(*wizard.ImageName)
	if err != nil {
		return nil, domain.StorageIO(op, err)
	}

	return &domain.Attachment{Name: *wizard.ImageName, Content: content}, nil
}

// gate turns a failed existence probe into NotFound before any mutation.
func (s *WizardService) gate(ctx context.Context, op string, id int64) error {
	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		return domain.Persistence(op, err)
	}
	if !exists {
		return domain.NotFound(op, nil)
	}
	return nil
}

func classify(op string, err error) error {
	if errors.Is(err, domain.ErrWizardNotFound) {
		return domain.NotFound(op, nil)
	}
	return domain.Persistence(op, err)
}

func validate(op string, req domain.CreateWizard) (domain.CreateWizard, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Title = strings.TrimSpace(req.Title)

	if req.Name == "" {
		return req, domain.BadRequest(op, "name is required")
	}
	if req.Title == "" {
		return req, domain.BadRequest(op, "title is required")
	}

	return req, nil
}
