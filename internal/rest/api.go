package rest

import (
	"context"

	"github.com/dfryer1193/wizardry/wizard/domain"
	"github.com/gin-gonic/gin"
)

// WizardService is what the handlers need from the application layer.
type WizardService interface {
	Create(ctx context.Context, req domain.CreateWizard) (*domain.Wizard, error)
	GetAll(ctx context.Context) ([]*domain.Wizard, error)
	GetByID(ctx context.Context, id int64) (*domain.Wizard, error)
	Update(ctx context.Context, id int64, req domain.CreateWizard) (*domain.Wizard, error)
	Delete(ctx context.Context, id int64) error
	AttachImage(ctx context.Context, id int64, upload domain.Upload) (string, error)
	RemoveAttachment(ctx context.Context, id int64) error
	FetchImage(ctx context.Context, id int64) (*domain.Attachment, error)
}

// NewApi registers the wizard routes and serves stored images from
// filesDir under /files.
func NewApi(router *gin.Engine, handler *WizardHandler, filesDir string) {
	wizards := router.Group("/wizards")
	{
		wizards.POST("", handler.CreateWizard)
		wizards.GET("", handler.GetWizards)
		wizards.GET("/:id", handler.GetWizard)
		wizards.PUT("/:id", handler.UpdateWizard)
		wizards.DELETE("/:id", handler.DeleteWizard)

		wizards.POST("/:id/image", handler.UploadImage)
		wizards.GET("/:id/image", handler.GetImage)
		wizards.DELETE("/:id/image", handler.DeleteImage)
	}

	if filesDir != "" {
		router.Static("/files", filesDir)
	}
}
