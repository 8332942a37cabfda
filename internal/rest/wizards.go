package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dfryer1193/wizardry/api"
	"github.com/dfryer1193/wizardry/wizard/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	msgDeleted      = "Delete successful"
	msgImageRemoved = "Image removed"
	uploadField     = "file"
)

type WizardHandler struct {
	service        WizardService
	maxUploadBytes int64
}

func NewWizardHandler(service WizardService, maxUploadBytes int64) *WizardHandler {
	return &WizardHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
	}
}

func (h *WizardHandler) CreateWizard(c *gin.Context) {
	var req api.WizardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, api.BadRequest[api.Wizard](""))
		return
	}

	wizard, err := h.service.Create(c.Request.Context(), req.ToDomain())
	if err != nil {
		fail[api.Wizard](c, err)
		return
	}

	respond(c, api.OK(api.FromDomain(wizard)))
}

func (h *WizardHandler) GetWizards(c *gin.Context) {
	wizards, err := h.service.GetAll(c.Request.Context())
	if err != nil {
		fail[[]api.Wizard](c, err)
		return
	}

	respond(c, api.OK(api.FromDomainList(wizards)))
}

func (h *WizardHandler) GetWizard(c *gin.Context) {
	id, ok := wizardID[api.Wizard](c)
	if !ok {
		return
	}

	wizard, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		fail[api.Wizard](c, err)
		return
	}

	respond(c, api.OK(api.FromDomain(wizard)))
}

func (h *WizardHandler) UpdateWizard(c *gin.Context) {
	id, ok := wizardID[api.Wizard](c)
	if !ok {
		return
	}

	var req api.WizardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, api.BadRequest[api.Wizard](""))
		return
	}

	wizard, err := h.service.Update(c.Request.Context(), id, req.ToDomain())
	if err != nil {
		fail[api.Wizard](c, err)
		return
	}

	respond(c, api.OK(api.FromDomain(wizard)))
}

func (h *WizardHandler) DeleteWizard(c *gin.Context) {
	id, ok := wizardID[api.Wizard](c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		fail[api.Wizard](c, err)
		return
	}

	respond(c, api.Message[api.Wizard](msgDeleted))
}

func (h *WizardHandler) UploadImage(c *gin.Context) {
	id, ok := wizardID[string](c)
	if !ok {
		return
	}

	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	header, err := c.FormFile(uploadField)
	if err != nil {
		respond(c, api.BadRequest[string](""))
		return
	}

	file, err := header.Open()
	if err != nil {
		respond(c, api.BadRequest[string](""))
		return
	}
	defer file.Close()

	name, err := h.service.AttachImage(c.Request.Context(), id, domain.Upload{
		Filename: header.Filename,
		Content:  file,
	})
	if err != nil {
		fail[string](c, err)
		return
	}

	respond(c, api.OK(name))
}

// GetImage streams the stored image bytes. A wizard without an image gets
// the same not-found envelope as a missing wizard.
func (h *WizardHandler) GetImage(c *gin.Context) {
	id, ok := wizardID[string](c)
	if !ok {
		return
	}

	attachment, err := h.service.FetchImage(c.Request.Context(), id)
	if err != nil {
		fail[string](c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="`+attachment.Name+`"`)
	c.Data(http.StatusOK, http.DetectContentType(attachment.Content), attachment.Content)
}

func (h *WizardHandler) DeleteImage(c *gin.Context) {
	id, ok := wizardID[string](c)
	if !ok {
		return
	}

	if err := h.service.RemoveAttachment(c.Request.Context(), id); err != nil {
		fail[string](c, err)
		return
	}

	respond(c, api.Message[string](msgImageRemoved))
}

func wizardID[T any](c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respond(c, api.BadRequest[T]("invalid wizard id"))
		return 0, false
	}
	return id, true
}

func respond[T any](c *gin.Context, resp api.Response[T]) {
	c.JSON(resp.Code, resp)
}

// fail logs infrastructure failures and answers with the classified envelope.
func fail[T any](c *gin.Context, err error) {
	resp := api.FromError[T](err)
	if resp.Code >= http.StatusInternalServerError {
		log.Error().Err(err).Str("method", c.Request.Method).Str("path", c.Request.URL.Path).Msg("Request failed")
		_ = c.Error(err)
	} else if errors.Is(err, domain.ErrNoAttachment) {
		log.Debug().Str("path", c.Request.URL.Path).Msg("Wizard has no image")
	}
	respond(c, resp)
}
