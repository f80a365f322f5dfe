package recordapi

import (
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/linearflow/linearflow/pkg/iam/auth"
	"github.com/linearflow/linearflow/pkg/kernel"
	"github.com/linearflow/linearflow/tracker/record"
	"github.com/linearflow/linearflow/tracker/record/recordsrv"
)

// Handlers provides HTTP handlers for record operations
type Handlers struct {
	service  *recordsrv.RecordService
	validate *validator.Validate
}

// NewHandlers creates a new record handlers instance
func NewHandlers(service *recordsrv.RecordService) *Handlers {
	return &Handlers{
		service:  service,
		validate: validator.New(),
	}
}

// CreateRecord creates a new application record
// POST /api/records
func (h *Handlers) CreateRecord(c *fiber.Ctx) error {
	authContext, ok := auth.GetAuthContext(c)
	if !ok {
		return auth.ErrMissingToken()
	}

	var req record.CreateRecordRequest
	if err := c.BodyParser(&req); err != nil {
		return record.ErrInvalidRequest().WithDetail("parse_error", err.Error())
	}

	if err := h.validate.Struct(req); err != nil {
		return record.ErrValidationFailed().WithDetail("validation_error", err.Error())
	}

	newRecord, err := h.service.CreateRecord(c.Context(), authContext.UserID, req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(newRecord.ToResponse())
}

// GetRecord retrieves one record by ID
// GET /api/records/:id
func (h *Handlers) GetRecord(c *fiber.Ctx) error {
	authContext, ok := auth.GetAuthContext(c)
	if !ok {
		return auth.ErrMissingToken()
	}

	recordID := kernel.RecordID(c.Params("id"))
	if recordID.IsEmpty() {
		return record.ErrRecordNotFound().WithDetail("id", "missing or empty")
	}

	rec, err := h.service.GetRecord(c.Context(), authContext.UserID, recordID)
	if err != nil {
		return err
	}

	return c.JSON(rec)
}

// ListRecords retrieves the user's records with pagination
// GET /api/records
func (h *Handlers) ListRecords(c *fiber.Ctx) error {
	authContext, ok := auth.GetAuthContext(c)
	if !ok {
		return auth.ErrMissingToken()
	}

	pagination := parsePaginationOptions(c)

	records, err := h.service.ListRecords(c.Context(), authContext.UserID, pagination)
	if err != nil {
		return err
	}

	return c.JSON(records)
}

// UpdateRecord applies field edits to a record
// PUT /api/records/:id
func (h *Handlers) UpdateRecord(c *fiber.Ctx) error {
	authContext, ok := auth.GetAuthContext(c)
	if !ok {
		return auth.ErrMissingToken()
	}

	recordID := kernel.RecordID(c.Params("id"))
	if recordID.IsEmpty() {
		return record.ErrRecordNotFound().WithDetail("id", "missing or empty")
	}

	var req record.UpdateRecordRequest
	if err := c.BodyParser(&req); err != nil {
		return record.ErrInvalidRequest().WithDetail("parse_error", err.Error())
	}

	if err := h.validate.Struct(req); err != nil {
		return record.ErrValidationFailed().WithDetail("validation_error", err.Error())
	}

	updatedRecord, err := h.service.UpdateRecord(c.Context(), authContext.UserID, recordID, req)
	if err != nil {
		return err
	}

	return c.JSON(updatedRecord.ToResponse())
}

// MoveStage changes the pipeline stage of a record
// PATCH /api/records/:id/stage
func (h *Handlers) MoveStage(c *fiber.Ctx) error {
	authContext, ok := auth.GetAuthContext(c)
	if !ok {
		return auth.ErrMissingToken()
	}

	recordID := kernel.RecordID(c.Params("id"))
	if recordID.IsEmpty() {
		return record.ErrRecordNotFound().WithDetail("id", "missing or empty")
	}

	var req record.MoveStageRequest
	if err := c.BodyParser(&req); err != nil {
		return record.ErrInvalidRequest().WithDetail("parse_error", err.Error())
	}

	if err := h.validate.Struct(req); err != nil {
		return record.ErrValidationFailed().WithDetail("validation_error", err.Error())
	}

	result, err := h.service.UpdateStage(c.Context(), authContext.UserID, recordID, req.Stage)
	if err != nil {
		return err
	}

	return c.JSON(result)
}

// DeleteRecord deletes a record
// DELETE /api/records/:id
func (h *Handlers) DeleteRecord(c *fiber.Ctx) error {
	authContext, ok := auth.GetAuthContext(c)
	if !ok {
		return auth.ErrMissingToken()
	}

	recordID := kernel.RecordID(c.Params("id"))
	if recordID.IsEmpty() {
		return record.ErrRecordNotFound().WithDetail("id", "missing or empty")
	}

	if err := h.service.DeleteRecord(c.Context(), authContext.UserID, recordID); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// UploadAttachment attaches a document to a record
// POST /api/records/:id/attachment
func (h *Handlers) UploadAttachment(c *fiber.Ctx) error {
	authContext, ok := auth.GetAuthContext(c)
	if !ok {
		return auth.ErrMissingToken()
	}

	recordID := kernel.RecordID(c.Params("id"))
	if recordID.IsEmpty() {
		return record.ErrRecordNotFound().WithDetail("id", "missing or empty")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return record.ErrInvalidRequest().WithDetail("file_error", err.Error())
	}

	src, err := file.Open()
	if err != nil {
		return record.ErrInvalidRequest().WithDetail("file_error", err.Error())
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return record.ErrInvalidRequest().WithDetail("file_error", err.Error())
	}

	result, err := h.service.UploadAttachment(c.Context(), authContext.UserID, record.UploadAttachmentRequest{
		RecordID:    recordID,
		FileData:    data,
		FileName:    file.Filename,
		FileSize:    file.Size,
		ContentType: file.Header.Get("Content-Type"),
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

// DownloadAttachment streams a record's stored document
// GET /api/records/:id/attachment
func (h *Handlers) DownloadAttachment(c *fiber.Ctx) error {
	authContext, ok := auth.GetAuthContext(c)
	if !ok {
		return auth.ErrMissingToken()
	}

	recordID := kernel.RecordID(c.Params("id"))
	if recordID.IsEmpty() {
		return record.ErrRecordNotFound().WithDetail("id", "missing or empty")
	}

	stream, filename, err := h.service.DownloadAttachment(c.Context(), authContext.UserID, recordID)
	if err != nil {
		return err
	}

	c.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	return c.SendStream(stream)
}

// parsePaginationOptions reads page/page_size query params
func parsePaginationOptions(c *fiber.Ctx) kernel.PaginationOptions {
	return kernel.PaginationOptions{
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", 20),
	}.Normalize()
}

// RegisterRoutes registers record routes
func RegisterRoutes(app *fiber.App, handlers *Handlers, authMiddleware *auth.TokenMiddleware) {
	api := app.Group("/api/records")

	api.Get("/",
		authMiddleware.Authenticate(),
		handlers.ListRecords,
	)

	api.Get("/:id",
		authMiddleware.Authenticate(),
		handlers.GetRecord,
	)

	api.Post("/",
		authMiddleware.Authenticate(),
		handlers.CreateRecord,
	)

	api.Put("/:id",
		authMiddleware.Authenticate(),
		handlers.UpdateRecord,
	)

	api.Patch("/:id/stage",
		authMiddleware.Authenticate(),
		handlers.MoveStage,
	)

	api.Delete("/:id",
		authMiddleware.Authenticate(),
		handlers.DeleteRecord,
	)

	api.Post("/:id/attachment",
		authMiddleware.Authenticate(),
		handlers.UploadAttachment,
	)

	api.Get("/:id/attachment",
		authMiddleware.Authenticate(),
		handlers.DownloadAttachment,
	)
}
