package boardapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/linearflow/linearflow/pkg/iam/auth"
	"github.com/linearflow/linearflow/pkg/kernel"
	"github.com/linearflow/linearflow/tracker/board/boardsrv"
	"github.com/linearflow/linearflow/tracker/record"
)

// Handlers provides HTTP handlers for the kanban board
type Handlers struct {
	service *boardsrv.BoardService
}

// NewHandlers creates a new board handlers instance
func NewHandlers(service *boardsrv.BoardService) *Handlers {
	return &Handlers{
		service: service,
	}
}

// GetBoard renders the user's board grouped by stage
// GET /api/board
func (h *Handlers) GetBoard(c *fiber.Ctx) error {
	authContext, ok := auth.GetAuthContext(c)
	if !ok {
		return auth.ErrMissingToken()
	}

	board, err := h.service.Board(c.Context(), authContext.UserID)
	if err != nil {
		return err
	}

	return c.JSON(board)
}

// RefreshBoard reloads the user's board from the store
// POST /api/board/refresh
func (h *Handlers) RefreshBoard(c *fiber.Ctx) error {
	authContext, ok := auth.GetAuthContext(c)
	if !ok {
		return auth.ErrMissingToken()
	}

	if err := h.service.Refresh(c.Context(), authContext.UserID); err != nil {
		return err
	}

	board, err := h.service.Board(c.Context(), authContext.UserID)
	if err != nil {
		return err
	}

	return c.JSON(board)
}

// moveCardRequest - DTO for dragging a card to another column
type moveCardRequest struct {
	RecordID string `json:"record_id" validate:"required"`
	Stage    string `json:"stage" validate:"required"`
}

// MoveCard moves one card through the optimistic coordinator
// POST /api/board/move
func (h *Handlers) MoveCard(c *fiber.Ctx) error {
	authContext, ok := auth.GetAuthContext(c)
	if !ok {
		return auth.ErrMissingToken()
	}

	var req moveCardRequest
	if err := c.BodyParser(&req); err != nil {
		return record.ErrInvalidRequest().WithDetail("parse_error", err.Error())
	}
	if req.RecordID == "" {
		return record.ErrInvalidRequest().WithDetail("record_id", "missing or empty")
	}

	result, err := h.service.Move(
		c.Context(),
		authContext.UserID,
		kernel.RecordID(req.RecordID),
		req.Stage,
	)
	if err != nil {
		return err
	}

	return c.JSON(result)
}

// RegisterRoutes registers board routes
func RegisterRoutes(app *fiber.App, handlers *Handlers, authMiddleware *auth.TokenMiddleware) {
	api := app.Group("/api/board")

	api.Get("/",
		authMiddleware.Authenticate(),
		handlers.GetBoard,
	)

	api.Post("/refresh",
		authMiddleware.Authenticate(),
		handlers.RefreshBoard,
	)

	api.Post("/move",
		authMiddleware.Authenticate(),
		handlers.MoveCard,
	)
}
