package assistant

import (
	"context"

	"noteshare/cmd/server/handlers/handlerutil"
	"noteshare/internal/services/assistant"
	"noteshare/internal/services/notes"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Service is the study assistant
type Service interface {
	Status(ctx context.Context, noteID bson.ObjectID) (*assistant.StatusResponse, error)
	Chat(ctx context.Context, userID bson.ObjectID, req assistant.ChatRequest) (*assistant.ChatResponse, error)
}

var (
	noteNotFound = handlerutil.Mapping{Err: notes.ErrNoteNotFound, Status: fiber.StatusNotFound}
	emptyMessage = handlerutil.Mapping{Err: assistant.ErrEmptyMessage, Status: fiber.StatusBadRequest}
	disabled     = handlerutil.Mapping{Err: assistant.ErrAssistantDisabled, Status: fiber.StatusServiceUnavailable}
	upstream     = handlerutil.Mapping{Err: assistant.ErrChat, Status: fiber.StatusBadGateway}
)

// Handlers contains the assistant HTTP handlers
type Handlers struct {
	service   Service
	validator *validator.Validate
}

// NewHandlers creates new assistant handlers
func NewHandlers(service Service, validator *validator.Validate) *Handlers {
	return &Handlers{service: service, validator: validator}
}

// Status handles the attachment diagnostic
// @Summary Check whether a note's file can be used by the assistant
// @Tags assistant
// @Produce json
// @Security Bearer
// @Param id path string true "Note ID"
// @Success 200 {object} assistant.StatusResponse
// @Failure 401 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Router /notes/{id}/assistant [get]
func (h *Handlers) Status(c *fiber.Ctx) error {
	noteID, err := handlerutil.ObjectIDParam(c, "id", "AssistantStatus", notes.ErrNoteNotFound)
	if err != nil {
		return err
	}

	resp, err := h.service.Status(c.Context(), noteID)
	if err != nil {
		return handlerutil.HandleServiceError(c, err, "AssistantStatus", noteNotFound)
	}

	return c.JSON(resp)
}

// Chat handles a question about a note
// @Summary Ask the assistant about a note
// @Tags assistant
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body assistant.ChatRequest true "Question"
// @Success 200 {object} assistant.ChatResponse
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Failure 502 {object} httperr.E
// @Failure 503 {object} httperr.E
// @Router /assistant/chat [post]
func (h *Handlers) Chat(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	var req assistant.ChatRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "AssistantChat"); err != nil {
		return err
	}

	resp, err := h.service.Chat(c.Context(), userID, req)
	if err != nil {
		return handlerutil.HandleServiceError(c, err, "AssistantChat", emptyMessage, disabled, noteNotFound, upstream)
	}

	return c.JSON(resp)
}
