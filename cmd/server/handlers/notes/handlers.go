package notes

import (
	"context"

	"noteshare/cmd/server/handlers/handlerutil"
	"noteshare/internal/services/notes"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Service defines the interface for notes service
type Service interface {
	Create(ctx context.Context, userID bson.ObjectID, req notes.CreateNoteRequest) (*notes.NoteResponse, error)
	Update(ctx context.Context, userID, noteID bson.ObjectID, req notes.UpdateNoteRequest) (*notes.NoteResponse, error)
	Delete(ctx context.Context, userID, noteID bson.ObjectID) error
	Feed(ctx context.Context, req notes.FeedRequest) (*notes.FeedResponse, error)
	ListByOwner(ctx context.Context, ownerID bson.ObjectID) (*notes.ProfileNotesResponse, error)
	ListByUsername(ctx context.Context, username string) (*notes.ProfileNotesResponse, error)
	Get(ctx context.Context, viewerID, noteID bson.ObjectID) (*notes.NoteDetail, error)
	Rate(ctx context.Context, userID, noteID bson.ObjectID, score int) (*notes.RatingSummary, error)
	AddComment(ctx context.Context, userID bson.ObjectID, username string, noteID bson.ObjectID, text string) (*notes.CommentResponse, error)
	DeleteComment(ctx context.Context, userID, commentID bson.ObjectID) error
}

var (
	noteNotFound    = handlerutil.Mapping{Err: notes.ErrNoteNotFound, Status: fiber.StatusNotFound}
	commentNotFound = handlerutil.Mapping{Err: notes.ErrCommentNotFound, Status: fiber.StatusNotFound}
	userNotFound    = handlerutil.Mapping{Err: notes.ErrUserNotFound, Status: fiber.StatusNotFound}
	forbidden       = handlerutil.Mapping{Err: notes.ErrForbidden, Status: fiber.StatusForbidden}
	emptyTitle      = handlerutil.Mapping{Err: notes.ErrEmptyTitle, Status: fiber.StatusBadRequest}
	emptyComment    = handlerutil.Mapping{Err: notes.ErrEmptyComment, Status: fiber.StatusBadRequest}
	invalidScore    = handlerutil.Mapping{Err: notes.ErrInvalidScore, Status: fiber.StatusBadRequest}
	fileTooLarge    = handlerutil.Mapping{Err: notes.ErrFileTooLarge, Status: fiber.StatusBadRequest}
)

// Handlers contains the notes HTTP handlers
type Handlers struct {
	service   Service
	validator *validator.Validate
}

// NewHandlers creates new notes handlers
func NewHandlers(service Service, validator *validator.Validate) *Handlers {
	return &Handlers{
		service:   service,
		validator: validator,
	}
}

// Feed handles the public home listing
// @Summary List notes, optionally searched or sorted
// @Description With q set, notes are ranked by relevance and sort is ignored.
// @Tags feed
// @Produce json
// @Param q query string false "Search term"
// @Param sort query string false "recent|oldest|most_viewed|top_rated (default recent)"
// @Success 200 {object} notes.FeedResponse
// @Failure 400 {object} httperr.E
// @Router /feed [get]
func (h *Handlers) Feed(c *fiber.Ctx) error {
	var req notes.FeedRequest
	if err := handlerutil.ParseAndValidateQuery(c, &req, h.validator, "Feed"); err != nil {
		return err
	}

	resp, err := h.service.Feed(c.Context(), req)
	if err != nil {
		return handlerutil.HandleServiceError(c, err, "Feed")
	}

	return c.JSON(resp)
}

// ListByUsername handles the public profile listing
// @Summary List a user's notes, newest first
// @Tags feed
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} notes.ProfileNotesResponse
// @Failure 404 {object} httperr.E
// @Router /users/{username}/notes [get]
func (h *Handlers) ListByUsername(c *fiber.Ctx) error {
	resp, err := h.service.ListByUsername(c.Context(), c.Params("username"))
	if err != nil {
		return handlerutil.HandleServiceError(c, err, "ListByUsername", userNotFound)
	}

	return c.JSON(resp)
}

// Mine handles the caller's own profile listing
// @Summary List my notes, newest first
// @Tags notes
// @Produce json
// @Security Bearer
// @Success 200 {object} notes.ProfileNotesResponse
// @Failure 401 {object} httperr.E
// @Router /notes/mine [get]
func (h *Handlers) Mine(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	resp, err := h.service.ListByOwner(c.Context(), userID)
	if err != nil {
		return handlerutil.HandleServiceError(c, err, "Mine")
	}

	return c.JSON(resp)
}

// Create handles note creation
// @Summary Create a new note
// @Tags notes
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body notes.CreateNoteRequest true "Create note request"
// @Success 201 {object} notes.NoteResponse
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Router /notes [post]
func (h *Handlers) Create(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	var req notes.CreateNoteRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "Create"); err != nil {
		return err
	}

	resp, err := h.service.Create(c.Context(), userID, req)
	if err != nil {
		return handlerutil.HandleServiceError(c, err, "Create", emptyTitle, fileTooLarge)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Get handles the note page. The first visit by a user counts as a view.
// @Summary Get a note with its rating and comments
// @Tags notes
// @Produce json
// @Security Bearer
// @Param id path string true "Note ID"
// @Success 200 {object} notes.NoteDetail
// @Failure 401 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Router /notes/{id} [get]
func (h *Handlers) Get(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	noteID, err := handlerutil.ObjectIDParam(c, "id", "Get", notes.ErrNoteNotFound)
	if err != nil {
		return err
	}

	resp, err := h.service.Get(c.Context(), userID, noteID)
	if err != nil {
		return handlerutil.HandleServiceError(c, err, "Get", noteNotFound)
	}

	return c.JSON(resp)
}

// Update handles note updates
// @Summary Update a note
// @Tags notes
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Note ID"
// @Param request body notes.UpdateNoteRequest true "Update note request"
// @Success 200 {object} notes.NoteResponse
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Router /notes/{id} [patch]
func (h *Handlers) Update(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	noteID, err := handlerutil.ObjectIDParam(c, "id", "Update", notes.ErrNoteNotFound)
	if err != nil {
		return err
	}

	var req notes.UpdateNoteRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "Update"); err != nil {
		return err
	}

	resp, err := h.service.Update(c.Context(), userID, noteID, req)
	if err != nil {
		return handlerutil.HandleServiceError(c, err, "Update", noteNotFound, emptyTitle, fileTooLarge)
	}

	return c.JSON(resp)
}

// Delete handles note deletion
// @Summary Delete a note with its ratings and comments
// @Tags notes
// @Security Bearer
// @Param id path string true "Note ID"
// @Success 204
// @Failure 401 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Router /notes/{id} [delete]
func (h *Handlers) Delete(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	noteID, err := handlerutil.ObjectIDParam(c, "id", "Delete", notes.ErrNoteNotFound)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Context(), userID, noteID); err != nil {
		return handlerutil.HandleServiceError(c, err, "Delete", noteNotFound)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Rate handles a rating change
// @Summary Rate a note 1-5, or 0 to remove the rating
// @Tags notes
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Note ID"
// @Param request body notes.RateRequest true "Score"
// @Success 200 {object} notes.RatingSummary
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Router /notes/{id}/rating [post]
func (h *Handlers) Rate(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	noteID, err := handlerutil.ObjectIDParam(c, "id", "Rate", notes.ErrNoteNotFound)
	if err != nil {
		return err
	}

	var req notes.RateRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "Rate"); err != nil {
		return err
	}

	resp, err := h.service.Rate(c.Context(), userID, noteID, *req.Score)
	if err != nil {
		return handlerutil.HandleServiceError(c, err, "Rate", noteNotFound, invalidScore)
	}

	return c.JSON(resp)
}

// AddComment handles a new comment
// @Summary Comment on a note
// @Tags comments
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Note ID"
// @Param request body notes.CommentRequest true "Comment"
// @Success 201 {object} notes.CommentResponse
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Router /notes/{id}/comments [post]
func (h *Handlers) AddComment(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	noteID, err := handlerutil.ObjectIDParam(c, "id", "AddComment", notes.ErrNoteNotFound)
	if err != nil {
		return err
	}

	var req notes.CommentRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "AddComment"); err != nil {
		return err
	}

	resp, err := h.service.AddComment(c.Context(), userID, handlerutil.GetUsername(c), noteID, req.Text)
	if err != nil {
		return handlerutil.HandleServiceError(c, err, "AddComment", noteNotFound, emptyComment)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// DeleteComment handles comment removal by its author or the note owner
// @Summary Delete a comment
// @Tags comments
// @Security Bearer
// @Param id path string true "Comment ID"
// @Success 204
// @Failure 401 {object} httperr.E
// @Failure 403 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Router /comments/{id} [delete]
func (h *Handlers) DeleteComment(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	commentID, err := handlerutil.ObjectIDParam(c, "id", "DeleteComment", notes.ErrCommentNotFound)
	if err != nil {
		return err
	}

	if err := h.service.DeleteComment(c.Context(), userID, commentID); err != nil {
		return handlerutil.HandleServiceError(c, err, "DeleteComment", commentNotFound, forbidden)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
