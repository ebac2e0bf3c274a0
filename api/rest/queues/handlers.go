package queues

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"codeberg.org/pixelpress/server/internal/auth"
	"codeberg.org/pixelpress/server/internal/credits"
	"codeberg.org/pixelpress/server/internal/errors"
	"codeberg.org/pixelpress/server/internal/imagegen"
	"codeberg.org/pixelpress/server/internal/queue"
)

// ListHandler godoc
// @Summary List the account's queues
// @Description Returns one queue per template with items, run progress and estimated time remaining
// @Tags queues
// @Produce json
// @Success 200 {object} ListResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/queues [get]
// @Security BearerAuth
func ListHandler(manager *queue.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		views, err := manager.Snapshots(c.Request.Context(), userID)
		if err != nil {
			errors.InternalError(c, "failed to load queues", err)
			return
		}

		c.JSON(http.StatusOK, ListResponse{Queues: views})
	}
}

// GetHandler godoc
// @Summary Get one queue
// @Tags queues
// @Produce json
// @Param template path string true "Template type (blog or infographic)"
// @Success 200 {object} queue.View
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /api/v1/queues/{template} [get]
// @Security BearerAuth
func GetHandler(manager *queue.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, ok := resolveQueue(c, manager)
		if !ok {
			return
		}

		c.JSON(http.StatusOK, q.Snapshot())
	}
}

// AddItemHandler godoc
// @Summary Add an item to a queue
// @Description Appends a pending item; the body is optional and may prefill fields
// @Tags queues
// @Accept json
// @Produce json
// @Param template path string true "Template type"
// @Param request body ItemRequest false "Initial fields"
// @Success 201 {object} ItemResponse
// @Failure 400 {object} errors.ErrorResponse
// @Router /api/v1/queues/{template}/items [post]
// @Security BearerAuth
func AddItemHandler(manager *queue.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, ok := resolveQueue(c, manager)
		if !ok {
			return
		}

		var req ItemRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				errors.ValidationError(c, err)
				return
			}
		}

		itemID := q.AddItem(req.Fields)
		c.JSON(http.StatusCreated, ItemResponse{ItemID: itemID, Queue: q.Snapshot()})
	}
}

// UpdateItemHandler godoc
// @Summary Replace an item's fields
// @Description Rejected while a run is active; a failed item returns to pending
// @Tags queues
// @Accept json
// @Produce json
// @Param template path string true "Template type"
// @Param id path string true "Item ID"
// @Param request body ItemRequest true "Fields"
// @Success 200 {object} queue.View
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /api/v1/queues/{template}/items/{id} [put]
// @Security BearerAuth
func UpdateItemHandler(manager *queue.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, ok := resolveQueue(c, manager)
		if !ok {
			return
		}

		var req ItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		if err := q.UpdateItemFields(c.Param("id"), req.Fields); err != nil {
			writeQueueError(c, err)
			return
		}

		c.JSON(http.StatusOK, q.Snapshot())
	}
}

// RemoveItemHandler godoc
// @Summary Remove an item
// @Description The item currently being generated cannot be removed
// @Tags queues
// @Produce json
// @Param template path string true "Template type"
// @Param id path string true "Item ID"
// @Success 200 {object} queue.View
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /api/v1/queues/{template}/items/{id} [delete]
// @Security BearerAuth
func RemoveItemHandler(manager *queue.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, ok := resolveQueue(c, manager)
		if !ok {
			return
		}

		if err := q.RemoveItem(c.Param("id")); err != nil {
			writeQueueError(c, err)
			return
		}

		c.JSON(http.StatusOK, q.Snapshot())
	}
}

// StartRunHandler godoc
// @Summary Submit the queue as a batch
// @Description Debits the batch cost once and starts sequential generation
// @Tags queues
// @Produce json
// @Param template path string true "Template type"
// @Success 202 {object} RunResponse
// @Failure 402 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /api/v1/queues/{template}/run [post]
// @Security BearerAuth
func StartRunHandler(manager *queue.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		t, err := imagegen.ParseTemplateType(c.Param("template"))
		if err != nil {
			errors.BadRequest(c, "unknown template type", err)
			return
		}

		runID, err := manager.StartRun(c.Request.Context(), userID, t)
		if err != nil {
			writeQueueError(c, err)
			return
		}

		q, err := manager.Queue(c.Request.Context(), userID, t)
		if err != nil {
			errors.InternalError(c, "failed to load queue", err)
			return
		}

		c.JSON(http.StatusAccepted, RunResponse{RunID: runID, Queue: q.Snapshot()})
	}
}

// CancelRunHandler godoc
// @Summary Cancel the active run
// @Description The item in flight finishes; no further items start
// @Tags queues
// @Produce json
// @Param template path string true "Template type"
// @Success 200 {object} queue.View
// @Failure 400 {object} errors.ErrorResponse
// @Router /api/v1/queues/{template}/run [delete]
// @Security BearerAuth
func CancelRunHandler(manager *queue.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, ok := resolveQueue(c, manager)
		if !ok {
			return
		}

		if err := q.CancelRun(); err != nil {
			writeQueueError(c, err)
			return
		}

		c.JSON(http.StatusOK, q.Snapshot())
	}
}

// ClearHandler godoc
// @Summary Remove every item
// @Tags queues
// @Param template path string true "Template type"
// @Success 204
// @Failure 409 {object} errors.ErrorResponse
// @Router /api/v1/queues/{template} [delete]
// @Security BearerAuth
func ClearHandler(manager *queue.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, ok := resolveQueue(c, manager)
		if !ok {
			return
		}

		if err := q.Clear(); err != nil {
			writeQueueError(c, err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}

func resolveQueue(c *gin.Context, manager *queue.Manager) (*queue.Queue, bool) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		errors.Unauthorized(c, "")
		return nil, false
	}

	t, err := imagegen.ParseTemplateType(c.Param("template"))
	if err != nil {
		errors.BadRequest(c, "unknown template type", err)
		return nil, false
	}

	q, err := manager.Queue(c.Request.Context(), userID, t)
	if err != nil {
		errors.InternalError(c, "failed to load queue", err)
		return nil, false
	}

	return q, true
}

func writeQueueError(c *gin.Context, err error) {
	var insufficient *queue.InsufficientCreditsError

	switch {
	case stderrors.As(err, &insufficient):
		errors.PaymentRequired(c, fmt.Sprintf("this batch costs %d credits but your balance is %d", insufficient.Required, insufficient.Available))
	case stderrors.Is(err, queue.ErrNoValidItems):
		errors.Unprocessable(c, errors.CodeNoValidItems, "no items have all required fields filled in")
	case stderrors.Is(err, queue.ErrRunActive):
		errors.Conflict(c, errors.CodeRunActive, "a bulk run is already in progress")
	case stderrors.Is(err, queue.ErrQueueRunning):
		errors.Conflict(c, errors.CodeQueueRunning, "items cannot be changed while the queue is running")
	case stderrors.Is(err, queue.ErrItemInFlight):
		errors.Conflict(c, errors.CodeQueueRunning, "the item is being generated and cannot be removed")
	case stderrors.Is(err, queue.ErrNoActiveRun):
		errors.InvalidOperation(c, "there is no active run to cancel")
	case stderrors.Is(err, queue.ErrItemNotFound):
		errors.NotFound(c, "item")
	case stderrors.Is(err, queue.ErrCreditDebitFailed):
		errors.InternalError(c, "credits could not be deducted; the batch was not started", err)
	case stderrors.Is(err, credits.ErrAccountNotFound):
		errors.NotFound(c, "account")
	default:
		errors.InternalError(c, "queue operation failed", err)
	}
}
