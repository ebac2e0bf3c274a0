package generate

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"codeberg.org/pixelpress/server/internal/auth"
	"codeberg.org/pixelpress/server/internal/credits"
	"codeberg.org/pixelpress/server/internal/errors"
	"codeberg.org/pixelpress/server/internal/imagegen"
	"codeberg.org/pixelpress/server/internal/logger"
	"codeberg.org/pixelpress/server/internal/notifications"
)

// Handler godoc
// @Summary Generate one image
// @Description Debits the per-item cost and calls the image webhook directly, outside any queue
// @Tags generate
// @Accept json
// @Produce json
// @Param request body Request true "Template and fields"
// @Success 200 {object} Response
// @Failure 400 {object} errors.ErrorResponse
// @Failure 402 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /api/v1/generate [post]
// @Security BearerAuth
func Handler(generator imagegen.Generator, ledger credits.Ledger, log notifications.Log) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		var req Request
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		t, err := imagegen.ParseTemplateType(req.TemplateType)
		if err != nil {
			errors.BadRequest(c, "unknown template type", err)
			return
		}

		if missing := t.MissingFields(req.Fields); len(missing) > 0 {
			errors.BadRequest(c, "missing required fields: "+strings.Join(missing, ", "), nil)
			return
		}

		ctx := c.Request.Context()
		cost := t.Cost()

		balance, err := ledger.Balance(ctx, userID)
		if stderrors.Is(err, credits.ErrAccountNotFound) {
			errors.NotFound(c, "account")
			return
		}

		if err != nil {
			errors.InternalError(c, "failed to read credit balance", err)
			return
		}

		if balance < cost {
			errors.PaymentRequired(c, fmt.Sprintf("this image costs %d credits but your balance is %d", cost, balance))
			return
		}

		debited, err := ledger.Debit(ctx, userID, cost, string(t), t.ImageType()+" generation")
		if err != nil {
			errors.InternalError(c, "failed to deduct credits", err)
			return
		}

		if !debited {
			errors.PaymentRequired(c, "insufficient credits")
			return
		}

		image, err := generator.Generate(ctx, t, req.Fields)
		if err != nil {
			message := imagegen.FailureMessage(err)

			logger.Warn("single generation failed",
				"user_id", userID,
				"template", t,
				"error", err,
			)

			notify(ctx, log, userID, &notifications.CreateRequest{
				Kind:    notifications.KindError,
				Title:   "Image generation failed",
				Message: message,
				Data:    map[string]any{"templateType": string(t)},
			})

			errors.BadGateway(c, message, err)
			return
		}

		notificationID := notify(ctx, log, userID, &notifications.CreateRequest{
			Kind:    notifications.KindSuccess,
			Title:   "Image ready",
			Message: fmt.Sprintf("Your %s image was generated.", t.ImageType()),
			Data: map[string]any{
				"templateType": string(t),
				"imageCount":   1,
			},
		})

		c.JSON(http.StatusOK, Response{
			Image:          image,
			TemplateType:   string(t),
			Cost:           cost,
			NotificationID: notificationID,
		})
	}
}

func notify(ctx context.Context, log notifications.Log, userID string, req *notifications.CreateRequest) string {
	id, err := log.Notify(ctx, userID, req)
	if err != nil {
		logger.ErrorErr(err, "failed to record notification",
			"user_id", userID,
			"title", req.Title,
		)
	}

	return id
}
