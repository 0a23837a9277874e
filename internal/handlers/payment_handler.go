package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"

	"optivus-service/internal/consumers"
	"optivus-service/internal/services"
	"optivus-service/internal/worker"
	"optivus-service/pkg/common"
)

// TaskEnqueuer is the slice of asynq.Client the handler needs; a nil
// enqueuer makes distribution run inline, which is how tests exercise the
// full flow without redis.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type PaymentHandler struct {
	Commission *services.CommissionService
	Enqueuer   TaskEnqueuer
}

func NewPaymentHandler(commission *services.CommissionService, enqueuer TaskEnqueuer) *PaymentHandler {
	return &PaymentHandler{Commission: commission, Enqueuer: enqueuer}
}

type PaymentEventRequest struct {
	EventId   string          `json:"eventId" binding:"required"`
	AccountId int             `json:"accountId" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
}

// HandlePaymentEvent is the confirmation callback from the payment
// collaborator. It records the event and activates the account inline, then
// hands commission distribution to the worker queue.
func (h *PaymentHandler) HandlePaymentEvent(c *gin.Context) {
	var req PaymentEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	err := h.Commission.ProcessPaymentEvent(services.PaymentEventData{
		EventId:   req.EventId,
		AccountId: req.AccountId,
		Amount:    req.Amount,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	if h.Enqueuer != nil {
		task, err := worker.NewCommissionDistributionTask(consumers.DistributionDTO{EventId: req.EventId})
		if err != nil {
			abortWithError(c, err)
			return
		}
		if _, err := h.Enqueuer.Enqueue(task, asynq.Queue("critical")); err != nil {
			// The event is recorded; a retried or replayed distribution is
			// idempotent, so fall back to running it inline.
			log.Printf("Enqueue failed for event %s, distributing inline: %v", req.EventId, err)
			if err := h.Commission.Distribute(req.EventId); err != nil {
				abortWithError(c, err)
				return
			}
		}
	} else {
		if err := h.Commission.Distribute(req.EventId); err != nil {
			abortWithError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{"eventId": req.EventId}, "Payment processed"))
}
