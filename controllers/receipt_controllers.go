package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-till/middlewares"
	"github.com/yeremiapane/restaurant-till/models"
	"github.com/yeremiapane/restaurant-till/services"
	"github.com/yeremiapane/restaurant-till/utils"
)

type ReceiptController struct {
	Engine *services.OrderEngine
	Ledger *services.LedgerStore
}

func NewReceiptController(engine *services.OrderEngine, ledger *services.LedgerStore) *ReceiptController {
	return &ReceiptController{Engine: engine, Ledger: ledger}
}

// GenerateReceipt membuat struk untuk order yang sudah ditutup
func (rc *ReceiptController) GenerateReceipt(c *gin.Context) {
	id, ok := paramID(c, "order_id")
	if !ok {
		return
	}
	ctx, tenantID := c.Request.Context(), middlewares.TenantID(c)

	order, err := rc.Engine.GetOrder(ctx, tenantID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if order.Status != models.OrderStatusClosed {
		utils.RespondFailure(c, http.StatusConflict, "order_not_closed", utils.ActionRefresh, services.ErrInvalidTransition)
		return
	}
	txn, err := rc.Ledger.TransactionForOrder(ctx, tenantID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	receipt := models.NewReceipt(order, txn)
	utils.RespondJSON(c, http.StatusOK, "Receipt generated", gin.H{
		"receipt":       receipt,
		"total_display": utils.FormatAmount(receipt.Total),
	})
}
