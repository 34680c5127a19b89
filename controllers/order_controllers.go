package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-till/middlewares"
	"github.com/yeremiapane/restaurant-till/models"
	"github.com/yeremiapane/restaurant-till/services"
	"github.com/yeremiapane/restaurant-till/utils"
)

type OrderController struct {
	Engine *services.OrderEngine
	Ledger *services.LedgerStore
}

func NewOrderController(engine *services.OrderEngine, ledger *services.LedgerStore) *OrderController {
	return &OrderController{Engine: engine, Ledger: ledger}
}

// GetAllOrders -> list orders, filter ?status=, ?table_id=, ?open=true
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	filter := services.OrderFilter{
		Status:   c.Query("status"),
		OpenOnly: c.Query("open") == "true",
	}
	if raw := c.Query("table_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			utils.RespondFailure(c, http.StatusBadRequest, "invalid_input", "", err)
			return
		}
		tableID := uint(id)
		filter.TableID = &tableID
	}
	if raw := c.Query("limit"); raw != "" {
		filter.Limit, _ = strconv.Atoi(raw)
	}

	orders, err := oc.Engine.ListOrders(c.Request.Context(), middlewares.TenantID(c), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

// CreateOrder -> buat order baru dengan status pending
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var body services.CreateOrderInput
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := oc.Engine.CreateOrder(c.Request.Context(), middlewares.TenantID(c), body)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Order created", order)
}

// GetOrderByID -> detail 1 order
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	id, ok := paramID(c, "order_id")
	if !ok {
		return
	}
	order, err := oc.Engine.GetOrder(c.Request.Context(), middlewares.TenantID(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// UpdateOrderItems -> ganti seluruh item selama order masih pending
func (oc *OrderController) UpdateOrderItems(c *gin.Context) {
	id, ok := paramID(c, "order_id")
	if !ok {
		return
	}
	var body struct {
		Items []services.LineItemInput `json:"items" binding:"required,min=1,dive"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := oc.Engine.EditLineItems(c.Request.Context(), middlewares.TenantID(c), id, body.Items)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order items updated", order)
}

// MarkReady -> dapur selesai menyiapkan order
func (oc *OrderController) MarkReady(c *gin.Context) {
	id, ok := paramID(c, "order_id")
	if !ok {
		return
	}
	order, err := oc.Engine.MarkReady(c.Request.Context(), middlewares.TenantID(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order is ready", order)
}

// FinalizeOrder -> tutup order dan catat pembayaran
func (oc *OrderController) FinalizeOrder(c *gin.Context) {
	id, ok := paramID(c, "order_id")
	if !ok {
		return
	}
	var body struct {
		PaymentMethod string `json:"payment_method" binding:"omitempty,payment_method"`
	}
	// an empty body means cash
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		respondBindError(c, err)
		return
	}

	result, err := oc.Engine.Finalize(c.Request.Context(), middlewares.TenantID(c), id, body.PaymentMethod)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order closed", result)
}

// CancelOrder -> batalkan order yang belum dibayar
func (oc *OrderController) CancelOrder(c *gin.Context) {
	id, ok := paramID(c, "order_id")
	if !ok {
		return
	}
	var body struct {
		Reason string `json:"reason" binding:"required,max=255"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBindError(c, err)
		return
	}

	cancellation, err := oc.Engine.CancelOrder(c.Request.Context(), middlewares.TenantID(c), id, body.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order cancelled", cancellation)
}

// GetOrderTransaction -> transaksi yang tercatat saat order ditutup
func (oc *OrderController) GetOrderTransaction(c *gin.Context) {
	id, ok := paramID(c, "order_id")
	if !ok {
		return
	}
	txn, err := oc.Ledger.TransactionForOrder(c.Request.Context(), middlewares.TenantID(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order transaction", txn)
}

// PaymentMethods lists the methods the till reports on.
func PaymentMethods(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Payment methods", models.KnownPaymentMethods)
}
