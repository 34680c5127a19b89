package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-till/middlewares"
	"github.com/yeremiapane/restaurant-till/services"
	"github.com/yeremiapane/restaurant-till/utils"
)

type LedgerController struct {
	Ledger *services.LedgerStore
	Till   *services.TillService
}

func NewLedgerController(ledger *services.LedgerStore, till *services.TillService) *LedgerController {
	return &LedgerController{Ledger: ledger, Till: till}
}

// CreateExpense -> catat pengeluaran (Loyer, Énergie, ...)
func (lc *LedgerController) CreateExpense(c *gin.Context) {
	var body services.ExpenseInput
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBindError(c, err)
		return
	}
	expense, err := lc.Ledger.RecordExpense(c.Request.Context(), middlewares.TenantID(c), body)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Expense recorded", expense)
}

func (lc *LedgerController) GetExpenses(c *gin.Context) {
	from, to, ok := windowFromQuery(c, lc.Till)
	if !ok {
		return
	}
	expenses, err := lc.Ledger.ListExpenses(c.Request.Context(), middlewares.TenantID(c), from, to, pageFromQuery(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of expenses", expenses)
}

func (lc *LedgerController) GetTransactions(c *gin.Context) {
	from, to, ok := windowFromQuery(c, lc.Till)
	if !ok {
		return
	}
	txns, err := lc.Ledger.ListTransactions(c.Request.Context(), middlewares.TenantID(c), from, to, pageFromQuery(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of transactions", txns)
}

// pageFromQuery reads ?limit and ?offset; bad values fall back to the
// service defaults.
func pageFromQuery(c *gin.Context) services.Page {
	var page services.Page
	page.Limit, _ = strconv.Atoi(c.Query("limit"))
	page.Offset, _ = strconv.Atoi(c.Query("offset"))
	return page
}

// RefundTransaction -> koreksi lewat entri pengeluaran kompensasi
func (lc *LedgerController) RefundTransaction(c *gin.Context) {
	id, ok := paramID(c, "transaction_id")
	if !ok {
		return
	}
	var body struct {
		Amount int64  `json:"amount" binding:"required,gt=0"`
		Reason string `json:"reason" binding:"required,max=200"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBindError(c, err)
		return
	}
	refund, err := lc.Ledger.RecordRefund(c.Request.Context(), middlewares.TenantID(c), id, body.Amount, body.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Refund recorded", refund)
}
