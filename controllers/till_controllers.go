package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-till/middlewares"
	"github.com/yeremiapane/restaurant-till/services"
	"github.com/yeremiapane/restaurant-till/utils"
)

type TillController struct {
	Till *services.TillService
}

func NewTillController(till *services.TillService) *TillController {
	return &TillController{Till: till}
}

// windowFromQuery reads ?from=&to= (RFC3339) or ?period=daily|weekly|monthly.
func windowFromQuery(c *gin.Context, till *services.TillService) (time.Time, time.Time, bool) {
	rawFrom, rawTo := c.Query("from"), c.Query("to")
	if rawFrom == "" && rawTo == "" {
		from, to, err := services.PeriodWindow(c.Query("period"), time.Now(), till.Location())
		if err != nil {
			respondServiceError(c, err)
			return time.Time{}, time.Time{}, false
		}
		return from, to, true
	}

	from, err := time.Parse(time.RFC3339, rawFrom)
	if err != nil {
		utils.RespondFailure(c, http.StatusBadRequest, "invalid_input", "", errors.New("from must be RFC3339"))
		return time.Time{}, time.Time{}, false
	}
	to, err := time.Parse(time.RFC3339, rawTo)
	if err != nil {
		utils.RespondFailure(c, http.StatusBadRequest, "invalid_input", "", errors.New("to must be RFC3339"))
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

// GetReconciliation -> posisi kas untuk periode
func (tc *TillController) GetReconciliation(c *gin.Context) {
	from, to, ok := windowFromQuery(c, tc.Till)
	if !ok {
		return
	}
	rec, err := tc.Till.Reconcile(c.Request.Context(), middlewares.TenantID(c), from, to)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	message := "Till reconciliation"
	if rec.Deficit {
		message = "Till reconciliation: expenses exceed receipts"
	}
	utils.RespondJSON(c, http.StatusOK, message, gin.H{
		"reconciliation":   rec,
		"net_cash_display": utils.FormatAmount(rec.NetCash),
	})
}

// GetHistory -> riwayat per jam (hari ini) atau per hari
func (tc *TillController) GetHistory(c *gin.Context) {
	from, to, ok := windowFromQuery(c, tc.Till)
	if !ok {
		return
	}
	history, err := tc.Till.History(c.Request.Context(), middlewares.TenantID(c), from, to)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Till history", history)
}

// CloseDay -> tutup kas untuk satu hari (default: hari ini)
func (tc *TillController) CloseDay(c *gin.Context) {
	var body struct {
		Date string `json:"date"`
	}
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		respondBindError(c, err)
		return
	}

	day := time.Now().In(tc.Till.Location())
	if body.Date != "" {
		parsed, err := time.ParseInLocation("2006-01-02", body.Date, tc.Till.Location())
		if err != nil {
			utils.RespondFailure(c, http.StatusBadRequest, "invalid_input", "", errors.New("date must be YYYY-MM-DD"))
			return
		}
		day = parsed
	}

	closing, err := tc.Till.CloseDay(c.Request.Context(), middlewares.TenantID(c), day)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Till closed", closing)
}

func (tc *TillController) GetClosings(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	closings, err := tc.Till.ListClosings(c.Request.Context(), middlewares.TenantID(c), limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of closings", closings)
}

func (tc *TillController) GetClosing(c *gin.Context) {
	closing, err := tc.Till.GetClosing(c.Request.Context(), middlewares.TenantID(c), c.Param("date"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Closing detail", closing)
}
