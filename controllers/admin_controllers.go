package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-till/middlewares"
	"github.com/yeremiapane/restaurant-till/models"
	"github.com/yeremiapane/restaurant-till/services"
	"github.com/yeremiapane/restaurant-till/utils"
)

type AdminController struct {
	Orders *services.OrderEngine
	Tables *services.TableAggregator
	Till   *services.TillService
}

func NewAdminController(core *services.Core) *AdminController {
	return &AdminController{Orders: core.Orders, Tables: core.Tables, Till: core.Till}
}

type DashboardStats struct {
	Today       *services.Reconciliation `json:"today"`
	OrderStats  map[string]int64         `json:"order_stats"`
	TableStats  map[string]int64         `json:"table_stats"`
	OpenAmount  int64                    `json:"open_amount"`
	Takeaway    int                      `json:"takeaway_open"`
	NetDisplay  string                   `json:"net_cash_display"`
	GeneratedAt time.Time                `json:"generated_at"`
}

// GetDashboardStats mengambil statistik untuk dashboard hari ini
func (ac *AdminController) GetDashboardStats(c *gin.Context) {
	ctx, tenantID := c.Request.Context(), middlewares.TenantID(c)
	now := time.Now()

	from, to, err := services.PeriodWindow(services.PeriodDaily, now, ac.Till.Location())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	today, err := ac.Till.Reconcile(ctx, tenantID, from, to)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	orderStats, err := ac.Orders.CountByStatus(ctx, tenantID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	floor, err := ac.Tables.FloorStatus(ctx, tenantID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	stats := DashboardStats{
		Today:      today,
		OrderStats: orderStats,
		TableStats: map[string]int64{
			models.TableStatusFree:          0,
			models.TableStatusOccupied:      0,
			models.TableStatusBillRequested: 0,
		},
		Takeaway:    len(floor.Takeaway),
		NetDisplay:  utils.FormatAmount(today.NetCash),
		GeneratedAt: now.UTC(),
	}
	for _, t := range floor.Tables {
		stats.TableStats[t.Status]++
		stats.OpenAmount += t.OpenAmount
	}
	for _, o := range floor.Takeaway {
		stats.OpenAmount += o.TotalAmount
	}

	utils.RespondJSON(c, http.StatusOK, "Dashboard stats retrieved successfully", stats)
}

type orderFlowEntry struct {
	OrderID     uint      `json:"order_id"`
	Reference   string    `json:"reference"`
	TableID     *uint     `json:"table_id"`
	TotalAmount int64     `json:"total"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	WaitMinutes int       `json:"wait_minutes"`
	Items       int       `json:"items"`
}

// GetOrderFlow memantau order yang masih terbuka, dikelompokkan per status
func (ac *AdminController) GetOrderFlow(c *gin.Context) {
	orders, err := ac.Orders.ListOrders(c.Request.Context(), middlewares.TenantID(c), services.OrderFilter{OpenOnly: true})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	now := time.Now()
	flow := map[string][]orderFlowEntry{
		models.OrderStatusPending: {},
		models.OrderStatusReady:   {},
	}
	for _, o := range orders {
		flow[o.Status] = append(flow[o.Status], orderFlowEntry{
			OrderID:     o.ID,
			Reference:   o.Reference,
			TableID:     o.TableID,
			TotalAmount: o.TotalAmount,
			Status:      o.Status,
			CreatedAt:   o.CreatedAt,
			WaitMinutes: int(now.Sub(o.CreatedAt).Minutes()),
			Items:       len(o.LineItems),
		})
	}

	utils.RespondJSON(c, http.StatusOK, "Order flow status", flow)
}
