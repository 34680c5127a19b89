package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-till/middlewares"
	"github.com/yeremiapane/restaurant-till/services"
	"github.com/yeremiapane/restaurant-till/utils"
)

type TableController struct {
	Aggregator *services.TableAggregator
}

func NewTableController(aggregator *services.TableAggregator) *TableController {
	return &TableController{Aggregator: aggregator}
}

// GetFloor -> status semua meja + order takeaway yang masih terbuka
func (tc *TableController) GetFloor(c *gin.Context) {
	floor, err := tc.Aggregator.FloorStatus(c.Request.Context(), middlewares.TenantID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Floor status", floor)
}

// GetTableStatus -> status satu meja beserta order terbuka
func (tc *TableController) GetTableStatus(c *gin.Context) {
	id, ok := paramID(c, "table_id")
	if !ok {
		return
	}
	view, err := tc.Aggregator.TableStatus(c.Request.Context(), middlewares.TenantID(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table status", view)
}

func (tc *TableController) GetAllTables(c *gin.Context) {
	tables, err := tc.Aggregator.ListTables(c.Request.Context(), middlewares.TenantID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

func (tc *TableController) CreateTable(c *gin.Context) {
	var body services.TableInput
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBindError(c, err)
		return
	}
	table, err := tc.Aggregator.CreateTable(c.Request.Context(), middlewares.TenantID(c), body)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Table created", table)
}

func (tc *TableController) DeleteTable(c *gin.Context) {
	id, ok := paramID(c, "table_id")
	if !ok {
		return
	}
	if err := tc.Aggregator.DeleteTable(c.Request.Context(), middlewares.TenantID(c), id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table deleted", nil)
}
