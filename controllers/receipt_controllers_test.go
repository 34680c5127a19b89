package controllers_test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/restaurant-till/middlewares"
	"github.com/yeremiapane/restaurant-till/models"
)

func TestGenerateReceipt(t *testing.T) {
	s := setupTestServer(t)
	cashier := token(t, 1, middlewares.RoleCashier)
	staff := token(t, 1, middlewares.RoleStaff)

	_, resp := s.call(t, http.MethodPost, "/api/orders", cashier, sampleOrder)
	var order models.Order
	dataInto(t, resp, &order)
	path := fmt.Sprintf("/api/orders/%d/receipt", order.ID)

	w, resp := s.call(t, http.MethodGet, path, cashier, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "order_not_closed", resp.Code)

	w, _ = s.call(t, http.MethodPost, fmt.Sprintf("/api/orders/%d/ready", order.ID), staff, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = s.call(t, http.MethodPost, fmt.Sprintf("/api/orders/%d/finalize", order.ID), cashier, map[string]string{"payment_method": "mtn_momo"})
	require.Equal(t, http.StatusOK, w.Code)

	w, resp = s.call(t, http.MethodGet, path, cashier, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body struct {
		Receipt      models.Receipt `json:"receipt"`
		TotalDisplay string         `json:"total_display"`
	}
	dataInto(t, resp, &body)
	assert.True(t, strings.HasPrefix(body.Receipt.Number, "RCP/"))
	assert.Equal(t, order.Reference, body.Receipt.OrderReference)
	assert.Equal(t, int64(3500), body.Receipt.Total)
	assert.Equal(t, "mtn_momo", body.Receipt.PaymentMethod)
	require.Len(t, body.Receipt.Items, 2)
	assert.Equal(t, int64(1000), body.Receipt.Items[1].Subtotal)
	assert.Equal(t, "3.500 F", body.TotalDisplay)

	w, _ = s.call(t, http.MethodGet, path, token(t, 2, middlewares.RoleCashier), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
