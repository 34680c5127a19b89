package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/restaurant-till/middlewares"
	"github.com/yeremiapane/restaurant-till/models"
	"github.com/yeremiapane/restaurant-till/services"
	"github.com/yeremiapane/restaurant-till/utils"
)

func TestOrderLifecycleOverHTTP(t *testing.T) {
	s := setupTestServer(t)
	staff := token(t, 1, middlewares.RoleStaff)
	chef := token(t, 1, middlewares.RoleChef)
	cashier := token(t, 1, middlewares.RoleCashier)

	w, resp := s.call(t, http.MethodPost, "/api/orders", staff, sampleOrder)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Order created", resp.Message)
	var order models.Order
	dataInto(t, resp, &order)
	assert.Equal(t, int64(3500), order.TotalAmount)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	base := fmt.Sprintf("/api/orders/%d", order.ID)

	// finalizing before the kitchen is done is stale
	w, resp = s.call(t, http.MethodPost, base+"/finalize", cashier, map[string]string{"payment_method": "cash"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "invalid_transition", resp.Code)
	assert.Equal(t, utils.ActionRefresh, resp.Action)

	w, _ = s.call(t, http.MethodPost, base+"/ready", chef, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, resp = s.call(t, http.MethodPut, base+"/items", staff, sampleOrder)
	assert.Equal(t, http.StatusLocked, w.Code)
	assert.Equal(t, "order_locked", resp.Code)

	w, resp = s.call(t, http.MethodPost, base+"/finalize", cashier, map[string]string{"payment_method": "orange_money"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result services.FinalizeResult
	dataInto(t, resp, &result)
	assert.Equal(t, models.OrderStatusClosed, result.Order.Status)
	assert.Equal(t, int64(3500), result.Transaction.Amount)
	assert.Equal(t, models.PaymentMethodOrangeMoney, result.Transaction.PaymentMethod)

	w, resp = s.call(t, http.MethodPost, base+"/finalize", cashier, map[string]string{"payment_method": "cash"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "already_closed", resp.Code)

	w, resp = s.call(t, http.MethodGet, base+"/transaction", cashier, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var txn models.Transaction
	dataInto(t, resp, &txn)
	assert.Equal(t, result.Transaction.ID, txn.ID)
}

func TestFinalizeEmptyBodyDefaultsToCash(t *testing.T) {
	s := setupTestServer(t)
	staff := token(t, 1, middlewares.RoleStaff)

	_, resp := s.call(t, http.MethodPost, "/api/orders", staff, sampleOrder)
	var order models.Order
	dataInto(t, resp, &order)
	base := fmt.Sprintf("/api/orders/%d", order.ID)

	w, _ := s.call(t, http.MethodPost, base+"/ready", staff, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, resp = s.call(t, http.MethodPost, base+"/finalize", staff, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result services.FinalizeResult
	dataInto(t, resp, &result)
	assert.Equal(t, models.PaymentMethodCash, result.Transaction.PaymentMethod)
}

func TestFinalizeRejectsUnknownMethod(t *testing.T) {
	s := setupTestServer(t)
	staff := token(t, 1, middlewares.RoleStaff)

	_, resp := s.call(t, http.MethodPost, "/api/orders", staff, sampleOrder)
	var order models.Order
	dataInto(t, resp, &order)

	w, resp := s.call(t, http.MethodPost, fmt.Sprintf("/api/orders/%d/finalize", order.ID), staff,
		map[string]string{"payment_method": "bitcoin"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_input", resp.Code)
}

func TestCreateOrderValidation(t *testing.T) {
	s := setupTestServer(t)
	staff := token(t, 1, middlewares.RoleStaff)

	w, resp := s.call(t, http.MethodPost, "/api/orders", staff, map[string]interface{}{"items": []interface{}{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_input", resp.Code)

	w, _ = s.call(t, http.MethodPost, "/api/orders", staff, map[string]interface{}{
		"items": []map[string]interface{}{{"name": "Eau", "unit_price": 300, "quantity": 0}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderAccessAcrossTenants(t *testing.T) {
	s := setupTestServer(t)

	_, resp := s.call(t, http.MethodPost, "/api/orders", token(t, 1, middlewares.RoleStaff), sampleOrder)
	var order models.Order
	dataInto(t, resp, &order)

	other := token(t, 2, middlewares.RoleStaff)
	w, resp := s.call(t, http.MethodGet, fmt.Sprintf("/api/orders/%d", order.ID), other, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "access_denied", resp.Code)

	w, _ = s.call(t, http.MethodGet, "/api/orders/9999", other, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = s.call(t, http.MethodGet, "/api/orders/abc", other, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCancelOrderOverHTTP(t *testing.T) {
	s := setupTestServer(t)
	staff := token(t, 1, middlewares.RoleStaff)

	_, resp := s.call(t, http.MethodPost, "/api/orders", staff, sampleOrder)
	var order models.Order
	dataInto(t, resp, &order)
	path := fmt.Sprintf("/api/orders/%d/cancel", order.ID)

	w, _ := s.call(t, http.MethodPost, path, staff, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.call(t, http.MethodPost, path, staff, map[string]string{"reason": "client parti"})
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.call(t, http.MethodGet, fmt.Sprintf("/api/orders/%d", order.ID), staff, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthAndRoles(t *testing.T) {
	s := setupTestServer(t)

	w, _ := s.call(t, http.MethodGet, "/api/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.call(t, http.MethodGet, "/api/orders", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// chefs may not take payment or see the till
	chef := token(t, 1, middlewares.RoleChef)
	w, _ = s.call(t, http.MethodPost, "/api/orders", chef, sampleOrder)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = s.call(t, http.MethodGet, "/api/till/reconciliation", chef, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin := token(t, 1, middlewares.RoleAdmin)
	w, _ = s.call(t, http.MethodGet, "/api/till/reconciliation", admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, resp := s.call(t, http.MethodGet, "/api/payment-methods", chef, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp.Data, len(models.KnownPaymentMethods))
}
