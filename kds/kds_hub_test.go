package kds_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/restaurant-till/controllers"
	"github.com/yeremiapane/restaurant-till/kds"
	"github.com/yeremiapane/restaurant-till/middlewares"
	"github.com/yeremiapane/restaurant-till/utils"
)

const allowedOrigin = "https://till.example"

func setupHubServer(t *testing.T) (*kds.Hub, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	utils.InitLogger()

	hub := kds.NewHub()
	r := gin.New()
	r.GET("/ws/kds", middlewares.WebSocketAuthMiddleware(), controllers.NewKDSController(hub, []string{allowedOrigin}).KDSHandler)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return hub, srv
}

func kdsURL(t *testing.T, srv *httptest.Server, tenantID uint) string {
	t.Helper()
	tok, err := utils.GenerateToken(1, tenantID, middlewares.RoleChef)
	require.NoError(t, err)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/kds?token=" + tok
}

func dial(t *testing.T, srv *httptest.Server, tenantID uint) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(kdsURL(t, srv, tenantID), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHubDeliversOnlyToOwnTenant(t *testing.T) {
	hub, srv := setupHubServer(t)

	kitchenA := dial(t, srv, 1)
	kitchenB := dial(t, srv, 2)
	require.Eventually(t, func() bool {
		return hub.ClientCount(1) == 1 && hub.ClientCount(2) == 1
	}, time.Second, 10*time.Millisecond)

	hub.Notify(1, "order_ready", map[string]uint{"order_id": 42})

	kitchenA.SetReadDeadline(time.Now().Add(time.Second))
	_, raw, err := kitchenA.ReadMessage()
	require.NoError(t, err)
	var msg kds.Message
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, uint(1), msg.TenantID)
	assert.Equal(t, "order_ready", msg.Event)

	kitchenB.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err = kitchenB.ReadMessage()
	assert.Error(t, err)
}

func TestHubRejectsMissingToken(t *testing.T) {
	_, srv := setupHubServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/kds"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestHubDropsClosedClients(t *testing.T) {
	hub, srv := setupHubServer(t)

	conn := dial(t, srv, 3)
	require.Eventually(t, func() bool { return hub.ClientCount(3) == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount(3) == 0 }, time.Second, 10*time.Millisecond)
}

func TestHubChecksOrigin(t *testing.T) {
	hub, srv := setupHubServer(t)

	_, resp, err := websocket.DefaultDialer.Dial(kdsURL(t, srv, 4), http.Header{"Origin": {"https://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Zero(t, hub.ClientCount(4))

	conn, _, err := websocket.DefaultDialer.Dial(kdsURL(t, srv, 4), http.Header{"Origin": {allowedOrigin}})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.Eventually(t, func() bool { return hub.ClientCount(4) == 1 }, time.Second, 10*time.Millisecond)
}

func TestHubNotifyDoesNotWaitOnStalledTerminal(t *testing.T) {
	hub, srv := setupHubServer(t)

	// stalled never reads, so its socket and then its queue fill up
	_ = dial(t, srv, 5)
	live := dial(t, srv, 5)
	require.Eventually(t, func() bool { return hub.ClientCount(5) == 2 }, time.Second, 10*time.Millisecond)

	payload := strings.Repeat("x", 64*1024)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			hub.Notify(5, "order_created", payload)
		}
	}()

	live.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := live.ReadMessage()
	require.NoError(t, err)
	var msg kds.Message
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, "order_created", msg.Event)

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("notify blocked on a stalled terminal")
	}
	assert.Less(t, hub.ClientCount(5), 2)
}
