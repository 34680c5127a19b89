package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/restaurant-till/kds"
	"github.com/yeremiapane/restaurant-till/middlewares"
	"github.com/yeremiapane/restaurant-till/utils"
)

type KDSController struct {
	Hub      *kds.Hub
	upgrader websocket.Upgrader
}

// NewKDSController accepts upgrades from the CORS origins only. Terminals
// that send no Origin header (native apps) are let through; the token
// still authenticates them.
func NewKDSController(hub *kds.Hub, allowedOrigins []string) *KDSController {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[strings.ToLower(strings.TrimRight(strings.TrimSpace(o), "/"))] = true
	}
	return &KDSController{
		Hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || allowed["*"] {
					return true
				}
				if allowed[strings.ToLower(strings.TrimRight(origin, "/"))] {
					return true
				}
				utils.ErrorLogger.WithField("origin", origin).Warn("kds: origin rejected")
				return false
			},
		},
	}
}

// KDSHandler -> endpoint WebSocket, terminal hanya menerima event restorannya
func (kc *KDSController) KDSHandler(c *gin.Context) {
	tenantID := middlewares.TenantID(c)
	role := c.GetString(middlewares.CtxRole)
	if tenantID == 0 {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	ws, err := kc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	kc.Hub.RegisterClient(ws, tenantID, role)

	// terminal tidak mengirim apa pun; baca sampai koneksi putus
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	kc.Hub.UnregisterClient(ws)
}
