package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-till/config"
	"github.com/yeremiapane/restaurant-till/controllers"
	"github.com/yeremiapane/restaurant-till/kds"
	"github.com/yeremiapane/restaurant-till/middlewares"
	"github.com/yeremiapane/restaurant-till/services"
	"github.com/yeremiapane/restaurant-till/utils"
)

func SetupRouter(core *services.Core, hub *kds.Hub, cfg *config.Config) *gin.Engine {
	controllers.RegisterValidators()

	r := gin.New()
	if err := r.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		utils.ErrorLogger.Printf("Invalid trusted proxies: %v", err)
	}

	r.Use(
		middlewares.Recovery(),
		middlewares.RequestID(),
		middlewares.LoggerMiddleware(),
		middlewares.SecurityHeaders(),
		middlewares.CORSMiddlewares(cfg.CORS),
		middlewares.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst).RateLimit(),
	)

	r.GET("/health", func(c *gin.Context) {
		utils.RespondJSON(c, http.StatusOK, "OK", nil)
	})

	orderCtrl := controllers.NewOrderController(core.Orders, core.Ledger)
	tableCtrl := controllers.NewTableController(core.Tables)
	ledgerCtrl := controllers.NewLedgerController(core.Ledger, core.Till)
	tillCtrl := controllers.NewTillController(core.Till)
	kdsCtrl := controllers.NewKDSController(hub, cfg.CORS.AllowOrigins)
	receiptCtrl := controllers.NewReceiptController(core.Orders, core.Ledger)
	adminCtrl := controllers.NewAdminController(core)

	// websocket memakai token dari query string
	r.GET("/ws/kds", middlewares.WebSocketAuthMiddleware(), kdsCtrl.KDSHandler)

	api := r.Group("/api")
	api.Use(middlewares.AuthMiddleware())
	{
		api.GET("/payment-methods", controllers.PaymentMethods)

		orders := api.Group("/orders")
		{
			orders.GET("", orderCtrl.GetAllOrders)
			orders.GET("/:order_id", orderCtrl.GetOrderByID)
			orders.GET("/:order_id/transaction", orderCtrl.GetOrderTransaction)
			orders.GET("/:order_id/receipt", middlewares.RequireRole(middlewares.RoleCashier, middlewares.RoleStaff), receiptCtrl.GenerateReceipt)
			orders.POST("", middlewares.RequireRole(middlewares.RoleStaff, middlewares.RoleCashier), orderCtrl.CreateOrder)
			orders.PUT("/:order_id/items", middlewares.RequireRole(middlewares.RoleStaff, middlewares.RoleCashier), orderCtrl.UpdateOrderItems)
			orders.POST("/:order_id/ready", middlewares.RequireRole(middlewares.RoleChef, middlewares.RoleStaff), orderCtrl.MarkReady)
			orders.POST("/:order_id/finalize", middlewares.RequireRole(middlewares.RoleCashier, middlewares.RoleStaff), orderCtrl.FinalizeOrder)
			orders.POST("/:order_id/cancel", middlewares.RequireRole(middlewares.RoleStaff, middlewares.RoleCashier), orderCtrl.CancelOrder)
		}

		tables := api.Group("/tables")
		{
			tables.GET("/status", tableCtrl.GetFloor)
			tables.GET("/:table_id/status", tableCtrl.GetTableStatus)
			tables.GET("", tableCtrl.GetAllTables)
			tables.POST("", middlewares.RequireRole(), tableCtrl.CreateTable)
			tables.DELETE("/:table_id", middlewares.RequireRole(), tableCtrl.DeleteTable)
		}

		ledger := api.Group("/ledger", middlewares.RequireRole(middlewares.RoleCashier))
		{
			ledger.GET("/transactions", ledgerCtrl.GetTransactions)
			ledger.POST("/transactions/:transaction_id/refund", ledgerCtrl.RefundTransaction)
			ledger.GET("/expenses", ledgerCtrl.GetExpenses)
			ledger.POST("/expenses", ledgerCtrl.CreateExpense)
		}

		till := api.Group("/till", middlewares.RequireRole(middlewares.RoleCashier))
		{
			till.GET("/reconciliation", tillCtrl.GetReconciliation)
			till.GET("/history", tillCtrl.GetHistory)
			till.GET("/closings", tillCtrl.GetClosings)
			till.GET("/closings/:date", tillCtrl.GetClosing)
			till.POST("/closings", tillCtrl.CloseDay)
		}

		admin := api.Group("/admin", middlewares.RequireRole())
		{
			admin.GET("/dashboard", adminCtrl.GetDashboardStats)
			admin.GET("/order-flow", adminCtrl.GetOrderFlow)
		}
	}

	return r
}
