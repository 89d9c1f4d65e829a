package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"mountainshares.backend/internal/interfaces/http/handlers"
)

type routeDeps struct {
	webhookHandler     *handlers.WebhookHandler
	settlementHandler  *handlers.SettlementHandler
	feeHandler         *handlers.FeeHandler
	safetyStockHandler *handlers.SafetyStockHandler
	alertHandler       *handlers.AlertHandler
	opsAuthMiddleware  gin.HandlerFunc
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Webhook intake (authenticated by signature, not by ops token)
		webhooks := v1.Group("/webhooks")
		{
			webhooks.POST("/stripe", d.webhookHandler.HandleStripeWebhook)
		}

		// Purchase pricing (public, used by the checkout frontend)
		fees := v1.Group("/fees")
		{
			fees.POST("/quote", d.feeHandler.QuotePurchase)
		}

		// Operator routes (protected)
		ops := v1.Group("")
		ops.Use(d.opsAuthMiddleware)
		{
			ops.GET("/settlements", d.settlementHandler.ListSettlements)
			ops.GET("/settlements/:id", d.settlementHandler.GetSettlement)
			ops.GET("/settlements/:id/transfers", d.settlementHandler.GetSettlementTransfers)

			ops.POST("/fee-transfers/:id/retry", d.feeHandler.RetryFeeTransfer)

			ops.GET("/safety-stock", d.safetyStockHandler.GetStatus)

			ops.GET("/alerts", d.alertHandler.ListAlerts)
			ops.POST("/alerts/:id/ack", d.alertHandler.AcknowledgeAlert)
		}
	}
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "mountainshares-backend",
		})
	})
}

func registerMetricsRoute(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func applyCORSMiddleware(r *gin.Engine) {
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Ops-Token, Stripe-Signature, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}
