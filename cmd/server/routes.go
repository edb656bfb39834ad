package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"rumfor-market.backend/internal/interfaces/http/handlers"
	"rumfor-market.backend/internal/interfaces/http/middleware"
)

type routeDeps struct {
	applicationHandler *handlers.ApplicationHandler
	marketHandler      *handlers.MarketHandler
	authMiddleware     gin.HandlerFunc
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Market catalog (public read)
		markets := v1.Group("/markets")
		{
			markets.GET("", d.marketHandler.List)
			markets.GET("/:id", d.marketHandler.Get)
			markets.GET("/:id/form", d.marketHandler.GetFormSchema)
		}

		// Market management (promoters and admins)
		marketsAdmin := v1.Group("/markets")
		marketsAdmin.Use(d.authMiddleware, middleware.RequireReviewer())
		{
			marketsAdmin.POST("", d.marketHandler.Create)
			marketsAdmin.GET("/:id/applications", d.applicationHandler.ListByMarket)
		}

		// Draft routes (vendors)
		marketDrafts := v1.Group("/markets")
		marketDrafts.Use(d.authMiddleware)
		{
			marketDrafts.GET("/:id/draft", d.applicationHandler.LoadDraft)
			marketDrafts.DELETE("/:id/draft", d.applicationHandler.DiscardDraft)
		}

		// Application routes (protected)
		applications := v1.Group("/applications")
		applications.Use(d.authMiddleware)
		{
			applications.PUT("/draft", d.applicationHandler.SaveDraft)
			applications.POST("/draft/autosave", d.applicationHandler.Autosave)
			applications.POST("/validate-uploads", d.applicationHandler.ValidateUploads)
			applications.POST("", d.applicationHandler.Submit)
			applications.GET("", d.applicationHandler.ListMine)
			applications.GET("/:id", d.applicationHandler.Get)
			applications.POST("/:id/withdraw", d.applicationHandler.Withdraw)
			applications.PATCH("/:id/status", middleware.RequireReviewer(), d.applicationHandler.UpdateStatus)
			applications.PATCH("/bulk-status", middleware.RequireReviewer(), d.applicationHandler.BulkUpdateStatus)
		}
	}
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})
}

func registerMetricsRoute(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func applyCORSMiddleware(r *gin.Engine) {
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}
