// Package routes wires the HTTP surface of the API.
package routes

import (
	"slices"
	"time"

	"github.com/bluebay-mechanical/field-service-api/config"
	"github.com/bluebay-mechanical/field-service-api/controllers"
	"github.com/bluebay-mechanical/field-service-api/metrics"
	"github.com/bluebay-mechanical/field-service-api/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRouter builds the gin engine for cfg. A nil limiter disables rate
// limiting.
func SetupRouter(cfg *config.Config, limiter *middleware.RateLimiter) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.Metrics(),
		cors.New(corsConfig(cfg)),
	)

	router.GET("/health", controllers.HealthCheck)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	if cfg.StorageDriver == "local" {
		router.Static("/storage", cfg.StorageLocalDir)
	}

	v1 := router.Group("/api/v1")
	v1.Use(middleware.Authenticate(cfg))
	if limiter != nil {
		v1.Use(limiter.Handler())
	}
	v1.Use(middleware.RequireScopeForWrites(cfg.Auth0WriteScope))

	registerAPI(v1)
	return router
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.DefaultConfig()
	if len(cfg.CORSAllowedOrigins) == 0 || slices.Contains(cfg.CORSAllowedOrigins, "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.CORSAllowedOrigins
		c.AllowCredentials = true
	}
	c.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"}
	c.ExposeHeaders = []string{"Content-Disposition", "X-Request-ID"}
	c.MaxAge = 12 * time.Hour
	return c
}

func registerAPI(v1 *gin.RouterGroup) {
	v1.GET("/health", controllers.HealthCheck)
	v1.GET("/database/status", controllers.DatabaseStatus)
	v1.GET("/user", controllers.GetCurrentUser)
	v1.GET("/dashboard", controllers.GetDashboard)

	crud(v1, "/clients", controllers.ListClients, controllers.CreateClient,
		controllers.GetClient, controllers.UpdateClient, controllers.DeleteClient)
	crud(v1, "/technicians", controllers.ListTechnicians, controllers.CreateTechnician,
		controllers.GetTechnician, controllers.UpdateTechnician, controllers.DeleteTechnician)
	crud(v1, "/scheduling", controllers.ListScheduling, controllers.CreateScheduling,
		controllers.GetScheduling, controllers.UpdateScheduling, controllers.DeleteScheduling)
	crud(v1, "/work-orders", controllers.ListWorkOrders, controllers.CreateWorkOrder,
		controllers.GetWorkOrder, controllers.UpdateWorkOrder, controllers.DeleteWorkOrder)
	for _, prefix := range []string{"/inventory", "/inventories"} {
		crud(v1, prefix, controllers.ListInventory, controllers.CreateInventory,
			controllers.GetInventory, controllers.UpdateInventory, controllers.DeleteInventory)
	}
	crud(v1, "/inventory-transactions", controllers.ListInventoryTransactions, controllers.CreateInventoryTransaction,
		controllers.GetInventoryTransaction, controllers.UpdateInventoryTransaction, controllers.DeleteInventoryTransaction)

	// static segments before :id
	v1.GET("/billing/stats", controllers.GetBillingStats)
	v1.GET("/billing/:id/pdf", controllers.DownloadBillingPDF)
	v1.GET("/billing/:id/preview", controllers.PreviewBilling)
	crud(v1, "/billing", controllers.ListBilling, controllers.CreateBilling,
		controllers.GetBilling, controllers.UpdateBilling, controllers.DeleteBilling)
	crud(v1, "/billing-line-items", controllers.ListBillingLineItems, controllers.CreateBillingLineItem,
		controllers.GetBillingLineItem, controllers.UpdateBillingLineItem, controllers.DeleteBillingLineItem)

	crud(v1, "/notifications", controllers.ListNotifications, controllers.CreateNotification,
		controllers.GetNotification, controllers.UpdateNotification, controllers.DeleteNotification)
	crud(v1, "/service-history", controllers.ListServiceHistory, controllers.CreateServiceHistory,
		controllers.GetServiceHistory, controllers.UpdateServiceHistory, controllers.DeleteServiceHistory)

	photos := v1.Group("/work-order-photos")
	{
		photos.GET("", controllers.ListWorkOrderPhotos)
		photos.POST("", controllers.UploadWorkOrderPhoto)
		photos.GET("/:id", controllers.GetWorkOrderPhoto)
		photos.DELETE("/:id", controllers.DeleteWorkOrderPhoto)
	}
}

// crud registers the five resource routes under prefix. PATCH is accepted
// alongside PUT.
func crud(g *gin.RouterGroup, prefix string, list, create, show, update, destroy gin.HandlerFunc) {
	r := g.Group(prefix)
	r.GET("", list)
	r.POST("", create)
	r.GET("/:id", show)
	r.PUT("/:id", update)
	r.PATCH("/:id", update)
	r.DELETE("/:id", destroy)
}
