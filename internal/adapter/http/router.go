package http

import (
	"github.com/gin-gonic/gin"
	"github.com/janarabaya/Nursery-Management-System-sub000/internal/adapter/http/middleware"
	"github.com/janarabaya/Nursery-Management-System-sub000/internal/logging"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(oh *OrderHandler, rh *ResolutionHandler, ih *InventoryHandler,
	th *TokenHandler, authz *middleware.Authz) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.MetricsMiddleware())

	l := logging.New("http")
	r.Use(middleware.Logging(l))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/v1/token", th.IssueToken)

	v1 := r.Group("/v1")
	{
		v1.GET("/orders", authz.Require("orders.read"), oh.ListOrders)
		v1.GET("/orders/problems", authz.Require("orders.read"), oh.ProblemOrders)
		v1.GET("/orders/:id", authz.Require("orders.read"), oh.GetOrderByID)
		v1.POST("/orders/:id/transition", authz.Require("orders.write"), oh.TransitionOrder)
		v1.POST("/orders/:id/remedy", authz.Require("orders.remedy"), rh.Remedy)

		v1.GET("/inventory", authz.Require("inventory.read"), ih.ListEntries)
		v1.GET("/inventory/:id", authz.Require("inventory.read"), ih.GetEntry)
		v1.GET("/catalog", authz.Require("orders.read"), ih.ListPlants)
	}

	return r
}
