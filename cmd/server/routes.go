package main

import (
	"github.com/gin-gonic/gin"

	"spot-deposits.backend/internal/interfaces/http/handlers"
)

type routeDeps struct {
	depositHandler *handlers.DepositHandler
	authMiddleware gin.HandlerFunc
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Finance routes (protected)
		finance := v1.Group("/finance")
		finance.Use(d.authMiddleware)
		{
			finance.GET("/currency/:type/:code/:method", d.depositHandler.GetDepositAddress)
			finance.GET("/deposit/spot", d.depositHandler.WatchDeposits)
		}
	}
}
