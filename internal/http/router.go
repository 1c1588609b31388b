package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter(handler *Handler, authMiddleware gin.HandlerFunc, env string) *gin.Engine {
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"*"},
		ExposeHeaders:   []string{"Content-Type"},
		MaxAge:          12 * time.Hour,
	}))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := router.Group("/auth")
	{
		auth.POST("/login", handler.login)
		auth.POST("/password-reset/request", handler.requestPasswordReset)
		auth.POST("/password-reset/confirm", handler.resetPassword)
	}

	protected := router.Group("/api/v1")
	protected.Use(authMiddleware)
	{
		protected.GET("/trips", handler.listTrips)
		protected.POST("/trips", handler.createTrip)
		protected.GET("/trips/:id", handler.getTrip)
		protected.POST("/trips/:id/assign", handler.assignTrip)
		protected.POST("/trips/:id/start", handler.startTrip)
		protected.POST("/trips/:id/complete", handler.completeTrip)
		protected.POST("/trips/:id/cancel", handler.cancelTrip)
		protected.POST("/trips/:id/delay", handler.markTripDelayed)
		protected.DELETE("/trips/:id/delay", handler.clearTripDelay)
		protected.GET("/trips/:id/history", handler.tripHistory)

		protected.GET("/maintenance", handler.listMaintenance)
		protected.POST("/maintenance", handler.scheduleMaintenance)
		protected.GET("/maintenance/:id", handler.getMaintenance)
		protected.POST("/maintenance/:id/start", handler.startMaintenance)
		protected.POST("/maintenance/:id/complete", handler.completeMaintenance)
		protected.POST("/maintenance/:id/cancel", handler.cancelMaintenance)
		protected.POST("/maintenance/:id/postpone", handler.postponeMaintenance)
		protected.POST("/maintenance/:id/reschedule", handler.rescheduleMaintenance)
		protected.POST("/maintenance/:id/approvals", handler.approveMaintenance)
		protected.GET("/maintenance/:id/history", handler.maintenanceHistory)

		protected.GET("/alerts", handler.listAlerts)
		protected.POST("/alerts", handler.createAlert)
		protected.GET("/alerts/:id", handler.getAlert)
		protected.POST("/alerts/:id/acknowledge", handler.acknowledgeAlert)
		protected.POST("/alerts/:id/resolve", handler.resolveAlert)
		protected.POST("/alerts/:id/dismiss", handler.dismissAlert)
		protected.POST("/alerts/expire-due", handler.expireDueAlerts)
		protected.GET("/alerts/:id/history", handler.alertHistory)

		protected.GET("/vehicles", handler.listVehicles)
		protected.POST("/vehicles", handler.createVehicle)
		protected.GET("/vehicles/:id", handler.getVehicle)
		protected.PATCH("/vehicles/:id", handler.updateVehicle)
		protected.PUT("/vehicles/:id/driver", handler.assignVehicleDriver)

		protected.GET("/drivers", handler.listDrivers)
		protected.POST("/drivers", handler.createDriver)
		protected.GET("/drivers/:id", handler.getDriver)
		protected.PATCH("/drivers/:id", handler.updateDriver)

		protected.GET("/actors", handler.listActors)
		protected.POST("/actors", handler.createActor)
		protected.GET("/actors/:id", handler.getActor)
		protected.POST("/actors/:id/deactivate", handler.deactivateActor)
		protected.POST("/actors/:id/unlock", handler.unlockActor)
	}

	return router
}
