package http

import (
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
		ExposeHeaders:   []string{"Content-Type", "Content-Disposition"},
		MaxAge:          12 * time.Hour,
	}))

	router.GET("/healthz", handler.healthz)

	public := router.Group("/api/v1")
	{
		public.POST("/auth/register", handler.register)
		public.POST("/auth/login", handler.login)
	}

	protected := router.Group("/api/v1")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", handler.me)
		protected.GET("/dashboard", handler.dashboard)

		protected.GET("/catalog/emergency-types", handler.listEmergencyTypes)
		protected.GET("/catalog/utility-types", handler.listUtilityTypes)

		protected.GET("/emergencies", handler.listEmergencies)
		protected.GET("/emergencies/map", handler.emergencyMap)
		protected.GET("/emergencies/:id", handler.getEmergency)
		protected.POST("/emergencies", handler.submitEmergency)
		protected.POST("/emergencies/:id/assign", handler.assignVehicle)
		protected.POST("/emergencies/:id/cancel", handler.cancelEmergency)
		protected.PUT("/dispatches/:id/status", handler.updateDispatchStatus)

		protected.GET("/vehicles", handler.listVehicles)
		protected.POST("/vehicles", handler.createVehicle)
		protected.PATCH("/vehicles/:id", handler.updateVehicle)
		protected.DELETE("/vehicles/:id", handler.deleteVehicle)

		protected.GET("/complaints", handler.listComplaints)
		protected.GET("/complaints/code/:code", handler.getComplaintByCode)
		protected.GET("/complaints/:id", handler.getComplaint)
		protected.POST("/complaints", handler.submitComplaint)
		protected.POST("/complaints/:id/assign", handler.assignComplaint)
		protected.PUT("/complaints/:id/status", handler.updateComplaintStatus)
		protected.POST("/complaints/:id/escalate", handler.escalateComplaint)
		protected.POST("/complaints/:id/rating", handler.rateComplaint)

		protected.DELETE("/staff/:id", handler.deleteStaff)
		protected.GET("/reports/requests.xlsx", handler.exportRequests)
	}

	return router
}
