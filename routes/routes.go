package routes

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"dorm-backend/controllers"
	"dorm-backend/middleware"
)

func parseCorsOrigins() []string {
	raw := strings.TrimSpace(os.Getenv("CORS_ORIGINS"))
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// SetupRouter wires the controller instances into the route table.
func SetupRouter(
	sc *controllers.StudentController,
	rc *controllers.RoomController,
	ac *controllers.AccommodationController,
	pc *controllers.PaymentController,
	stc *controllers.StatsController,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger())

	origins := parseCorsOrigins()
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", controllers.Login)
		}

		students := api.Group("/students")
		{
			students.GET("", sc.List)

			// must be registered before /:id
			students.GET("/available", sc.ListAvailable)

			students.GET("/:id", sc.Get)
			students.GET("/:id/roommates", sc.Roommates)
			students.GET("/:id/coursemates", sc.Coursemates)
			students.POST("", sc.Create)
			students.PUT("/:id", sc.Update)
			students.DELETE("/:id", sc.Delete)
		}

		rooms := api.Group("/rooms")
		{
			rooms.GET("", rc.List)
			rooms.GET("/available", rc.ListAvailable)
			rooms.GET("/:id/residents", rc.Residents)
			rooms.POST("", rc.Create)
			rooms.POST("/:id/clear", rc.Clear)
			rooms.PUT("/:id", rc.Update)
			rooms.DELETE("/:id", rc.Delete)
		}

		accommodation := api.Group("/accommodation")
		{
			accommodation.GET("", ac.List)
			accommodation.POST("", ac.MoveIn)
			accommodation.POST("/:id/transfer", ac.Transfer)
			accommodation.PUT("/:id/checkout", ac.Checkout)
		}

		payments := api.Group("/payments")
		{
			payments.GET("", pc.List)
			payments.GET("/debtors", pc.ListDebtors)
			payments.POST("", pc.Create)
			payments.POST("/:id/confirm", pc.Confirm)
			payments.POST("/:id/partial", pc.Partial)
			payments.PUT("/:id", pc.Update)
			payments.DELETE("/:id", pc.Delete)
		}

		api.GET("/statistics", stc.Overview)

		analytics := api.Group("/analytics")
		{
			analytics.GET("/top-debtors", stc.TopDebtors)
			analytics.GET("/floors", stc.Floors)
		}
	}

	return r
}
