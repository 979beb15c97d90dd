package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"meera-system/config"
	"meera-system/internal/server/handlers"
	"meera-system/internal/server/middleware"
)

type Deps struct {
	Config config.Config
	Log    *zap.Logger
	DB     *gorm.DB
	Redis  *redis.Client
	Orders handlers.OrderService
}

func NewRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.RequestLog(deps.Log))
	r.Use(middleware.RateLimit(deps.Config.Server.RateLimit))

	secret := []byte(deps.Config.Auth.JWTSecret)
	tokenTTL := time.Duration(deps.Config.Auth.TokenTTLH) * time.Hour

	authHandler := handlers.NewAuthHandler(deps.DB, secret, tokenTTL, deps.Log)
	productHandler := handlers.NewProductHandler(deps.DB, deps.Redis, deps.Log)
	salesHandler := handlers.NewSalesHandler(deps.Orders, deps.Redis, deps.Log)
	customerHandler := handlers.NewCustomerHandler(deps.DB, deps.Log)
	expenseHandler := handlers.NewExpenseHandler(deps.DB, deps.Redis, deps.Log)
	mastersHandler := handlers.NewMastersHandler(deps.DB, deps.Log)
	dashboardHandler := handlers.NewDashboardHandler(deps.DB, deps.Redis, deps.Log, deps.Config.Orders.LowStockThreshold)

	public := r.Group("/api")
	{
		auth := public.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}
	}

	protected := r.Group("/api")
	protected.Use(middleware.JWTAuth(secret))
	{
		products := protected.Group("/products")
		{
			products.GET("", productHandler.List)
			products.GET("/search", productHandler.Search)
			products.POST("", productHandler.Create)
			products.PUT("/:id", productHandler.Update)
			products.DELETE("/:id", productHandler.Delete)
		}

		sales := protected.Group("/sales")
		{
			sales.GET("", salesHandler.List)
			sales.POST("", salesHandler.Create)
			sales.GET("/:id", salesHandler.Invoice)
		}

		customers := protected.Group("/customers")
		{
			customers.GET("", customerHandler.List)
			customers.POST("", customerHandler.Create)
			customers.GET("/:id/history", customerHandler.History)
		}

		expenses := protected.Group("/expenses")
		{
			expenses.GET("", expenseHandler.List)
			expenses.POST("", expenseHandler.Create)
			expenses.PUT("/:id", expenseHandler.Update)
		}

		masters := protected.Group("/masters")
		{
			masters.GET("/:kind", mastersHandler.List)
			masters.POST("/:kind", mastersHandler.Create)
			masters.DELETE("/:kind/:id", mastersHandler.Delete)
		}

		protected.GET("/dashboard/summary", dashboardHandler.Summary)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
		})
	})

	return r
}
