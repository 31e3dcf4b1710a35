// README: HTTP router registration and middleware wiring.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"breeze/internal/auth"
	"breeze/internal/http/handlers"
	"breeze/internal/http/middleware"
	"breeze/internal/maps"
	"breeze/internal/modules/account"
	"breeze/internal/modules/catalog"
	"breeze/internal/modules/order"
)

type RouterDeps struct {
	Accounts      *account.Service
	Orders        *order.Service
	Catalog       *catalog.Service
	Routes        *maps.RouteService // optional
	Session       auth.Config
	WarehouseAddr string
	Logger        *slog.Logger
}

func NewRouter(deps RouterDeps) http.Handler {
	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.Logging(deps.Logger))

	authed := middleware.Auth(deps.Session)
	admin := middleware.RequireRole(string(account.RoleAdmin))
	riderOnly := middleware.RequireRole(string(account.RoleRider))

	authHandler := handlers.NewAuthHandler(deps.Accounts, deps.Session)
	authGroup := r.Group("/api/auth")
	authGroup.POST("/google", authHandler.GoogleLogin)
	authGroup.GET("/profile", authed, authHandler.Profile)

	userHandler := handlers.NewUserHandler(deps.Accounts)
	users := r.Group("/api/users")
	users.GET("", authed, admin, userHandler.List)
	users.GET("/riders", authed, admin, userHandler.ListRiders)
	users.PUT("/profile", authed, userHandler.UpdateProfile)
	users.POST("/approved-emails", authed, admin, userHandler.AddApprovedEmail)
	users.GET("/approved-emails", authed, admin, userHandler.ListApprovedEmails)
	users.DELETE("/approved-emails/:id", authed, admin, userHandler.DeleteApprovedEmail)

	orderHandler := handlers.NewOrderHandler(deps.Orders)
	orders := r.Group("/api/orders", authed)
	orders.POST("", orderHandler.Create)
	orders.GET("", admin, orderHandler.ListAll)
	orders.GET("/myorders", orderHandler.ListMine)
	orders.GET("/:id", orderHandler.Get)
	orders.PUT("/:id/status", admin, orderHandler.UpdateStatus)

	riderHandler := handlers.NewRiderHandler(deps.Orders, deps.Routes, deps.WarehouseAddr)
	riders := r.Group("/api/riders", authed, riderOnly)
	riders.GET("/orders", riderHandler.ListAssigned)
	riders.GET("/orders/:id/route", riderHandler.DeliveryRoute)

	productHandler := handlers.NewProductHandler(deps.Catalog)
	products := r.Group("/api/products")
	products.GET("", productHandler.List)
	products.GET("/:id", productHandler.Get)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	return r
}
