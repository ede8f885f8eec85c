package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/servicecenter/service-center-api/internal/api/handler"
	"github.com/servicecenter/service-center-api/internal/api/middleware"
	"github.com/servicecenter/service-center-api/internal/core/domain"
	"github.com/servicecenter/service-center-api/internal/core/ports"
	"github.com/servicecenter/service-center-api/internal/infrastructure/http/handlers"
)

// NewRouter builds the Echo instance with all routes registered. The
// route-to-role mapping lives here and nowhere else: auth entry points and
// probes are public, everything under /api requires a valid token, and the
// admin/customer/employee groups add their role tier on top.
func NewRouter(db *mongo.Database, rdb *redis.Client, identity ports.IdentityService, issuer ports.TokenIssuer, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("service_center"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(identity)
	adminHandler := handler.NewAdminHandler(identity)
	identityHandler := handler.NewIdentityHandler(identity)
	authRequired := middleware.Auth(issuer)

	// --- Public auth entry points ---
	auth := e.Group("/api/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/verify-otp", authHandler.VerifyOTP)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/forgot-password", authHandler.ForgotPassword)
	auth.POST("/reset-password", authHandler.ResetPassword)
	auth.POST("/logout", authHandler.Logout, authRequired)

	// --- Any authenticated identity ---
	e.GET("/api/me", identityHandler.Me, authRequired)

	// --- Role tiers ---
	admin := e.Group("/api/admin", authRequired, middleware.RBAC(domain.RoleAdmin))
	admin.POST("/employees", adminHandler.CreateEmployee)

	customer := e.Group("/api/customer", authRequired, middleware.RBAC(domain.RoleCustomer))
	customer.GET("/profile", identityHandler.Me)

	employee := e.Group("/api/employee", authRequired, middleware.RBAC(domain.RoleEmployee))
	employee.GET("/profile", identityHandler.Me)

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
