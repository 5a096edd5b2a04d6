package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/arklim/user-permission-service/internal/infra/config"
	"github.com/arklim/user-permission-service/internal/infra/telemetry"
	"github.com/arklim/user-permission-service/internal/transport/http/handlers"
	"github.com/arklim/user-permission-service/internal/transport/http/middleware"
	"github.com/arklim/user-permission-service/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth        *usecase.AuthService
	Users       *usecase.UserService
	Roles       *usecase.RoleService
	Permissions *usecase.PermissionService
	Menus       *usecase.MenuService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config   *config.AppConfig
	Logger   *zap.Logger
	Metrics  *telemetry.Metrics
	DB       handlers.DatabaseChecker
	Services ServiceSet
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.CORS([]string{"*"}))
	if deps.Metrics != nil {
		r.Use(middleware.Metrics(deps.Metrics))
	}

	health := handlers.NewHealthHandler(deps.DB)
	r.GET("/healthz", health.Status)
	r.GET("/readyz", health.Ready)
	if deps.Config.Telemetry.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	authHandler := handlers.NewAuthHandler(deps.Services.Auth)
	userHandler := handlers.NewUserHandler(deps.Services.Users)
	roleHandler := handlers.NewRoleHandler(deps.Services.Roles)
	permissionHandler := handlers.NewPermissionHandler(deps.Services.Permissions)
	menuHandler := handlers.NewMenuHandler(deps.Services.Menus)

	api := r.Group("/api/v1")

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)

		authed := auth.Group("")
		authed.Use(middleware.RequireAuth(deps.Services.Auth))
		{
			authed.GET("/me", authHandler.Me)
			authed.POST("/password", authHandler.ChangePassword)
		}
	}

	users := api.Group("/users")
	users.Use(middleware.RequireAuth(deps.Services.Auth))
	{
		users.GET("", middleware.RequirePermission("user:read"), userHandler.List)
		users.POST("", middleware.RequirePermission("user:create"), userHandler.Create)
		users.GET("/:id", middleware.RequirePermission("user:read"), userHandler.Get)
		users.PUT("/:id", middleware.RequirePermission("user:update"), userHandler.Update)
		users.DELETE("/:id", middleware.RequirePermission("user:delete"), userHandler.Delete)
		users.PATCH("/:id/status", middleware.RequirePermission("user:update"), userHandler.SetStatus)
		users.PUT("/:id/roles", middleware.RequirePermission("user:assign_role"), userHandler.SetRoles)
		users.POST("/:id/roles/:roleId", middleware.RequirePermission("user:assign_role"), userHandler.AssignRole)
		users.DELETE("/:id/roles/:roleId", middleware.RequirePermission("user:assign_role"), userHandler.RemoveRole)
		users.POST("/:id/password/reset", middleware.RequirePermission("user:reset_password"), authHandler.ResetPassword)
	}

	roles := api.Group("/roles")
	roles.Use(middleware.RequireAuth(deps.Services.Auth))
	{
		roles.GET("", middleware.RequirePermission("role:read"), roleHandler.List)
		roles.POST("", middleware.RequirePermission("role:create"), roleHandler.Create)
		roles.GET("/:id", middleware.RequirePermission("role:read"), roleHandler.Get)
		roles.PUT("/:id", middleware.RequirePermission("role:update"), roleHandler.Update)
		roles.DELETE("/:id", middleware.RequirePermission("role:delete"), roleHandler.Delete)
		roles.GET("/:id/permissions", middleware.RequirePermission("role:read"), roleHandler.Permissions)
		roles.POST("/:id/permissions", middleware.RequirePermission("role:grant"), roleHandler.GrantPermissions)
		roles.DELETE("/:id/permissions", middleware.RequirePermission("role:grant"), roleHandler.RevokePermissions)
	}

	permissions := api.Group("/permissions")
	permissions.Use(middleware.RequireAuth(deps.Services.Auth))
	{
		permissions.GET("", middleware.RequirePermission("permission:read"), permissionHandler.List)
		permissions.POST("", middleware.RequirePermission("permission:create"), permissionHandler.Create)
		permissions.GET("/:code", middleware.RequirePermission("permission:read"), permissionHandler.Get)
	}

	menus := api.Group("/menus")
	menus.Use(middleware.RequireAuth(deps.Services.Auth))
	{
		menus.GET("/mine", menuHandler.UserTree)
		menus.GET("/tree", middleware.RequirePermission("menu:read"), menuHandler.Tree)
		menus.POST("", middleware.RequirePermission("menu:create"), menuHandler.Create)
		menus.GET("/:id", middleware.RequirePermission("menu:read"), menuHandler.Get)
		menus.PUT("/:id", middleware.RequirePermission("menu:update"), menuHandler.Update)
		menus.DELETE("/:id", middleware.RequirePermission("menu:delete"), menuHandler.Delete)
	}

	return r
}
