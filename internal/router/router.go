package router

import (
	"github.com/Ayush3323/crm-backend/internal/authz"
	"github.com/Ayush3323/crm-backend/internal/config"
	"github.com/Ayush3323/crm-backend/internal/handler"
	"github.com/Ayush3323/crm-backend/internal/infra"
	"github.com/Ayush3323/crm-backend/internal/middleware"
	"github.com/Ayush3323/crm-backend/internal/repository"
	"github.com/Ayush3323/crm-backend/internal/service"
	"github.com/Ayush3323/crm-backend/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis.
// mailer is nil when SMTP is not configured; no notifications are queued then.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, mailer *infra.Mailer) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.AllowedOrigins()))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(cfg.RateLimitMax, cfg.RateLimitWindow()))

	r.NoRoute(middleware.NoRoute)

	// ── Infrastructure ───────────────────────────────────────────────────────
	var notifier service.Notifier
	var mailerState func() string
	if mailer != nil {
		notifier = worker.NewDispatcher(rdb)
		mailerState = mailer.State
	}
	var cache service.Cache
	if rdb != nil {
		cache = infra.NewRedisCache(rdb)
	}

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	machineRepo := repository.NewMachineRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	userSvc := service.NewUserService(userRepo, taskRepo, analyticsRepo, notifier)
	machineSvc := service.NewMachineService(machineRepo, userRepo)
	taskSvc := service.NewTaskService(taskRepo, userRepo, service.NewResolver(userRepo, machineRepo))
	analyticsSvc := service.NewAnalyticsService(analyticsRepo, cache, cfg.AnalyticsCacheTTL())

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(userSvc)
	machinesH := handler.NewMachinesHandler(machineSvc)
	tasksH := handler.NewTasksHandler(taskSvc)
	analyticsH := handler.NewAnalyticsHandler(analyticsSvc)

	// ── Routes ───────────────────────────────────────────────────────────────
	api := r.Group("/api")

	// Public
	api.GET("/health", handler.Health(db, rdb, mailerState))

	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	can := middleware.Authorize

	auth := api.Group("/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(cfg.LoginRateLimit), authH.Login)
		auth.POST("/refresh", authH.Refresh)
		auth.GET("/me", jwtMW, can(authz.ReadProfile), authH.Me)
	}

	users := api.Group("/users", jwtMW)
	{
		users.GET("", can(authz.ListUsers), usersH.List)
		users.GET("/employees", can(authz.ListEmployees), usersH.Employees)
		users.GET("/stats", can(authz.ViewUserStats), usersH.Stats)
		users.GET("/:id", can(authz.ReadUser), usersH.Get)
		users.POST("", can(authz.CreateUser), usersH.Create)
		users.PUT("/:id", can(authz.UpdateUser), usersH.Update)
		users.DELETE("/:id", can(authz.DeleteUser), usersH.Delete)
		users.PUT("/:id/reset-password", can(authz.ResetUserPassword), usersH.ResetPassword)
	}

	machines := api.Group("/machines", jwtMW)
	{
		machines.GET("", can(authz.ListMachines), machinesH.List)
		machines.GET("/:id", can(authz.ReadMachine), machinesH.Get)
		machines.POST("", can(authz.CreateMachine), machinesH.Create)
		machines.PUT("/:id", can(authz.UpdateMachine), machinesH.Update)
		machines.DELETE("/:id", can(authz.DeleteMachine), machinesH.Delete)
		machines.PUT("/:id/status", can(authz.UpdateMachineStatus), machinesH.UpdateStatus)
		machines.POST("/:id/maintenance", can(authz.AddMaintenanceRecord), machinesH.AddMaintenance)
	}

	tasks := api.Group("/tasks", jwtMW)
	{
		tasks.GET("", can(authz.ListTasks), tasksH.List)
		tasks.GET("/employee/:employeeId", can(authz.ListEmployeeTasks), tasksH.ByEmployee)
		tasks.GET("/filter/:userId", can(authz.ListUserTasks), tasksH.ByUser)
		tasks.GET("/:id", can(authz.ReadTask), tasksH.Get)
		tasks.POST("", can(authz.CreateTask), tasksH.Create)
		tasks.PUT("/:id", can(authz.UpdateTask), tasksH.Update)
		tasks.DELETE("/:id", can(authz.DeleteTask), tasksH.Delete)
		tasks.PUT("/:id/progress", can(authz.UpdateTaskProgress), tasksH.UpdateProgress)
		tasks.POST("/:id/comments", can(authz.CommentTask), tasksH.AddComment)
	}

	analytics := api.Group("/analytics", jwtMW, can(authz.ViewAnalytics))
	{
		analytics.GET("/dashboard", analyticsH.Dashboard)
		analytics.GET("/tasks", analyticsH.Tasks)
		analytics.GET("/machines", analyticsH.Machines)
		analytics.GET("/users", analyticsH.Users)
	}

	// Swagger UI outside production only
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
