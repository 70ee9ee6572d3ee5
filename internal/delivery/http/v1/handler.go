package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/sprintsync/internal/services"
)

type Handler interface {
	HandleRegister(c *gin.Context)
	HandleLogin(c *gin.Context)
	HandleRefresh(c *gin.Context)
	HandleGetMe(c *gin.Context)
	HandleUpdateMe(c *gin.Context)

	HandleAuthMiddleware(c *gin.Context)
	HandleAdminMiddleware(c *gin.Context)
	HandleLoginRateLimitMiddleware(c *gin.Context)
	HandleRequestLoggerMiddleware(c *gin.Context)
	HandleCORSMiddleware(c *gin.Context)
	HandleMetricsMiddleware(c *gin.Context)

	HandleCreateTask(c *gin.Context)
	HandleGetTasks(c *gin.Context)
	HandleGetAllTasks(c *gin.Context)
	HandleGetTask(c *gin.Context)
	HandleUpdateTask(c *gin.Context)
	HandleSetTaskStatus(c *gin.Context)
	HandleAddTaskTime(c *gin.Context)
	HandleAssignTask(c *gin.Context)
	HandleDeleteTask(c *gin.Context)

	HandleGetUsers(c *gin.Context)
	HandleCreateUser(c *gin.Context)
	HandleGetUser(c *gin.Context)
	HandleUpdateUser(c *gin.Context)
	HandleDeleteUser(c *gin.Context)

	HandleSuggestDescription(c *gin.Context)
	HandleDailyPlan(c *gin.Context)

	HandleUserSummary(c *gin.Context)
	HandleTopUsers(c *gin.Context)
	HandleRecentActivity(c *gin.Context)

	HandleHealth(c *gin.Context)
	HandleMetrics(c *gin.Context)

	// RegisterRoutes mounts every endpoint on the router.
	RegisterRoutes(router gin.IRouter)
}

type Params struct {
	Logger zerolog.Logger

	Auth  services.AuthService
	Users services.UserService
	Tasks services.TaskService
	AI    services.AIService
	Stats services.StatsService

	AllowedOrigins []string
	LoginRateLimit float64
	LoginRateBurst int

	// Registerer defaults to a fresh registry when nil.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

type handlerImpl struct {
	logger zerolog.Logger
	auth   services.AuthService
	users  services.UserService
	tasks  services.TaskService
	ai     services.AIService
	stats  services.StatsService

	allowedOrigins []string
	loginLimiter   *ipRateLimiter
	metrics        *httpMetrics
}

func New(params Params) Handler {
	registerer, gatherer := params.Registerer, params.Gatherer
	if registerer == nil {
		registry := prometheus.NewRegistry()
		registerer, gatherer = registry, registry
	} else if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	return &handlerImpl{
		logger:         params.Logger,
		auth:           params.Auth,
		users:          params.Users,
		tasks:          params.Tasks,
		ai:             params.AI,
		stats:          params.Stats,
		allowedOrigins: params.AllowedOrigins,
		loginLimiter:   newIPRateLimiter(params.LoginRateLimit, params.LoginRateBurst),
		metrics:        newHTTPMetrics(registerer, gatherer),
	}
}

func (h *handlerImpl) RegisterRoutes(router gin.IRouter) {
	router.Use(
		h.HandleRequestLoggerMiddleware,
		h.HandleMetricsMiddleware,
		h.HandleCORSMiddleware,
	)

	router.GET("/health", h.HandleHealth)
	router.GET("/metrics", h.HandleMetrics)

	authRouter := router.Group("/auth")
	authRouter.POST("/register", h.HandleRegister)
	authRouter.POST("/login", h.HandleLoginRateLimitMiddleware, h.HandleLogin)
	authRouter.POST("/refresh", h.HandleAuthMiddleware, h.HandleRefresh)
	authRouter.GET("/me", h.HandleAuthMiddleware, h.HandleGetMe)
	authRouter.PUT("/me", h.HandleAuthMiddleware, h.HandleUpdateMe)

	tasksRouter := router.Group("/tasks", h.HandleAuthMiddleware)
	tasksRouter.GET("", h.HandleGetTasks)
	tasksRouter.POST("", h.HandleCreateTask)
	tasksRouter.GET("/:id", h.HandleGetTask)
	tasksRouter.PUT("/:id", h.HandleUpdateTask)
	tasksRouter.PATCH("/:id/status", h.HandleSetTaskStatus)
	tasksRouter.POST("/:id/time", h.HandleAddTaskTime)
	tasksRouter.PATCH("/:id/assign", h.HandleAdminMiddleware, h.HandleAssignTask)
	tasksRouter.DELETE("/:id", h.HandleDeleteTask)

	adminRouter := router.Group("/admin", h.HandleAuthMiddleware, h.HandleAdminMiddleware)
	adminRouter.GET("/tasks", h.HandleGetAllTasks)

	usersRouter := router.Group("/users", h.HandleAuthMiddleware, h.HandleAdminMiddleware)
	usersRouter.GET("", h.HandleGetUsers)
	usersRouter.POST("", h.HandleCreateUser)
	usersRouter.GET("/:id", h.HandleGetUser)
	usersRouter.PUT("/:id", h.HandleUpdateUser)
	usersRouter.DELETE("/:id", h.HandleDeleteUser)

	aiRouter := router.Group("/ai", h.HandleAuthMiddleware)
	aiRouter.POST("/suggest-description", h.HandleSuggestDescription)
	aiRouter.GET("/daily-plan", h.HandleDailyPlan)

	statsRouter := router.Group("/stats", h.HandleAuthMiddleware)
	statsRouter.GET("/user-summary", h.HandleUserSummary)
	statsRouter.GET("/top-users", h.HandleAdminMiddleware, h.HandleTopUsers)
	statsRouter.GET("/recent-activity", h.HandleRecentActivity)
}
