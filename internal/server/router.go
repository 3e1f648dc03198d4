package server

import (
	"net/http"
	"time"

	"crm-backend/internal/config"
	"crm-backend/internal/handlers"
	"crm-backend/internal/middleware"
	"crm-backend/internal/models"
	"crm-backend/internal/obs"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

func NewRouter(cfg *config.Config, rdb *redis.Client) *gin.Engine {
	r := gin.Default()

	r.Use(obs.Instrument())

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("crm_session", store))

	r.Use(middleware.InjectUser(cfg.JWTSecret))

	// HEALTHCHECK / МЕТРИКИ
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/metrics", gin.WrapH(obs.Handler()))

	// AUTH
	r.POST("/auth/register", handlers.Register)
	r.POST("/auth/login",
		middleware.RateLimit(rate.Every(time.Second), 5),
		handlers.Login(cfg.JWTSecret),
	)
	r.POST("/auth/logout", handlers.Logout)

	auth := r.Group("/")
	auth.Use(middleware.RequireAuth())

	auth.GET("/auth/me", handlers.Me)

	// КЛИЕНТЫ
	auth.GET("/clients", handlers.ListClients)
	auth.POST("/clients",
		middleware.RequireRole(models.RoleAdmin, models.RoleSalesManager),
		handlers.CreateClient,
	)
	auth.GET("/clients/:id", handlers.GetClient)
	auth.PATCH("/clients/:id", handlers.UpdateClient)

	// архив — только админ
	auth.PATCH("/clients/:id/archive",
		middleware.RequireRole(models.RoleAdmin),
		handlers.ArchiveClient,
	)

	// ====== НАЗНАЧЕНИЯ ======
	auth.POST("/clients/:id/assign",
		middleware.RequireRole(models.RoleAdmin),
		handlers.AssignClient,
	)
	auth.POST("/clients/:id/assign-designer",
		middleware.RequireRole(models.RoleAdmin),
		handlers.AssignDesigner,
	)
	auth.POST("/clients/:id/acknowledge",
		middleware.RequireRole(models.RoleSpecialist, models.RoleDesigner),
		handlers.Acknowledge,
	)

	// ====== ПЛАТЕЖИ И ПРОДЛЕНИЯ ======
	auth.POST("/clients/:id/payments", handlers.CreatePayment)
	auth.GET("/clients/:id/payments", handlers.ListClientPayments)
	auth.GET("/renewals", handlers.GetRenewals)

	// КОММЕНТАРИИ
	auth.POST("/clients/:id/comments", handlers.CreateComment)
	auth.GET("/clients/:id/comments", handlers.ListClientComments)

	// ЗАДАЧИ
	auth.POST("/clients/:id/tasks", handlers.CreateTask)
	auth.GET("/clients/:id/tasks", handlers.ListClientTasks)
	auth.GET("/tasks/my", handlers.MyTasks)
	auth.GET("/tasks/:id", handlers.GetTask)
	auth.PATCH("/tasks/:id", handlers.UpdateTask)
	auth.DELETE("/tasks/:id",
		middleware.RequireRole(models.RoleAdmin),
		handlers.DeleteTask,
	)

	// ДАШБОРДЫ
	auth.GET("/dashboard/my",
		middleware.Cache(rdb, time.Minute),
		handlers.GetMyDashboard,
	)
	auth.GET("/dashboard/user/:userId",
		middleware.RequireRole(models.RoleAdmin),
		handlers.GetUserDashboard,
	)

	// ПОЛЬЗОВАТЕЛИ
	auth.GET("/users/employees",
		middleware.RequireRole(models.RoleAdmin),
		handlers.ListEmployees,
	)
	auth.PATCH("/users/:id/role",
		middleware.RequireRole(models.RoleAdmin),
		handlers.UpdateUserRole,
	)

	// АУДИТ
	auth.GET("/clients/:id/audit",
		middleware.RequireRole(models.RoleAdmin),
		handlers.GetClientAudit,
	)

	return r
}
