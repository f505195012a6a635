package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"gymhub/internal/auth"
	"gymhub/internal/booking"
	"gymhub/internal/class"
	"gymhub/internal/config"
	"gymhub/internal/gym"
	"gymhub/internal/slot"
	"gymhub/internal/user"

	_ "gymhub/docs"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Handlers struct {
	Users    *user.Handler
	Gyms     *gym.Handler
	Slots    *slot.Handler
	Bookings *booking.Handler
	Classes  *class.Handler
}

type Server struct {
	router *gin.Engine
	http   *http.Server
}

func New(ctx context.Context, cfg *config.Config, h Handlers, checks map[string]HealthCheck) *Server {
	RegisterValidation()

	router := gin.New()
	router.Use(
		Recovery(),
		RequestLoggingMiddleware(),
		MetricsMiddleware(),
		corsMiddleware(),
		RateLimitMiddleware(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	router.GET("/health", Health(checks))
	router.GET("/metrics", Metrics())
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	requireAuth := auth.AuthMiddleware(cfg.JWTSecret)
	ownerOnly := auth.RequireRole(auth.RoleOwner, auth.RoleAdmin)
	adminOnly := auth.RequireRole(auth.RoleAdmin)

	apiGroup := router.Group("/api")

	authGroup := apiGroup.Group("/auth")
	{
		authGroup.POST("/register", h.Users.Register)
		authGroup.POST("/login", h.Users.Login)
		authGroup.GET("/me", requireAuth, h.Users.GetMe)
		authGroup.PATCH("/update-profile", requireAuth, h.Users.UpdateProfile)
		authGroup.PATCH("/change-password", requireAuth, h.Users.ChangePassword)
	}

	gyms := apiGroup.Group("/gyms")
	{
		gyms.GET("", h.Gyms.List)
		gyms.GET("/search", h.Gyms.Search)
		gyms.GET("/:id", h.Gyms.Get)
		gyms.POST("", requireAuth, ownerOnly, h.Gyms.Create)
		gyms.PATCH("/:id", requireAuth, ownerOnly, h.Gyms.Update)
		gyms.DELETE("/:id", requireAuth, ownerOnly, h.Gyms.Delete)
	}

	slots := apiGroup.Group("/slots")
	{
		slots.GET("/gym/:gymId", h.Slots.ListByGym)
		slots.GET("/available/:gymId", h.Slots.ListAvailable)
		slots.GET("/:id", h.Slots.Get)
		slots.POST("", requireAuth, ownerOnly, h.Slots.Create)
		slots.PATCH("/:id", requireAuth, ownerOnly, h.Slots.Update)
		slots.DELETE("/:id", requireAuth, ownerOnly, h.Slots.Delete)
	}

	bookings := apiGroup.Group("/bookings", requireAuth)
	{
		bookings.GET("", h.Bookings.ListMine)
		bookings.POST("/create-payment-intent/:slotId", h.Bookings.CreatePaymentIntent)
		bookings.POST("/confirm-payment/:bookingId", h.Bookings.ConfirmPayment)
		bookings.PATCH("/cancel/:id", h.Bookings.Cancel)
		bookings.GET("/gym/:gymId", ownerOnly, h.Bookings.ListByGym)
		bookings.GET("/:id", h.Bookings.Get)
		bookings.GET("/:id/payments", h.Bookings.Payments)
		bookings.POST("/:slotId", h.Bookings.Create)
	}

	classes := apiGroup.Group("/classes")
	{
		classes.GET("/gym/:gymId", h.Classes.ListByGym)
		classes.GET("/:id", h.Classes.Get)
		classes.POST("", requireAuth, ownerOnly, h.Classes.Create)
		classes.DELETE("/:id", requireAuth, ownerOnly, h.Classes.Delete)
		classes.POST("/:id/enroll", requireAuth, h.Classes.Enroll)
		classes.DELETE("/:id/enroll", requireAuth, h.Classes.Unenroll)
	}

	admin := apiGroup.Group("/admin", requireAuth, adminOnly)
	{
		admin.GET("/users", h.Users.ListUsers)
		admin.GET("/analytics/bookings", h.Bookings.Analytics)
	}

	return &Server{
		router: router,
		http: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
