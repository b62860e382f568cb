package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"lendly/internal/infra/config"
	"lendly/internal/infra/obs"
)

type BookingHTTP interface {
	Create(c *gin.Context)
	MyRentals(c *gin.Context)
	MyListings(c *gin.Context)
	Get(c *gin.Context)
	UpdatePayment(c *gin.Context)
	ChangeStatus(c *gin.Context)
	ReportIssue(c *gin.Context)
}

type PaymentHTTP interface {
	Process(c *gin.Context)
	Details(c *gin.Context)
	Refund(c *gin.Context)
}

type ItemHTTP interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	List(c *gin.Context)
}

type AuthHTTP interface {
	Register(c *gin.Context)
	Login(c *gin.Context)
	Logout(c *gin.Context)
	Me(c *gin.Context)
}

type Handlers struct {
	Booking        BookingHTTP
	Payment        PaymentHTTP
	Item           ItemHTTP
	Auth           AuthHTTP
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	router := NewRouter(cfg, obsMW, health, h)
	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

// NewRouter builds the full route tree; split from NewServer so tests can
// drive it through httptest.
func NewRouter(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)
	router.GET("/metrics", obs.MetricsHandler())

	api := router.Group("/api/v1")
	if h.Auth != nil {
		api.POST("/auth/register", h.Auth.Register)
		api.POST("/auth/login", h.Auth.Login)
		api.POST("/auth/logout", h.Auth.Logout)
		api.GET("/auth/me", h.Auth.Me)
	}
	if h.Booking != nil {
		api.POST("/bookings", h.Booking.Create)
		api.GET("/bookings/my-rentals", h.Booking.MyRentals)
		api.GET("/bookings/my-listings", h.Booking.MyListings)
		api.GET("/bookings/:id", h.Booking.Get)
		api.PUT("/bookings/:id", h.Booking.UpdatePayment)
		api.PUT("/bookings/:id/status", h.Booking.ChangeStatus)
		api.PUT("/bookings/:id/issue", h.Booking.ReportIssue)
	}
	if h.Payment != nil {
		api.POST("/payments/process", h.Payment.Process)
		api.GET("/payments/:bookingId", h.Payment.Details)
		api.POST("/payments/refund", h.Payment.Refund)
	}
	if h.Item != nil {
		api.GET("/items", h.Item.List)
		api.POST("/items", h.Item.Create)
		api.GET("/items/:id", h.Item.Get)
	}

	return router
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}

var (
	_ BookingHTTP = BookingHandler{}
	_ PaymentHTTP = PaymentHandler{}
	_ ItemHTTP    = ItemHandler{}
	_ AuthHTTP    = AuthHandler{}
)
