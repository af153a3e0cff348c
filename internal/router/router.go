package router

import (
	"time"

	"github.com/BAHUBALISID/smj/internal/handler"
	"github.com/BAHUBALISID/smj/internal/infra"
	"github.com/BAHUBALISID/smj/internal/middleware"
	"github.com/BAHUBALISID/smj/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps carries what the routes need. DB and Redis are only used by /health
// and may be nil in tests that do not register it.
type Deps struct {
	Env         string
	JWTSecret   string
	CORSOrigins []string
	DB          *gorm.DB
	Redis       *redis.Client
	Breakers    map[string]*infra.CircuitBreaker
	Limiter     *middleware.RateLimiter

	Rates     service.RateService
	Bills     service.BillService
	Payments  service.PaymentService
	Exchanges service.ExchangeService
}

// New returns a configured Gin engine.
func New(d Deps) *gin.Engine {
	if d.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(d.CORSOrigins))
	r.Use(middleware.ErrorHandler())
	limiter := d.Limiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(600, time.Minute)
	}
	r.Use(limiter.Handler())

	// ── Handlers ─────────────────────────────────────────────────────────────
	billsH := handler.NewBillsHandler(d.Bills, d.Payments)
	exchangesH := handler.NewExchangesHandler(d.Exchanges)
	ratesH := handler.NewRatesHandler(d.Rates)
	publicH := handler.NewPublicHandler(d.Bills, d.Exchanges)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	if d.DB != nil && d.Redis != nil {
		r.GET("/health", handler.Health(d.DB, d.Redis, d.Breakers))
	}
	public := r.Group("/v1/public")
	{
		public.GET("/bills/:token", publicH.Bill)
		public.GET("/exchanges/:token", publicH.Exchange)
	}

	// Protected routes
	staff := middleware.RequireRole(middleware.RoleStaff, middleware.RoleAdmin)
	admin := middleware.RequireRole(middleware.RoleAdmin)
	v1 := r.Group("/v1", middleware.JWTAuth(d.JWTSecret))
	{
		v1.POST("/bills", staff, billsH.CreateBill)
		v1.POST("/bills/:id/payments", staff, billsH.AddPayment)
		v1.POST("/exchanges", staff, exchangesH.CreateExchange)

		v1.GET("/rates", staff, ratesH.List)
		v1.GET("/rates/resolve", staff, ratesH.Resolve)
		v1.GET("/rates/history", staff, ratesH.History)
		// Rate writes: admin only
		v1.PUT("/rates", admin, ratesH.Set)
		v1.POST("/rates/custom", admin, ratesH.AddCustom)
	}

	return r
}
