package api

import (
	"time"

	"github.com/gin-gonic/gin"
)

type Options struct {
	BotToken           string
	InitDataMaxAge     time.Duration
	SkipAuth           bool
	RateLimitPerMinute int
}

// NewRouter wires the tracker routes. Scraping routes share a per-user rate limit.
func NewRouter(service Tracker, health Pinger, opts Options) *gin.Engine {
	h := NewTrackerHandler(service, health)
	limiter := NewPerMinuteLimiter(opts.RateLimitPerMinute)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger())
	r.Use(CORS())

	r.GET("/health", h.Health)

	trackerRoutes := r.Group("/api/tracker")
	trackerRoutes.Use(TelegramAuth(opts.BotToken, opts.InitDataMaxAge, opts.SkipAuth))
	{
		trackerRoutes.GET("/user/:userId", h.ListProducts)
		trackerRoutes.GET("/product/:userId/:id", h.GetProduct)
		trackerRoutes.DELETE("/remove/:userId/:id", h.RemoveProduct)

		scraping := trackerRoutes.Group("")
		scraping.Use(limiter.Middleware())
		{
			scraping.POST("/add", h.AddProduct)
			scraping.POST("/add/force", h.ForceAddProduct)
			scraping.POST("/refresh/:userId/:id", h.RefreshProduct)
		}
	}

	return r
}
