package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"finboard/middleware"
)

// NewRouter wires the serving layer: the two dashboard data endpoints, the
// dashboard page itself, health checks and metrics.
func NewRouter(h *Handler, webDir string) *gin.Engine {
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.AllowMethods = []string{"GET", "OPTIONS"}
	router.Use(cors.New(corsConfig))
	router.Use(middleware.Prometheus("finboard"))

	// Health check routes
	router.GET("/health", healthCheck)
	router.GET("/ready", healthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	router.GET("/api/btc-price", h.GetBTCPrice)
	router.GET("/api/news", h.GetNews)

	// Dashboard page
	if webDir != "" {
		router.LoadHTMLGlob(webDir + "/templates/*")
		router.Static("/static", webDir+"/static")
		router.GET("/", func(c *gin.Context) {
			c.HTML(200, "dashboard.html", nil)
		})
	}

	return router
}

func healthCheck(c *gin.Context) {
	c.JSON(200, gin.H{"status": "healthy", "service": "finboard"})
}
