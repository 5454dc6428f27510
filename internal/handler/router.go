package handler

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// BuildInfo identifies the running binary.
type BuildInfo struct {
	Version   string
	BuildTime string
	GitCommit string
}

// RouterConfig carries everything NewRouter wires together.
type RouterConfig struct {
	Listings       *ListingHandler
	Enhance        *EnhanceHandler
	Gatherer       prometheus.Gatherer
	AllowedOrigins string
	Backend        string
	Catalog        string
	Build          BuildInfo
	Logger         zerolog.Logger
}

// NewRouter builds the HTTP API.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), RequestLogger(cfg.Logger))

	corsConfig := cors.DefaultConfig()
	if origins := splitOrigins(cfg.AllowedOrigins); len(origins) > 0 && origins[0] != "*" {
		corsConfig.AllowOrigins = origins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", RequestIDHeader}
	corsConfig.ExposeHeaders = []string{RequestIDHeader}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "healthy",
			"service":    "rentals",
			"backend":    cfg.Backend,
			"catalog":    cfg.Catalog,
			"version":    cfg.Build.Version,
			"build_time": cfg.Build.BuildTime,
			"git_commit": cfg.Build.GitCommit,
		})
	})

	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    cfg.Build.Version,
			"build_time": cfg.Build.BuildTime,
			"git_commit": cfg.Build.GitCommit,
		})
	})

	if cfg.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/listings", cfg.Listings.List)
		apiV1.POST("/listings", cfg.Listings.Submit)
		apiV1.GET("/listings/:id", cfg.Listings.Get)
		apiV1.POST("/listings/enhance-description", cfg.Enhance.Enhance)
	}

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": "API endpoint not found"})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	return router
}

func splitOrigins(origins string) []string {
	var out []string
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
