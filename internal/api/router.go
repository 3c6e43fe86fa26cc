package api

import (
	"net/http"
	"time"

	"rcip-agent/internal/api/middleware"
	"rcip-agent/internal/core/store"
	"rcip-agent/internal/infrastructure/config"
	"rcip-agent/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetupRouter builds the read-only viewer over the output directory. The
// viewer never writes records; conversions always go through the pipeline.
func SetupRouter(cfg *config.Config, recordStore *store.Store) *gin.Engine {
	common.LogInfo("starting viewer router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("output_dir", recordStore.Dir()),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New())

	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"version": cfg.App.Version,
		})
	})

	recipes := router.Group("/api/recipes")
	{
		recipes.GET("", listRecipes(recordStore))
		recipes.GET("/:file", getRecipe(recordStore))
	}

	return router
}

func listRecipes(recordStore *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := recordStore.List()
		if err != nil {
			c.JSON(http.StatusInternalServerError, common.ErrorResponse{
				Code:    "LIST_FAILED",
				Message: "could not list recipes",
			})
			return
		}
		if entries == nil {
			entries = []store.Entry{}
		}
		c.JSON(http.StatusOK, gin.H{
			"total":   len(entries),
			"recipes": entries,
		})
	}
}

func getRecipe(recordStore *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		record, err := recordStore.Load(c.Param("file"))
		if err != nil {
			c.JSON(http.StatusNotFound, common.ErrorResponse{
				Code:    "RECIPE_NOT_FOUND",
				Message: "recipe not found",
			})
			return
		}
		c.JSON(http.StatusOK, record)
	}
}
