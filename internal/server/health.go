package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const readinessTimeout = 5 * time.Second

type readinessCheck struct {
	name  string
	check func(ctx context.Context) error
}

func registerHealthRoutes(router *gin.Engine, deps Dependencies) {
	checks := []readinessCheck{
		{name: "postgres", check: deps.DB.Ping},
		{name: "object_store", check: func(ctx context.Context) error {
			ok, err := deps.ObjectStore.BucketExists(ctx, deps.Config.MinIO.Bucket)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("bucket %q missing", deps.Config.MinIO.Bucket)
			}
			return nil
		}},
	}

	router.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Readiness probes every dependency so a degraded response names
	// each failing component rather than just the first.
	router.GET("/health/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		defer cancel()

		results := make(gin.H, len(checks))
		healthy := true
		for _, rc := range checks {
			if err := rc.check(ctx); err != nil {
				results[rc.name] = err.Error()
				healthy = false
				continue
			}
			results[rc.name] = "ok"
		}

		status := http.StatusOK
		overall := "ok"
		if !healthy {
			status = http.StatusServiceUnavailable
			overall = "degraded"
		}
		c.JSON(status, gin.H{"status": overall, "checks": results})
	})
}
