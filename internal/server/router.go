package server

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/maniredii/coursecms/internal/auth"
	"github.com/maniredii/coursecms/internal/config"
	"github.com/maniredii/coursecms/internal/course"
	"github.com/maniredii/coursecms/internal/file"
	"github.com/maniredii/coursecms/internal/logger"
	"github.com/maniredii/coursecms/internal/metrics"
	"github.com/maniredii/coursecms/internal/testimonial"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Dependencies groups the services required by the HTTP router.
type Dependencies struct {
	Config             config.Config
	Log                *zap.Logger
	DB                 *pgxpool.Pool
	ObjectStore        *minio.Client
	AuthService        *auth.Service
	FileManager        *file.Manager
	FileGateway        *file.Gateway
	CourseService      *course.Service
	TestimonialService *testimonial.Service
}

// NewRouter builds a Gin engine with foundational middleware and routes.
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if deps.Log != nil {
		router.Use(logger.Middleware(deps.Log))
	}

	registerHealthRoutes(router, deps)
	metrics.Register(router, deps.Config.Metrics.PrometheusPath)

	api := router.Group("/v1")
	if deps.AuthService != nil {
		auth.RegisterRoutes(api, deps.AuthService)

		protected := api.Group("/")
		protected.Use(auth.AuthMiddleware(deps.AuthService))

		if deps.FileManager != nil && deps.FileGateway != nil {
			file.RegisterRoutes(protected, deps.FileManager, deps.FileGateway)
		}
		if deps.CourseService != nil {
			course.RegisterRoutes(protected, deps.CourseService)
		}
		if deps.TestimonialService != nil {
			testimonial.RegisterRoutes(protected, deps.TestimonialService)
		}

		if deps.FileGateway != nil {
			public := router.Group("/public")
			public.Use(auth.OptionalAuthMiddleware(deps.AuthService))
			file.RegisterPublicRoutes(public, deps.FileGateway)
		}
	}

	return router
}
