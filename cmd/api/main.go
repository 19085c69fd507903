package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/maniredii/coursecms/internal/auth"
	"github.com/maniredii/coursecms/internal/config"
	"github.com/maniredii/coursecms/internal/course"
	"github.com/maniredii/coursecms/internal/file"
	"github.com/maniredii/coursecms/internal/logger"
	"github.com/maniredii/coursecms/internal/server"
	"github.com/maniredii/coursecms/internal/storage"
	"github.com/maniredii/coursecms/internal/testimonial"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	log, err := logger.Init()
	if err != nil {
		panic("init logger: " + err.Error())
	}
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := storage.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal("connect postgres", zap.Error(err))
	}
	defer dbPool.Close()

	minioClient, err := storage.NewMinIOClient(cfg.MinIO)
	if err != nil {
		log.Fatal("connect minio", zap.Error(err))
	}

	if err := storage.EnsureBucket(ctx, minioClient, cfg.MinIO.Bucket, cfg.MinIO.Region); err != nil {
		log.Fatal("ensure bucket", zap.Error(err))
	}

	authRepo := auth.NewRepository(dbPool)
	authService := auth.NewService(authRepo, cfg.Auth)

	fileRepo := file.NewRepository(dbPool)
	fileStore := file.NewMinIOStore(minioClient)
	fileManager := file.NewManager(fileRepo, fileStore, cfg.MinIO.Bucket, cfg.Upload.MaxUploadBytes, log)
	fileGateway := file.NewGateway(fileRepo, fileManager, cfg.Upload.PublicBaseURL)

	courseService := course.NewService(course.NewRepository(dbPool))
	testimonialService := testimonial.NewService(testimonial.NewRepository(dbPool))

	router := server.NewRouter(server.Dependencies{
		Config:             cfg,
		Log:                log,
		DB:                 dbPool,
		ObjectStore:        minioClient,
		AuthService:        authService,
		FileManager:        fileManager,
		FileGateway:        fileGateway,
		CourseService:      courseService,
		TestimonialService: testimonialService,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("CourseCMS API listening", zap.String("address", cfg.Server.Address()))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Info("shutting down gracefully")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", zap.Error(err))
	}
}
