package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/edunova/lms-api/api/swagger"
	"github.com/edunova/lms-api/internal/handler"
	"github.com/edunova/lms-api/internal/middleware"
	"github.com/edunova/lms-api/internal/models"
	"github.com/edunova/lms-api/internal/repository"
	"github.com/edunova/lms-api/internal/service"
	"github.com/edunova/lms-api/pkg/cache"
	"github.com/edunova/lms-api/pkg/config"
	"github.com/edunova/lms-api/pkg/database"
	"github.com/edunova/lms-api/pkg/logger"
	corsmiddleware "github.com/edunova/lms-api/pkg/middleware/cors"
	reqidmiddleware "github.com/edunova/lms-api/pkg/middleware/requestid"
)

// @title EduNova LMS API
// @version 1.0.0
// @description Learning management backend: catalog, enrollments, coursework and payments
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// The catalog cache is best-effort; the API runs without Redis.
	var cacheRepo *repository.CacheRepository
	if cfg.Catalog.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, catalog cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			cacheRepo = repository.NewCacheRepository(redisClient, cfg.Catalog.CacheTTL)
		}
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	lessonRepo := repository.NewLessonRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	interactionRepo := repository.NewInteractionRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, cacheRepo, validate, logr)
	lessonSvc := service.NewLessonService(lessonRepo, courseRepo, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, courseRepo, validate, logr)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, courseRepo, validate, logr)
	submissionSvc := service.NewSubmissionService(submissionRepo, assignmentRepo, validate, logr)
	paymentSvc := service.NewPaymentService(paymentRepo, courseRepo, validate, logr)
	interactionSvc := service.NewInteractionService(interactionRepo, validate, logr)
	metricsSvc := service.NewMetricsService()

	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	lessonHandler := handler.NewLessonHandler(lessonSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc)
	assignmentHandler := handler.NewAssignmentHandler(assignmentSvc)
	submissionHandler := handler.NewSubmissionHandler(submissionSvc)
	paymentHandler := handler.NewPaymentHandler(paymentSvc)
	interactionHandler := handler.NewInteractionHandler(interactionSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authed := middleware.Auth(authSvc)
	optional := middleware.OptionalAuth(authSvc)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	staff := middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin)

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/me", authed, authHandler.Me)
	auth.PUT("/password", authed, authHandler.ChangePassword)

	users := api.Group("/users", authed)
	users.GET("", adminOnly, userHandler.List)
	users.GET("/:id", userHandler.Get)
	users.PUT("/:id", userHandler.Update)
	users.PUT("/:id/status", adminOnly, userHandler.UpdateStatus)
	users.DELETE("/:id", adminOnly, userHandler.Delete)

	courses := api.Group("/courses")
	courses.GET("", optional, courseHandler.List)
	courses.GET("/:id", optional, courseHandler.Get)
	courses.POST("", authed, staff, courseHandler.Create)
	courses.PUT("/:id", authed, staff, courseHandler.Update)
	courses.PUT("/:id/approve", authed, adminOnly, courseHandler.Approve)
	courses.DELETE("/:id", authed, staff, courseHandler.Delete)
	courses.GET("/:id/roster", authed, staff, enrollmentHandler.Roster)

	lessons := api.Group("/lessons", authed)
	lessons.GET("", lessonHandler.List)
	lessons.GET("/:id", lessonHandler.Get)
	lessons.POST("", staff, lessonHandler.Create)
	lessons.PUT("/:id", staff, lessonHandler.Update)
	lessons.DELETE("/:id", staff, lessonHandler.Delete)

	enrollments := api.Group("/enrollments", authed)
	enrollments.GET("", enrollmentHandler.List)
	enrollments.GET("/:id", enrollmentHandler.Get)
	enrollments.POST("", middleware.RequireRoles(models.RoleStudent), enrollmentHandler.Enroll)
	enrollments.PUT("/:id", enrollmentHandler.UpdateProgress)
	enrollments.DELETE("/:id", enrollmentHandler.Unenroll)

	assignments := api.Group("/assignments", authed)
	assignments.GET("", assignmentHandler.List)
	assignments.GET("/:id", assignmentHandler.Get)
	assignments.POST("", staff, assignmentHandler.Create)
	assignments.PUT("/:id", staff, assignmentHandler.Update)
	assignments.DELETE("/:id", staff, assignmentHandler.Delete)

	submissions := api.Group("/submissions", authed)
	submissions.GET("", submissionHandler.List)
	submissions.GET("/:id", submissionHandler.Get)
	submissions.POST("", middleware.RequireRoles(models.RoleStudent), submissionHandler.Submit)
	submissions.PUT("/:id/grade", staff, submissionHandler.Grade)
	submissions.DELETE("/:id", submissionHandler.Delete)

	payments := api.Group("/payments", authed)
	payments.GET("", paymentHandler.List)
	payments.GET("/:id", paymentHandler.Get)
	payments.POST("", middleware.RequireRoles(models.RoleStudent), paymentHandler.Create)
	payments.PUT("/:id", adminOnly, paymentHandler.UpdateStatus)
	payments.DELETE("/:id", adminOnly, paymentHandler.Delete)
	payments.GET("/:id/receipt", paymentHandler.Receipt)

	interactions := api.Group("/interactions", authed)
	interactions.GET("", interactionHandler.List)
	interactions.GET("/:id", interactionHandler.Get)
	interactions.POST("", interactionHandler.Log)
	interactions.DELETE("/:id", interactionHandler.Delete)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("forced shutdown", zap.Error(err))
	}
}
