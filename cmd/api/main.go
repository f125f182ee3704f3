package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/becaslatam/becas-api/api/swagger"
	"github.com/becaslatam/becas-api/internal/coordinator"
	"github.com/becaslatam/becas-api/internal/handler"
	"github.com/becaslatam/becas-api/internal/middleware"
	"github.com/becaslatam/becas-api/internal/models"
	"github.com/becaslatam/becas-api/internal/notifier"
	"github.com/becaslatam/becas-api/internal/repository"
	"github.com/becaslatam/becas-api/internal/service"
	"github.com/becaslatam/becas-api/pkg/archive"
	"github.com/becaslatam/becas-api/pkg/cache"
	"github.com/becaslatam/becas-api/pkg/config"
	"github.com/becaslatam/becas-api/pkg/database"
	"github.com/becaslatam/becas-api/pkg/graph"
	"github.com/becaslatam/becas-api/pkg/logger"
	corsmiddleware "github.com/becaslatam/becas-api/pkg/middleware/cors"
	reqidmiddleware "github.com/becaslatam/becas-api/pkg/middleware/requestid"
)

// @title Becas Enrollment API
// @version 1.0.0
// @description Admission-control API for the scholarship enrollment platform
// @BasePath /api/v1
// @schemes http

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	var graphStore notifier.GraphStore
	if cfg.Graph.Enabled {
		driver, err := graph.NewNeo4j(cfg.Graph)
		if err != nil {
			logr.Fatal("failed to connect to neo4j", zap.Error(err))
		}
		defer driver.Close(context.Background()) //nolint:errcheck
		graphStore = notifier.NewGraphNotifier(driver)
	}

	var archiveStore notifier.ArchiveStore
	if cfg.Archive.Enabled {
		session, err := archive.NewCassandra(cfg.Archive)
		if err != nil {
			logr.Fatal("failed to connect to cassandra", zap.Error(err))
		}
		defer session.Close()
		archiveStore = notifier.NewArchiveNotifier(session)
	}

	applicantRepo := repository.NewApplicantRepository(db)
	institutionRepo := repository.NewInstitutionRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)

	metricsSvc := service.NewMetricsService()
	coord := coordinator.New(redisClient, applicantRepo, cfg.Enrollment.BackfillTTL, logr, metricsSvc)
	events := notifier.NewEvents(graphStore, archiveStore, logr)

	enrollmentSvc := service.NewEnrollmentService(coord, applicantRepo, institutionRepo,
		subscriptionRepo, events, cfg.Enrollment.ReservationTTL, logr)
	applicantSvc := service.NewApplicantService(applicantRepo, coord, events, logr)
	institutionSvc := service.NewInstitutionService(institutionRepo, logr)

	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc)
	applicantHandler := handler.NewApplicantHandler(applicantSvc, enrollmentSvc)
	institutionHandler := handler.NewInstitutionHandler(institutionSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("estado", func(fl validator.FieldLevel) bool {
			return models.ApplicantStatus(fl.Field().String()).Valid()
		})
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		checks := gin.H{"postgres": "ok", "coordinator": "ok"}
		if err := db.PingContext(ctx); err != nil {
			checks["postgres"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		if err := coord.Ping(ctx); err != nil {
			checks["coordinator"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": http.StatusText(status), "checks": checks})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		enrollment := api.Group("/enrollment")
		{
			enrollment.GET("/check/:dni", enrollmentHandler.Check)
			enrollment.POST("/submit", enrollmentHandler.Submit)
			enrollment.POST("/subscribe", enrollmentHandler.Subscribe)
			enrollment.GET("/status/:institucion_slug", enrollmentHandler.InstitutionStats)
			enrollment.GET("/stats", enrollmentHandler.PlatformStats)
		}

		applicants := api.Group("/estudiantes")
		{
			applicants.POST("", applicantHandler.Create)
			applicants.GET("/:id", applicantHandler.Get)
			applicants.PUT("/:id", applicantHandler.Update)
			applicants.DELETE("/:id", applicantHandler.Delete)
			applicants.GET("/institucion/:slug", applicantHandler.ListByInstitution)
			if cfg.Exports.Enabled {
				applicants.GET("/institucion/:slug/export", applicantHandler.Export)
			}
		}

		institutions := api.Group("/instituciones")
		{
			institutions.GET("", institutionHandler.List)
			institutions.GET("/:slug", institutionHandler.Get)
			institutions.POST("", institutionHandler.Create)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
