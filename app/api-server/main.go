package main

import (
	"context"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/hirelens/hirelens/config"
	"github.com/hirelens/hirelens/internal/api/handlers"
	"github.com/hirelens/hirelens/internal/api/middleware"
	"github.com/hirelens/hirelens/internal/api/routes"
	"github.com/hirelens/hirelens/internal/cache"
	"github.com/hirelens/hirelens/internal/logger"
	"github.com/hirelens/hirelens/internal/providers/mlservice"
	mongorepo "github.com/hirelens/hirelens/internal/repositories/mongo"
	"github.com/hirelens/hirelens/internal/services"
	"github.com/hirelens/hirelens/internal/storage"
)

func main() {
	_ = godotenv.Load()

	log := logger.New()

	if err := config.InitMongo(); err != nil {
		log.WithError(err).Fatal("mongodb init failed")
	}
	log.Info("mongodb connected")

	if err := config.EnsureMongoIndexes(); err != nil {
		log.WithError(err).Fatal("mongodb index setup failed")
	}

	if err := config.InitRedis(); err != nil {
		log.WithError(err).Fatal("redis init failed")
	}
	log.Info("redis connected")

	db := config.MongoDatabase()
	resumeRepo := mongorepo.NewResumeRepo(db)
	jobRepo := mongorepo.NewJobRepo(db)
	userRepo := mongorepo.NewUserRepo(db)
	analyticsRepo := mongorepo.NewAnalyticsRepo(db)

	redisCache := cache.NewRedisCache(config.RedisClient)
	mlClient := mlservice.NewClient(log)
	store := buildStore(log)

	matchSvc := services.NewMatchService(resumeRepo, jobRepo, mlClient, redisCache, log, services.LoadMatchConfig())
	resumeSvc := services.NewResumeService(resumeRepo, mlClient, store, log)
	jobSvc := services.NewJobService(jobRepo, resumeRepo, redisCache, log)
	authSvc := services.NewAuthService(userRepo, log)
	analyticsSvc := services.NewAnalyticsService(analyticsRepo, redisCache, log)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))

	routes.RegisterRoutes(r, routes.Deps{
		Auth:      handlers.NewAuthHandler(authSvc),
		Resumes:   handlers.NewResumeHandler(resumeSvc),
		Jobs:      handlers.NewJobHandler(jobSvc),
		Match:     handlers.NewMatchHandler(matchSvc),
		Analytics: handlers.NewAnalyticsHandler(analyticsSvc),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.WithField("port", port).Info("server starting")
	if err := r.Run(":" + port); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

// buildStore picks GCS when a bucket is configured and falls back to local
// disk otherwise.
func buildStore(log *logrus.Logger) storage.Store {
	if bucket := os.Getenv("GCS_BUCKET"); bucket != "" {
		store, err := storage.NewGCSStore(context.Background(), bucket)
		if err != nil {
			log.WithError(err).Fatal("gcs init failed")
		}
		log.WithField("bucket", bucket).Info("using gcs storage")
		return store
	}

	dir := os.Getenv("UPLOAD_DIR")
	if dir == "" {
		dir = "uploads"
	}
	store, err := storage.NewLocalStore(dir)
	if err != nil {
		log.WithError(err).Fatal("local storage init failed")
	}
	log.WithField("dir", dir).Info("using local storage")
	return store
}
