package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/quizmaster-api/internal/config"
	"github.com/yourusername/quizmaster-api/internal/handler"
	"github.com/yourusername/quizmaster-api/internal/middleware"
	pgRepo "github.com/yourusername/quizmaster-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/quizmaster-api/internal/repository/redis"
	"github.com/yourusername/quizmaster-api/internal/service"
	"github.com/yourusername/quizmaster-api/internal/worker"
	"github.com/yourusername/quizmaster-api/internal/ws"
	"github.com/yourusername/quizmaster-api/pkg/auth"
	"github.com/yourusername/quizmaster-api/pkg/clock"
	"github.com/yourusername/quizmaster-api/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Подключение к PostgreSQL и миграции
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}
	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Подключение к Redis
	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}

	// Контекст приложения для фоновых горутин
	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Репозитории
	userRepo := pgRepo.NewUserRepo(db)
	subjectRepo := pgRepo.NewSubjectRepo(db)
	chapterRepo := pgRepo.NewChapterRepo(db)
	quizRepo := pgRepo.NewQuizRepo(db)
	questionRepo := pgRepo.NewQuestionRepo(db)
	attemptRepo := pgRepo.NewAttemptRepo(db)
	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to create cache repository: %v", err)
		os.Exit(1)
	}

	// JWT
	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpirationHrs)
	if err != nil {
		log.Printf("Failed to create JWT service: %v", err)
		os.Exit(1)
	}

	// Почта
	var emailService service.EmailService = &service.NoopEmailService{}
	if cfg.Email.Enabled {
		emailService, err = service.NewResendEmailService(cfg.Email.ResendAPIKey, cfg.Email.From)
		if err != nil {
			log.Printf("Failed to create email service: %v", err)
			os.Exit(1)
		}
	}

	// WebSocket hub
	hub := ws.NewHub()
	go hub.Run(appCtx)

	// Сервисы
	clk := clock.New()
	sink := service.NewInvalidationSink(cacheRepo, hub)
	authService := service.NewAuthService(userRepo, jwtService)
	catalogService := service.NewCatalogService(subjectRepo, chapterRepo, sink)
	quizService := service.NewQuizService(quizRepo, questionRepo, chapterRepo, cacheRepo, sink, clk)
	attemptService := service.NewAttemptService(quizRepo, attemptRepo, sink, clk)
	analyticsService := service.NewAnalyticsService(attemptRepo, userRepo, subjectRepo, chapterRepo, quizRepo, questionRepo, cacheRepo, clk)
	exportService := service.NewExportService(attemptRepo, userRepo, quizRepo, cacheRepo, clk)
	searchService := service.NewSearchService(subjectRepo, chapterRepo, quizRepo, questionRepo, userRepo, cacheRepo)

	// Воркеры экспорта
	exportWorkers := cfg.Export.Workers
	if exportWorkers < 1 {
		exportWorkers = 1
	}
	for i := 0; i < exportWorkers; i++ {
		w := worker.NewExportWorker(exportService, emailService, cacheRepo, hub, cfg.Export.Dir, cfg.Export.BaseURL)
		go w.Run(appCtx)
	}

	// Обработчики
	authHandler := handler.NewAuthHandler(authService)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	quizHandler := handler.NewQuizHandler(quizService)
	attemptHandler := handler.NewAttemptHandler(attemptService)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService)
	exportHandler := handler.NewExportHandler(exportService)
	searchHandler := handler.NewSearchHandler(searchService)
	wsHandler := handler.NewWSHandler(hub, jwtService)

	authMiddleware := middleware.NewAuthMiddleware(jwtService)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	isProduction := os.Getenv("GIN_MODE") == "release"

	router := gin.Default()

	// Настройка доверенных прокси для корректной работы c.ClientIP()
	if isProduction {
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	// Настройка CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Готовые файлы экспорта
	router.Static("/exports", cfg.Export.Dir)

	api := router.Group("/api")
	{
		// Аутентификация
		authGroup := api.Group("/auth")
		{
			strictLimit := rateLimiter.Limit(middleware.StrictAuthRateLimitConfig())
			authGroup.POST("/register", strictLimit, authHandler.Register)
			authGroup.POST("/login", strictLimit, authHandler.Login)
			authGroup.GET("/profile", authMiddleware.RequireAuth(), authHandler.Profile)
		}

		// Маршруты, требующие аутентификации
		authed := api.Group("/")
		authed.Use(authMiddleware.RequireAuth())
		authed.Use(rateLimiter.Limit(middleware.DefaultAPIRateLimitConfig()))
		{
			// Каталог (чтение)
			authed.GET("/subjects", catalogHandler.ListSubjects)
			authed.GET("/subjects/:id", middleware.ExtractUintParam("id", "subjectID"), catalogHandler.GetSubject)
			authed.GET("/subjects/:id/chapters", middleware.ExtractUintParam("id", "subjectID"), catalogHandler.ListChapters)

			// Викторины для прохождения
			authed.GET("/quizzes/available", quizHandler.ListAvailable)
			authed.GET("/quizzes/:id/status", middleware.ExtractUintParam("id", "quizID"), quizHandler.GetQuizStatus)
			authed.POST("/quizzes/:id/attempts", middleware.ExtractUintParam("id", "quizID"), attemptHandler.StartAttempt)

			// Попытки
			submitLimit := rateLimiter.Limit(middleware.SubmitRateLimitConfig())
			authed.POST("/attempts/:id/submit", middleware.ExtractUintParam("id", "attemptID"), submitLimit, attemptHandler.SubmitAttempt)
			authed.GET("/attempts/:id", middleware.ExtractUintParam("id", "attemptID"), attemptHandler.GetAttempt)
			authed.GET("/attempts", attemptHandler.ListMyAttempts)
			authed.GET("/attempts/export", exportHandler.DownloadMine)

			// Аналитика
			authed.GET("/leaderboard", analyticsHandler.Leaderboard)
			authed.GET("/performance", analyticsHandler.MyPerformance)

			// Поиск
			authed.GET("/search", searchHandler.Search)
		}

		// Административные маршруты
		admin := api.Group("/admin")
		admin.Use(authMiddleware.RequireAuth(), authMiddleware.AdminOnly())
		{
			admin.POST("/subjects", catalogHandler.CreateSubject)
			admin.PUT("/subjects/:id", middleware.ExtractUintParam("id", "subjectID"), catalogHandler.UpdateSubject)
			admin.DELETE("/subjects/:id", middleware.ExtractUintParam("id", "subjectID"), catalogHandler.DeleteSubject)
			admin.POST("/subjects/:id/chapters", middleware.ExtractUintParam("id", "subjectID"), catalogHandler.CreateChapter)
			admin.PUT("/chapters/:id", middleware.ExtractUintParam("id", "chapterID"), catalogHandler.UpdateChapter)
			admin.DELETE("/chapters/:id", middleware.ExtractUintParam("id", "chapterID"), catalogHandler.DeleteChapter)

			admin.GET("/quizzes", quizHandler.ListQuizzes)
			admin.POST("/chapters/:id/quizzes", middleware.ExtractUintParam("id", "chapterID"), quizHandler.CreateQuiz)
			admin.GET("/quizzes/:id", middleware.ExtractUintParam("id", "quizID"), quizHandler.GetQuiz)
			admin.PUT("/quizzes/:id", middleware.ExtractUintParam("id", "quizID"), quizHandler.UpdateQuiz)
			admin.DELETE("/quizzes/:id", middleware.ExtractUintParam("id", "quizID"), quizHandler.DeleteQuiz)

			admin.POST("/quizzes/:id/questions", middleware.ExtractUintParam("id", "quizID"), quizHandler.AddQuestion)
			admin.PUT("/questions/:id", middleware.ExtractUintParam("id", "questionID"), quizHandler.UpdateQuestion)
			admin.DELETE("/questions/:id", middleware.ExtractUintParam("id", "questionID"), quizHandler.DeleteQuestion)

			admin.GET("/overview", analyticsHandler.AdminOverview)
			admin.GET("/export", exportHandler.Download)
			admin.POST("/export/jobs", exportHandler.Enqueue)
			admin.GET("/export/jobs/:taskID", exportHandler.TaskStatus)
		}
	}

	// WebSocket
	router.GET("/ws", wsHandler.Connect)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Server error: %v", err)
			os.Exit(1)
		}
	}()
	log.Printf("Server started on port %s", cfg.Server.Port)

	// Graceful shutdown по SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Останавливаем фоновые горутины (hub, воркеры)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	if err := redisClient.Close(); err != nil {
		log.Printf("Error closing Redis client: %v", err)
	}

	log.Println("Server exited properly")
}
