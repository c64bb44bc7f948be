package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron"

	config "github.com/maheshrc27/postsheet/configs"
	"github.com/maheshrc27/postsheet/internal/api"
	"github.com/maheshrc27/postsheet/internal/api/handlers"
	"github.com/maheshrc27/postsheet/internal/api/middleware"
	job "github.com/maheshrc27/postsheet/internal/jobs"
	"github.com/maheshrc27/postsheet/internal/queue"
	"github.com/maheshrc27/postsheet/internal/repository"
	"github.com/maheshrc27/postsheet/internal/service"
	"github.com/maheshrc27/postsheet/pkg/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()
	ctx := context.Background()

	// sheets
	var backend repository.SheetsBackend
	if cfg.GoogleSheetID == "" {
		log.Println("Warning: GOOGLE_SHEET_ID is empty, using in-memory sheets")
		backend = repository.NewMemorySheets()
	} else {
		b, err := repository.NewGoogleSheetsBackend(ctx, cfg.GoogleSheetID, cfg.GoogleCredentialsFile, cfg.GoogleAPIKey)
		if err != nil {
			log.Fatalf("Failed to connect to Google Sheets: %v", err)
		}
		backend = b
	}
	sheetRepo := repository.NewSheetRepository(backend)
	initCtx, cancel := context.WithTimeout(ctx, cfg.RemoteTimeout)
	if err := sheetRepo.Initialize(initCtx); err != nil {
		log.Printf("Warning: Failed to initialize sheets: %v", err)
	}
	cancel()

	backupRepo, err := repository.NewBackupRepository(cfg.ScheduleFile)
	if err != nil {
		log.Fatalf("Failed to open schedule file: %v", err)
	}

	// forwarding history is optional
	var db *sql.DB
	var historyRepo repository.PostingHistoryRepository
	if cfg.PostgresURI != "" {
		db, err = sql.Open("postgres", cfg.PostgresURI)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		if err := db.Ping(); err != nil {
			log.Fatalf("Database is unreachable: %v", err)
		}
		hr := repository.NewPostingHistoryRepository(db)
		if err := hr.EnsureSchema(ctx); err != nil {
			log.Fatalf("Failed to create posting_history: %v", err)
		}
		historyRepo = hr
	}

	var storage service.ObjectStorage
	if cfg.R2.Enabled() {
		r2Service, err := service.NewR2Service(ctx, cfg.R2)
		if err != nil {
			log.Fatalf("Failed to configure R2: %v", err)
		}
		storage = r2Service
	}

	secretKey := cfg.SecretKey
	if secretKey == "" {
		log.Println("Warning: SECRET_KEY is empty, tokens will not survive a restart")
		secretKey, err = utils.GenerateRandomKey(32)
		if err != nil {
			log.Fatalf("Failed to generate secret key: %v", err)
		}
	}
	tokenRepo := repository.NewTokenRepository(cfg.LinkedIn.TokenFile, utils.DeriveKey(secretKey))

	publishService := service.NewPublishService(cfg.WebhookURL, cfg.RemoteTimeout, backupRepo, historyRepo)
	mediaService := service.NewMediaService(storage)
	linkedInService := service.NewLinkedInService(cfg.LinkedIn, tokenRepo, secretKey)

	var scheduler queue.Scheduler
	var asynqServer *asynq.Server
	switch cfg.SchedulerBackend {
	case config.SchedulerBackendAsynq:
		redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
		scheduler = queue.NewAsynqScheduler(redisConn)

		asynqServer = asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
			Queues:      map[string]int{queue.QueueName: 1},
		})
		mux := queue.NewServeMux(queue.NewWorker(publishService))
		go func() {
			log.Println("Starting the Asynq server...")
			if err := asynqServer.Run(mux); err != nil {
				log.Fatalf("Could not start Asynq server: %v", err)
			}
		}()
	default:
		scheduler = queue.NewTimerQueue(publishService)
	}

	scheduleService := service.NewScheduleService(sheetRepo, backupRepo, scheduler, mediaService, historyRepo, cfg.RemoteTimeout)

	if cfg.RestoreTimers {
		n, err := scheduleService.RestoreTimers(ctx)
		if err != nil {
			log.Printf("Warning: Failed to restore timers: %v", err)
		}
		log.Printf("Restored %d pending timers", n)
	}

	// cron jobs
	reconcileJob := job.NewReconcileJob(scheduleService, cfg.RestoreTimers, cfg.RemoteTimeout)
	refreshTokenJob := job.NewTokenRefreshJob(linkedInService)

	c := cron.New()
	if err := c.AddFunc(cfg.ReconcileSpec, reconcileJob.Run); err != nil {
		log.Fatalf("Invalid RECONCILE_SPEC %q: %v", cfg.ReconcileSpec, err)
	}
	if err := c.AddFunc(cfg.TokenRefreshSpec, refreshTokenJob.RefreshTokens); err != nil {
		log.Fatalf("Invalid TOKEN_REFRESH_SPEC %q: %v", cfg.TokenRefreshSpec, err)
	}
	c.Start()

	app := api.NewApp()
	api.RegisterRoutes(app, api.Handlers{
		Schedule: handlers.NewScheduleHandler(scheduleService),
		LinkedIn: handlers.NewLinkedInHandler(linkedInService),
		Secret:   middleware.NewSecretMiddleware(cfg.ScheduleSecret),
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Printf("Server is running on http://localhost:%s", cfg.Port)

	gracefulShutdown(app, c, scheduler, asynqServer, db)
}

func closeDB(db *sql.DB) {
	if db == nil {
		return
	}
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, c *cron.Cron, scheduler queue.Scheduler, srv *asynq.Server, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	c.Stop()
	if srv != nil {
		srv.Shutdown()
	}
	if err := scheduler.Close(); err != nil {
		log.Printf("Failed to close scheduler: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
