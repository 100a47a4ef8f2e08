package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"skill-exchange-system/handlers"
	"skill-exchange-system/middleware"
	"skill-exchange-system/models"
	"skill-exchange-system/services"
	"skill-exchange-system/utils"
	"skill-exchange-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // 10MB — avatars are the largest upload
	})

	// Load allowed origins from environment variable
	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true, // session cookie must travel with requests
		MaxAge:           86400,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitStorage(); err != nil {
		log.Fatal("failed to initialize avatar storage:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Profile{},
		&models.Skill{},
		&models.UserSkill{},
		&models.SkillStats{},
		&models.Match{},
		&models.Message{},
		&models.Session{},
		&models.Achievement{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	// --- Auth platform wiring: session validation + profile directory ---
	authServiceURL := os.Getenv("AUTH_SERVICE_URL")
	if authServiceURL == "" {
		log.Fatal("AUTH_SERVICE_URL environment variable not set")
	}
	serviceToken := os.Getenv("EXCHANGE_SERVICE_TOKEN")
	if serviceToken == "" {
		log.Fatal("EXCHANGE_SERVICE_TOKEN environment variable not set")
	}
	authClient := services.NewAuthClient(authServiceURL, serviceToken)

	// One deadline per request bounds auth validation and every store call
	// the handlers fan out.
	app.Use(middleware.RequestTimeout(10 * time.Second))
	// Identity is resolved once per request here and nowhere else.
	app.Use(middleware.SessionAuth(authClient))

	skillService := services.NewSkillService(db)
	searchService := services.NewSearchService(db)
	matchService := services.NewMatchService(db)
	messageService := services.NewMessageService(db)
	sessionService := services.NewSessionService(db)
	progressService := services.NewProgressService(db)
	profileService := services.NewProfileService(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	profileSyncWorker := workers.NewProfileSyncWorker(db, authServiceURL, "/api/v1/public/profiles", serviceToken)
	go func() {
		log.Println("Starting Profile Sync Worker...")
		profileSyncWorker.Start(ctx)
	}()

	statsWorker := workers.NewStatsWorker(db)
	go workers.PollSkillStats(ctx, statsWorker, 5*time.Minute)

	sessionService.StartCompletionScheduler()

	handlers.SetupSkillRoutes(app, skillService, searchService)
	handlers.SetupConversationRoutes(app, matchService, messageService)
	handlers.SetupProgressRoutes(app, sessionService, progressService)
	handlers.SetupProfileRoutes(app, profileService)

	// Local avatar fallback when no S3 bucket is configured
	app.Static("/uploads", "./uploads")

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Profile Sync Worker running")
	log.Println("✅ Skill stats polling running (every 5m)")
	log.Println("✅ Session completion scheduler running")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
