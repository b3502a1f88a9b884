package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"star-rewards-system/handlers"
	"star-rewards-system/middleware"
	"star-rewards-system/models"
	"star-rewards-system/services"
	"star-rewards-system/utils"
	"star-rewards-system/workers"

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
		BodyLimit: 20 * 1024 * 1024, // performance CSVs are small
	})

	// 🔐 GLOBAL: only Gateway requests allowed
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(allowedOriginsList, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-User-ID, X-User-Roles, X-Service-Token",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Group{},
		&models.Level{},
		&models.UserProfile{},
		&models.UserProgress{},
		&models.Task{},
		&models.TaskCompletion{},
		&models.Prize{},
		&models.Purchase{},
		&models.BattleType{},
		&models.Battle{},
		&models.BattleResult{},
		&models.PerformanceData{},
		&models.Notification{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	if err := utils.EnsureUploadDir(); err != nil {
		log.Fatal("failed to ensure upload dir:", err)
	}
	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	progressionService := services.NewProgressionService(db)
	ledgerService := services.NewLedgerService(db, progressionService)
	taskService := services.NewTaskService(db, ledgerService)
	shopService := services.NewShopService(db, ledgerService)
	battleService := services.NewBattleService(db)
	feedService := services.NewFeedService(db, progressionService)
	adminService := services.NewAdminService(db, ledgerService)

	exportClient, err := services.NewExportClientFromEnv()
	if err != nil {
		if errors.Is(err, services.ErrConfigurationMissing) {
			log.Println("⚠️  Remote export not configured — only file imports available")
		} else {
			log.Fatal("failed to configure export client:", err)
		}
	}
	importService := services.NewImportService(db, ledgerService, exportClient)

	// --- Employee sync worker ---
	hrServiceURL := os.Getenv("HR_SYNC_URL")
	if hrServiceURL == "" {
		log.Fatal("HR_SYNC_URL environment variable not set")
	}
	serviceToken := os.Getenv("STARS_SERVICE_TOKEN")
	syncWorker := workers.NewEmployeeSyncWorker(db, hrServiceURL, "/api/v1/public/employees", serviceToken)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	syncWorker.Start(ctx)

	battleService.StartBattleScheduler()

	handlers.SetupFeedRoutes(app, feedService)
	handlers.SetupTaskRoutes(app, taskService)
	handlers.SetupShopRoutes(app, shopService)
	handlers.SetupBattleRoutes(app, battleService)
	handlers.SetupImportRoutes(app, importService)
	handlers.SetupAdminRoutes(app, adminService)

	app.Static("/uploads", "./uploads")

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Employee Sync Worker running")
	log.Println("✅ Battle scheduler running (every 1m)")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")

	<-ctx.Done()
	log.Println("Shutting down server...")
}
