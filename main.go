package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"pantri/internal/handlers"
	"pantri/internal/middleware"
	"pantri/internal/models"
	"pantri/internal/repositories"
	"pantri/internal/services"
	"pantri/pkg/openfoodfacts"
	"pantri/pkg/rabbitmq"

	"github.com/spf13/viper"
)

func main() {
	// --- Configuration ---
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("JWT_SECRET", "change-me-in-production")
	viper.SetDefault("OPENFOODFACTS_BASE_URL", openfoodfacts.DefaultBaseURL)
	viper.SetDefault("ENRICHMENT_INTERVAL", "1h")
	viper.AutomaticEnv()

	appPort := viper.GetString("APP_PORT")
	jwtSecret := viper.GetString("JWT_SECRET")
	databaseURL := viper.GetString("DATABASE_URL")
	rabbitMQURL := viper.GetString("RABBITMQ_URL")
	enrichmentInterval := viper.GetDuration("ENRICHMENT_INTERVAL")

	// --- Database ---
	db, err := openDatabase(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Household{},
		&models.HouseholdMember{},
		&models.HouseholdInvitation{},
		&models.Product{},
		&models.Location{},
		&models.PantryItem{},
	); err != nil {
		log.Fatalf("Failed to migrate database schema: %v", err)
	}

	// --- RabbitMQ (optional) ---
	var events services.EventPublisher
	if rabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: rabbitMQURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
		events = mqClient

		go func() {
			log.Println("Starting RabbitMQ consumer for pantry events...")
			messageHandler := func(msg amqp.Delivery) error {
				log.Printf("Received %s event (Tag: %d): %s", msg.Type, msg.DeliveryTag, string(msg.Body))
				return nil
			}
			if consumerErr := mqClient.ConsumeEvents(messageHandler); consumerErr != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
			}
		}()
	} else {
		log.Println("RABBITMQ_URL not set, event publishing disabled")
	}

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	householdRepo := repositories.NewGORMHouseholdRepository(db)
	memberRepo := repositories.NewGORMHouseholdMemberRepository(db)
	invitationRepo := repositories.NewGORMHouseholdInvitationRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)
	locationRepo := repositories.NewGORMLocationRepository(db)
	itemRepo := repositories.NewGORMPantryItemRepository(db)

	// --- Services ---
	identity := services.NewIdentityResolver(userRepo)
	invitationService := services.NewHouseholdInvitationService(identity, invitationRepo, memberRepo, householdRepo, userRepo, events)
	authService := services.NewAuthService(userRepo, jwtSecret, invitationService)
	householdService := services.NewHouseholdService(identity, householdRepo, memberRepo)
	memberService := services.NewHouseholdMemberService(identity, memberRepo, householdRepo, userRepo)
	lookup := openfoodfacts.NewClient(viper.GetString("OPENFOODFACTS_BASE_URL"))
	productService := services.NewProductService(identity, productRepo, lookup)
	locationService := services.NewLocationService(identity, locationRepo, householdRepo, memberRepo)
	itemService := services.NewPantryItemService(identity, itemRepo, locationRepo, productRepo, memberRepo)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	householdHandler := handlers.NewHouseholdHandler(householdService, memberService)
	invitationHandler := handlers.NewInvitationHandler(invitationService)
	productHandler := handlers.NewProductHandler(productService)
	locationHandler := handlers.NewLocationHandler(locationService)
	itemHandler := handlers.NewPantryItemHandler(itemService)

	// --- Fiber App ---
	app := fiber.New()
	app.Use(logger.New())

	apiV1 := app.Group("/api/v1")
	authHandler.RegisterRoutes(apiV1)

	protected := apiV1.Group("", middleware.AuthRequired(authService))
	householdHandler.RegisterRoutes(protected)
	invitationHandler.RegisterRoutes(protected)
	productHandler.RegisterRoutes(protected)
	locationHandler.RegisterRoutes(protected)
	itemHandler.RegisterRoutes(protected)

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Enrichment retry loop ---
	// Products whose external lookup failed at creation are retried on a
	// schedule until they succeed or hit the attempt cap.
	enrichmentDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(enrichmentInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				enriched, err := productService.RetryAPIEnrichment()
				if err != nil {
					log.Printf("Enrichment retry pass failed: %v", err)
					continue
				}
				if enriched > 0 {
					log.Printf("Enriched %d product(s) from retry queue", enriched)
				}
			case <-enrichmentDone:
				return
			}
		}
	}()

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", appPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")
	close(enrichmentDone)

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}

// openDatabase connects to Postgres when DATABASE_URL is set and falls back to
// an in-memory SQLite database otherwise, which keeps local development
// dependency-free.
func openDatabase(databaseURL string) (*gorm.DB, error) {
	if databaseURL != "" {
		return gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
	}
	log.Println("DATABASE_URL not set, using in-memory SQLite")
	return gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
}
