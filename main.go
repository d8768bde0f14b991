package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/streadway/amqp"

	"yourstyle/internal/handlers"
	"yourstyle/internal/middleware"
	"yourstyle/internal/models"
	"yourstyle/internal/repositories"
	"yourstyle/internal/services"
	"yourstyle/pkg/rabbitmq"

	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setConfigDefaults wires Viper to environment variables with sensible
// development defaults. DATABASE_DSN selects the Postgres instance in
// production; the sqlite driver with a local file is the default so the app
// runs with no infrastructure at all.
func setConfigDefaults() {
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("DB_DRIVER", "sqlite")
	viper.SetDefault("DATABASE_DSN", "yourstyle.db")
	viper.SetDefault("STORE_BACKEND", "db") // "db" or "memory"
	viper.SetDefault("JWT_SECRET", "change_me_in_production")
	viper.SetDefault("RABBITMQ_URL", "") // empty disables event publishing
	viper.AutomaticEnv()
}

// openDatabase opens the configured GORM store and migrates the schema.
func openDatabase() (*gorm.DB, error) {
	driver := viper.GetString("DB_DRIVER")
	dsn := viper.GetString("DATABASE_DSN")

	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.AutoMigrate(
		&models.Product{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

// buildStores assembles the repositories and unit of work for the configured
// backend. Both backends honor identical contracts; only the persistence
// location differs.
func buildStores(db *gorm.DB) (repositories.Stores, repositories.UnitOfWork) {
	if viper.GetString("STORE_BACKEND") == "memory" {
		products := repositories.NewInMemoryProductRepository()
		stores := repositories.Stores{
			Products: products,
			Carts:    repositories.NewInMemoryCartRepository(products),
			Orders:   repositories.NewInMemoryOrderRepository(),
		}
		return stores, repositories.NewInMemoryUnitOfWork(stores)
	}

	stores := repositories.Stores{
		Products: repositories.NewGORMProductRepository(db),
		Carts:    repositories.NewGORMCartRepository(db),
		Orders:   repositories.NewGORMOrderRepository(db),
	}
	return stores, repositories.NewGORMUnitOfWork(db)
}

// NewApp builds the Fiber application with all routes wired. The publisher
// may be nil, in which case checkout skips event publishing.
func NewApp(publisher services.OrderEventPublisher) (*fiber.App, *services.AuthService, error) {
	setConfigDefaults()

	var db *gorm.DB
	if viper.GetString("STORE_BACKEND") != "memory" {
		var err error
		db, err = openDatabase()
		if err != nil {
			return nil, nil, err
		}
	}

	stores, uow := buildStores(db)
	seedProducts(stores.Products)

	cartService := services.NewCartService(stores.Carts, stores.Products)
	checkoutService := services.NewCheckoutService(uow, publisher)
	authService := services.NewAuthService(viper.GetString("JWT_SECRET"))

	cartHandler := handlers.NewCartHandler(cartService)
	orderHandler := handlers.NewOrderHandler(checkoutService)

	app := fiber.New()
	app.Use(logger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	apiV1 := app.Group("/api/v1", middleware.AuthRequired(authService))
	cartHandler.RegisterRoutes(apiV1)
	orderHandler.RegisterRoutes(apiV1)

	return app, authService, nil
}

func main() {
	setConfigDefaults()
	appPort := viper.GetString("APP_PORT")
	rabbitMQURL := viper.GetString("RABBITMQ_URL")

	// The broker is optional: without it checkout still works, it just
	// publishes nothing.
	var mqClient *rabbitmq.Client
	var publisher services.OrderEventPublisher
	if rabbitMQURL != "" {
		var err error
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: rabbitMQURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
		publisher = mqClient
	}

	app, _, err := NewApp(publisher)
	if err != nil {
		log.Fatalf("Failed to build application: %v", err)
	}

	if mqClient != nil {
		go func() {
			log.Println("Starting RabbitMQ consumer for order events...")
			handler := func(msg amqp.Delivery) error {
				log.Printf("Received order event (tag %d): %s", msg.DeliveryTag, string(msg.Body))
				return nil
			}
			if consumerErr := mqClient.ConsumeOrderEvents(handler); consumerErr != nil {
				log.Printf("RabbitMQ consumer stopped: %v", consumerErr)
			}
		}()
	}

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

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}

// seedProducts populates an empty catalog with the initial storefront
// assortment so the cart has something to work against out of the box.
func seedProducts(repo repositories.ProductRepository) {
	count, err := repo.Count()
	if err != nil {
		log.Printf("Error checking catalog size: %v", err)
		return
	}
	if count > 0 {
		return
	}

	products := []models.Product{
		{Name: "Classic White Tee", Category: "tops", PriceCents: 1999, ImageURL: "/images/classic-white-tee.jpg", Description: "Everyday cotton t-shirt"},
		{Name: "Slim Fit Jeans", Category: "bottoms", PriceCents: 5499, ImageURL: "/images/slim-fit-jeans.jpg", Description: "Stretch denim, mid rise"},
		{Name: "Hooded Sweatshirt", Category: "tops", PriceCents: 3999, ImageURL: "/images/hooded-sweatshirt.jpg", Description: "Fleece-lined hoodie"},
		{Name: "Canvas Sneakers", Category: "shoes", PriceCents: 4599, ImageURL: "/images/canvas-sneakers.jpg", Description: "Low-top lace-up sneakers"},
		{Name: "Leather Belt", Category: "accessories", PriceCents: 2499, ImageURL: "/images/leather-belt.jpg", Description: "Full-grain leather belt"},
	}

	for i := range products {
		if err := repo.Create(&products[i]); err != nil {
			log.Printf("Error seeding product %s: %v", products[i].Name, err)
		} else {
			log.Printf("Seeded product: %s (ID: %s)", products[i].Name, products[i].ID)
		}
	}
}
