package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/streadway/amqp"
	"gorm.io/gorm"

	"tracker/internal/config"
	"tracker/internal/database"
	"tracker/internal/repositories"
	"tracker/internal/server"
	"tracker/internal/services"
	"tracker/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// --- Initialize Store ---
	deps, db, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize %s store: %v", cfg.DBDriver, err)
	}
	if db != nil {
		defer func() {
			if err := database.Close(db); err != nil {
				log.Printf("Error closing database: %v", err)
			}
		}()
	}

	// --- Initialize RabbitMQ Client ---
	// Events are optional: without RABBITMQ_URL the publisher stays nil.
	if cfg.EventsEnabled() {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{
			URL:      cfg.RabbitMQURL,
			Exchange: cfg.EventsExchange,
			Queue:    cfg.EventsQueue,
		})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
		deps.Publisher = mqClient

		// --- Start Audit Consumer ---
		if err := mqClient.ConsumeEvents(func(msg amqp.Delivery) error {
			return services.AuditEvent(msg.RoutingKey, msg.Body)
		}); err != nil {
			log.Printf("Failed to start audit consumer: %v", err)
		}
	} else {
		log.Println("RABBITMQ_URL not set, domain events disabled")
	}

	// --- Initialize Fiber App ---
	app, err := server.NewApp(cfg, deps)
	if err != nil {
		log.Fatalf("Failed to build app: %v", err)
	}

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", cfg.AppPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
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

// openStore builds the repositories for the configured driver. The returned
// *gorm.DB is nil for the memory driver.
func openStore(cfg *config.Config) (server.Dependencies, *gorm.DB, error) {
	if cfg.DBDriver == config.DriverMemory {
		log.Println("Using in-memory store; data is lost on exit")
		return server.Dependencies{
			Users:      repositories.NewMemoryUserRepository(),
			Activities: repositories.NewMemoryActivityRepository(),
		}, nil, nil
	}

	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		return server.Dependencies{}, nil, err
	}
	return server.Dependencies{
		Users:      repositories.NewGORMUserRepository(db),
		Activities: repositories.NewGORMActivityRepository(db),
		DB:         db,
	}, db, nil
}
