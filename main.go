package main

import (
	"context"
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"

	"github.com/hmsdev/hospital-backend/database"
	"github.com/hmsdev/hospital-backend/routes"
	"github.com/hmsdev/hospital-backend/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("warning: no .env file loaded")
	}

	ctx := context.Background()
	pool, err := database.Connect(ctx)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatalf("schema migration failed: %v", err)
	}
	if err := database.Seed(ctx, pool); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}

	app := fiber.New(fiber.Config{
		AppName: "Hospital Management System API v1.0.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	routes.Setup(app, storage.NewPostgresStore(pool))

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(404).JSON(fiber.Map{
			"error":  "route not found",
			"path":   c.Path(),
			"method": c.Method(),
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	log.Printf("listening on :%s", port)
	log.Fatal(app.Listen(":" + port))
}
