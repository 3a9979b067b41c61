package main

import (
	"log"
	"net/http"

	"fleet_ops/internal/config"
	"fleet_ops/internal/logger"
	"fleet_ops/internal/middleware"
	"fleet_ops/internal/routes"
)

func main() {
	// Initialize structured logging to file
	logger.Setup()

	// Connect to the database
	config.InitDB()

	// Setup Gin router (recovery + request logging registered inside)
	r := routes.SetupRouter()

	// Wrap with CORS
	handler := middleware.EnableCORS(r)

	log.Println("Server running at :8080")
	log.Fatal(http.ListenAndServe("0.0.0.0:8080", handler))
}
