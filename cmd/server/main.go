package main

import (
	"log"
	"os"

	"github.com/bruno.lopes/dutyplanner/internal/api"
	"github.com/bruno.lopes/dutyplanner/internal/database"
)

func main() {
	db, err := database.Initialize("./data/dutyplanner.db")
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server, err := api.NewServer(db)
	if err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
	log.Printf("Starting server on port %s", port)
	if err := server.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
