package main

import (
	"inventory_system/internal/config" // Custom import path (Config)
	"inventory_system/internal/db"     // Custom import path (Database)
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Database Source Name (DSN) for MySQL connection
	db.Migrate(cfg.DSN())
}
