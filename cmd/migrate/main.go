package main

import (
	"context"
	"flag"
	"log"
	"time"

	"govent/internal/config"
	"govent/internal/database"
)

func main() {
	dir := flag.String("dir", "migrations", "directory containing *.up.sql files")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := database.ApplyMigrations(ctx, db, *dir); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	log.Println("migrations applied")
}
