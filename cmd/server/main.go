package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"petit-bac/internal/config"
	"petit-bac/internal/db"
	"petit-bac/internal/dictionary"
	"petit-bac/internal/server"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	cfg := config.Load()

	conn, err := db.Open()
	if err != nil {
		log.Printf("running without a database: %v", err)
		conn = nil
	} else {
		if err := db.Configure(conn, cfg); err != nil {
			log.Fatalf("database pool setup failed: %v", err)
		}
		if err := db.Migrate(conn); err != nil {
			log.Fatalf("database migration failed: %v", err)
		}
	}

	dict := dictionary.New(conn)
	srv := server.New(conn, cfg, dict)
	if err := srv.Restore(); err != nil {
		log.Printf("room restore failed: %v", err)
	}
	srv.StartCleanup(context.Background())

	addr := ":8080"
	if env := os.Getenv("PORT"); env != "" {
		addr = ":" + env
	}
	log.Printf("petit-bac server listening on %s", addr)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		log.Fatal(err)
	}
}
