// Команда seed создает или обновляет учетную запись администратора в Postgres.
//
//	go run ./cmd/seed -username admin -password secret
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/Dosada05/pickleball-tournament/config"
	"github.com/Dosada05/pickleball-tournament/db"
	"github.com/Dosada05/pickleball-tournament/repositories"
	"github.com/Dosada05/pickleball-tournament/services"
	"github.com/joho/godotenv"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	username := flag.String("username", "admin", "admin username")
	password := flag.String("password", "", "admin password (or SEED_ADMIN_PASSWORD)")
	hashOnly := flag.Bool("hash", false, "print a bcrypt hash for ADMIN_PASSWORD_HASH and exit")
	flag.Parse()

	_ = godotenv.Load()
	if *password == "" {
		*password = os.Getenv("SEED_ADMIN_PASSWORD")
	}
	if *password == "" {
		logger.Error("password is required")
		os.Exit(2)
	}

	hash, err := services.HashPassword(*password)
	if err != nil {
		logger.Error("failed to hash password", slog.Any("error", err))
		os.Exit(1)
	}
	if *hashOnly {
		os.Stdout.WriteString(hash + "\n")
		return
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Error("DATABASE_URL environment variable is not set")
		os.Exit(1)
	}
	if backend := os.Getenv("STORE_BACKEND"); backend != "" && backend != config.StorePostgres {
		logger.Warn("STORE_BACKEND is not postgres; set ADMIN_USERNAME and ADMIN_PASSWORD_HASH instead", slog.String("backend", backend))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dbConn, err := db.Connect(dsn, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbConn.Close()

	if err := db.Migrate(ctx, dbConn); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}

	created, err := services.EnsureUser(ctx, repositories.NewPostgresUserRepository(dbConn), *username, hash)
	if err != nil {
		logger.Error("failed to seed admin", slog.Any("error", err))
		os.Exit(1)
	}
	if created {
		logger.Info("admin created", slog.String("username", *username))
	} else {
		logger.Info("admin password updated", slog.String("username", *username))
	}
}
