package main

import (
	"context"
	"log"
	"os"
	"time"

	"emojify-be/internal/repository/unitofwork"
	"emojify-be/pkg/database"
	"emojify-be/pkg/quota"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

// Bulk monthly usage reset for FREE accounts. Safe to run any number of
// times: it applies the same predicate the lazy request-path reset uses, so
// a user already reset this month is not touched again.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	periodStart := quota.FirstOfMonth(time.Now())

	color.Cyan("Resetting free-plan usage counters (period start: %s)...", periodStart.Format("2006-01-02"))

	uow := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(ctx)
	affected, err := uow.UserRepository().BulkResetFreeUsage(ctx, periodStart)
	if err != nil {
		color.Red("Reset failed: %v", err)
		os.Exit(1)
	}

	color.Green("Done. %d accounts reset.", affected)
}
