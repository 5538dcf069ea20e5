package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/wennsouza/marcai-server/cmd/api"
	"github.com/wennsouza/marcai-server/cmd/models"
	"github.com/wennsouza/marcai-server/db"
)

func main() {
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "migrate":
			runMigrations()
			return
		case "clear-db":
			runDatabaseClear()
			return
		default:
			log.Fatal().Str("command", os.Args[1]).Msg("unknown command")
		}
	}

	startServer()
}

func runMigrations() {
	DB, err := db.NewPSQLStorage()
	if err != nil {
		log.Fatal().Err(err).Msg("database initialization error")
	}
	defer closeDB(DB)

	log.Info().Msg("connected to the database for migrations")

	if err := performMigrations(DB); err != nil {
		log.Fatal().Err(err).Msg("migration error")
	}
	log.Info().Msg("migrations completed successfully")
}

func performMigrations(DB *gorm.DB) error {
	migrations := []struct {
		model interface{}
		name  string
	}{
		{&models.User{}, "User"},
		{&models.PasswordResetToken{}, "PasswordResetToken"},
		{&models.Professional{}, "Professional"},
		{&models.Service{}, "Service"},
		{&models.WeeklySchedule{}, "WeeklySchedule"},
		{&models.SpecialDate{}, "SpecialDate"},
		{&models.Appointment{}, "Appointment"},
		{&models.Review{}, "Review"},
	}

	log.Info().Msg("starting database migrations")
	for _, m := range migrations {
		if err := DB.AutoMigrate(m.model); err != nil {
			return fmt.Errorf("error migrating %s table: %w", m.name, err)
		}
		log.Info().Str("table", m.name).Msg("migration successful")
	}
	return nil
}

func startServer() {
	DB, err := db.NewPSQLStorage()
	if err != nil {
		log.Fatal().Err(err).Msg("database initialization error")
	}
	defer closeDB(DB)
	log.Info().Msg("connected to the database")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}
	server := api.NewApiServer(":"+port, DB)

	go func() {
		if err := server.Run(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-quit
	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}

func closeDB(DB *gorm.DB) {
	sqlDB, err := DB.DB()
	if err == nil {
		sqlDB.Close()
	}
	log.Info().Msg("database connection closed")
}

func runDatabaseClear() {
	DB, err := db.NewPSQLStorage()
	if err != nil {
		log.Fatal().Err(err).Msg("database initialization error")
	}
	defer closeDB(DB)

	var confirmation string
	fmt.Print("Are you sure you want to clear the database? (yes/no): ")
	fmt.Scanln(&confirmation)

	if confirmation != "yes" {
		log.Info().Msg("database clearing cancelled")
		return
	}

	tables := []interface{}{
		&models.Review{},
		&models.Appointment{},
		&models.SpecialDate{},
		&models.WeeklySchedule{},
		&models.Service{},
		&models.Professional{},
		&models.PasswordResetToken{},
		&models.User{},
	}

	for _, table := range tables {
		if err := DB.Migrator().DropTable(table); err != nil {
			log.Warn().Err(err).Msgf("warning dropping table %T", table)
		} else {
			log.Info().Msgf("table %T dropped", table)
		}
	}

	log.Info().Msg("database cleared successfully")
}
