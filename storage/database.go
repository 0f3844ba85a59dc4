package storage

import (
	"log"
	"os"

	"github.com/Am01102007/Proyecto-GoHost-sub000/models"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func connectToDB() *gorm.DB {
	// Only load .env in development (when RENDER env var is not set)
	if os.Getenv("RENDER") == "" {
		err := godotenv.Load()
		if err != nil {
			log.Println("Warning: Could not load .env file (this is normal in production)")
		}
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Panic("DB_CONNECTION_STRING environment variable is required")
	}

	db, dbError := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if dbError != nil {
		log.Panic("error connection to db: " + dbError.Error())
	}

	DB = db
	return db
}

func performMigrations(db *gorm.DB) {
	db.AutoMigrate(
		&models.Conversation{}, // create table containing many side first
		&models.Message{},
		&models.User{},
		&models.Accommodation{},
		&models.Comment{},
		&models.Reservation{},
		&models.Reminder{},
	)

	// Backstop for the no-overlap invariant: the application checks
	// availability inside a transaction, the exclusion constraint catches
	// anything that slips past it.
	db.Exec("CREATE EXTENSION IF NOT EXISTS btree_gist;")
	db.Exec(`DO $$ BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'reservations_no_overlap') THEN
			ALTER TABLE reservations ADD CONSTRAINT reservations_no_overlap
			EXCLUDE USING gist (
				accommodation_id WITH =,
				daterange(check_in::date, check_out::date, '[)') WITH &&
			) WHERE (status <> 'cancelled' AND deleted = false);
		END IF;
	END $$;`)
}

func InitializeDB() *gorm.DB {
	db := connectToDB()
	performMigrations(db)
	return db
}
