package db

import (
	"fmt"
	"log"

	"musicschool_backend/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB(dsn string) *gorm.DB {
	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatal("Failed to migrate models: ", err)
	}
	log.Println("Database connected")
	return DB
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Instrument{}, &models.LoanEvent{}); err != nil {
		return err
	}

	// Checked-out rows must carry a loan type; available/maintenance rows
	// must not. Mirrors the registry invariant at the storage layer.
	if err := db.Exec(fmt.Sprintf(`
	  ALTER TABLE %s DROP CONSTRAINT IF EXISTS %s_status_loan_type;
	`, models.InstrumentTable, models.InstrumentTable)).Error; err != nil {
		return err
	}
	if err := db.Exec(fmt.Sprintf(`
	  ALTER TABLE %s ADD CONSTRAINT %s_status_loan_type CHECK (
	    (status IN ('borrowed','loaned') AND loan_type IS NOT NULL)
	    OR (status IN ('available','maintenance') AND loan_type IS NULL)
	  );
	`, models.InstrumentTable, models.InstrumentTable)).Error; err != nil {
		return err
	}

	// History reads are per instrument, newest first.
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_instrument_createdat_desc
	  ON %s (instrument_id, created_at DESC);
	`, models.LoanEventTable, models.LoanEventTable)).Error; err != nil {
		return err
	}

	return nil
}
