package database

import (
	"log"
	"strings"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"

	// registers the cgo-free "sqlite" driver used for local development
	_ "modernc.org/sqlite"

	"stayhub/internal/domain"
)

func Connect(dsn string) (*gorm.DB, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		log.Println("Connecting to PostgreSQL...")
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}

	log.Println("Using SQLite for local development:", dsn)

	return gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		&gorm.Config{},
	)
}

// postgresDDL holds the schema pieces AutoMigrate cannot express.
// idx_no_double_booking is the concurrency backstop for reservations:
// the transactional conflict re-check stops sequential double booking,
// but under READ COMMITTED two concurrent transactions can both count
// zero conflicts, and only this exclusion constraint rejects the
// second commit. Half-open stay ranges, so back-to-back bookings
// (check-out day == check-in day) never collide.
var postgresDDL = []string{
	`CREATE EXTENSION IF NOT EXISTS btree_gist`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'idx_no_double_booking') THEN
			ALTER TABLE bookings ADD CONSTRAINT idx_no_double_booking
				EXCLUDE USING gist (
					property_id WITH =,
					tstzrange(check_in_date, check_out_date) WITH &&
				) WHERE (status IN ('pending', 'confirmed', 'active'));
		END IF;
	END $$`,
}

// Migrate creates the core tables and, on Postgres, the
// no-double-booking exclusion constraint. SQLite gets the plain
// schema only, so local runs keep working; there the conflict
// re-check alone holds because SQLite serializes writers.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.Property{},
		&domain.Booking{},
		&domain.Payment{},
		&domain.Dispute{},
		&domain.JobLock{},
		&domain.LedgerEntry{},
	); err != nil {
		return err
	}

	if db.Dialector.Name() == "postgres" {
		for _, stmt := range postgresDDL {
			if err := db.Exec(stmt).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
