package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS trip_records (
		id UUID PRIMARY KEY,
		area TEXT NOT NULL DEFAULT '',
		vehicle_number TEXT NOT NULL,
		tanker_type TEXT NOT NULL DEFAULT '',
		transporter_name TEXT NOT NULL DEFAULT '',
		report_date VARCHAR(10) NOT NULL,
		report_day DATE NOT NULL,
		trip_distance TEXT NOT NULL DEFAULT '',
		trip_count INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_trip_vehicle_date ON trip_records (vehicle_number, report_date);`,
	`CREATE INDEX IF NOT EXISTS idx_trip_report_day ON trip_records (report_day);`,
	`CREATE INDEX IF NOT EXISTS idx_trip_area ON trip_records (area) WHERE area <> '';`,
	`CREATE INDEX IF NOT EXISTS idx_trip_transporter ON trip_records (transporter_name) WHERE transporter_name <> '';`,
	`CREATE TABLE IF NOT EXISTS generated_reports (
		id UUID PRIMARY KEY,
		verification_code TEXT NOT NULL,
		title TEXT NOT NULL,
		date_from DATE NOT NULL,
		date_to DATE NOT NULL,
		filters JSONB NOT NULL DEFAULT '{}'::jsonb,
		generated_by TEXT NOT NULL,
		generated_at TIMESTAMPTZ NOT NULL,
		file_name TEXT NOT NULL,
		content BYTEA NOT NULL
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_generated_report_code ON generated_reports (verification_code);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
