package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds the constraints AutoMigrate cannot express
func MigrateConstraints(db *gorm.DB) error {
	// Ticket seats are non-negative
	err := db.Exec(`
		DO $$
		BEGIN
			IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_tickets_seat_non_negative') THEN
				ALTER TABLE tickets ADD CONSTRAINT chk_tickets_seat_non_negative CHECK (x >= 0 AND y >= 0);
			END IF;
		END $$;
	`).Error
	if err != nil {
		return err
	}

	// Ticket counts per map
	return db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_tickets_map_created
		ON tickets (map_id, created_at);
	`).Error
}
