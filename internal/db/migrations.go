package db

import (
	"gorm.io/gorm"
)

// EnsureDeviceMACIndex guarantees the unique index on devices.mac. Racing
// "not found, create it" registrations are resolved here: the losing insert
// fails with a constraint violation.
func EnsureDeviceMACIndex(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	if db.Migrator().HasIndex("devices", "idx_devices_mac") {
		return nil
	}
	switch db.Dialector.Name() {
	case "postgres":
		return db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_devices_mac ON "devices" ("mac")`).Error
	default:
		return db.Exec("CREATE UNIQUE INDEX idx_devices_mac ON `devices` (`mac`)").Error
	}
}
