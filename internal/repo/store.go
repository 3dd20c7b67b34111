package repo

import (
	"errors"

	"wrtcloud/internal/models"

	"gorm.io/gorm"
)

// Store is the gorm-backed persistence layer, keyed by canonical MAC.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store { return &Store{db: db} }

func (s *Store) Device(mac string) (models.Device, bool, error) {
	var d models.Device
	if err := s.db.Where("mac = ?", mac).First(&d).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Device{}, false, nil
		}
		return models.Device{}, false, err
	}
	return d, true, nil
}

// RegisterDevice creates the device and its seed configuration in one
// transaction: a failed config insert rolls the device row back, so no
// device exists without a configuration.
func (s *Store) RegisterDevice(dev models.Device, cfg models.Configuration) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&dev).Error; err != nil {
			return err
		}
		return tx.Create(&cfg).Error
	})
}

func (s *Store) Config(mac string) (models.Configuration, bool, error) {
	var c models.Configuration
	if err := s.db.Where("device_mac = ?", mac).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Configuration{}, false, nil
		}
		return models.Configuration{}, false, err
	}
	return c, true, nil
}

func (s *Store) Stats(mac string) (models.Statistics, bool, error) {
	var st models.Statistics
	if err := s.db.Where("device_mac = ?", mac).First(&st).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Statistics{}, false, nil
		}
		return models.Statistics{}, false, err
	}
	return st, true, nil
}

func (s *Store) SaveStats(st models.Statistics) error {
	var cur models.Statistics
	err := s.db.Where("device_mac = ?", st.DeviceMAC).First(&cur).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.db.Create(&st).Error
		}
		return err
	}
	return s.db.Model(&cur).Updates(map[string]any{
		"status":       st.Status,
		"cpu_load":     st.CPULoad,
		"memory_usage": st.MemoryUsage,
		"last_seen":    st.LastSeen,
	}).Error
}

// ── admin store contract ────────────────────────────────────────

func (s *Store) ListDevices() ([]models.Device, error) {
	var out []models.Device
	err := s.db.Order("mac").Find(&out).Error
	return out, err
}

func (s *Store) UpdateConfig(cfg models.Configuration) error {
	return s.db.Save(&cfg).Error
}

// DeleteDevice removes the device with its configuration and statistics.
func (s *Store) DeleteDevice(mac string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("device_mac = ?", mac).Delete(&models.Statistics{}).Error; err != nil {
			return err
		}
		if err := tx.Where("device_mac = ?", mac).Delete(&models.Configuration{}).Error; err != nil {
			return err
		}
		return tx.Where("mac = ?", mac).Delete(&models.Device{}).Error
	})
}
