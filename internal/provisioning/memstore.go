package provisioning

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"wrtcloud/internal/models"
)

// MemStore is the DB-less fallback store, mutex-guarded maps keyed by MAC.
// It implements the provisioning Store and the admin store contracts.
type MemStore struct {
	mu      sync.RWMutex
	devices map[string]models.Device
	configs map[string]models.Configuration
	stats   map[string]models.Statistics
	nextID  uint
}

func NewMemStore() *MemStore {
	return &MemStore{
		devices: make(map[string]models.Device),
		configs: make(map[string]models.Configuration),
		stats:   make(map[string]models.Statistics),
	}
}

func (m *MemStore) Device(mac string) (models.Device, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.devices[mac]
	return d, ok, nil
}

// RegisterDevice inserts both rows under one lock; a duplicate MAC fails the
// same way a unique-index violation would.
func (m *MemStore) RegisterDevice(dev models.Device, cfg models.Configuration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.devices[dev.MAC]; exists {
		return fmt.Errorf("device %s already exists", dev.MAC)
	}
	now := time.Now()

	m.nextID++
	dev.ID = m.nextID
	dev.CreatedAt = now
	dev.UpdatedAt = now
	m.devices[dev.MAC] = dev

	m.nextID++
	cfg.ID = m.nextID
	cfg.CreatedAt = now
	cfg.UpdatedAt = now
	m.configs[cfg.DeviceMAC] = cfg
	return nil
}

func (m *MemStore) Config(mac string) (models.Configuration, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.configs[mac]
	return c, ok, nil
}

func (m *MemStore) Stats(mac string) (models.Statistics, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.stats[mac]
	return st, ok, nil
}

func (m *MemStore) SaveStats(st models.Statistics) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.stats[st.DeviceMAC]; ok {
		st.ID = prev.ID
		st.CreatedAt = prev.CreatedAt
	} else {
		m.nextID++
		st.ID = m.nextID
		st.CreatedAt = time.Now()
	}
	st.UpdatedAt = time.Now()
	m.stats[st.DeviceMAC] = st
	return nil
}

// ── admin store contract ────────────────────────────────────────

func (m *MemStore) ListDevices() ([]models.Device, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Device, 0, len(m.devices))
	for _, d := range m.devices {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MAC < out[j].MAC })
	return out, nil
}

func (m *MemStore) UpdateConfig(cfg models.Configuration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, ok := m.configs[cfg.DeviceMAC]
	if !ok {
		return fmt.Errorf("configuration for %s not found", cfg.DeviceMAC)
	}
	cfg.ID = prev.ID
	cfg.CreatedAt = prev.CreatedAt
	cfg.UpdatedAt = time.Now()
	m.configs[cfg.DeviceMAC] = cfg
	return nil
}

func (m *MemStore) DeleteDevice(mac string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stats, mac)
	delete(m.configs, mac)
	delete(m.devices, mac)
	return nil
}
