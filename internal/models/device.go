package models

import (
	"time"

	"gorm.io/gorm"
)

// Device — one managed unit of the fleet. The canonical (uppercase) MAC is
// the external key for everything; created exactly once per MAC by the
// provisioning flow, deleted only through the admin API.
type Device struct {
	gorm.Model
	MAC         string `gorm:"column:mac;size:32;uniqueIndex"`
	DeviceModel string `gorm:"column:model;size:64"`
	Name        string `gorm:"size:64"`
	Description string `gorm:"size:128"`
}

// Configuration — the server-authoritative config, one-to-one with Device.
// Seeded from the device's first report, afterwards changed only by admins.
type Configuration struct {
	gorm.Model
	DeviceMAC string `gorm:"column:device_mac;size:32;uniqueIndex"`
	Hostname  string `gorm:"size:64"`
	IP        string `gorm:"column:ip;size:32"`
	Netmask   string `gorm:"size:32"`
	Gateway   string `gorm:"size:32"`
	DNS1      string `gorm:"column:dns1;size:32"`
	DNS2      string `gorm:"column:dns2;size:32"`
}

// Statistics — latest telemetry snapshot, one-to-one with Device.
// Fully replaced on every report; no history.
type Statistics struct {
	gorm.Model
	DeviceMAC   string    `gorm:"column:device_mac;size:32;uniqueIndex"`
	Status      string    `gorm:"size:32"`
	CPULoad     float64   `gorm:"column:cpu_load"`
	MemoryUsage float64   `gorm:"column:memory_usage"`
	LastSeen    time.Time `gorm:"column:last_seen"`
}

// AuditEntry — best-effort audit record with optional device/user refs.
type AuditEntry struct {
	gorm.Model
	Severity  string `gorm:"size:32;index"`
	Message   string `gorm:"size:128"`
	DeviceMAC string `gorm:"column:device_mac;size:32;index"`
	User      string `gorm:"column:username;size:64"` // "user" is reserved in postgres
}
