package provisioning

import (
	"errors"
	"fmt"
	"time"

	"wrtcloud/internal/models"
)

// Store is the persistence contract the pipeline consumes. Implementations
// must enforce MAC uniqueness on device creation; a racing duplicate insert
// surfaces as an error from RegisterDevice.
type Store interface {
	Device(mac string) (models.Device, bool, error)
	// RegisterDevice persists the device and its seed configuration as one
	// atomic unit.
	RegisterDevice(dev models.Device, cfg models.Configuration) error
	Config(mac string) (models.Configuration, bool, error)
	Stats(mac string) (models.Statistics, bool, error)
	SaveStats(st models.Statistics) error
}

const (
	defaultName        = "Generic device"
	defaultDescription = "Automatically added"
)

// Diff outcome tags on the wire.
const (
	StatusUnchanged = "UNCHANGED"
	StatusChanged   = "CHANGED"
)

// ErrNotFound marks a lookup miss in the diff stage; the pipeline maps it
// to 404, unlike store failures elsewhere which are 500s.
var ErrNotFound = errors.New("not found")

type Service struct {
	store Store
}

func NewService(store Store) *Service { return &Service{store: store} }

// Register makes sure a device and its seed configuration exist for the
// reported MAC. Re-registration of a known device is a no-op, which keeps
// caller-side retries safe.
func (s *Service) Register(rep Report) error {
	_, found, err := s.store.Device(rep.MAC)
	if err != nil {
		return err
	}
	if found {
		return nil
	}

	dev := models.Device{
		MAC:         rep.MAC,
		DeviceModel: rep.Model,
		Name:        defaultName,
		Description: defaultDescription,
	}
	// First report is trusted as-is: it seeds the authoritative copy.
	cfg := models.Configuration{
		DeviceMAC: rep.MAC,
		Hostname:  rep.Hostname,
		IP:        rep.IP,
		Netmask:   rep.Netmask,
		Gateway:   rep.Gateway,
		DNS1:      rep.DNS1,
		DNS2:      rep.DNS2,
	}
	return s.store.RegisterDevice(dev, cfg)
}

// UpdateStats replaces the device's telemetry snapshot, last write wins.
// The device must already be registered.
func (s *Service) UpdateStats(rep Report) error {
	_, found, err := s.store.Device(rep.MAC)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("stats update for unregistered device %s", rep.MAC)
	}

	st, found, err := s.store.Stats(rep.MAC)
	if err != nil {
		return err
	}
	if !found {
		st = models.Statistics{DeviceMAC: rep.MAC}
	}
	st.Status = rep.Status
	st.CPULoad = rep.CPULoad
	st.MemoryUsage = rep.MemoryUsage
	st.LastSeen = time.Now()
	return s.store.SaveStats(st)
}

// ConfigDelta carries server-side values for the fields the device must
// adopt, grouped the way the agent expects them. Unchanged fields are
// omitted entirely.
type ConfigDelta struct {
	System  *SystemDelta  `json:"system,omitempty"`
	Network *NetworkDelta `json:"network,omitempty"`
}

type SystemDelta struct {
	Hostname string `json:"hostname,omitempty"`
}

type NetworkDelta struct {
	IP      string `json:"ip,omitempty"`
	Netmask string `json:"netmask,omitempty"`
	Gateway string `json:"gateway,omitempty"`
	DNS1    string `json:"dns1,omitempty"`
	DNS2    string `json:"dns2,omitempty"`
}

// BuildConfig diffs the report against the authoritative configuration.
// Comparison is exact string equality, no normalization: "10.0.0.1" and
// "10.00.0.1" differ. Returns StatusUnchanged with a nil delta when nothing
// differs.
func (s *Service) BuildConfig(rep Report) (string, *ConfigDelta, error) {
	_, found, err := s.store.Device(rep.MAC)
	if err != nil {
		return "", nil, err
	}
	if !found {
		return "", nil, fmt.Errorf("device %s: %w", rep.MAC, ErrNotFound)
	}
	cfg, found, err := s.store.Config(rep.MAC)
	if err != nil {
		return "", nil, err
	}
	if !found {
		return "", nil, fmt.Errorf("configuration for %s: %w", rep.MAC, ErrNotFound)
	}

	var delta ConfigDelta
	if rep.Hostname != cfg.Hostname {
		delta.System = &SystemDelta{Hostname: cfg.Hostname}
	}

	net := NetworkDelta{}
	netChanged := false
	if rep.IP != cfg.IP {
		net.IP = cfg.IP
		netChanged = true
	}
	if rep.Netmask != cfg.Netmask {
		net.Netmask = cfg.Netmask
		netChanged = true
	}
	if rep.Gateway != cfg.Gateway {
		net.Gateway = cfg.Gateway
		netChanged = true
	}
	if rep.DNS1 != cfg.DNS1 {
		net.DNS1 = cfg.DNS1
		netChanged = true
	}
	if rep.DNS2 != cfg.DNS2 {
		net.DNS2 = cfg.DNS2
		netChanged = true
	}
	if netChanged {
		delta.Network = &net
	}

	if delta.System == nil && delta.Network == nil {
		return StatusUnchanged, nil, nil
	}
	return StatusChanged, &delta, nil
}
