package provisioning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReport() Report {
	return Report{
		MAC:         "AA:BB:CC:11:22:33",
		Model:       "WRT-3200ACM",
		Status:      "OK",
		CPULoad:     23.5,
		MemoryUsage: 41.2,
		Hostname:    "h1",
		IP:          "1.1.1.1",
		Netmask:     "2.2.2.2",
		Gateway:     "3.3.3.3",
		DNS1:        "4.4.4.4",
		DNS2:        "5.5.5.5",
	}
}

func TestRegisterSeedsDeviceAndConfig(t *testing.T) {
	store := NewMemStore()
	svc := NewService(store)
	rep := testReport()

	require.NoError(t, svc.Register(rep))

	dev, found, err := store.Device(rep.MAC)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, defaultName, dev.Name)
	assert.Equal(t, defaultDescription, dev.Description)
	assert.Equal(t, rep.Model, dev.DeviceModel)

	cfg, found, err := store.Config(rep.MAC)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, rep.Hostname, cfg.Hostname)
	assert.Equal(t, rep.DNS2, cfg.DNS2)
}

func TestRegisterIsIdempotent(t *testing.T) {
	store := NewMemStore()
	svc := NewService(store)
	rep := testReport()

	require.NoError(t, svc.Register(rep))
	cfgBefore, _, _ := store.Config(rep.MAC)

	// Second report with a drifted config must not reseed anything.
	rep2 := rep
	rep2.Hostname = "h-drifted"
	require.NoError(t, svc.Register(rep2))

	ds, err := store.ListDevices()
	require.NoError(t, err)
	require.Len(t, ds, 1)

	cfgAfter, _, _ := store.Config(rep.MAC)
	assert.Equal(t, cfgBefore, cfgAfter)
}

func TestUpdateStatsCreatesThenOverwrites(t *testing.T) {
	store := NewMemStore()
	svc := NewService(store)
	rep := testReport()
	require.NoError(t, svc.Register(rep))

	require.NoError(t, svc.UpdateStats(rep))
	first, found, err := store.Stats(rep.MAC)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 23.5, first.CPULoad)
	assert.False(t, first.LastSeen.IsZero())

	rep.CPULoad = 77.7
	rep.Status = "DEGRADED"
	require.NoError(t, svc.UpdateStats(rep))

	second, _, _ := store.Stats(rep.MAC)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 77.7, second.CPULoad)
	assert.Equal(t, "DEGRADED", second.Status)
}

func TestUpdateStatsRejectsUnregisteredDevice(t *testing.T) {
	svc := NewService(NewMemStore())
	err := svc.UpdateStats(testReport())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestBuildConfigUnchanged(t *testing.T) {
	store := NewMemStore()
	svc := NewService(store)
	rep := testReport()
	require.NoError(t, svc.Register(rep))

	status, delta, err := svc.BuildConfig(rep)
	require.NoError(t, err)
	assert.Equal(t, StatusUnchanged, status)
	assert.Nil(t, delta)
}

func TestBuildConfigSingleFieldDelta(t *testing.T) {
	store := NewMemStore()
	svc := NewService(store)
	rep := testReport()
	require.NoError(t, svc.Register(rep))

	cfg, _, _ := store.Config(rep.MAC)
	cfg.Hostname = "h2"
	require.NoError(t, store.UpdateConfig(cfg))

	status, delta, err := svc.BuildConfig(rep)
	require.NoError(t, err)
	assert.Equal(t, StatusChanged, status)
	require.NotNil(t, delta)
	require.NotNil(t, delta.System)
	assert.Equal(t, "h2", delta.System.Hostname)
	assert.Nil(t, delta.Network)
}

func TestBuildConfigAllNetworkFields(t *testing.T) {
	store := NewMemStore()
	svc := NewService(store)
	rep := testReport()
	require.NoError(t, svc.Register(rep))

	cfg, _, _ := store.Config(rep.MAC)
	cfg.IP = "9.9.9.1"
	cfg.Netmask = "9.9.9.2"
	cfg.Gateway = "9.9.9.3"
	cfg.DNS1 = "9.9.9.4"
	cfg.DNS2 = "9.9.9.5"
	require.NoError(t, store.UpdateConfig(cfg))

	status, delta, err := svc.BuildConfig(rep)
	require.NoError(t, err)
	assert.Equal(t, StatusChanged, status)
	require.NotNil(t, delta.Network)
	assert.Equal(t, &NetworkDelta{
		IP:      "9.9.9.1",
		Netmask: "9.9.9.2",
		Gateway: "9.9.9.3",
		DNS1:    "9.9.9.4",
		DNS2:    "9.9.9.5",
	}, delta.Network)
	assert.Nil(t, delta.System)
}

func TestBuildConfigExactStringComparison(t *testing.T) {
	store := NewMemStore()
	svc := NewService(store)
	rep := testReport()
	require.NoError(t, svc.Register(rep))

	cfg, _, _ := store.Config(rep.MAC)
	cfg.IP = "1.01.1.1" // same address, different spelling
	require.NoError(t, store.UpdateConfig(cfg))

	status, delta, err := svc.BuildConfig(rep)
	require.NoError(t, err)
	assert.Equal(t, StatusChanged, status)
	assert.Equal(t, "1.01.1.1", delta.Network.IP)
}

func TestBuildConfigMissingDevice(t *testing.T) {
	svc := NewService(NewMemStore())
	_, _, err := svc.BuildConfig(testReport())
	require.ErrorIs(t, err, ErrNotFound)
}
