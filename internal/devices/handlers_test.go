package devices

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"wrtcloud/internal/audit"
	"wrtcloud/internal/models"
	"wrtcloud/internal/provisioning"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAPI(t *testing.T) (*provisioning.MemStore, *mux.Router) {
	t.Helper()
	store := provisioning.NewMemStore()
	r := mux.NewRouter()
	NewHTTP(store, audit.New(nil, nil)).RegisterRoutes(r)
	return store, r
}

func seedDevice(t *testing.T, store *provisioning.MemStore, mac string) {
	t.Helper()
	err := store.RegisterDevice(
		models.Device{MAC: mac, DeviceModel: "WRT-3200ACM", Name: "Generic device"},
		models.Configuration{DeviceMAC: mac, Hostname: "h1", IP: "1.1.1.1", Netmask: "2.2.2.2", Gateway: "3.3.3.3", DNS1: "4.4.4.4", DNS2: "5.5.5.5"},
	)
	require.NoError(t, err)
}

func do(r *mux.Router, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, strings.NewReader(body)))
	return w
}

func TestListDevices(t *testing.T) {
	store, r := newTestAPI(t)
	seedDevice(t, store, "BB:00:00:00:00:01")
	seedDevice(t, store, "AA:00:00:00:00:01")

	w := do(r, http.MethodGet, "/api/v1/devices", "")
	require.Equal(t, http.StatusOK, w.Code)

	var ds []models.Device
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ds))
	require.Len(t, ds, 2)
	assert.Equal(t, "AA:00:00:00:00:01", ds[0].MAC, "listing is ordered by MAC")
}

func TestGetDeviceCanonicalizesMAC(t *testing.T) {
	store, r := newTestAPI(t)
	seedDevice(t, store, "AA:BB:CC:11:22:33")

	w := do(r, http.MethodGet, "/api/v1/devices/aa:bb:cc:11:22:33", "")
	require.Equal(t, http.StatusOK, w.Code)

	var d models.Device
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &d))
	assert.Equal(t, "AA:BB:CC:11:22:33", d.MAC)
}

func TestGetDeviceNotFound(t *testing.T) {
	_, r := newTestAPI(t)
	w := do(r, http.MethodGet, "/api/v1/devices/AA:BB:CC:11:22:33", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/problem+json; charset=utf-8", w.Header().Get("Content-Type"))
}

func TestUpdateConfigPartial(t *testing.T) {
	store, r := newTestAPI(t)
	seedDevice(t, store, "AA:BB:CC:11:22:33")

	w := do(r, http.MethodPut, "/api/v1/devices/AA:BB:CC:11:22:33/config", `{"hostname":"h2"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	cfg, found, err := store.Config("AA:BB:CC:11:22:33")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "h2", cfg.Hostname)
	assert.Equal(t, "1.1.1.1", cfg.IP, "omitted fields stay untouched")
	assert.Equal(t, "5.5.5.5", cfg.DNS2)
}

func TestUpdateConfigUnknownDevice(t *testing.T) {
	_, r := newTestAPI(t)
	w := do(r, http.MethodPut, "/api/v1/devices/AA:BB:CC:11:22:33/config", `{"hostname":"h2"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateConfigBadJSON(t *testing.T) {
	store, r := newTestAPI(t)
	seedDevice(t, store, "AA:BB:CC:11:22:33")
	w := do(r, http.MethodPut, "/api/v1/devices/AA:BB:CC:11:22:33/config", "{oops")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteDeviceCascades(t *testing.T) {
	store, r := newTestAPI(t)
	seedDevice(t, store, "AA:BB:CC:11:22:33")
	require.NoError(t, store.SaveStats(models.Statistics{DeviceMAC: "AA:BB:CC:11:22:33", Status: "OK"}))

	w := do(r, http.MethodDelete, "/api/v1/devices/AA:BB:CC:11:22:33", "")
	require.Equal(t, http.StatusNoContent, w.Code)

	_, found, _ := store.Device("AA:BB:CC:11:22:33")
	assert.False(t, found)
	_, found, _ = store.Config("AA:BB:CC:11:22:33")
	assert.False(t, found)
	_, found, _ = store.Stats("AA:BB:CC:11:22:33")
	assert.False(t, found)
}

func TestGetStats(t *testing.T) {
	store, r := newTestAPI(t)
	seedDevice(t, store, "AA:BB:CC:11:22:33")
	require.NoError(t, store.SaveStats(models.Statistics{DeviceMAC: "AA:BB:CC:11:22:33", Status: "OK", CPULoad: 12.5}))

	w := do(r, http.MethodGet, "/api/v1/devices/AA:BB:CC:11:22:33/stats", "")
	require.Equal(t, http.StatusOK, w.Code)

	var st models.Statistics
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.Equal(t, 12.5, st.CPULoad)
}

func TestGetStatsNotFound(t *testing.T) {
	store, r := newTestAPI(t)
	seedDevice(t, store, "AA:BB:CC:11:22:33")
	w := do(r, http.MethodGet, "/api/v1/devices/AA:BB:CC:11:22:33/stats", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
