package devices

import (
	"encoding/json"
	"net/http"
	"strings"

	"wrtcloud/internal/audit"
	"wrtcloud/internal/models"

	"github.com/gorilla/mux"
)

// Store is the slice of the persistence layer the admin API needs.
type Store interface {
	ListDevices() ([]models.Device, error)
	Device(mac string) (models.Device, bool, error)
	Config(mac string) (models.Configuration, bool, error)
	Stats(mac string) (models.Statistics, bool, error)
	UpdateConfig(cfg models.Configuration) error
	DeleteDevice(mac string) error
}

type HTTP struct {
	store Store
	audit *audit.Logger
}

func NewHTTP(store Store, aud *audit.Logger) *HTTP {
	return &HTTP{store: store, audit: aud}
}

func (h *HTTP) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/devices", h.listDevices).Methods(http.MethodGet)
	api.HandleFunc("/devices/{mac}", h.getDevice).Methods(http.MethodGet)
	api.HandleFunc("/devices/{mac}", h.deleteDevice).Methods(http.MethodDelete)
	api.HandleFunc("/devices/{mac}/config", h.getConfig).Methods(http.MethodGet)
	api.HandleFunc("/devices/{mac}/config", h.updateConfig).Methods(http.MethodPut, http.MethodPatch)
	api.HandleFunc("/devices/{mac}/stats", h.getStats).Methods(http.MethodGet)
}

// macVar canonicalizes the path MAC the same way the provisioning flow does.
func macVar(r *http.Request) string {
	return strings.ToUpper(mux.Vars(r)["mac"])
}

func (h *HTTP) listDevices(w http.ResponseWriter, _ *http.Request) {
	ds, err := h.store.ListDevices()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(ds)
}

func (h *HTTP) getDevice(w http.ResponseWriter, r *http.Request) {
	mac := macVar(r)
	d, found, err := h.store.Device(mac)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !found {
		models.WriteProblem(w, http.StatusNotFound, "Not found", "device not found", map[string]string{"mac": mac})
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(d)
}

func (h *HTTP) deleteDevice(w http.ResponseWriter, r *http.Request) {
	mac := macVar(r)
	_, found, err := h.store.Device(mac)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !found {
		models.WriteProblem(w, http.StatusNotFound, "Not found", "device not found", map[string]string{"mac": mac})
		return
	}
	if err := h.store.DeleteDevice(mac); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.audit.DeviceWarning("device deleted by admin", mac)
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTP) getConfig(w http.ResponseWriter, r *http.Request) {
	mac := macVar(r)
	cfg, found, err := h.store.Config(mac)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !found {
		models.WriteProblem(w, http.StatusNotFound, "Not found", "configuration not found", map[string]string{"mac": mac})
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(cfg)
}

// updateConfig is the administrative path that makes the provisioning diff
// non-empty: whatever is set here is what the fleet converges to.
func (h *HTTP) updateConfig(w http.ResponseWriter, r *http.Request) {
	mac := macVar(r)
	cfg, found, err := h.store.Config(mac)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !found {
		models.WriteProblem(w, http.StatusNotFound, "Not found", "configuration not found", map[string]string{"mac": mac})
		return
	}

	var in struct {
		Hostname *string `json:"hostname"`
		IP       *string `json:"ip"`
		Netmask  *string `json:"netmask"`
		Gateway  *string `json:"gateway"`
		DNS1     *string `json:"dns1"`
		DNS2     *string `json:"dns2"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if in.Hostname != nil {
		cfg.Hostname = *in.Hostname
	}
	if in.IP != nil {
		cfg.IP = *in.IP
	}
	if in.Netmask != nil {
		cfg.Netmask = *in.Netmask
	}
	if in.Gateway != nil {
		cfg.Gateway = *in.Gateway
	}
	if in.DNS1 != nil {
		cfg.DNS1 = *in.DNS1
	}
	if in.DNS2 != nil {
		cfg.DNS2 = *in.DNS2
	}

	if err := h.store.UpdateConfig(cfg); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.audit.DeviceDebug("configuration updated by admin", mac)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(cfg)
}

func (h *HTTP) getStats(w http.ResponseWriter, r *http.Request) {
	mac := macVar(r)
	st, found, err := h.store.Stats(mac)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !found {
		models.WriteProblem(w, http.StatusNotFound, "Not found", "statistics not found", map[string]string{"mac": mac})
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(st)
}
