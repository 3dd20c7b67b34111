package provisioning

import (
	"encoding/json"
	"errors"
	"net/http"

	"wrtcloud/internal/audit"
	"wrtcloud/internal/models"

	"github.com/gorilla/mux"
)

// Handler serves the device-facing provisioning endpoint. The pipeline is
// strictly sequential and short-circuits on the first failing stage:
// decode → validate → authenticate → register → stats → diff → respond.
type Handler struct {
	svc          *Service
	sharedSecret string
	audit        *audit.Logger
}

func NewHandler(svc *Service, sharedSecret string, aud *audit.Logger) *Handler {
	return &Handler{svc: svc, sharedSecret: sharedSecret, audit: aud}
}

// RegisterRoutes mounts the agent endpoint. No method matcher on purpose:
// the agents expect 400, not 405, for anything but POST.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/wrtapp/provisioning", h.provision)
}

type provisionResponse struct {
	ConfigStatus  string       `json:"config_status"`
	Configuration *ConfigDelta `json:"configuration,omitempty"`
}

func (h *Handler) provision(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		models.WriteProblem(w, http.StatusBadRequest, "Bad request", "provisioning accepts POST only", nil)
		return
	}

	// UseNumber keeps numeric literals intact for the schema patterns.
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		h.audit.Error("provisioning: malformed JSON: " + err.Error())
		models.WriteProblem(w, http.StatusBadRequest, "Bad JSON", err.Error(), nil)
		return
	}

	if err := validate(provSchema, payload); err != nil {
		h.audit.Error("provisioning: schema mismatch: " + err.Error())
		models.WriteProblem(w, http.StatusBadRequest, "Schema mismatch", err.Error(), nil)
		return
	}

	rep := reportFromPayload(payload)

	if !tokenValid(h.sharedSecret, stringify(payload["token"])) {
		h.audit.DeviceError("provisioning: token mismatch", rep.MAC)
		models.WriteProblem(w, http.StatusForbidden, "Forbidden", "invalid token", nil)
		return
	}

	if err := h.svc.Register(rep); err != nil {
		h.audit.DeviceError("registration failed: "+err.Error(), rep.MAC)
		models.WriteProblem(w, http.StatusInternalServerError, "Registration failed", "cannot persist device", map[string]string{"mac": rep.MAC})
		return
	}

	if err := h.svc.UpdateStats(rep); err != nil {
		h.audit.DeviceError("stats update failed: "+err.Error(), rep.MAC)
		models.WriteProblem(w, http.StatusInternalServerError, "Stats update failed", "cannot persist statistics", map[string]string{"mac": rep.MAC})
		return
	}

	status, delta, err := h.svc.BuildConfig(rep)
	if err != nil {
		h.audit.DeviceError("config diff failed: "+err.Error(), rep.MAC)
		detail := "configuration lookup failed"
		if !errors.Is(err, ErrNotFound) {
			detail = "configuration lookup error"
		}
		models.WriteProblem(w, http.StatusNotFound, "Not found", detail, map[string]string{"mac": rep.MAC})
		return
	}

	h.audit.DeviceDebug("provisioned, config "+status, rep.MAC)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(provisionResponse{ConfigStatus: status, Configuration: delta})
}
