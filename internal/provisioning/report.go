package provisioning

import (
	"strconv"
	"strings"
)

// Report is the flattened content of one validated provisioning request.
// MAC is already canonical (uppercase).
type Report struct {
	MAC         string
	Model       string
	Status      string
	CPULoad     float64
	MemoryUsage float64

	Hostname string
	IP       string
	Netmask  string
	Gateway  string
	DNS1     string
	DNS2     string
}

// reportFromPayload extracts the report from a schema-validated payload.
// Validation already proved presence and format of every field, so the
// lookups and the float parses cannot fail here.
func reportFromPayload(m map[string]any) Report {
	sys := section(m, "statistics", "system")
	cfgSys := section(m, "configuration", "system")
	cfgNet := section(m, "configuration", "network")

	cpu, _ := strconv.ParseFloat(stringify(sys["cpu_load"]), 64)
	mem, _ := strconv.ParseFloat(stringify(sys["memory_usage"]), 64)

	return Report{
		MAC:         strings.ToUpper(stringify(sys["mac"])),
		Model:       stringify(sys["model"]),
		Status:      stringify(sys["status"]),
		CPULoad:     cpu,
		MemoryUsage: mem,

		Hostname: stringify(cfgSys["hostname"]),
		IP:       stringify(cfgNet["ip"]),
		Netmask:  stringify(cfgNet["netmask"]),
		Gateway:  stringify(cfgNet["gateway"]),
		DNS1:     stringify(cfgNet["dns1"]),
		DNS2:     stringify(cfgNet["dns2"]),
	}
}

func section(m map[string]any, keys ...string) map[string]any {
	for _, k := range keys {
		next, _ := m[k].(map[string]any)
		if next == nil {
			return map[string]any{}
		}
		m = next
	}
	return m
}
