package provisioning

import (
	"fmt"
	"regexp"
)

// schemaNode is either a leaf (pattern != nil) or a nested node (fields).
// Fields are walked in declaration order and the first violation wins, so
// the reported failure is deterministic.
type schemaNode struct {
	pattern *regexp.Regexp
	fields  []schemaField
}

type schemaField struct {
	key  string
	node schemaNode
}

func leaf(expr string) schemaNode { return schemaNode{pattern: regexp.MustCompile(expr)} }

func node(fields ...schemaField) schemaNode { return schemaNode{fields: fields} }

func field(key string, n schemaNode) schemaField { return schemaField{key: key, node: n} }

// provSchema mirrors the agent report shape. Leaves match the string form of
// the value, so numeric fields validate the literal the device sent (the
// request body is decoded with UseNumber).
var provSchema = node(
	field("statistics", node(
		field("system", node(
			field("mac", leaf(`^([a-fA-F0-9]{2}[:|\-]?){6}$`)),
			field("model", leaf(`^[\w\s\+\.\-]+$`)),
			field("cpu_load", leaf(`^\d+\.\d+$`)),
			field("memory_usage", leaf(`^\d+\.\d+$`)),
			field("status", leaf(`^[\w]+$`)),
		)),
	)),
	field("configuration", node(
		field("system", node(
			field("hostname", leaf(`^[\w]+$`)),
		)),
		field("network", node(
			field("ip", leaf(`^([0-9]+[\.]?){4}$`)),
			field("netmask", leaf(`^([0-9]+[\.]?){4}$`)),
			field("gateway", leaf(`^([0-9]+[\.]?){4}$`)),
			field("dns1", leaf(`^([0-9]+[\.]?){4}$`)),
			field("dns2", leaf(`^([0-9]+[\.]?){4}$`)),
		)),
	)),
	field("token", leaf(`^[a-fA-F0-9]{64}$`)),
)

// validate walks the schema depth-first. Schema keys are required; data keys
// absent from the schema are ignored. A nested schema node whose data value
// is not an object fails.
func validate(n schemaNode, data any) error {
	return validateAt(n, data, "")
}

func validateAt(n schemaNode, data any, path string) error {
	if n.pattern != nil {
		if s := stringify(data); !n.pattern.MatchString(s) {
			return fmt.Errorf("%s: value %q does not match %s", path, s, n.pattern)
		}
		return nil
	}
	obj, ok := data.(map[string]any)
	if !ok {
		return fmt.Errorf("%s: expected object", orRoot(path))
	}
	for _, f := range n.fields {
		child := f.key
		if path != "" {
			child = path + "." + f.key
		}
		v, present := obj[f.key]
		if !present {
			return fmt.Errorf("%s: missing", child)
		}
		if err := validateAt(f.node, v, child); err != nil {
			return err
		}
	}
	return nil
}

func orRoot(path string) string {
	if path == "" {
		return "payload"
	}
	return path
}

// stringify renders a decoded JSON value the way the schema patterns expect.
// json.Number keeps the wire literal, so "23.0" stays "23.0".
func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
