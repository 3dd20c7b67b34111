package models

import (
	"encoding/json"
	"net/http"
)

// Problem — machine-readable error body, loosely after RFC 7807.
type Problem struct {
	Title  string            `json:"title"`
	Status int               `json:"status"`
	Detail string            `json:"detail,omitempty"`
	Meta   map[string]string `json:"meta,omitempty"`
}

func WriteProblem(w http.ResponseWriter, status int, title, detail string, meta map[string]string) {
	w.Header().Set("Content-Type", "application/problem+json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Problem{Title: title, Status: status, Detail: detail, Meta: meta})
}
