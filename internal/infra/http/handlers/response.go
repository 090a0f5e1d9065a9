package handlers

import (
	"encoding/json"
	"net/http"
)

type ContactResponse struct {
	Success bool   `json:"success,omitempty"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
