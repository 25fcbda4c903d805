package respond

import (
	"encoding/json"
	"net/http"
)

// JSON escribe v como application/json con el status dado.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ConflictBody es el payload de un 409: el cliente decide qué remediar con Conflict.
type ConflictBody struct {
	Error    string `json:"error"`
	Kind     string `json:"kind"`
	Conflict any    `json:"conflict,omitempty"`
}

func Conflict(w http.ResponseWriter, kind, msg string, conflicting any) {
	JSON(w, http.StatusConflict, ConflictBody{
		Error:    msg,
		Kind:     kind,
		Conflict: conflicting,
	})
}

// DecodeJSON decodifica el body rechazando campos desconocidos.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
