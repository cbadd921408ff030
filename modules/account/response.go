package account

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

const maxBodyBytes = 1 << 20

// Response is the JSON envelope every handler writes.
type Response struct {
	Data  any          `json:"data,omitempty"`
	Error *ErrorDetail `json:"error,omitempty"`
}

// ErrorDetail describes a failed request.
type ErrorDetail struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Details map[string][]string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, v any) {
	writeJSON(w, http.StatusOK, Response{Data: v})
}

func writeErrorDetail(w http.ResponseWriter, status int, detail *ErrorDetail) {
	writeJSON(w, status, Response{Error: detail})
}

var errMalformedBody = errors.New("malformed request body")

// decodeJSON reads at most maxBodyBytes of JSON from r into v.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return errors.Join(errMalformedBody, err)
	}
	return nil
}
