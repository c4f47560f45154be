package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"fintrack/internal/result"
)

// errorBody is the JSON shape of every non-success response.
type errorBody struct {
	Message     string            `json:"message"`
	Code        string            `json:"code,omitempty"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// statusFor maps a result onto an HTTP status. successStatus is used for the
// Success variant so creates can answer 201 and deletes 204.
func statusFor[T any](res result.ServiceResult[T], successStatus int) int {
	switch res.Status() {
	case result.StatusSuccess:
		return successStatus
	case result.StatusNotFound:
		return http.StatusNotFound
	case result.StatusValidationError:
		return http.StatusBadRequest
	case result.StatusBusinessError:
		if res.Code() == result.CodePayloadTooLarge {
			return http.StatusRequestEntityTooLarge
		}
		return http.StatusConflict
	default:
		// Shed-load and timeout outcomes are retryable, everything else is a
		// plain 500.
		if res.Code() == result.CodeUnavailable || res.Code() == result.CodeTimeout {
			return http.StatusServiceUnavailable
		}
		return http.StatusInternalServerError
	}
}

// writeResult renders a ServiceResult: the payload on success, an errorBody
// otherwise.
func writeResult[T any](w http.ResponseWriter, res result.ServiceResult[T], successStatus int) {
	status := statusFor(res, successStatus)
	if res.IsSuccess() {
		if status == http.StatusNoContent {
			w.WriteHeader(status)
			return
		}
		writeJSON(w, status, res.Data())
		return
	}

	body := errorBody{Message: res.Message(), Code: string(res.Code())}
	if len(res.FieldErrors()) > 0 {
		body.FieldErrors = res.FieldErrors()
	}
	writeJSON(w, status, body)
}

// decodeJSON decodes the request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Message: message})
}

// parseID reads a numeric path value.
func parseID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", name)
	}
	return id, nil
}
