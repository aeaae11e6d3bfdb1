package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/service"
)

// Error codes returned in the "error" field of error bodies.
const (
	codeValidation         = "ValidationError"
	codeAlreadyCheckedIn   = "AlreadyCheckedIn"
	codeNoOpenCheckIn      = "NoOpenCheckIn"
	codeNotFound           = "NotFound"
	codeStorageUnavailable = "StorageUnavailable"
	codeRateLimited        = "RateLimited"
	codeBadJSON            = "bad_json"
	codeInternal           = "internal_error"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: code, Message: message})
}

// reply answers in the request's encoding: a protobuf Struct when the body
// was protobuf, JSON otherwise.
func reply(w http.ResponseWriter, r *http.Request, status int, v any) {
	if !isProtobuf(r) {
		writeJSON(w, status, v)
		return
	}
	msg, err := toStruct(v)
	if err != nil {
		http.Error(w, "proto encode error", http.StatusInternalServerError)
		return
	}
	writeProto(w, status, msg)
}

func replyError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	reply(w, r, status, errorBody{Error: code, Message: message})
}

// errorStatus maps a service error to its HTTP status, code and the message
// shown to the caller. Storage causes are never exposed.
func errorStatus(err error) (int, string, string) {
	switch {
	case errors.Is(err, service.ErrInvalidStaffID),
		errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrInvalidAction):
		return http.StatusBadRequest, codeValidation, err.Error()
	case errors.Is(err, service.ErrAlreadyCheckedIn):
		return http.StatusBadRequest, codeAlreadyCheckedIn, "Already checked in today"
	case errors.Is(err, service.ErrNoOpenCheckIn):
		return http.StatusNotFound, codeNoOpenCheckIn, "No check-in record found for today"
	case errors.Is(err, service.ErrUnknownStaff):
		return http.StatusNotFound, codeNotFound, "Staff member not found"
	case errors.Is(err, service.ErrStorageUnavailable):
		return http.StatusInternalServerError, codeStorageUnavailable, "Attendance storage unavailable"
	default:
		return http.StatusInternalServerError, codeInternal, "unexpected server error"
	}
}
