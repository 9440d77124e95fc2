package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"chirp/app/models"
	"chirp/app/services"
)

// RPC error codes carried in the error envelope.
const (
	CodeBadRequest      = "BAD_REQUEST"
	CodeValidationError = "VALIDATION_ERROR"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeNotFound        = "NOT_FOUND"
	CodeTooManyRequests = "TOO_MANY_REQUESTS"
	CodeInternal        = "INTERNAL_SERVER_ERROR"
)

const internalErrorMessage = "Internal server error"

// maxBodyBytes bounds a mutation's request body. A post is at most 280
// characters, so anything near this size is already invalid.
const maxBodyBytes = 16 << 10

var errBadInput = errors.New("invalid input")

type resultEnvelope struct {
	Result resultData `json:"result"`
}

type resultData struct {
	Data interface{} `json:"data"`
}

type errorEnvelope struct {
	Error RPCError `json:"error"`
}

// RPCError is the body of a failed procedure call.
type RPCError struct {
	Message    string `json:"message"`
	Code       string `json:"code"`
	HTTPStatus int    `json:"httpStatus"`
}

// decodeQueryInput reads a query procedure's input from the "input" query
// parameter. A missing parameter leaves v at its zero value.
func decodeQueryInput(r *http.Request, v interface{}) error {
	raw := r.URL.Query().Get("input")
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("%w: %v", errBadInput, err)
	}
	return nil
}

// decodeBodyInput reads a mutation's input from the request body, refusing
// bodies over maxBodyBytes.
func decodeBodyInput(w http.ResponseWriter, r *http.Request, v interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadInput, err)
	}
	return nil
}

// validateInput runs the struct's validation tags and marks failures as
// validation errors.
func validateInput(v interface{}) error {
	if err := models.ValidateStruct(v); err != nil {
		return fmt.Errorf("%w: %v", services.ErrValidationFailed, err)
	}
	return nil
}

func sendResult(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resultEnvelope{Result: resultData{Data: data}}); err != nil {
		slog.Error("failed to encode result", "error", err)
	}
}

func sendError(w http.ResponseWriter, r *http.Request, err error) {
	rpcErr := toRPCError(err)
	if rpcErr.Code == CodeInternal {
		slog.ErrorContext(r.Context(), "procedure failed", "path", r.URL.Path, "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rpcErr.HTTPStatus)
	if err := json.NewEncoder(w).Encode(errorEnvelope{Error: rpcErr}); err != nil {
		slog.Error("failed to encode error", "error", err)
	}
}

// toRPCError maps service errors onto RPC codes. Anything unrecognised is
// an internal error and its detail is not sent to the caller.
func toRPCError(err error) RPCError {
	switch {
	case errors.Is(err, errBadInput):
		return RPCError{Message: err.Error(), Code: CodeBadRequest, HTTPStatus: http.StatusBadRequest}
	case errors.Is(err, services.ErrValidationFailed):
		return RPCError{Message: err.Error(), Code: CodeValidationError, HTTPStatus: http.StatusBadRequest}
	case errors.Is(err, services.ErrUnauthenticated):
		return RPCError{Message: "Not authenticated", Code: CodeUnauthorized, HTTPStatus: http.StatusUnauthorized}
	case errors.Is(err, services.ErrRateLimited):
		return RPCError{Message: "Too many posts, slow down", Code: CodeTooManyRequests, HTTPStatus: http.StatusTooManyRequests}
	case errors.Is(err, services.ErrNotFound):
		return RPCError{Message: err.Error(), Code: CodeNotFound, HTTPStatus: http.StatusNotFound}
	default:
		return RPCError{Message: internalErrorMessage, Code: CodeInternal, HTTPStatus: http.StatusInternalServerError}
	}
}
