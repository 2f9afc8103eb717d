// Redit Feed - Personalized Social Feed Recommendation Service
// Copyright 2026 chari00001
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chari00001/redit-feed

// Package api is the HTTP surface of the feed service: a chi router,
// the standard response envelope, and the middleware stack.
package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	// Success indicates whether the request was handled.
	Success bool `json:"success"`

	// Data is the payload, null on error.
	Data any `json:"data,omitempty"`

	// Error carries error details, null on success.
	Error *ResponseError `json:"error,omitempty"`

	// Meta carries request metadata.
	Meta *ResponseMeta `json:"meta,omitempty"`
}

// ResponseError is the machine-readable error body.
type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ResponseMeta carries tracing metadata.
type ResponseMeta struct {
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Error codes used across the API.
const (
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeValidation      = "VALIDATION_FAILED"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeTooManyRequests = "TOO_MANY_REQUESTS"
	ErrCodeModelNotReady   = "MODEL_NOT_READY"
	ErrCodeTrainingBusy    = "TRAINING_IN_PROGRESS"
	ErrCodeInternal        = "INTERNAL_ERROR"
)

func writeResponse(w http.ResponseWriter, r *http.Request, status int, resp Response) {
	resp.Meta = &ResponseMeta{
		RequestID: requestIDFromContext(r.Context()),
		Timestamp: time.Now().UTC(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// writeSuccess writes the success envelope around data.
func writeSuccess(w http.ResponseWriter, r *http.Request, status int, data any) {
	writeResponse(w, r, status, Response{Success: true, Data: data})
}

// writeError writes the error envelope.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeResponse(w, r, status, Response{
		Success: false,
		Error:   &ResponseError{Code: code, Message: message},
	})
}
