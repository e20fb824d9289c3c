// Package errors provides custom error types and definitions for the application.
//
//nolint:lll
package errors

import (
	"fmt"
	"net/http"
)

// The custom Error type satisfies the error interface.
// Error() returns a human-readable description of the error.
//
// Error codes in the 40001-49999 range are the user's fault,
// and they return HTTP Status 400, 404 or 409, whatever is most appropriate.
//
// Error codes 50001-59999 are the server's fault
// and they return HTTP Status 500 or 503, or something else if appropriate.
//
// NEVER change any of the current error codes, only append new errors after the current last 4XXX or 5XXX.
// If you notice there's a gap, that code was used in the past for some error (not anymore) and shouldn't be reused.
// There's no correlation between Code and HTTP Status.
var (
	// Authentication errors (401)
	ErrUnauthorized      = Error{Code: 40001, HTTPstatus: http.StatusUnauthorized, Err: fmt.Errorf("authentication required"), LogLevel: "info"}
	ErrInvalidOAuthToken = Error{Code: 40002, HTTPstatus: http.StatusUnauthorized, Err: fmt.Errorf("identity provider rejected the access token"), LogLevel: "info"}
	ErrUserNotVerified   = Error{Code: 40013, HTTPstatus: http.StatusUnauthorized, Err: fmt.Errorf("user account not verified"), LogLevel: "info"}
	ErrForbiddenRole     = Error{Code: 40014, HTTPstatus: http.StatusForbidden, Err: fmt.Errorf("insufficient role for this operation"), LogLevel: "info"}

	// Validation errors (400)
	ErrEmailMalformed       = Error{Code: 40003, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid email format")}
	ErrPasswordTooShort     = Error{Code: 40004, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("password must be at least 8 characters")}
	ErrMalformedBody        = Error{Code: 40005, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid JSON request body")}
	ErrMalformedURLParam    = Error{Code: 40006, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid URL parameter")}
	ErrInvalidDonorData     = Error{Code: 40007, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid donor information provided")}
	ErrInvalidCampData      = Error{Code: 40008, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid camp information provided")}
	ErrInvalidBloodGroup    = Error{Code: 40009, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid blood group")}
	ErrInvalidPhoneNumber   = Error{Code: 40010, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid phone number")}
	ErrInvalidDate          = Error{Code: 40011, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid date")}
	ErrStorageInvalidObject = Error{Code: 40012, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid storage object or parameters")}

	// Not found errors (404)
	ErrAppointmentNotFound   = Error{Code: 40401, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("appointment not found")}
	ErrCampNotFound          = Error{Code: 40402, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("camp not found")}
	ErrDonorNotFound         = Error{Code: 40403, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("donor not found")}
	ErrUserNotFound          = Error{Code: 40404, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("user not found")}
	ErrStockNotFound         = Error{Code: 40405, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("no stock record for blood type")}
	ErrStorageObjectNotFound = Error{Code: 40406, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("storage object not found")}

	// Conflict errors (409)
	ErrDuplicateConflict  = Error{Code: 40901, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("resource already exists")}
	ErrInvalidTransition  = Error{Code: 40902, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("status transition not allowed")}
	ErrSlotFull           = Error{Code: 40903, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("selected slot has no remaining capacity")}
	ErrCancellationDenied = Error{Code: 40904, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("appointment can no longer be cancelled")}

	// Rate limiting (429)
	ErrTooManyRequests = Error{Code: 42901, HTTPstatus: http.StatusTooManyRequests, Err: fmt.Errorf("too many requests"), LogLevel: "info"}

	// Server errors (500) - These should be used sparingly and only for true internal errors
	ErrMarshalingServerJSONFailed  = Error{Code: 50001, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("server error: failed to process response"), LogLevel: "error"}
	ErrGenericInternalServerError  = Error{Code: 50002, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("server error: operation failed"), LogLevel: "error"}
	ErrInternalStorageError        = Error{Code: 50003, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("server error: storage operation failed"), LogLevel: "error"}
	ErrNotificationFailure         = Error{Code: 50004, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("server error: notification dispatch failed"), LogLevel: "error"}
	ErrSMSGatewayFailure           = Error{Code: 50005, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("server error: SMS gateway request failed"), LogLevel: "error"}
	ErrOAuthServerConnectionFailed = Error{Code: 50006, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("server error: identity provider connection failed"), LogLevel: "error"}
)
