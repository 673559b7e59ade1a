// Package apperr is the error taxonomy shared by services and HTTP handlers.
// Each error carries the HTTP status it is answered with.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func New(status int, msg string) *Error {
	return &Error{Status: status, Message: msg}
}

var (
	ErrBadJSON         = New(http.StatusBadRequest, "Invalid JSON")
	ErrInvalidFields   = New(http.StatusBadRequest, "Missing/invalid fields")
	ErrMissingUsername = New(http.StatusBadRequest, "Missing username")
	ErrMissingText     = New(http.StatusBadRequest, "Missing text")
	ErrMissingWord     = New(http.StatusBadRequest, "Missing word")

	ErrInvalidCredentials = New(http.StatusUnauthorized, "Invalid credentials")
	ErrUnauthorized       = New(http.StatusUnauthorized, "Unauthorized")
	ErrLoginRequired      = New(http.StatusUnauthorized, "Login required")

	ErrAccountInactive = New(http.StatusPaymentRequired, "Cuenta inactiva. Contacta al administrador para activación.")

	ErrInvalidGuestCode = New(http.StatusForbidden, "Invalid guest code")

	ErrAdminDisabled = New(http.StatusNotFound, "Admin endpoint disabled")
	ErrUserNotFound  = New(http.StatusNotFound, "User not found")

	ErrUsernameTaken = New(http.StatusConflict, "Username already exists")

	ErrTranslateFailed = New(http.StatusBadGateway, "Translate failed")

	ErrInternal = New(http.StatusInternalServerError, "Internal server error")
)

// Status: HTTP-код для любой ошибки; всё незнакомое считается 500.
func Status(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return http.StatusInternalServerError
}

// Message: текст для клиента; внутренние детали наружу не уходят.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ErrInternal.Message
}

func IsSystem(err error) bool {
	return err != nil && Status(err) >= http.StatusInternalServerError
}
