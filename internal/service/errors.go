package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"hospital-equipment-tracker/internal/repository"
)

var (
	ErrNotFound           = repository.ErrNotFound
	ErrDuplicateSerial    = errors.New("serial number already exists")
	ErrSerialImmutable    = errors.New("serial number cannot be changed")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidToken       = errors.New("invalid or revoked refresh token")
	ErrRegistrationClosed = errors.New("registration is closed, ask an administrator for an account")
	ErrLastAdmin          = errors.New("at least one administrator must remain")
	ErrSelfDelete         = errors.New("cannot delete your own account")
)

// ValidationError lists the offending fields of a rejected input.
// It matches ErrInvalidInput with errors.Is.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s %s", name, e.Fields[name]))
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

func invalidInput(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
