package contacts

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/spachava753/phonebook/provider"
)

// ErrorCode classifies contacts errors.
type ErrorCode string

const (
	// ErrorCodeValidation indicates invalid input. No store call was made.
	ErrorCodeValidation ErrorCode = "validation"
	// ErrorCodePermissionDenied indicates the store refused access.
	ErrorCodePermissionDenied ErrorCode = "permission_denied"
	// ErrorCodeNotFound indicates a referenced contact does not exist.
	ErrorCodeNotFound ErrorCode = "not_found"
	// ErrorCodeUnavailable indicates the store could not be reached.
	ErrorCodeUnavailable ErrorCode = "unavailable"
	// ErrorCodeStore indicates a failed query, batch, or delete.
	ErrorCodeStore ErrorCode = "store"
)

// Error is a typed package error.
//
// Field is set for validation errors. Err carries the underlying store error
// when there is one.
type Error struct {
	Code    ErrorCode
	Field   string
	Message string
	Err     error
}

// Error returns the formatted error message.
func (e *Error) Error() string {
	if e == nil {
		return "contacts: <nil>"
	}
	msg := fmt.Sprintf("contacts: %s", e.Code)
	if e.Field != "" {
		msg += ": " + e.Field
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches an *Error with the same code, and the same field when the
// target names one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return t.Code == e.Code && (t.Field == "" || t.Field == e.Field)
}

// Sentinels for errors.Is checks.
var (
	ErrValidation       = &Error{Code: ErrorCodeValidation}
	ErrPermissionDenied = &Error{Code: ErrorCodePermissionDenied}
	ErrNotFound         = &Error{Code: ErrorCodeNotFound}
	ErrUnavailable      = &Error{Code: ErrorCodeUnavailable}
	ErrStore            = &Error{Code: ErrorCodeStore}
)

// Field names used in validation errors.
const (
	FieldFirstName   = "first_name"
	FieldPhoneNumber = "phone_number"
	FieldID          = "id"
)

func validationError(field, message string) error {
	return &Error{Code: ErrorCodeValidation, Field: field, Message: message}
}

// storeError maps a provider failure onto the package taxonomy.
func storeError(action string, err error) error {
	var cerr *Error
	if errors.As(err, &cerr) {
		return err
	}
	code := ErrorCodeStore
	switch provider.CodeOf(err) {
	case provider.ErrorCodePermissionDenied:
		code = ErrorCodePermissionDenied
	case provider.ErrorCodeUnavailable:
		code = ErrorCodeUnavailable
	}
	return &Error{Code: code, Message: action, Err: err}
}

// Contact is the flat, in-app view of one aggregated contact.
//
// ID is the aggregated contact id. Email and PhotoURI are empty when absent.
type Contact struct {
	ID          int64
	FirstName   string
	LastName    string
	PhoneNumber string
	Email       string
	PhotoURI    string
}

// NewContact is the create form.
type NewContact struct {
	FirstName   string
	LastName    string
	PhoneNumber string
}

// ContactUpdate is the edit form for an existing contact.
//
// An empty Email leaves the stored email untouched. An empty PhotoURI leaves
// the stored photo untouched.
type ContactUpdate struct {
	ID          int64
	FirstName   string
	LastName    string
	PhoneNumber string
	Email       string
	PhotoURI    string
}

// CreateResult reports an applied create.
type CreateResult struct {
	RawContactID int64
}

// UpdateResult reports an applied update.
//
// EmailUpdated is false when an email was given but the contact had no email
// row to update.
type UpdateResult struct {
	RawContactID int64
	Operations   int
	EmailUpdated bool
	PhotoUpdated bool
}

// Service runs contact reads and writes against a record store.
type Service struct {
	client      provider.Client
	log         zerolog.Logger
	batchEmails bool
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.log = logger
	}
}

// WithBatchedEmailLookup makes LoadAll resolve emails with one query per
// chunk of contacts instead of one query per contact.
func WithBatchedEmailLookup() Option {
	return func(s *Service) {
		s.batchEmails = true
	}
}

// New returns a Service over client.
func New(client provider.Client, opts ...Option) *Service {
	s := &Service{
		client: client,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
