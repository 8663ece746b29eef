package apperror

import "errors"

// Kind classifies a business or validation failure raised by the appointment core.
type Kind string

const (
	KindNotFound                Kind = "not_found"
	KindInvalidDate             Kind = "invalid_date"
	KindInvalidPagination       Kind = "invalid_pagination"
	KindInvalidPatientReference Kind = "invalid_patient_reference"
	KindInvalidDoctorReference  Kind = "invalid_doctor_reference"
	KindInvalidStatusValue      Kind = "invalid_status_value"
	KindIllegalCancellation     Kind = "illegal_cancellation"
	KindInvalidStatusTransition Kind = "invalid_status_transition"
)

// Sentinels for errors.Is. Matching is by kind, the message is ignored.
var (
	ErrNotFound                = &Error{Kind: KindNotFound}
	ErrInvalidDate             = &Error{Kind: KindInvalidDate}
	ErrInvalidPagination       = &Error{Kind: KindInvalidPagination}
	ErrInvalidPatientReference = &Error{Kind: KindInvalidPatientReference}
	ErrInvalidDoctorReference  = &Error{Kind: KindInvalidDoctorReference}
	ErrInvalidStatusValue      = &Error{Kind: KindInvalidStatusValue}
	ErrIllegalCancellation     = &Error{Kind: KindIllegalCancellation}
	ErrInvalidStatusTransition = &Error{Kind: KindInvalidStatusTransition}
)

// Error carries a kind discriminator and a human readable message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches an underlying cause while keeping the kind.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain, or "" when there is none.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}
