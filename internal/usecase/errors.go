package usecase

import "errors"

const (
	CodeMissingFields      = "MISSING_FIELDS"
	CodeNotFound           = "NOT_FOUND"
	CodePersistenceFailure = "PERSISTENCE_FAILURE"
	CodeDeliveryFailure    = "DELIVERY_FAILURE"
	CodeInternal           = "INTERNAL_ERROR"
)

const MissingFieldsMessage = "Please fill in all required fields"

// DomainError is caused by the caller's input and is safe to show as is.
type DomainError struct {
	Code    string
	Message string
	Fields  []ValidationError
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TechnicalError wraps a failure in one of our collaborators (storage, SMTP).
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

// ErrorCode returns the code carried by err, or CodeInternal for anything unclassified.
func ErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	var te *TechnicalError
	if errors.As(err, &te) {
		return te.Code
	}
	return CodeInternal
}

func persistenceFailure(err error) error {
	return &TechnicalError{Code: CodePersistenceFailure, Message: "failed to persist submission", Err: err}
}

func deliveryFailure(msg string, err error) error {
	return &TechnicalError{Code: CodeDeliveryFailure, Message: msg, Err: err}
}
