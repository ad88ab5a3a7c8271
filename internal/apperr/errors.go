package apperr

// ValidationError rejects malformed or missing input. The caller must
// correct the request and resubmit; retrying unchanged will not help.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func NewValidation(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

func NewValidationWrap(msg string, err error) *ValidationError {
	return &ValidationError{Message: msg, Err: err}
}

// NotFoundError signals that a referenced entity does not exist.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func NewNotFound(msg string) *NotFoundError {
	return &NotFoundError{Message: msg}
}

// PermissionError rejects a caller lacking the required capability. It is
// never downgraded to a partial success.
type PermissionError struct {
	Message string
}

func (e *PermissionError) Error() string {
	return e.Message
}

func NewPermission(msg string) *PermissionError {
	return &PermissionError{Message: msg}
}

// PreconditionError signals a state conflict, e.g. resolving a submission
// that is no longer pending. It indicates a stale read on the caller's part:
// the caller must re-fetch and decide, there is no retry logic server-side.
type PreconditionError struct {
	Message string
}

func (e *PreconditionError) Error() string {
	return e.Message
}

func NewPrecondition(msg string) *PreconditionError {
	return &PreconditionError{Message: msg}
}
