package transfer

import "errors"

// Validation failures. All of them are local and deterministic, and none are
// retried.
var (
	ErrDecode        = errors.New("transaction cannot be decoded")
	ErrNotTransfer   = errors.New("transaction has no transfer commands")
	ErrMissingField  = errors.New("cannot get transfer parameters")
	ErrAssetMismatch = errors.New("asset cannot be transferred")
	ErrInvalidAmount = errors.New("amount is invalid")
)

// ValidationError is a rejected transaction. Err is one of the sentinels
// above; Detail adds context for the caller.
type ValidationError struct {
	Err    error
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + ": " + e.Detail
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func reject(err error, detail string) *ValidationError {
	return &ValidationError{Err: err, Detail: detail}
}

// Reason is a short, low-cardinality label for a validation error.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrDecode):
		return "decode"
	case errors.Is(err, ErrNotTransfer):
		return "not_transfer"
	case errors.Is(err, ErrMissingField):
		return "missing_field"
	case errors.Is(err, ErrAssetMismatch):
		return "asset_mismatch"
	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount"
	}
	return "unknown"
}
