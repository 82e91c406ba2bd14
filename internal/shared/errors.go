package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates a malformed field value, such as a bad
	// mobile number or an unknown enum value.
	ErrInvalidInput = errors.New("invalid input")
	// ErrRequiredField indicates a mandatory field was absent.
	ErrRequiredField = errors.New("required field missing")
	// ErrMissingContractLength occurs when a society job card has no
	// contract length at renewal generation time.
	ErrMissingContractLength = errors.New("contract length missing for society job")
	// ErrInternal wraps unexpected store or connectivity faults.
	ErrInternal = errors.New("internal error")
)
