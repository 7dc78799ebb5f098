// Package validation provides the outcome value returned by every business
// rule check in the ledger.
package validation

import "fmt"

// Reason identifies which rule produced a failed validation.
type Reason int

// Set of reasons a validation can fail for.
const (
	None Reason = iota

	// Transaction rules.
	InvalidHash
	InvalidData

	// Block rules.
	TooManyFeeTransactions
	InvalidTransactions
	InvalidIndex
	InvalidTimestamp
	InvalidPreviousHash
	NotMined

	// Ledger rules.
	InvalidTransaction
	DuplicateInMempool
	DuplicateInChain
	InvalidBlock
	TransactionMismatch
	InvalidBlockAt
)

var reasonNames = map[Reason]string{
	None:                   "None",
	InvalidHash:            "InvalidHash",
	InvalidData:            "InvalidData",
	TooManyFeeTransactions: "TooManyFeeTransactions",
	InvalidTransactions:    "InvalidTransactions",
	InvalidIndex:           "InvalidIndex",
	InvalidTimestamp:       "InvalidTimestamp",
	InvalidPreviousHash:    "InvalidPreviousHash",
	NotMined:               "NotMined",
	InvalidTransaction:     "InvalidTransaction",
	DuplicateInMempool:     "DuplicateInMempool",
	DuplicateInChain:       "DuplicateInChain",
	InvalidBlock:           "InvalidBlock",
	TransactionMismatch:    "TransactionMismatch",
	InvalidBlockAt:         "InvalidBlockAt",
}

// String implements the fmt.Stringer interface.
func (r Reason) String() string {
	if name, exists := reasonNames[r]; exists {
		return name
	}
	return fmt.Sprintf("Reason(%d)", int(r))
}

// MarshalText implements the encoding.TextMarshaler interface so reasons
// travel as names in JSON.
func (r Reason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (r *Reason) UnmarshalText(data []byte) error {
	for reason, name := range reasonNames {
		if name == string(data) {
			*r = reason
			return nil
		}
	}
	return fmt.Errorf("unknown reason %q", string(data))
}

// =============================================================================

// Validation is the immutable outcome of a check. A failed validation
// carries the rule that failed and a human readable message.
type Validation struct {
	Success bool   `json:"success"`
	Reason  Reason `json:"reason"`
	Message string `json:"message"`
}

// Ok constructs a successful validation with an optional message.
func Ok(message string) Validation {
	return Validation{
		Success: true,
		Reason:  None,
		Message: message,
	}
}

// Fail constructs a failed validation for the specified reason.
func Fail(reason Reason, format string, args ...any) Validation {
	return Validation{
		Success: false,
		Reason:  reason,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap constructs a failed validation that nests the message of an inner
// failure under a new reason.
func Wrap(reason Reason, prefix string, inner Validation) Validation {
	return Validation{
		Success: false,
		Reason:  reason,
		Message: fmt.Sprintf("%s: %s", prefix, inner.Message),
	}
}

// Err returns nil for a successful validation, otherwise an error holding
// the failure message.
func (v Validation) Err() error {
	if v.Success {
		return nil
	}
	return &Error{Reason: v.Reason, Message: v.Message}
}

// String implements the fmt.Stringer interface for logging.
func (v Validation) String() string {
	if v.Success {
		return fmt.Sprintf("ok: %s", v.Message)
	}
	return fmt.Sprintf("%s: %s", v.Reason, v.Message)
}

// =============================================================================

// Error is used when a failed validation has to travel as a Go error.
type Error struct {
	Reason  Reason
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}
