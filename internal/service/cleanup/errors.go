package cleanup

import (
	"errors"
	"fmt"
)

// ErrModuleDisabled is returned by batch operations when the cleanup
// module is switched off in configuration. Single-customer operations
// treat a disabled module as a no-op instead.
var ErrModuleDisabled = errors.New("customer cleanup module is disabled")

// OperationError wraps a failure of the live delete/anonymize sequence
// with the customer context a batch caller needs for its error report.
type OperationError struct {
	CustomerID int64
	Email      string
	Err        error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("cleanup of customer %d failed: %v", e.CustomerID, e.Err)
}

func (e *OperationError) Unwrap() error { return e.Err }
