package stub

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrRegistryDrained = errors.New("stub registry is drained")
	errEmptyOperation  = errors.New("operation name is empty")
)

// MismatchError means the call did not match the next programmed entry.
type MismatchError struct {
	Operation string
	// ExpectedOperation is set when the registry enforces a global order and
	// the next entry belongs to another operation.
	ExpectedOperation string
	// Diff is the go-cmp diff of expected (-) and actual (+) parameters.
	Diff string
}

func (e *MismatchError) Error() string {
	if len(e.ExpectedOperation) > 0 && e.ExpectedOperation != e.Operation {
		return fmt.Sprintf("stub: unexpected operation %s, expected %s", e.Operation, e.ExpectedOperation)
	}

	return fmt.Sprintf("stub: parameters of %s do not match expectation (-expected +actual):\n%s", e.Operation, e.Diff)
}

// UnexpectedCallError means nothing is programmed for the operation.
type UnexpectedCallError struct {
	Operation string
}

func (e *UnexpectedCallError) Error() string {
	return fmt.Sprintf("stub: unexpected call to %s, no responses are programmed", e.Operation)
}

// PendingError lists entries that were programmed but never invoked.
type PendingError struct {
	Entries []string
}

func (e *PendingError) Error() string {
	return fmt.Sprintf("stub: %d programmed responses were not consumed: %s", len(e.Entries), strings.Join(e.Entries, ", "))
}

// PayloadError means the programmed response is not an output of the called
// operation.
type PayloadError struct {
	Operation string
	Expected  string
	Got       string
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("stub: response of %s must be %s, got %s", e.Operation, e.Expected, e.Got)
}
