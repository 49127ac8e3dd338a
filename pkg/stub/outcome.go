package stub

import (
	"fmt"

	"github.com/aws/smithy-go"
)

// ErrorKind is the service error code an outcome fails with. The constants
// cover the codes used by the examples; any other code is accepted as is.
type ErrorKind string

const (
	ValidationException           ErrorKind = "ValidationException"
	ResourceNotFoundException     ErrorKind = "ResourceNotFoundException"
	ConflictException             ErrorKind = "ConflictException"
	AccessDeniedException         ErrorKind = "AccessDeniedException"
	ThrottlingException           ErrorKind = "ThrottlingException"
	ServiceQuotaExceededException ErrorKind = "ServiceQuotaExceededException"
	InternalServerException       ErrorKind = "InternalServerException"
)

func (k ErrorKind) Fault() smithy.ErrorFault {
	switch k {
	case "":
		return smithy.FaultUnknown
	case InternalServerException:
		return smithy.FaultServer
	default:
		return smithy.FaultClient
	}
}

// Outcome is either a response payload or a service error.
type Outcome struct {
	Payload any
	Kind    ErrorKind
	Message string
}

func Respond(payload any) Outcome {
	return Outcome{Payload: payload}
}

func Fail(kind ErrorKind) Outcome {
	return Outcome{Kind: kind}
}

func FailWithMessage(kind ErrorKind, message string) Outcome {
	return Outcome{Kind: kind, Message: message}
}

// Choose returns a failing outcome when kind is set and a response otherwise.
func Choose(payload any, kind ErrorKind) Outcome {
	if len(kind) > 0 {
		return Fail(kind)
	}

	return Respond(payload)
}

func (o Outcome) IsError() bool {
	return len(o.Kind) > 0
}

// Err builds the error a real client reports for this outcome, or nil.
func (o Outcome) Err() error {
	if !o.IsError() {
		return nil
	}

	message := o.Message
	if len(message) == 0 {
		message = fmt.Sprintf("stubbed %s", o.Kind)
	}

	return &smithy.GenericAPIError{
		Code:    string(o.Kind),
		Message: message,
		Fault:   o.Kind.Fault(),
	}
}

func (o Outcome) String() string {
	if o.IsError() {
		return "error(" + string(o.Kind) + ")"
	}

	return fmt.Sprintf("response(%T)", o.Payload)
}
