package stub

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsmiddleware "github.com/aws/aws-sdk-go-v2/aws/middleware"
	"github.com/aws/smithy-go/middleware"
	"github.com/sdkexamples/sdkexamples/pkg/common"
)

const (
	responderID  = "StubResponder"
	liveName     = "live"
	stubName     = "stub"
	inputSuffix  = "Input"
	outputSuffix = "Output"
)

// Backend decides how SDK clients reach a service.
type Backend interface {
	Name() string
	APIOptions() []func(*middleware.Stack) error
}

type LiveBackend struct{}

var _ Backend = LiveBackend{}

func (LiveBackend) Name() string                                { return liveName }
func (LiveBackend) APIOptions() []func(*middleware.Stack) error { return nil }

// StubBackend answers every operation from Registry. Nothing past the
// initialize step runs, so no serialization, signing or transport happens.
type StubBackend struct {
	Registry *Registry
}

var _ Backend = (*StubBackend)(nil)

func NewStubBackend(r *Registry) *StubBackend {
	return &StubBackend{Registry: r}
}

func (b *StubBackend) Name() string { return stubName }

func (b *StubBackend) APIOptions() []func(*middleware.Stack) error {
	return []func(*middleware.Stack) error{b.addResponder}
}

func (b *StubBackend) addResponder(stack *middleware.Stack) error {
	// After: input validation and idempotency tokens have run, like for a real call.
	return stack.Initialize.Add(middleware.InitializeMiddlewareFunc(responderID, b.handleInitialize), middleware.After)
}

func (b *StubBackend) handleInitialize(ctx context.Context, in middleware.InitializeInput, _ middleware.InitializeHandler) (
	out middleware.InitializeOutput, metadata middleware.Metadata, err error,
) {
	operation := awsmiddleware.GetOperationName(ctx)
	ctx = common.OperationContext(ctx, operation)

	slog.Log(ctx, common.LevelTrace, "Intercepted SDK call", "service", awsmiddleware.GetServiceID(ctx))

	result, err := b.Registry.invoke(ctx, operation, in.Parameters, outputChecker(operation, in.Parameters))
	if err != nil {
		return out, metadata, err
	}

	out.Result = result
	return out, metadata, nil
}

// outputChecker accepts payloads the operation can return: a non-nil pointer
// to the output struct paired with the input type of params.
func outputChecker(operation string, params any) func(payload any) error {
	var pkgPath, outputName string
	if t := reflect.TypeOf(params); t != nil && t.Kind() == reflect.Pointer {
		if name, ok := strings.CutSuffix(t.Elem().Name(), inputSuffix); ok {
			pkgPath, outputName = t.Elem().PkgPath(), name+outputSuffix
		}
	}

	expected := "*" + outputName
	if len(outputName) == 0 {
		expected = "non-nil output"
	}

	return func(payload any) error {
		v := reflect.ValueOf(payload)
		if !v.IsValid() || (v.Kind() == reflect.Pointer && v.IsNil()) {
			return &PayloadError{Operation: operation, Expected: expected, Got: fmt.Sprintf("%T(nil)", payload)}
		}

		if len(outputName) == 0 {
			return nil
		}

		t := v.Type()
		if t.Kind() != reflect.Pointer || t.Elem().PkgPath() != pkgPath || t.Elem().Name() != outputName {
			return &PayloadError{Operation: operation, Expected: expected, Got: fmt.Sprintf("%T", payload)}
		}

		return nil
	}
}

// Select returns a LiveBackend when live is set and a StubBackend over r otherwise.
func Select(live bool, r *Registry) Backend {
	if live {
		return LiveBackend{}
	}

	return NewStubBackend(r)
}

// Apply installs the backend into cfg so that every client built from it
// (service.NewFromConfig) uses the backend.
func Apply(cfg *aws.Config, b Backend) {
	if b == nil {
		return
	}

	cfg.APIOptions = append(cfg.APIOptions, b.APIOptions()...)
}

// Config returns an offline SDK config wired to b, for tests that never
// reach the network.
func Config(b Backend) aws.Config {
	cfg := aws.Config{
		Region:      common.DefaultAWSRegion,
		Credentials: aws.AnonymousCredentials{},
	}
	Apply(&cfg, b)
	return cfg
}
