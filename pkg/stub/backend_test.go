package stub

import (
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/smithy-go"
)

func TestStubBackendAnswersClient(t *testing.T) {
	r := NewRegistry()
	Verify(t, r)

	client := ses.NewFromConfig(Config(NewStubBackend(r)))

	MustExpect(t, r.Expect("VerifyEmailIdentity",
		&ses.VerifyEmailIdentityInput{EmailAddress: aws.String("sender@example.com")},
		Respond(&ses.VerifyEmailIdentityOutput{})))

	out, err := client.VerifyEmailIdentity(t.Context(), &ses.VerifyEmailIdentityInput{EmailAddress: aws.String("sender@example.com")})
	if err != nil {
		t.Fatal(err)
	}

	if out == nil {
		t.Fatal("Output is nil")
	}
}

func TestStubBackendMismatchThroughClient(t *testing.T) {
	r := NewRegistry()

	client := ses.NewFromConfig(Config(NewStubBackend(r)))

	MustExpect(t, r.Expect("VerifyEmailIdentity",
		&ses.VerifyEmailIdentityInput{EmailAddress: aws.String("sender@example.com")},
		Respond(&ses.VerifyEmailIdentityOutput{})))

	_, err := client.VerifyEmailIdentity(t.Context(), &ses.VerifyEmailIdentityInput{EmailAddress: aws.String("other@example.com")})

	var merr *MismatchError
	if !errors.As(err, &merr) {
		t.Fatalf("Unexpected error: %v", err)
	}

	if merr.Operation != "VerifyEmailIdentity" {
		t.Errorf("Unexpected operation: %v", merr.Operation)
	}

	var opErr *smithy.OperationError
	if !errors.As(err, &opErr) {
		t.Errorf("Error is not wrapped by the client: %T", err)
	}
}

func TestStubBackendErrorThroughClient(t *testing.T) {
	r := NewRegistry()
	Verify(t, r)

	client := ses.NewFromConfig(Config(NewStubBackend(r)))

	MustExpect(t, r.Expect("GetSendQuota", &ses.GetSendQuotaInput{}, Fail(ThrottlingException)))

	_, err := client.GetSendQuota(t.Context(), &ses.GetSendQuotaInput{})

	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Unexpected error: %v", err)
	}

	if apiErr.ErrorCode() != string(ThrottlingException) {
		t.Errorf("Unexpected error code: %v", apiErr.ErrorCode())
	}
}

func TestStubBackendUnexpectedCall(t *testing.T) {
	r := NewRegistry()
	client := ses.NewFromConfig(Config(NewStubBackend(r)))

	_, err := client.GetSendQuota(t.Context(), &ses.GetSendQuotaInput{})

	var uerr *UnexpectedCallError
	if !errors.As(err, &uerr) {
		t.Fatalf("Unexpected error: %v", err)
	}
}

func TestSelect(t *testing.T) {
	r := NewRegistry()

	if b := Select(true, r); b.Name() != liveName || len(b.APIOptions()) != 0 {
		t.Errorf("Unexpected live backend: %v", b.Name())
	}

	b := Select(false, r)
	if b.Name() != stubName || len(b.APIOptions()) != 1 {
		t.Errorf("Unexpected stub backend: %v", b.Name())
	}

	cfg := aws.Config{}
	Apply(&cfg, b)
	if len(cfg.APIOptions) != 1 {
		t.Errorf("Backend was not applied")
	}
}

func TestStubBackendRejectsUnusablePayload(t *testing.T) {
	testCases := []struct {
		name    string
		payload any
	}{
		{"nil", nil},
		{"typed nil", (*ses.GetSendQuotaOutput)(nil)},
		{"other operation", &ses.VerifyEmailIdentityOutput{}},
		{"not a pointer", ses.GetSendQuotaOutput{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewRegistry()
			client := ses.NewFromConfig(Config(NewStubBackend(r)))

			MustExpect(t, r.Expect("GetSendQuota", &ses.GetSendQuotaInput{}, Respond(tc.payload)))

			_, err := client.GetSendQuota(t.Context(), &ses.GetSendQuotaInput{})

			var perr *PayloadError
			if !errors.As(err, &perr) {
				t.Fatalf("Unexpected error: %v", err)
			}

			if perr.Operation != "GetSendQuota" || perr.Expected != "*GetSendQuotaOutput" {
				t.Errorf("Unexpected payload error: %v", perr)
			}

			if n := r.Pending(); n != 1 {
				t.Errorf("Rejected entry was consumed, pending %v", n)
			}

			if s := r.State(); s != Programmed {
				t.Errorf("Unexpected state: %v", s)
			}
		})
	}
}

func TestStubBackendAcceptsAfterRejectedPayload(t *testing.T) {
	r := NewRegistry()
	Verify(t, r)

	client := ses.NewFromConfig(Config(NewStubBackend(r)))

	MustExpect(t, r.Expect("GetSendQuota", &ses.GetSendQuotaInput{}, Respond(nil)))

	if _, err := client.GetSendQuota(t.Context(), &ses.GetSendQuotaInput{}); err == nil {
		t.Fatal("Nil payload was returned")
	}

	r.Reset()
	MustExpect(t, r.Expect("GetSendQuota", &ses.GetSendQuotaInput{}, Respond(&ses.GetSendQuotaOutput{Max24HourSend: 200})))

	out, err := client.GetSendQuota(t.Context(), &ses.GetSendQuotaInput{})
	if err != nil {
		t.Fatal(err)
	}

	if out.Max24HourSend != 200 {
		t.Errorf("Unexpected quota: %v", out.Max24HourSend)
	}
}

func TestOutputChecker(t *testing.T) {
	check := outputChecker("GetSendQuota", &ses.GetSendQuotaInput{})
	if err := check(&ses.GetSendQuotaOutput{}); err != nil {
		t.Errorf("Matching output rejected: %v", err)
	}

	// parameters that do not follow the SDK naming only rule out nil
	loose := outputChecker("op", map[string]any{})
	if err := loose(42); err != nil {
		t.Errorf("Payload rejected: %v", err)
	}

	var perr *PayloadError
	if err := loose(nil); !errors.As(err, &perr) {
		t.Errorf("Unexpected error: %v", err)
	}
}
