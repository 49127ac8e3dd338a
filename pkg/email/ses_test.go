package email

import (
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/smithy-go"
	"github.com/sdkexamples/sdkexamples/pkg/stub"
)

func testAWSConfig() aws.Config {
	return stub.Config(stub.NewStubBackend(stub.NewRegistry()))
}

func newStubbedSESSender(t *testing.T) (*SESSender, *stub.Registry) {
	t.Helper()

	r := stub.NewRegistry()
	stub.Verify(t, r)

	return NewSESSender(stub.Config(stub.NewStubBackend(r))), r
}

func TestSendEmailInput(t *testing.T) {
	input := SendEmailInput(testMessage())

	if src := aws.ToString(input.Source); src != `"Sender" <sender@example.com>` {
		t.Errorf("Unexpected source: %v", src)
	}

	if to := input.Destination.ToAddresses; len(to) != 1 || to[0] != `"Recipient" <recipient@example.com>` {
		t.Errorf("Unexpected recipients: %v", to)
	}

	if cs := aws.ToString(input.Message.Body.Text.Charset); cs != "UTF-8" {
		t.Errorf("Unexpected charset: %v", cs)
	}

	msg := testMessage()
	msg.HTMLBody = ""
	msg.ReplyTo = ""
	msg.Charset = "ISO-8859-1"

	input = SendEmailInput(msg)
	if input.Message.Body.Html != nil {
		t.Error("Empty HTML body was set")
	}

	if len(input.ReplyToAddresses) != 0 {
		t.Errorf("Unexpected reply-to: %v", input.ReplyToAddresses)
	}

	if cs := aws.ToString(input.Message.Subject.Charset); cs != "ISO-8859-1" {
		t.Errorf("Unexpected charset: %v", cs)
	}
}

func TestSESSendEmail(t *testing.T) {
	s, r := newStubbedSESSender(t)

	msg := testMessage()
	stub.MustExpect(t, r.Expect("SendEmail", SendEmailInput(msg), stub.Respond(&ses.SendEmailOutput{MessageId: aws.String("message-id")})))

	if err := s.SendEmail(t.Context(), msg); err != nil {
		t.Fatal(err)
	}
}

func TestSESSendEmailDestination(t *testing.T) {
	s, r := newStubbedSESSender(t)

	msg := testMessage()
	expected := &ses.SendEmailInput{
		Source: aws.String(`"Sender" <sender@example.com>`),
		Destination: &types.Destination{
			ToAddresses:  []string{`"Recipient" <recipient@example.com>`},
			CcAddresses:  []string{"copy@example.com"},
			BccAddresses: []string{"hidden@example.com"},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String("Greetings"), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(msg.TextBody), Charset: aws.String("UTF-8")},
				Html: &types.Content{Data: aws.String(msg.HTMLBody), Charset: aws.String("UTF-8")},
			},
		},
		ReplyToAddresses: []string{"reply@example.com"},
	}

	stub.MustExpect(t, r.Expect("SendEmail", expected, stub.Respond(&ses.SendEmailOutput{MessageId: aws.String("message-id")})))

	if err := s.SendEmail(t.Context(), msg); err != nil {
		t.Fatal(err)
	}
}

func TestSESSendEmailRejected(t *testing.T) {
	s, r := newStubbedSESSender(t)

	msg := testMessage()
	stub.MustExpect(t, r.Expect("SendEmail", SendEmailInput(msg), stub.FailWithMessage("MessageRejected", "Email address is not verified.")))

	err := s.SendEmail(t.Context(), msg)

	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Unexpected error: %v", err)
	}

	if apiErr.ErrorCode() != "MessageRejected" {
		t.Errorf("Unexpected error code: %v", apiErr.ErrorCode())
	}
}

func TestSESSendInvalidMessage(t *testing.T) {
	s, _ := newStubbedSESSender(t)

	if err := s.SendEmail(t.Context(), &Message{EmailTo: "recipient@example.com"}); !errors.Is(err, errNoSender) {
		t.Errorf("Unexpected error: %v", err)
	}
}
