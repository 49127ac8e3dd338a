package email

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/go-gomail/gomail"
	"github.com/sdkexamples/sdkexamples/pkg/common"
)

type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

var _ SESAPI = (*ses.Client)(nil)

type SESSender struct {
	Client SESAPI
}

var _ Sender = (*SESSender)(nil)

func NewSESSender(cfg aws.Config) *SESSender {
	return &SESSender{Client: ses.NewFromConfig(cfg)}
}

func content(data, charset string) *types.Content {
	if len(data) == 0 {
		return nil
	}

	return &types.Content{Data: aws.String(data), Charset: aws.String(charset)}
}

// SendEmailInput builds the SES request for msg.
func SendEmailInput(msg *Message) *ses.SendEmailInput {
	charset := msg.charset()
	m := gomail.NewMessage(gomail.SetCharset(charset))

	input := &ses.SendEmailInput{
		Source: aws.String(m.FormatAddress(msg.EmailFrom, msg.NameFrom)),
		Destination: &types.Destination{
			ToAddresses:  []string{m.FormatAddress(msg.EmailTo, msg.NameTo)},
			CcAddresses:  msg.Cc,
			BccAddresses: msg.Bcc,
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String(charset)},
			Body: &types.Body{
				Text: content(msg.TextBody, charset),
				Html: content(msg.HTMLBody, charset),
			},
		},
	}

	if len(msg.ReplyTo) > 0 {
		input.ReplyToAddresses = []string{msg.ReplyTo}
	}

	return input
}

func (s *SESSender) SendEmail(ctx context.Context, msg *Message) error {
	if err := msg.Validate(); err != nil {
		slog.ErrorContext(ctx, "Refusing to send invalid email", common.ErrAttr(err))
		return err
	}

	out, err := s.Client.SendEmail(ctx, SendEmailInput(msg))
	if err != nil {
		slog.ErrorContext(ctx, "Couldn't send email", "email", common.MaskEmail(msg.EmailTo, '*'), common.ErrAttr(err))
		return err
	}

	slog.InfoContext(ctx, "Sent email via SES", "email", common.MaskEmail(msg.EmailTo, '*'), "messageID", aws.ToString(out.MessageId))

	return nil
}
