package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/badoux/checkmail"
	"github.com/go-gomail/gomail"
	"github.com/sdkexamples/sdkexamples/pkg/common"
)

type Message struct {
	HTMLBody  string
	TextBody  string
	Subject   string
	Charset   string
	EmailTo   string
	NameTo    string
	Cc        []string
	Bcc       []string
	EmailFrom string
	NameFrom  string
	ReplyTo   string
}

var (
	errInvalidMessage = errors.New("mail message is not valid")
	errNoEmailBody    = errors.New("no email body was generated")
	errNoRecipient    = errors.New("message has no recipient")
	errNoSender       = errors.New("message has no sender")
)

func (m *Message) charset() string {
	if len(m.Charset) > 0 {
		return m.Charset
	}

	return common.DefaultCharset
}

func (m *Message) addresses() []string {
	result := []string{m.EmailTo, m.EmailFrom}
	result = append(result, m.Cc...)
	result = append(result, m.Bcc...)
	if len(m.ReplyTo) > 0 {
		result = append(result, m.ReplyTo)
	}

	return result
}

func (m *Message) Validate() error {
	if m == nil {
		return errInvalidMessage
	}

	if len(m.EmailTo) == 0 {
		return errNoRecipient
	}

	if len(m.EmailFrom) == 0 {
		return errNoSender
	}

	if len(m.HTMLBody) == 0 && len(m.TextBody) == 0 {
		return errNoEmailBody
	}

	for _, address := range m.addresses() {
		if err := checkmail.ValidateFormat(address); err != nil {
			return fmt.Errorf("%w: %q: %w", errInvalidMessage, address, err)
		}
	}

	return nil
}

func smtpDialer(smtpURL, user, pass string) (*gomail.Dialer, error) {
	surl, err := url.Parse(smtpURL)
	if err != nil {
		return nil, err
	}

	// Port
	var port int
	if i, err := strconv.Atoi(surl.Port()); err == nil {
		port = i
	} else if surl.Scheme == "smtp" {
		port = 25
	} else {
		port = 465
	}

	d := gomail.NewDialer(surl.Hostname(), port, user, pass)
	if surl.Scheme == "smtps" {
		d.SSL = true
	}

	return d, nil
}

func NewMailSender(cfg common.ConfigStore) *smtpMailer {
	return &smtpMailer{
		endpoint: cfg.Get(common.SmtpEndpointKey),
		username: cfg.Get(common.SmtpUsernameKey),
		password: cfg.Get(common.SmtpPasswordKey),
	}
}

type Sender interface {
	SendEmail(ctx context.Context, msg *Message) error
}

type smtpMailer struct {
	endpoint common.ConfigItem
	username common.ConfigItem
	password common.ConfigItem
}

var _ Sender = (*smtpMailer)(nil)

func newMimeMessage(msg *Message) *gomail.Message {
	m := gomail.NewMessage(gomail.SetCharset(msg.charset()))

	m.SetAddressHeader("To", msg.EmailTo, msg.NameTo)
	m.SetAddressHeader("From", msg.EmailFrom, msg.NameFrom)
	m.SetHeader("Subject", msg.Subject)
	if len(msg.Cc) > 0 {
		m.SetHeader("Cc", msg.Cc...)
	}
	if len(msg.Bcc) > 0 {
		m.SetHeader("Bcc", msg.Bcc...)
	}
	if len(msg.ReplyTo) > 0 {
		m.SetHeader("Reply-To", msg.ReplyTo)
	}

	if len(msg.TextBody) > 0 {
		m.SetBody("text/plain", msg.TextBody)
		if len(msg.HTMLBody) > 0 {
			m.AddAlternative("text/html", msg.HTMLBody)
		}
	} else {
		m.SetBody("text/html", msg.HTMLBody)
	}

	return m
}

func (sm *smtpMailer) SendEmail(ctx context.Context, msg *Message) error {
	if err := msg.Validate(); err != nil {
		slog.ErrorContext(ctx, "Refusing to send invalid email", common.ErrAttr(err))
		return err
	}

	m := newMimeMessage(msg)

	dialer, err := smtpDialer(sm.endpoint.Value(), sm.username.Value(), sm.password.Value())
	if err != nil {
		return err
	}

	err = dialer.DialAndSend(m)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to send an email", "email", common.MaskEmail(msg.EmailTo, '*'), "host", dialer.Host,
			"port", dialer.Port, common.ErrAttr(err))
		return err
	}

	slog.InfoContext(ctx, "Sent email over SMTP", "email", common.MaskEmail(msg.EmailTo, '*'), "host", dialer.Host)

	return nil
}
