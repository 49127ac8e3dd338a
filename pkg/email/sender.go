package email

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/sdkexamples/sdkexamples/pkg/common"
	"github.com/sdkexamples/sdkexamples/pkg/config"
)

const (
	TransportSES  = "ses"
	TransportSMTP = "smtp"
	TransportStub = "stub"
)

var errUnknownTransport = errors.New("unknown email transport")

func NewSender(ctx context.Context, cfg common.ConfigStore, awsCfg aws.Config) (Sender, error) {
	transport := strings.ToLower(config.AsString(cfg.Get(common.EmailTransportKey), TransportSES))

	slog.DebugContext(ctx, "Creating email sender", "transport", transport)

	switch transport {
	case TransportSES:
		return NewSESSender(awsCfg), nil
	case TransportSMTP:
		return NewMailSender(cfg), nil
	case TransportStub:
		return &StubSender{}, nil
	default:
		slog.ErrorContext(ctx, "Unknown email transport", "transport", transport)
		return nil, errUnknownTransport
	}
}
