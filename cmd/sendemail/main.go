package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/sdkexamples/sdkexamples/pkg/cloud"
	"github.com/sdkexamples/sdkexamples/pkg/common"
	"github.com/sdkexamples/sdkexamples/pkg/config"
	"github.com/sdkexamples/sdkexamples/pkg/email"
	"github.com/sdkexamples/sdkexamples/pkg/stub"
)

var (
	envFileFlag = flag.String("env", "", "Path to .env file, 'stdin' or empty")
	toFlag      = flag.String("to", "", "Recipient address")
	ccFlag      = flag.String("cc", "", "Comma-separated Cc addresses")
	bccFlag     = flag.String("bcc", "", "Comma-separated Bcc addresses")
	replyToFlag = flag.String("reply-to", "", "Reply-To address")
	fromFlag    = flag.String("from", "", "Sender address (defaults to SX_EMAIL_FROM)")
	subjectFlag = flag.String("subject", "", "Message subject")
	textFlag    = flag.String("text", "", "Plain text body")
	htmlFlag    = flag.String("html", "", "HTML body")
	charsetFlag = flag.String("charset", common.DefaultCharset, "Charset of subject and bodies")
)

func run(ctx context.Context, cfg common.ConfigStore) error {
	msg := &email.Message{
		HTMLBody:  *htmlFlag,
		TextBody:  *textFlag,
		Subject:   *subjectFlag,
		Charset:   *charsetFlag,
		EmailTo:   *toFlag,
		Cc:        common.SplitList(*ccFlag),
		Bcc:       common.SplitList(*bccFlag),
		EmailFrom: *fromFlag,
		ReplyTo:   *replyToFlag,
	}

	if len(msg.EmailFrom) == 0 {
		msg.EmailFrom = cfg.Get(common.EmailFromKey).Value()
	}

	if err := msg.Validate(); err != nil {
		return err
	}

	awsCfg, err := cloud.LoadConfig(ctx, cfg, stub.LiveBackend{})
	if err != nil {
		return err
	}

	sender, err := email.NewSender(ctx, cfg, awsCfg)
	if err != nil {
		return err
	}

	if err := sender.SendEmail(ctx, msg); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Email sent", "to", common.MaskEmail(msg.EmailTo, '*'), "cc", len(msg.Cc), "bcc", len(msg.Bcc))

	return nil
}

func main() {
	flag.Parse()

	env, err := common.NewEnvMap(*envFileFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		env = &common.EnvMap{}
	}

	cfg := config.NewEnvConfig(env.Get)
	common.SetupLogs(cfg.Get(common.StageKey).Value(), config.AsBool(cfg.Get(common.VerboseKey)))

	if err := run(common.TraceContext(context.Background(), "sendemail"), cfg); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}
