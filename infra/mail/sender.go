package mail

import (
	"context"
	"fmt"
	"io"

	gomail "github.com/wneessen/go-mail"

	"github.com/kilianp07/opsreport/config"
	"github.com/kilianp07/opsreport/infra/logger"
)

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, m *Message) error
}

// SMTPSender delivers messages through the configured relay.
type SMTPSender struct {
	cfg config.MailConfig
	log logger.Logger
}

// NewSMTPSender returns a sender for cfg.
func NewSMTPSender(cfg config.MailConfig) *SMTPSender {
	cfg.SetDefaults()
	return &SMTPSender{cfg: cfg, log: logger.New("mail")}
}

// Options translates the relay settings into go-mail client options.
func Options(cfg config.MailConfig) ([]gomail.Option, error) {
	opts := []gomail.Option{gomail.WithPort(cfg.Port), gomail.WithTimeout(cfg.Timeout)}
	switch cfg.TLS {
	case "none":
		opts = append(opts, gomail.WithTLSPolicy(gomail.NoTLS))
	case "mandatory":
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	case "opportunistic", "":
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSOpportunistic))
	default:
		return nil, fmt.Errorf("unknown mail tls policy %s", cfg.TLS)
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password))
	}
	return opts, nil
}

// Send builds m and hands it to the relay.
func (s *SMTPSender) Send(ctx context.Context, m *Message) error {
	msg, err := m.Build()
	if err != nil {
		return err
	}
	opts, err := Options(s.cfg)
	if err != nil {
		return err
	}
	client, err := gomail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send %q: %w", m.Subject, err)
	}
	s.log.Infof("sent %q to %d recipients", m.Subject, len(m.Recipients))
	return nil
}

// FileSender writes messages to w instead of sending them.
type FileSender struct {
	W io.Writer
}

// Send writes the encoded message.
func (f FileSender) Send(_ context.Context, m *Message) error {
	_, err := m.WriteTo(f.W)
	return err
}

// AttachmentWriter writes the attachments of every message to W and sends
// nothing.
type AttachmentWriter struct {
	W io.Writer
}

// Send writes the attachment contents in order.
func (a AttachmentWriter) Send(_ context.Context, m *Message) error {
	if len(m.Attachments) == 0 {
		return fmt.Errorf("message %q has no attachment", m.Subject)
	}
	for _, att := range m.Attachments {
		if _, err := a.W.Write(att.Content); err != nil {
			return fmt.Errorf("write %s: %w", att.Name, err)
		}
	}
	return nil
}

// Recipients returns the addresses of the named list. In debug mode every
// message goes to the debug recipients instead.
func Recipients(cfg config.MailConfig, list string, debug bool) ([]string, error) {
	if debug {
		if len(cfg.DebugRecipients) == 0 {
			return nil, fmt.Errorf("debug mode without debug recipients")
		}
		return append([]string(nil), cfg.DebugRecipients...), nil
	}
	addrs, ok := cfg.Recipients[list]
	if !ok || len(addrs) == 0 {
		return nil, fmt.Errorf("recipient list %s is empty", list)
	}
	return append([]string(nil), addrs...), nil
}
