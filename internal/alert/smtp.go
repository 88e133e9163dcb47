package alert

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/hazz-dev/okgraph/internal/config"
)

// Transport delivers a built message to its recipients.
type Transport interface {
	Send(ctx context.Context, msg *mail.Msg) error
}

// SMTPTransport submits messages to an SMTP relay.
type SMTPTransport struct {
	cfg config.SMTPConfig
}

// NewSMTPTransport creates a transport for the relay described by cfg.
func NewSMTPTransport(cfg config.SMTPConfig) *SMTPTransport {
	return &SMTPTransport{cfg: cfg}
}

func (t *SMTPTransport) Send(ctx context.Context, msg *mail.Msg) error {
	if _, err := msg.GetRecipients(); err != nil {
		return fmt.Errorf("no recipients: %w", err)
	}
	client, err := t.client(ctx)
	if err != nil {
		return err
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending via %s: %w", client.ServerAddr(), err)
	}
	return nil
}

func (t *SMTPTransport) client(ctx context.Context) (*mail.Client, error) {
	timeout, err := sendTimeout(ctx, t.cfg.Timeout.Duration)
	if err != nil {
		return nil, err
	}
	var deadline time.Time
	opts := []mail.Option{mail.WithPort(t.cfg.Port)}
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
		opts = append(opts, mail.WithTimeout(timeout))
	}
	opts = append(opts, mail.WithDialContextFunc(t.dialer(deadline)))

	switch t.cfg.TLSMode {
	case "starttls":
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	case "smtps":
		opts = append(opts, mail.WithSSL())
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if t.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(t.cfg.Username),
			mail.WithPassword(t.cfg.Password),
		)
	}

	client, err := mail.NewClient(t.cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("configuring smtp client: %w", err)
	}
	return client, nil
}

// dialer connects to the relay, wrapping the connection in TLS for smtps.
// A non-zero deadline covers the whole exchange, greeting included.
func (t *SMTPTransport) dialer(deadline time.Time) mail.DialContextFunc {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		d := &net.Dialer{}
		var (
			conn net.Conn
			err  error
		)
		if t.cfg.TLSMode == "smtps" {
			td := &tls.Dialer{NetDialer: d, Config: &tls.Config{ServerName: t.cfg.Host}}
			conn, err = td.DialContext(ctx, network, addr)
		} else {
			conn, err = d.DialContext(ctx, network, addr)
		}
		if err != nil {
			return nil, err
		}
		if !deadline.IsZero() {
			if err := conn.SetDeadline(deadline); err != nil {
				conn.Close()
				return nil, fmt.Errorf("setting connection deadline: %w", err)
			}
		}
		return conn, nil
	}
}

// sendTimeout returns the connection timeout for one send: the configured
// timeout, shortened to the context deadline when that comes first. Zero
// keeps the client default.
func sendTimeout(ctx context.Context, configured time.Duration) (time.Duration, error) {
	deadline, ok := ctx.Deadline()
	if !ok {
		return configured, nil
	}
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return 0, fmt.Errorf("sending mail: %w", context.DeadlineExceeded)
	}
	if configured <= 0 || remaining < configured {
		return remaining, nil
	}
	return configured, nil
}

// WriterTransport writes the envelope and message to W instead of sending
// it. sendgraph uses it for --dry-run.
type WriterTransport struct {
	W io.Writer
}

func (t WriterTransport) Send(_ context.Context, msg *mail.Msg) error {
	from, err := msg.GetSender(false)
	if err != nil {
		return err
	}
	to, err := msg.GetRecipients()
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(t.W, "MAIL FROM: %s\r\nRCPT TO: %s\r\n\r\n", from, strings.Join(to, ", ")); err != nil {
		return err
	}
	_, err = msg.WriteTo(t.W)
	return err
}
