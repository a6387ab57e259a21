package smtp

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"

	"github.com/noor-otp-service/internal/config"
	"github.com/noor-otp-service/internal/domain"
	"github.com/noor-otp-service/internal/pkg/id"
)

// Mailer is the delivery gateway for issued codes. A nil return from SendOTP
// means the message was handed off to the transport; any transport trouble
// (unreachable host, timeout, rejected recipient) comes back as an error
// rather than a panic. Verify probes transport connectivity without sending.
type Mailer interface {
	SendOTP(ctx context.Context, to, name, code string, purpose domain.Purpose) error
	Verify(ctx context.Context) error
}

type mailer struct {
	host          string
	port          string
	from          string
	fromName      string
	username      string
	password      string
	expiryMinutes int
}

func NewMailer(cfg *config.Config) Mailer {
	return &mailer{
		host:          cfg.SMTPHost,
		port:          cfg.SMTPPort,
		from:          cfg.SMTPFrom,
		fromName:      cfg.SMTPFromName,
		username:      cfg.SMTPUsername,
		password:      cfg.SMTPPassword,
		expiryMinutes: int(cfg.OTPTTL.Minutes()),
	}
}

func (m *mailer) SendOTP(ctx context.Context, to, name, code string, purpose domain.Purpose) error {
	var subject string
	var render func(name, code string, expiryMinutes int) (string, error)
	switch purpose {
	case domain.PurposePasswordReset:
		subject = "Password Reset Code - Noor Al Quran"
		render = renderPasswordResetEmail
	default:
		subject = "Your Verification Code - Noor Al Quran"
		render = renderVerificationEmail
	}

	body, err := render(name, code, m.expiryMinutes)
	if err != nil {
		return fmt.Errorf("render email body: %w", err)
	}

	msgID := id.New()
	if err := m.send(ctx, to, subject, msgID, body); err != nil {
		slog.Warn("OTP email delivery failed", "to", to, "message_id", msgID, "err", err)
		return err
	}
	slog.Info("OTP email handed off", "to", to, "message_id", msgID, "purpose", string(purpose))
	return nil
}

// Verify opens a connection, greets the server and quits. It reports whether
// the transport is reachable and willing to talk, nothing about a specific
// recipient.
func (m *mailer) Verify(ctx context.Context) error {
	c, err := m.dial(ctx)
	if err != nil {
		return err
	}
	defer c.Close()
	if err := c.Noop(); err != nil {
		return err
	}
	return c.Quit()
}

// send delivers one message. The context bounds the whole exchange: its
// deadline is applied to the underlying connection, so a stalled server
// cannot hold a request thread past the configured timeout.
func (m *mailer) send(ctx context.Context, to, subject, msgID, htmlBody string) error {
	c, err := m.dial(ctx)
	if err != nil {
		return fmt.Errorf("connect to SMTP server: %w", err)
	}
	defer c.Close()

	if m.username != "" {
		auth := smtp.PlainAuth("", m.username, m.password, m.host)
		if err := c.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := c.Mail(m.from); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "From: %s <%s>\r\n", m.fromName, m.from)
	fmt.Fprintf(w, "To: %s\r\n", to)
	fmt.Fprintf(w, "Subject: %s\r\n", subject)
	fmt.Fprintf(w, "Message-ID: <%s@%s>\r\n", msgID, m.host)
	fmt.Fprintf(w, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(w, "Content-Type: text/html; charset=\"utf-8\"\r\n")
	fmt.Fprintf(w, "\r\n%s", htmlBody)

	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

// dial opens the SMTP session and upgrades to TLS when the server offers
// STARTTLS. The context's deadline is pushed down onto the socket so every
// subsequent command inherits the bound.
func (m *mailer) dial(ctx context.Context) (*smtp.Client, error) {
	addr := net.JoinHostPort(m.host, m.port)
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, m.host)
	if err != nil {
		conn.Close()
		return nil, err
	}
	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: m.host}); err != nil {
			c.Close()
			return nil, fmt.Errorf("starttls: %w", err)
		}
	}
	return c, nil
}
