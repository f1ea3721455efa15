package service

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"log"

	"github.com/microcosm-cc/bluemonday"
	"github.com/wneessen/go-mail"
	"github.com/yuin/goldmark"
)

// Mailer delivers an HTML email.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// SMTPMailer sends mail through an authenticated SMTP server.
type SMTPMailer struct {
	host      string
	port      int
	user      string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPMailer creates an SMTPMailer. Port 465 uses implicit TLS, every other
// port requires STARTTLS.
func NewSMTPMailer(host string, port int, user, password, fromName, fromEmail string) *SMTPMailer {
	return &SMTPMailer{
		host:      host,
		port:      port,
		user:      user,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

// Send delivers one message.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg := mail.NewMsg()
	if err := msg.From(fmt.Sprintf("%s <%s>", m.fromName, m.fromEmail)); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	opts := []mail.Option{
		mail.WithPort(m.port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.user),
		mail.WithPassword(m.password),
		mail.WithTLSConfig(&tls.Config{ServerName: m.host}),
	}
	if usesImplicitTLS(m.port) {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}

	client, err := mail.NewClient(m.host, opts...)
	if err != nil {
		return fmt.Errorf("create smtp client (host=%s port=%d): %w", m.host, m.port, err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail (host=%s port=%d): %w", m.host, m.port, err)
	}

	log.Printf("[MAIL] sent to=%s subject=%q", to, subject)
	return nil
}

// usesImplicitTLS reports whether port expects TLS from the first byte
// (SMTPS) rather than a STARTTLS upgrade.
func usesImplicitTLS(port int) bool {
	return port == 465
}

// LogMailer only logs outgoing mail. It is used when SMTP is not configured.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, to, subject, htmlBody string) error {
	log.Printf("[MAIL disabled] to=%s subject=%q body=%s", to, subject, htmlBody)
	return nil
}

var (
	mailMarkdown  = goldmark.New()
	mailSanitizer = bluemonday.UGCPolicy()
)

// renderMail turns a markdown body into sanitized HTML.
func renderMail(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := mailMarkdown.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("render mail: %w", err)
	}
	return string(mailSanitizer.SanitizeBytes(buf.Bytes())), nil
}
