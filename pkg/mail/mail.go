// Package mail sends plain SMTP mail. It carries the order alert emails
// sent to the shop owner.
//
//	m := mail.New(mail.FromConfig())
//	err := m.Send(ctx, mail.Message{
//	    To:      []string{"owner@example.com"},
//	    Subject: "New order received",
//	    Text:    "Order #42 received. Total: $39.98",
//	})
package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/shashiranjanraj/storefront/config"
)

// Config holds the SMTP connection settings.
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

// FromConfig reads MAIL_* settings.
func FromConfig() Config {
	return Config{
		Host:     config.Get("MAIL_HOST", ""),
		Port:     config.Get("MAIL_PORT", "587"),
		Username: config.Get("MAIL_USERNAME", ""),
		Password: config.Get("MAIL_PASSWORD", ""),
		From:     config.Get("MAIL_FROM", "orders@storefront.local"),
		FromName: config.Get("MAIL_FROM_NAME", config.AppName()),
	}
}

// Enabled reports whether a host is configured.
func (c Config) Enabled() bool { return c.Host != "" }

type Message struct {
	To      []string
	Subject string
	Text    string
	HTML    string
}

// Transport delivers an encoded message. smtp.SendMail satisfies it.
type Transport func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type Mailer struct {
	cfg       Config
	transport Transport
}

func New(cfg Config) *Mailer {
	m := &Mailer{cfg: cfg, transport: smtp.SendMail}
	if cfg.Port == "465" {
		m.transport = sendTLS(cfg.Host)
	}
	return m
}

// Use swaps the transport.
func (m *Mailer) Use(t Transport) *Mailer {
	m.transport = t
	return m
}

var ErrNoRecipients = errors.New("mail: no recipients")

func (m *Mailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}
	if !m.cfg.Enabled() {
		return errors.New("mail: MAIL_HOST not configured")
	}

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	addr := m.cfg.Host + ":" + m.cfg.Port
	if err := m.transport(addr, auth, m.cfg.From, msg.To, m.encode(msg)); err != nil {
		return fmt.Errorf("mail: send: %w", err)
	}
	return nil
}

func (m *Mailer) encode(msg Message) []byte {
	contentType, body := "text/plain", msg.Text
	if msg.HTML != "" {
		contentType, body = "text/html", msg.HTML
	}

	from := m.cfg.From
	if m.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", m.cfg.FromName, m.cfg.From)
	}

	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + strings.Join(msg.To, ", ") + "\r\n")
	b.WriteString("Subject: " + headerSafe(msg.Subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: " + contentType + "; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(b.String())
}

func headerSafe(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}

// sendTLS is the implicit-TLS transport used on port 465.
func sendTLS(host string) Transport {
	return func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
		if err != nil {
			return fmt.Errorf("tls dial: %w", err)
		}
		client, err := smtp.NewClient(conn, host)
		if err != nil {
			_ = conn.Close()
			return err
		}
		defer client.Close()

		if a != nil {
			if err := client.Auth(a); err != nil {
				return err
			}
		}
		if err := client.Mail(from); err != nil {
			return err
		}
		for _, rcpt := range to {
			if err := client.Rcpt(rcpt); err != nil {
				return err
			}
		}
		w, err := client.Data()
		if err != nil {
			return err
		}
		if _, err := w.Write(msg); err != nil {
			return err
		}
		if err := w.Close(); err != nil {
			return err
		}
		return client.Quit()
	}
}
