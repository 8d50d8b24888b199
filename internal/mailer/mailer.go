// Package mailer delivers citizen notifications by email.
package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/config"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/models"
)

var ErrDisabled = errors.New("mailer disabled: SMTP settings are incomplete")

var templates = template.Must(template.New("mail").Parse(`
{{define "otp"}}<p>Tu código de verificación es:</p>
<p style="font-size:24px;font-weight:bold;letter-spacing:4px">{{.Code}}</p>
<p>Vence en {{.Minutes}} minutos. Si no solicitaste este código, ignora este mensaje.</p>{{end}}
{{define "status"}}<p>Tu reporte <b>{{.PublicID}}</b> cambió de estado.</p>
<p>Antes: <b>{{.From}}</b><br>Ahora: <b>{{.To}}</b></p>
<p>Gracias por ayudarnos a mejorar tu comunidad.</p>{{end}}
{{define "comment"}}<p>Hay un nuevo comentario en tu reporte <b>{{.PublicID}}</b>:</p>
<blockquote>{{.Content}}</blockquote>
{{if .Author}}<p>Por: {{.Author}}</p>{{end}}{{end}}
`))

type sendFunc func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error

type SMTPMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
	otpTTL   time.Duration
	enabled  bool
	send     sendFunc
}

func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	m := &SMTPMailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     cfg.SMTPFrom,
		otpTTL:   cfg.OTPTTL,
		enabled:  cfg.SMTPEnabled(),
	}
	if m.from == "" {
		m.from = m.username
	}
	if m.port == "465" {
		m.send = m.sendImplicitTLS
	} else {
		m.send = smtp.SendMail
	}
	if !m.enabled {
		slog.Warn("mailer disabled: missing SMTP settings")
	}
	return m
}

func (m *SMTPMailer) DeliverOTP(ctx context.Context, email, code string) error {
	return m.deliver(ctx, email, "Tu código de verificación", "otp", map[string]any{
		"Code":    code,
		"Minutes": int(m.otpTTL.Minutes()),
	})
}

func (m *SMTPMailer) DeliverStatusChange(ctx context.Context, r *models.Report, from, to models.ReportStatus) error {
	if r.CitizenEmail == nil {
		return nil
	}
	return m.deliver(ctx, *r.CitizenEmail, "Actualización de tu reporte", "status", map[string]any{
		"PublicID": r.PublicID,
		"From":     from.Label(),
		"To":       to.Label(),
	})
}

func (m *SMTPMailer) DeliverComment(ctx context.Context, r *models.Report, c *models.ReportComment) error {
	if r.CitizenEmail == nil {
		return nil
	}
	author := ""
	if c.Author != nil {
		author = *c.Author
	}
	return m.deliver(ctx, *r.CitizenEmail, "Nuevo comentario en tu reporte", "comment", map[string]any{
		"PublicID": r.PublicID,
		"Content":  c.Content,
		"Author":   author,
	})
}

func (m *SMTPMailer) deliver(ctx context.Context, to, subject, tmpl string, data any) error {
	if !m.enabled {
		return ErrDisabled
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, tmpl, data); err != nil {
		return fmt.Errorf("render %s email: %w", tmpl, err)
	}
	msg := buildMessage(m.from, to, subject, body.String())
	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	if err := m.send(net.JoinHostPort(m.host, m.port), auth, m.from, []string{to}, msg); err != nil {
		return fmt.Errorf("send %s email: %w", tmpl, err)
	}
	slog.Info("email sent", "action", "mail_"+tmpl)
	return nil
}

func buildMessage(from, to, subject, htmlBody string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}

// sendImplicitTLS is used for port 465, where the connection starts in TLS
// instead of upgrading with STARTTLS.
func (m *SMTPMailer) sendImplicitTLS(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
	conn, err := tls.DialWithDialer(&net.Dialer{Timeout: 10 * time.Second}, "tcp", addr,
		&tls.Config{ServerName: m.host, MinVersion: tls.VersionTLS12})
	if err != nil {
		return err
	}
	c, err := smtp.NewClient(conn, m.host)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()

	if err := c.Auth(auth); err != nil {
		return err
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}
