package mailer

import (
	"context"
	"errors"
	"net/smtp"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/config"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	addr string
	from string
	to   []string
	msg  string
}

func newTestMailer(t *testing.T) (*SMTPMailer, *[]sentMail) {
	t.Helper()
	m := NewSMTPMailer(&config.Config{
		SMTPHost:     "smtp.example.com",
		SMTPPort:     "587",
		SMTPUser:     "avisos@example.com",
		SMTPPassword: "secret",
		OTPTTL:       3 * time.Minute,
	})
	var sent []sentMail
	m.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		sent = append(sent, sentMail{addr: addr, from: from, to: to, msg: string(msg)})
		return nil
	}
	return m, &sent
}

func TestDeliverOTP(t *testing.T) {
	m, sent := newTestMailer(t)
	require.NoError(t, m.DeliverOTP(context.Background(), "v@x.com", "004211"))

	require.Len(t, *sent, 1)
	mail := (*sent)[0]
	assert.Equal(t, "smtp.example.com:587", mail.addr)
	assert.Equal(t, "avisos@example.com", mail.from)
	assert.Equal(t, []string{"v@x.com"}, mail.to)
	assert.Contains(t, mail.msg, "004211")
	assert.Contains(t, mail.msg, "Vence en 3 minutos")
	assert.Contains(t, mail.msg, "Content-Type: text/html")
}

func TestDeliverStatusChangeUsesLabels(t *testing.T) {
	m, sent := newTestMailer(t)
	email := "v@x.com"
	r := &models.Report{PublicID: "abc", CitizenEmail: &email}

	require.NoError(t, m.DeliverStatusChange(context.Background(), r, models.StatusNew, models.StatusDone))
	require.Len(t, *sent, 1)
	assert.Contains(t, (*sent)[0].msg, "nuevo")
	assert.Contains(t, (*sent)[0].msg, "finalizado")
}

func TestDeliverCommentEscapesContent(t *testing.T) {
	m, sent := newTestMailer(t)
	email := "v@x.com"
	r := &models.Report{PublicID: "abc", CitizenEmail: &email}

	require.NoError(t, m.DeliverComment(context.Background(), r, &models.ReportComment{Content: "<b>hola</b>"}))
	assert.Contains(t, (*sent)[0].msg, "&lt;b&gt;hola&lt;/b&gt;")
}

func TestDeliverWithoutCitizenEmailIsSkipped(t *testing.T) {
	m, sent := newTestMailer(t)
	require.NoError(t, m.DeliverStatusChange(context.Background(), &models.Report{}, models.StatusNew, models.StatusDone))
	assert.Empty(t, *sent)
}

func TestDisabledMailerFails(t *testing.T) {
	m := NewSMTPMailer(&config.Config{})
	err := m.DeliverOTP(context.Background(), "v@x.com", "000000")
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestTransportErrorIsReturned(t *testing.T) {
	m, _ := newTestMailer(t)
	boom := errors.New("421 service not available")
	m.send = func(string, smtp.Auth, string, []string, []byte) error { return boom }

	err := m.DeliverOTP(context.Background(), "v@x.com", "000000")
	assert.ErrorIs(t, err, boom)
}
