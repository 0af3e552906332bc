package client

import (
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	gomail "gopkg.in/gomail.v2"
)

type EmailClient struct {
	dialer *gomail.Dialer
	from   string
	L      *logrus.Logger
}

func NewEmailClient(l *logrus.Logger) *EmailClient {
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		port = 587
	}
	return &EmailClient{
		dialer: gomail.NewDialer(
			os.Getenv("SMTP_HOST"),
			port,
			os.Getenv("SMTP_USERNAME"),
			os.Getenv("SMTP_PASSWORD"),
		),
		from: os.Getenv("SMTP_FROM"),
		L:    l,
	}
}

func (e *EmailClient) SendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", e.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := e.dialer.DialAndSend(m); err != nil {
		e.L.Errorf("Error sending email to %s: %s", to, err.Error())
		return err
	}
	return nil
}
