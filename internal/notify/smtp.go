package notify

import (
	"fmt"
	"net/smtp"
	"strings"
)

type SMTPMailer struct {
	From     string
	FromName string
	Host     string
	Port     string
	User     string
	Pass     string
}

func (m *SMTPMailer) Send(msg EmailMessage) error {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", m.FromName, m.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n" + msg.Body)

	var auth smtp.Auth
	if m.User != "" && m.Pass != "" {
		auth = smtp.PlainAuth("", m.User, m.Pass, m.Host)
	}

	return smtp.SendMail(m.Host+":"+m.Port, auth, m.From, []string{msg.To}, []byte(b.String()))
}
