package services

import (
	"fmt"

	gomail "gopkg.in/gomail.v2"
)

// Mailer sends transactional mail through an SMTP-compatible provider.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailer(host string, port int, user, pass string) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   user,
	}
}

// SendOTPEmail delivers a verification code. A provider rejection is returned
// to the caller, which treats it as a hard failure of the enclosing operation.
func (m *Mailer) SendOTPEmail(to, code string) error {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.from, "EchoMind")
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Your EchoMind verification code")
	msg.SetBody("text/plain", fmt.Sprintf("Your verification code is %s. It expires in 10 minutes.", code))
	msg.AddAlternative("text/html", fmt.Sprintf(`<div style="font-family: Arial, sans-serif; padding: 10px;">
  <h2>Email Verification</h2>
  <p>Your verification code is:</p>
  <h1 style="color: #2e86de;">%s</h1>
  <p>This code will expire in <b>10 minutes</b>.</p>
  <br/>
  <p>If you did not request this, please ignore this email.</p>
</div>`, code))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send OTP email: %w", err)
	}
	return nil
}
