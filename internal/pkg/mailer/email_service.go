// FILE: internal/pkg/mailer/email_service.go
package mailer

import (
	"fmt"
	"os"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendTrialExpiredNotice(toEmail, tenantName, featureName string, disabled bool) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	consoleURL  string // Used to construct links back to the admin console
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	consoleURL := os.Getenv("CONSOLE_URL")

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		consoleURL:  consoleURL,
	}
}

func (s *emailService) SendTrialExpiredNotice(toEmail, tenantName, featureName string, disabled bool) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("Trial ended: %s", featureName))

	status := "The feature remains enabled under your current plan."
	if disabled {
		status = "The feature has been disabled because your current plan does not include it."
	}

	upgradeLink := fmt.Sprintf("%s/billing/plans", s.consoleURL)

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Trial period ended</h2>
			<p>The trial of <strong>%s</strong> for <strong>%s</strong> has ended.</p>
			<p>%s</p>
			<a href="%s" style="background-color: #007BFF; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">View Plans</a>
		</div>
	`, featureName, tenantName, status, upgradeLink)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send trial notice to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Trial expiry notice sent to %s\n", toEmail)
	return nil
}
