package services

import (
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/ohisee/backend/internal/config"
)

// Notifier sends best-effort notifications. Implementations must swallow
// failures: a mail outage must never block report intake or review.
type Notifier interface {
	NotifyNewReport(tenantID, reference, category, title string)
	NotifyUpdate(email, reference, status, message string)
	SendPasswordReset(email, token string)
}

// EmailService sends templated HTML mail over SMTP. Every method is a no-op
// when no SMTP host is configured.
type EmailService struct {
	host        string
	port        string
	username    string
	password    string
	fromEmail   string
	notifyEmail string
}

func NewEmailService(cfg *config.Config) *EmailService {
	notify := cfg.NotifyEmail
	if notify == "" {
		notify = cfg.FromEmail
	}
	return &EmailService{
		host:        cfg.SMTPHost,
		port:        cfg.SMTPPort,
		username:    cfg.SMTPUsername,
		password:    cfg.SMTPPassword,
		fromEmail:   cfg.FromEmail,
		notifyEmail: notify,
	}
}

func (s *EmailService) enabled() bool {
	return s.host != ""
}

// NotifyNewReport alerts the compliance inbox that a report arrived.
func (s *EmailService) NotifyNewReport(tenantID, reference, category, title string) {
	if !s.enabled() {
		return
	}
	subject := "New confidential report " + reference
	body := fmt.Sprintf(`
	<html>
	<body>
		<h2>New confidential report</h2>
		<p>A new report has been submitted.</p>
		<ul>
			<li><strong>Reference:</strong> %s</li>
			<li><strong>Category:</strong> %s</li>
			<li><strong>Title:</strong> %s</li>
			<li><strong>Tenant:</strong> %s</li>
		</ul>
		<p>Log in to the review dashboard to triage it.</p>
	</body>
	</html>`, reference, category, title, tenantID)

	if err := s.sendEmail(s.notifyEmail, subject, body); err != nil {
		slog.Error("new report notification failed", "error", err, "tenant_id", tenantID, "reference", reference)
	}
}

// NotifyUpdate tells the reporter their report changed.
func (s *EmailService) NotifyUpdate(email, reference, status, message string) {
	if !s.enabled() || email == "" {
		return
	}
	subject := "Update on your report " + reference
	body := fmt.Sprintf(`
	<html>
	<body>
		<h2>Your report has been updated</h2>
		<p>There is a new update on report <strong>%s</strong>.</p>
		<p><strong>Status:</strong> %s</p>
		<p>%s</p>
		<p>You can follow progress any time using your reference number.</p>
	</body>
	</html>`, reference, status, message)

	if err := s.sendEmail(email, subject, body); err != nil {
		slog.Error("update notification failed", "error", err, "reference", reference)
	}
}

// SendPasswordReset mails a reset token.
func (s *EmailService) SendPasswordReset(email, token string) {
	if !s.enabled() || email == "" {
		return
	}
	subject := "Reset your OhiSee! password"
	body := fmt.Sprintf(`
	<html>
	<body>
		<h2>Password reset</h2>
		<p>Use the token below to reset your password. It expires in one hour.</p>
		<p><code>%s</code></p>
		<p>If you did not request a reset, ignore this email.</p>
	</body>
	</html>`, token)

	if err := s.sendEmail(email, subject, body); err != nil {
		slog.Error("password reset email failed", "error", err)
	}
}

func (s *EmailService) sendEmail(to, subject, body string) error {
	auth := smtp.PlainAuth("", s.username, s.password, s.host)

	msg := []byte("To: " + to + "\r\n" +
		"From: OhiSee! <" + s.fromEmail + ">\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=UTF-8\r\n" +
		"\r\n" + body)

	return smtp.SendMail(s.host+":"+s.port, auth, s.fromEmail, []string{to}, msg)
}
