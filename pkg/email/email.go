package email

import (
	"fmt"
	"html"
	"net/smtp"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SMTPConfig holds the SMTP server configuration
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
}

// LoadSMTPConfigFromEnv loads SMTP configuration from environment variables
func LoadSMTPConfigFromEnv() (*SMTPConfig, error) {
	host := os.Getenv("SMTP_HOST")
	portStr := os.Getenv("SMTP_PORT")
	username := os.Getenv("SMTP_USERNAME")
	password := os.Getenv("SMTP_PASSWORD")
	sender := os.Getenv("SMTP_SENDER_EMAIL")

	if host == "" || portStr == "" || sender == "" {
		return nil, fmt.Errorf("SMTP_HOST, SMTP_PORT, and SMTP_SENDER_EMAIL must be set")
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %v", err)
	}

	return &SMTPConfig{
		Host:     host,
		Port:     port,
		Username: username, // Username can be empty for some SMTP servers
		Password: password, // Password can be empty for some SMTP servers
		Sender:   sender,
	}, nil
}

// StatusUpdate describes a report status change to announce to its author.
type StatusUpdate struct {
	RecipientEmail string
	RecipientName  string
	ReportID       string
	IssueType      string
	Status         string
	ReportLink     string // optional
}

// HumanizeLabel turns identifiers like "in_progress" into "In Progress".
func HumanizeLabel(s string) string {
	s = strings.NewReplacer("_", " ", "-", " ").Replace(strings.TrimSpace(s))
	return cases.Title(language.English).String(s)
}

// BuildStatusUpdateMessage renders the full RFC 822 message for a status update.
func BuildStatusUpdateMessage(sender string, u StatusUpdate) []byte {
	subject := fmt.Sprintf("Your report is now %s", HumanizeLabel(u.Status))

	link := ""
	if u.ReportLink != "" {
		escaped := html.EscapeString(u.ReportLink)
		link = fmt.Sprintf(`<p><a href="%s">%s</a></p>`, escaped, escaped)
	}

	body := fmt.Sprintf(`
<html>
<body>
    <p>Hello %s,</p>
    <p>The status of your %s report (%s) has changed to <strong>%s</strong>.</p>
    %s
    <p>Thank you for helping improve your community.</p>
    <p><small>(This is an automated message, please do not reply.)</small></p>
</body>
</html>
`, html.EscapeString(u.RecipientName), html.EscapeString(HumanizeLabel(u.IssueType)),
		html.EscapeString(u.ReportID), html.EscapeString(HumanizeLabel(u.Status)), link)

	// Construct email message with CRLF line endings
	return []byte(strings.Join([]string{
		"To: " + u.RecipientEmail,
		"From: " + sender,
		"Subject: " + subject,
		"MIME-version: 1.0",
		"Content-Type: text/html; charset=\"UTF-8\"",
		"",
		body,
	}, "\r\n"))
}

// Mailer sends notification emails through an SMTP server.
type Mailer struct {
	config *SMTPConfig
}

// NewMailer creates a mailer for the given configuration.
func NewMailer(config *SMTPConfig) *Mailer {
	return &Mailer{config: config}
}

// SendStatusUpdateEmail sends a status change notification to the report author.
func (m *Mailer) SendStatusUpdateEmail(u StatusUpdate) error {
	if u.RecipientEmail == "" {
		return fmt.Errorf("recipient email is empty")
	}
	msg := BuildStatusUpdateMessage(m.config.Sender, u)

	auth := smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
	addr := fmt.Sprintf("%s:%d", m.config.Host, m.config.Port)

	if err := smtp.SendMail(addr, auth, m.config.Sender, []string{u.RecipientEmail}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
