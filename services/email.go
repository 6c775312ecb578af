package services

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"log"
	"strings"
	texttemplate "text/template"

	"mediation_flow_go/config"

	"github.com/resend/resend-go/v2"
)

// Email represents an email message
type Email struct {
	To       []string
	Subject  string
	HTMLBody string
	TextBody string
}

// SendEmail sends an email using Resend API
func SendEmail(cfg *config.Config, email *Email) error {
	// In test mode, log the email instead of sending
	if cfg.EmailTestMode {
		logEmailToConsole(email)
		return nil
	}

	if cfg.ResendAPIKey == "" {
		return fmt.Errorf("RESEND_API_KEY not configured")
	}

	client := resend.NewClient(cfg.ResendAPIKey)

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", cfg.EmailFromName, cfg.EmailFrom),
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTMLBody,
		Text:    email.TextBody,
	}
	if params.Html == "" && params.Text == "" {
		return fmt.Errorf("email must have either HTMLBody or TextBody")
	}

	sent, err := client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send email via Resend: %w", err)
	}

	log.Printf("[EMAIL] Sent via Resend (ID: %s) to: %v", sent.Id, email.To)
	return nil
}

// logEmailToConsole logs email details to console in test mode
func logEmailToConsole(email *Email) {
	separator := strings.Repeat("=", 80)
	log.Printf("\n%s\n[EMAIL] Test mode, not sent\n%s", separator, separator)
	log.Printf("To: %v", email.To)
	log.Printf("Subject: %s", email.Subject)
	log.Printf("\n--- TEXT BODY ---\n%s", email.TextBody)
	log.Printf("\n--- HTML BODY (first 500 chars) ---\n%s", truncate(email.HTMLBody, 500))
	log.Printf("%s\n", separator)
}

// truncate truncates a string to a maximum length
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

// FollowUpReminderEmailData contains data for the follow-up reminder email
type FollowUpReminderEmailData struct {
	MediatorName string
	CaseNumber   string
	CaseTitle    string
	FollowUpDate string
}

var followUpReminderHTML = htmltemplate.Must(htmltemplate.New("follow_up_reminder.html").Parse(
	`<html><body>
<p>Hello {{.MediatorName}},</p>
<p>The follow-up for settled case <strong>{{.CaseNumber}}</strong> ({{.CaseTitle}}) is due on {{.FollowUpDate}}.</p>
<p>Please contact the parties to confirm the settlement terms are being honoured.</p>
</body></html>`))

var followUpReminderText = texttemplate.Must(texttemplate.New("follow_up_reminder.txt").Parse(
	`Hello {{.MediatorName}},

The follow-up for settled case {{.CaseNumber}} ({{.CaseTitle}}) is due on {{.FollowUpDate}}.

Please contact the parties to confirm the settlement terms are being honoured.
`))

// BuildFollowUpReminderEmail creates the reminder sent to a mediator when a settled
// case reaches its follow-up date
func BuildFollowUpReminderEmail(to string, data FollowUpReminderEmailData) (*Email, error) {
	var html, text bytes.Buffer
	if err := followUpReminderHTML.Execute(&html, data); err != nil {
		return nil, fmt.Errorf("failed to render reminder html: %w", err)
	}
	if err := followUpReminderText.Execute(&text, data); err != nil {
		return nil, fmt.Errorf("failed to render reminder text: %w", err)
	}

	return &Email{
		To:       []string{to},
		Subject:  fmt.Sprintf("Follow-up due: case %s", data.CaseNumber),
		HTMLBody: html.String(),
		TextBody: text.String(),
	}, nil
}
