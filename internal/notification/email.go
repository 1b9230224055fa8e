package notification

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"time"

	"github.com/aroyy007/Air-Quality-Monitoring-System/internal/aqi"
	"github.com/aroyy007/Air-Quality-Monitoring-System/internal/protocol"
	"github.com/aroyy007/Air-Quality-Monitoring-System/pkg/config"
)

// EmailNotifier sends email notifications for air quality alerts
type EmailNotifier struct {
	config *config.SMTPConfig
}

// NewEmailNotifier creates a new email notifier
func NewEmailNotifier(cfg *config.SMTPConfig) *EmailNotifier {
	return &EmailNotifier{config: cfg}
}

type alertEmailData struct {
	*protocol.AlertNotification
	Category string
}

// SendAlertNotification sends an email for an alert notification
func (e *EmailNotifier) SendAlertNotification(notification *protocol.AlertNotification) error {
	var subject string
	var body string
	var err error

	data := &alertEmailData{
		AlertNotification: notification,
		Category:          aqi.Category(notification.AQI),
	}

	switch notification.Type {
	case protocol.AlertTypeTriggered:
		subject = fmt.Sprintf("Air Quality Alert TRIGGERED - %s (%s)", notification.Location, notification.StationID)
		body, err = e.renderTriggeredTemplate(data)
	case protocol.AlertTypeCleared:
		subject = fmt.Sprintf("Air Quality Alert CLEARED - %s (%s)", notification.Location, notification.StationID)
		body, err = e.renderClearedTemplate(data)
	default:
		return fmt.Errorf("unknown notification type: %s", notification.Type)
	}

	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return e.sendEmail(subject, body)
}

func (e *EmailNotifier) renderTriggeredTemplate(data *alertEmailData) (string, error) {
	tmpl := `
Air Quality Alert Triggered
===========================

Station: {{.StationID}} ({{.Location}})
Metric: {{.Metric}}
Current Value: {{.Value}}
Current AQI: {{.AQI}} ({{.Category}})
Threshold: {{.Operator}} {{.Threshold}}
Duration: {{.Duration}} minutes
Start Time: {{.StartTime}}
Alert ID: {{.AlertID}}

Description:
The {{.Metric}} level at {{.Location}} has breached the threshold
({{.Operator}} {{.Threshold}}) for {{.Duration}} minutes. Air quality is
currently rated "{{.Category}}" (AQI {{.AQI}}).

Consider limiting outdoor activity until levels return to normal.

---
Air Quality Monitoring System
`

	t, err := template.New("triggered").Parse(tmpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (e *EmailNotifier) renderClearedTemplate(data *alertEmailData) (string, error) {
	tmpl := `
Air Quality Alert Cleared
=========================

Station: {{.StationID}} ({{.Location}})
Metric: {{.Metric}}
Alert ID: {{.AlertID}}

Description:
The alert for {{.Metric}} at {{.Location}} has been cleared.
The level has returned to normal.

---
Air Quality Monitoring System
`

	t, err := template.New("cleared").Parse(tmpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (e *EmailNotifier) sendEmail(subject, body string) error {
	// Skip sending if SMTP is not configured
	if e.config.Username == "" || e.config.Password == "" {
		fmt.Printf("SMTP not configured, skipping email:\nSubject: %s\n%s\n", subject, body)
		return nil
	}

	message := fmt.Sprintf("From: %s\r\n", e.config.From)
	message += fmt.Sprintf("To: %s\r\n", e.config.To)
	message += fmt.Sprintf("Subject: %s\r\n", subject)
	message += fmt.Sprintf("Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	message += "\r\n"
	message += body

	auth := smtp.PlainAuth("", e.config.Username, e.config.Password, e.config.Host)

	addr := fmt.Sprintf("%s:%d", e.config.Host, e.config.Port)
	err := smtp.SendMail(addr, auth, e.config.From, []string{e.config.To}, []byte(message))
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	fmt.Printf("Email sent successfully: %s\n", subject)
	return nil
}

// TestConnection tests the SMTP connection
func (e *EmailNotifier) TestConnection() error {
	if e.config.Username == "" {
		return fmt.Errorf("SMTP not configured")
	}

	addr := fmt.Sprintf("%s:%d", e.config.Host, e.config.Port)
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer client.Close()

	fmt.Println("SMTP connection test successful")
	return nil
}
