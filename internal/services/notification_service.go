// internal/services/notification_service.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/machinery-catalog/internal/config"
	"github.com/javajoker/machinery-catalog/internal/models"
)

// NotificationService emails operators about reconciliation issues.
type NotificationService struct {
	config config.EmailConfig
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

type EmailTemplate struct {
	Subject string
	Body    string
}

func NewNotificationService(cfg config.EmailConfig) *NotificationService {
	return &NotificationService{
		config: cfg,
		send:   smtp.SendMail,
	}
}

func (s *NotificationService) SendIssueAlert(issue *models.ReconciliationIssue) error {
	if s.config.AlertEmail == "" {
		return nil
	}

	tmpl := issueAlertTemplate
	data := map[string]interface{}{
		"EntityType": issue.EntityType,
		"EntityID":   issue.EntityID,
		"Operation":  issue.Operation,
		"Bucket":     issue.Bucket,
		"Paths":      strings.Join(issue.Paths, ", "),
		"RecordIDs":  strings.Join(issue.RecordIDs, ", "),
		"Error":      issue.Error,
	}

	subject, err := s.renderTemplate(tmpl.Subject, data)
	if err != nil {
		return fmt.Errorf("failed to render email subject: %w", err)
	}
	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(s.config.AlertEmail, subject, body)
}

// Helper methods
func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.config.SMTPHost == "" {
		logrus.WithFields(logrus.Fields{"to": to, "subject": subject}).Info("Email not configured, alert logged only")
		return nil
	}

	auth := smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)
	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s", to, subject, body))
	addr := fmt.Sprintf("%s:%s", s.config.SMTPHost, s.config.SMTPPort)
	return s.send(addr, auth, s.config.FromEmail, []string{to}, msg)
}

func (s *NotificationService) renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

var issueAlertTemplate = EmailTemplate{
	Subject: "[Catálogo] Inconsistencia en {{.EntityType}} {{.EntityID}}",
	Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Inconsistencia de archivos</h2>
	<p>La operación <strong>{{.Operation}}</strong> sobre {{.EntityType}} {{.EntityID}} no pudo revertirse.</p>
	{{if .Paths}}<p>Archivos en {{.Bucket}}: {{.Paths}}</p>{{end}}
	{{if .RecordIDs}}<p>Registros: {{.RecordIDs}}</p>{{end}}
	<p>Error: {{.Error}}</p>
	<p>Revise la cola de incidencias en el panel de administración.</p>
</body>
</html>`,
}

// AlertingIssueLog records issues and then emails operators about them. The
// alert is sent in the background; a failed alert never fails the record.
type AlertingIssueLog struct {
	log      IssueLog
	notifier *NotificationService
}

func NewAlertingIssueLog(log IssueLog, notifier *NotificationService) *AlertingIssueLog {
	return &AlertingIssueLog{log: log, notifier: notifier}
}

func (l *AlertingIssueLog) Record(ctx context.Context, issue *models.ReconciliationIssue) error {
	if err := l.log.Record(ctx, issue); err != nil {
		return err
	}

	alert := *issue
	go func() {
		if err := l.notifier.SendIssueAlert(&alert); err != nil {
			logrus.WithError(err).WithField("issue_id", alert.ID).Warn("Failed to send issue alert")
		}
	}()
	return nil
}
