// Package email sends marketplace notification emails via SMTP.
package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
)

// Config holds SMTP configuration.
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

type Service struct {
	config Config
	server string
	auth   smtp.Auth
}

func NewService(config Config) *Service {
	auth := smtp.PlainAuth("", config.Username, config.Password, config.Host)

	return &Service{
		config: config,
		server: config.Host + ":" + config.Port,
		auth:   auth,
	}
}

// IsConfigured returns true if email is configured.
func (s *Service) IsConfigured() bool {
	return s.config.Host != "" && s.config.Port != "" && s.config.From != ""
}

// SendEmail sends a plain text email.
func (s *Service) SendEmail(to []string, subject, body string) error {
	if !s.IsConfigured() {
		return fmt.Errorf("email not configured")
	}

	from := s.config.From
	if s.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.From)
	}

	msg := []byte(fmt.Sprintf(
		"To: %s\r\n"+
			"From: %s\r\n"+
			"Subject: %s\r\n"+
			"Content-Type: text/plain; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		strings.Join(to, ", "),
		from,
		subject,
		body,
	))

	return smtp.SendMail(s.server, s.auth, s.config.From, to, msg)
}

type decisionData struct {
	AppName      string
	UserName     string
	ProjectTitle string
	Accepted     bool
	Reason       string
}

// SendApplicationDecision mails a freelancer about an accept or reject.
func (s *Service) SendApplicationDecision(to, userName, projectTitle string, accepted bool, reason string) error {
	data := decisionData{
		AppName:      "GigBoard",
		UserName:     userName,
		ProjectTitle: projectTitle,
		Accepted:     accepted,
		Reason:       reason,
	}

	subject := fmt.Sprintf("Your application for %q was rejected", projectTitle)
	if accepted {
		subject = fmt.Sprintf("Your application for %q was accepted", projectTitle)
	}

	body, err := renderTemplate(decisionEmailTemplate, data)
	if err != nil {
		return fmt.Errorf("render decision template: %w", err)
	}
	return s.SendEmail([]string{to}, subject, body)
}

func renderTemplate(tmpl string, data any) (string, error) {
	t := template.Must(template.New("email").Parse(tmpl))
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const decisionEmailTemplate = `Hi {{.UserName}},

{{if .Accepted}}Good news: your application for "{{.ProjectTitle}}" was accepted. The project is now active, so open your dashboard to coordinate next steps.{{else}}Your application for "{{.ProjectTitle}}" was not selected.
Reason: {{.Reason}}

You can apply again once you have addressed the feedback.{{end}}

The {{.AppName}} team
`
