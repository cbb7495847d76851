package email

import (
	"bytes"
	"fmt"
	"html/template"

	"portfolio-stack/internal/models"
	"portfolio-stack/shared/config"

	"gopkg.in/gomail.v2"
)

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type Sender struct {
	config *config.EmailConfig
	dialer dialer
}

func NewSender(cfg *config.EmailConfig) *Sender {
	return &Sender{
		config: cfg,
		dialer: gomail.NewDialer(cfg.SMTPServer, cfg.SMTPPort, cfg.Username, cfg.Password),
	}
}

var contactTemplate = template.Must(template.New("contact").Parse(`<h2>New message from {{.Name}}</h2>
<p><strong>Contact:</strong> {{.ContactInfo}}</p>
<p><strong>Received:</strong> {{.CreatedAt.Format "Jan 2, 2006 15:04 MST"}}</p>
<hr>
<p style="white-space:pre-wrap">{{.Message}}</p>
`))

// NotifyContact emails the site owner about a new contact-form message.
func (s *Sender) NotifyContact(msg *models.ContactMessage) error {
	if msg == nil {
		return fmt.Errorf("message cannot be nil")
	}

	m, err := s.buildContactMessage(msg)
	if err != nil {
		return err
	}
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send contact notification: %w", err)
	}
	return nil
}

func (s *Sender) buildContactMessage(msg *models.ContactMessage) (*gomail.Message, error) {
	var buf bytes.Buffer
	if err := contactTemplate.Execute(&buf, msg); err != nil {
		return nil, fmt.Errorf("failed to generate email body: %w", err)
	}

	from := s.config.FromEmail
	if from == "" {
		from = s.config.Username
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", s.config.ToEmail)
	m.SetHeader("Subject", fmt.Sprintf("Portfolio contact: %s", msg.Name))
	m.SetBody("text/html", buf.String())
	return m, nil
}
