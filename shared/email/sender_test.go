package email

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"portfolio-stack/internal/models"
	"portfolio-stack/shared/config"

	"gopkg.in/gomail.v2"
)

type recordingDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *recordingDialer) DialAndSend(m ...*gomail.Message) error {
	d.sent = append(d.sent, m...)
	return d.err
}

func TestNotifyContact(t *testing.T) {
	cfg := &config.EmailConfig{SMTPServer: "smtp.example.com", SMTPPort: 587, FromEmail: "site@example.com", ToEmail: "owner@example.com"}
	d := &recordingDialer{}
	s := &Sender{config: cfg, dialer: d}

	msg := &models.ContactMessage{
		Name:        "Asha <script>",
		ContactInfo: "@asha",
		Message:     "Collab?",
		CreatedAt:   time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	if err := s.NotifyContact(msg); err != nil {
		t.Fatalf("NotifyContact() error = %v", err)
	}
	if len(d.sent) != 1 {
		t.Fatalf("sent = %d, want 1", len(d.sent))
	}

	m := d.sent[0]
	if got := m.GetHeader("To"); len(got) != 1 || got[0] != "owner@example.com" {
		t.Errorf("To = %v", got)
	}

	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo() error = %v", err)
	}
	body := buf.String()
	if !strings.Contains(body, "&lt;script&gt;") {
		t.Error("user input must be HTML escaped in the body")
	}
	if !strings.Contains(body, "Collab?") {
		t.Error("body missing message text")
	}
}

func TestNotifyContactErrors(t *testing.T) {
	s := &Sender{config: &config.EmailConfig{ToEmail: "x@example.com"}, dialer: &recordingDialer{err: errors.New("dial tcp: refused")}}

	if err := s.NotifyContact(nil); err == nil {
		t.Error("expected error for nil message")
	}
	if err := s.NotifyContact(&models.ContactMessage{Name: "a"}); err == nil {
		t.Error("expected dial error to surface")
	}
}
