package services

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"net/smtp"
	"strings"
	"sync"

	"skillgrid/internal/config"
)

var mailTemplates = template.Must(template.New("verify.html").Parse(`<p>Hi {{.Name}},</p>
<p>Welcome to SkillGrid. Your verification code is:</p>
<p style="font-size:24px;font-weight:bold;letter-spacing:4px">{{.Code}}</p>
<p>Enter it on the sign-in page to activate your account.</p>`))

func init() {
	template.Must(mailTemplates.New("verified.html").Parse(`<p>Hi {{.Name}},</p>
<p>Your participation in <b>{{.Title}}</b> was verified. <b>+{{.Credits}}</b> credits were added to your profile.</p>`))
	template.Must(mailTemplates.New("rejected.html").Parse(`<p>Hi {{.Name}},</p>
<p>Your registration for <b>{{.Title}}</b> was not approved.</p>
{{if .Reason}}<p>Reason: {{.Reason}}</p>{{end}}`))
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type MailService struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	Enabled  bool

	send sendFunc
	wg   sync.WaitGroup
}

func NewMailService(cfg *config.Config) *MailService {
	enabled := cfg.SMTPHost != "" && cfg.SMTPPort != "" && cfg.SMTPUser != "" && cfg.SMTPPass != "" && cfg.SMTPFrom != ""
	if !enabled {
		log.Println("⚠️ MailService disabled: Missing SMTP environment variables.")
	}

	return &MailService{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
		From:     cfg.SMTPFrom,
		Enabled:  enabled,
		send:     smtp.SendMail,
	}
}

func (s *MailService) sendAsync(to []string, subject string, body string) {
	if s == nil || !s.Enabled {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		auth := smtp.PlainAuth("", s.Username, s.Password, s.Host)
		addr := fmt.Sprintf("%s:%s", s.Host, s.Port)

		mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
		msg := []byte(fmt.Sprintf("To: %s\r\n"+
			"From: SkillGrid <%s>\r\n"+
			"Subject: %s\r\n"+
			"%s\r\n%s", headerValue(strings.Join(to, ",")), s.From, headerValue(subject), mime, body))

		err := s.send(addr, auth, s.From, to, msg)
		if err != nil {
			log.Printf("❌ Failed to send email to %v: %v", to, err)
		} else {
			log.Printf("✅ Email sent to %v: %s", to, subject)
		}
	}()
}

var headerBreaks = strings.NewReplacer("\r", " ", "\n", " ")

// headerValue keeps user-supplied text on a single header line.
func headerValue(v string) string {
	return headerBreaks.Replace(v)
}

// Wait blocks until queued messages have been handed to the SMTP server.
func (s *MailService) Wait() {
	if s != nil {
		s.wg.Wait()
	}
}

func (s *MailService) render(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := mailTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.String(), nil
}

func (s *MailService) SendVerificationCode(email, name, code string) {
	body, err := s.render("verify.html", map[string]string{"Name": name, "Code": code})
	if err != nil {
		log.Printf("Error rendering verification email: %v", err)
		return
	}
	s.sendAsync([]string{email}, "Verify your SkillGrid email", body)
}

func (s *MailService) SendRegistrationVerified(email, name, title string, credits int) {
	body, err := s.render("verified.html", map[string]interface{}{"Name": name, "Title": title, "Credits": credits})
	if err != nil {
		log.Printf("Error rendering verified email: %v", err)
		return
	}
	s.sendAsync([]string{email}, "✅ "+title+" verified", body)
}

func (s *MailService) SendRegistrationRejected(email, name, title, reason string) {
	body, err := s.render("rejected.html", map[string]string{"Name": name, "Title": title, "Reason": reason})
	if err != nil {
		log.Printf("Error rendering rejected email: %v", err)
		return
	}
	s.sendAsync([]string{email}, title+": registration not approved", body)
}
