package email

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"video-summarizer/internal/models"
	"video-summarizer/shared/config"
	"video-summarizer/shared/report"

	"gopkg.in/gomail.v2"
)

const bodyTemplate = `<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
	<h2>{{.Analysis.Title}}</h2>
	<p style="color: #666;">{{.Analysis.Channel}} · {{.Analysis.Duration}}{{if .Views}} · {{.Views}} views{{end}}</p>
	<p>{{.Analysis.Overview}}</p>
	{{if .Analysis.MainPoints}}<h3>Main points</h3>
	<ol>{{range .Analysis.MainPoints}}<li>{{.}}</li>{{end}}</ol>{{end}}
	{{if .Analysis.KeyTakeaways}}<h3>Key takeaways</h3>
	<ol>{{range .Analysis.KeyTakeaways}}<li>{{.}}</li>{{end}}</ol>{{end}}
	<p><a href="{{.Analysis.SourceURL}}">Watch on YouTube</a></p>
	<p style="color: #999; font-size: 12px;">The full report is attached as {{.Filename}}.</p>
</div>`

var bodyTmpl = template.Must(template.New("email").Parse(bodyTemplate))

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Sender mails exported reports over SMTP.
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

// SendReport mails the analysis summary with the report attached.
func (s *Sender) SendReport(analysis *models.NormalizedAnalysis, rep *report.Report) error {
	if analysis == nil || rep == nil {
		return fmt.Errorf("analysis and report are required")
	}

	m, err := s.buildMessage(analysis, rep)
	if err != nil {
		return err
	}
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send report email: %w", err)
	}
	return nil
}

func (s *Sender) buildMessage(analysis *models.NormalizedAnalysis, rep *report.Report) (*gomail.Message, error) {
	body, err := generateBody(analysis, rep)
	if err != nil {
		return nil, fmt.Errorf("failed to generate email body: %w", err)
	}

	from := s.config.FromEmail
	if from == "" {
		from = s.config.Username
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", s.config.ToEmail)
	m.SetHeader("Subject", fmt.Sprintf("Video Analysis: %s", analysis.Title))
	m.SetBody("text/plain", rep.Content)
	m.AddAlternative("text/html", body)
	m.Attach(rep.Filename, gomail.SetCopyFunc(func(w io.Writer) error {
		_, err := io.WriteString(w, rep.Content)
		return err
	}))
	return m, nil
}

func generateBody(analysis *models.NormalizedAnalysis, rep *report.Report) (string, error) {
	data := struct {
		Analysis *models.NormalizedAnalysis
		Views    string
		Filename string
	}{
		Analysis: analysis,
		Filename: rep.Filename,
	}
	if analysis.ViewCount > 0 {
		data.Views = models.FormatCount(analysis.ViewCount)
	}

	var buf bytes.Buffer
	if err := bodyTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
