package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	gomail "github.com/wneessen/go-mail"

	"github.com/jonwraymond/coverforge/cover"
)

//go:embed templates/print_request.html
var templates embed.FS

var bodyTemplate = template.Must(template.ParseFS(templates, "templates/print_request.html"))

// DefaultFromName is the display name on print requests.
const DefaultFromName = "Assignment Cover Generator"

// Envelope holds the addressing for print requests.
type Envelope struct {
	From     string
	FromName string
	To       string
}

type bodyData struct {
	Token     string
	Name      string
	StudentID string
}

// Subject returns the subject line for token.
func Subject(token string) string {
	return "Print Request - " + token
}

// AttachmentName returns the PDF file name for token.
func AttachmentName(token string) string {
	return token + ".pdf"
}

// Compose builds the print request message: an HTML body naming the
// student, and the PDF attached as <token>.pdf.
func Compose(env Envelope, rec *cover.Record, pdf []byte, token string, now time.Time) (*gomail.Msg, error) {
	msg := gomail.NewMsg(gomail.WithNoDefaultUserAgent())

	name := env.FromName
	if name == "" {
		name = DefaultFromName
	}
	if err := msg.FromFormat(name, env.From); err != nil {
		return nil, fmt.Errorf("mail: from: %w", err)
	}
	if err := msg.To(env.To); err != nil {
		return nil, fmt.Errorf("mail: to: %w", err)
	}
	msg.Subject(Subject(token))
	msg.SetMessageID()
	msg.SetDateWithValue(now)

	data := bodyData{Token: token, Name: rec.Name, StudentID: rec.StudentID}
	if err := msg.SetBodyHTMLTemplate(bodyTemplate, data); err != nil {
		return nil, fmt.Errorf("mail: body: %w", err)
	}
	if err := msg.AttachReader(AttachmentName(token), bytes.NewReader(pdf),
		gomail.WithFileContentType(gomail.ContentType("application/pdf")),
	); err != nil {
		return nil, fmt.Errorf("mail: attach: %w", err)
	}
	return msg, nil
}
