// Package mailer строит письма и передает их через RabbitMQ в сервис mail-sender,
// который доставляет их по SMTP.
package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"
)

// Message — письмо в очереди.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// VerificationSubject — тема письма с magic-link.
const VerificationSubject = "Verify Your Email."

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

type verificationData struct {
	Brand string
	Name  string
	Link  string
	TTL   string
}

// RenderVerification возвращает HTML письма со ссылкой подтверждения.
func RenderVerification(brand, name, link string, ttl time.Duration) (string, error) {
	const op = "mailer.RenderVerification"
	var buf bytes.Buffer
	data := verificationData{Brand: brand, Name: name, Link: link, TTL: humanize(ttl)}
	if err := templates.ExecuteTemplate(&buf, "verification.html", data); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return buf.String(), nil
}

func humanize(d time.Duration) string {
	if d >= time.Hour && d%time.Hour == 0 {
		return fmt.Sprintf("%d hours", int(d.Hours()))
	}
	return fmt.Sprintf("%d minutes", int(d.Minutes()))
}
