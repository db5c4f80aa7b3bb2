package mailer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"strings"
)

//go:embed templates/*.html
var templates embed.FS

const (
	SubjectVerify = "Verify Your Email – Tabliya"
	SubjectReset  = "Reset Your Password – Tabliya"
)

// Mailer composes the account emails and hands them to a Sender.
type Mailer struct {
	sender Sender
	origin string
	tmpl   *template.Template
}

func New(sender Sender, frontendOrigin string) (*Mailer, error) {
	tmpl, err := template.ParseFS(templates, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("error parsing email templates: %w", err)
	}
	return &Mailer{
		sender: sender,
		origin: strings.TrimRight(frontendOrigin, "/"),
		tmpl:   tmpl,
	}, nil
}

type templateData struct {
	Name string
	Link string
}

// VerificationLink is the frontend page that confirms an address.
func (m *Mailer) VerificationLink(token, email string) string {
	return m.link("/verify-email", token, email)
}

// ResetLink is the frontend page that sets a new password.
func (m *Mailer) ResetLink(token, email string) string {
	return m.link("/reset-password", token, email)
}

func (m *Mailer) SendVerification(ctx context.Context, to, name, token string) error {
	link := m.VerificationLink(token, to)
	return m.send(ctx, to, SubjectVerify, "verify_email.html", templateData{Name: name, Link: link},
		fmt.Sprintf("Hello, %s\n\nPlease confirm your email: %s\n", name, link))
}

func (m *Mailer) SendPasswordReset(ctx context.Context, to, name, token string) error {
	link := m.ResetLink(token, to)
	return m.send(ctx, to, SubjectReset, "reset_password.html", templateData{Name: name, Link: link},
		fmt.Sprintf("Hello, %s\n\nReset your password: %s\n", name, link))
}

func (m *Mailer) link(path, token, email string) string {
	return m.origin + path + "?token=" + url.QueryEscape(token) + "&email=" + url.QueryEscape(email)
}

func (m *Mailer) send(ctx context.Context, to, subject, tmpl string, data templateData, text string) error {
	var buf bytes.Buffer
	if err := m.tmpl.ExecuteTemplate(&buf, tmpl, data); err != nil {
		return fmt.Errorf("error rendering %s: %w", tmpl, err)
	}
	return m.sender.Send(ctx, Message{To: to, Subject: subject, HTML: buf.String(), Text: text})
}
