package email

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"

	"github.com/manorfm/scholarship-auth/internal/domain"
)

type templateData struct {
	Site          string
	Name          string
	Code          string
	ExpiryMinutes int
}

type emailTemplate struct {
	subject *texttemplate.Template
	text    *texttemplate.Template
	html    *htmltemplate.Template
}

var (
	verificationTemplate = newTemplate("Verify your email address",
		`Hello,

Your verification code for {{.Site}} is: {{.Code}}

The code expires in {{.ExpiryMinutes}} minutes. If you did not request it, you can ignore this email.
`,
		`<p>Hello,</p>
<p>Your verification code for {{.Site}} is:</p>
<p style="font-size:24px;font-weight:bold;letter-spacing:4px">{{.Code}}</p>
<p>The code expires in {{.ExpiryMinutes}} minutes. If you did not request it, you can ignore this email.</p>
`)

	passwordResetTemplate = newTemplate("Reset your password",
		`Hello,

Use this code to reset your {{.Site}} password: {{.Code}}

The code expires in {{.ExpiryMinutes}} minutes. If you did not ask for a reset, your password is unchanged.
`,
		`<p>Hello,</p>
<p>Use this code to reset your {{.Site}} password:</p>
<p style="font-size:24px;font-weight:bold;letter-spacing:4px">{{.Code}}</p>
<p>The code expires in {{.ExpiryMinutes}} minutes. If you did not ask for a reset, your password is unchanged.</p>
`)

	welcomeTemplate = newTemplate("Welcome to {{.Site}}",
		`Hi {{.Name}},

Your account is ready. You can now search scholarships, save the ones you like and track your applications.
`,
		`<p>Hi {{.Name}},</p>
<p>Your account is ready. You can now search scholarships, save the ones you like and track your applications.</p>
`)
)

func newTemplate(subject, text, html string) *emailTemplate {
	return &emailTemplate{
		subject: texttemplate.Must(texttemplate.New("subject").Parse(subject)),
		text:    texttemplate.Must(texttemplate.New("text").Parse(text)),
		html:    htmltemplate.Must(htmltemplate.New("html").Parse(html)),
	}
}

func (t *emailTemplate) render(to string, data templateData) (*domain.EmailMessage, error) {
	var subject, text, html bytes.Buffer

	if err := t.subject.Execute(&subject, data); err != nil {
		return nil, fmt.Errorf("render subject: %w", err)
	}
	if err := t.text.Execute(&text, data); err != nil {
		return nil, fmt.Errorf("render text body: %w", err)
	}
	if err := t.html.Execute(&html, data); err != nil {
		return nil, fmt.Errorf("render html body: %w", err)
	}

	return &domain.EmailMessage{
		To:      to,
		Subject: subject.String(),
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}

func minutes(d time.Duration) int {
	m := int(d / time.Minute)
	if m < 1 {
		return 1
	}
	return m
}
