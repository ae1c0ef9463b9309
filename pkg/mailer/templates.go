package mailer

import (
	"bytes"
	"fmt"
	htmltpl "html/template"
	texttpl "text/template"
)

const verifyEmailSubject = "Verify your email address"

const verifyEmailText = `Hi{{if .Context}} {{.Context}}{{end}},

Confirm your email address to activate your account:

{{.Link}}

The link expires in {{.ExpiresInHours}} hours. If you did not create this
account you can ignore this message.
`

const verifyEmailHTML = `<html>
<body style="font-family: sans-serif; color: #222;">
  <p>Hi{{if .Context}} {{.Context}}{{end}},</p>
  <p>Confirm your email address to activate your account:</p>
  <p><a href="{{.Link}}">Verify email</a></p>
  <p>The link expires in {{.ExpiresInHours}} hours. If you did not create
  this account you can ignore this message.</p>
</body>
</html>
`

var (
	verifyTextTpl = texttpl.Must(texttpl.New("verify_email_text").Parse(verifyEmailText))
	verifyHTMLTpl = htmltpl.Must(htmltpl.New("verify_email_html").Parse(verifyEmailHTML))
)

// Render produces subject, text, and html bodies for a named template.
func Render(name string, data map[string]any) (subject, text, html string, err error) {
	switch name {
	case "verify_email":
		var tb, hb bytes.Buffer
		if err = verifyTextTpl.Execute(&tb, data); err != nil {
			return "", "", "", err
		}
		if err = verifyHTMLTpl.Execute(&hb, data); err != nil {
			return "", "", "", err
		}
		return verifyEmailSubject, tb.String(), hb.String(), nil
	default:
		return "", "", "", fmt.Errorf("unknown email template %q", name)
	}
}
