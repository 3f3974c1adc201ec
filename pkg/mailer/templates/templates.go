package templates

import (
	"bytes"
	"fmt"
	htmpl "html/template"
	texttpl "text/template"
)

const verifyCodeText = `Hi {{.Name}},

Your {{.AppName}} verification code is {{.Code}}.

The code expires in {{.ExpiresIn}}. If you did not request it, you can
ignore this email.
`

const verifyCodeHTML = `<html><body>
<p>Hi {{.Name}},</p>
<p>Your {{.AppName}} verification code is <strong>{{.Code}}</strong>.</p>
<p>The code expires in {{.ExpiresIn}}. If you did not request it, you can ignore this email.</p>
</body></html>`

var (
	textTemplates = map[string]*texttpl.Template{
		"verify_code": texttpl.Must(texttpl.New("verify_code").Parse(verifyCodeText)),
	}
	htmlTemplates = map[string]*htmpl.Template{
		"verify_code": htmpl.Must(htmpl.New("verify_code").Parse(verifyCodeHTML)),
	}
)

// Render produces text and HTML bodies for a named template.
func Render(name string, data map[string]any) (text string, html string, err error) {
	tt, ok := textTemplates[name]
	if !ok {
		return "", "", fmt.Errorf("unknown email template %q", name)
	}
	var tb bytes.Buffer
	if err := tt.Execute(&tb, data); err != nil {
		return "", "", err
	}
	var hb bytes.Buffer
	if ht, ok := htmlTemplates[name]; ok {
		if err := ht.Execute(&hb, data); err != nil {
			return "", "", err
		}
	}
	return tb.String(), hb.String(), nil
}

// Subject returns the default subject line for a named template.
func Subject(name string) string {
	switch name {
	case "verify_code":
		return "Your verification code"
	default:
		return ""
	}
}
