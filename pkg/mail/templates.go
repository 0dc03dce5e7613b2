package mail

import (
	"bytes"
	"html/template"
	"strconv"
	"time"
)

const PasswordResetSubject = "Password reset request"

var passwordResetTmpl = template.Must(template.New("reset").Parse(`
<h2>Hello {{.Name}}</h2>
<p>Please use the URL below to reset your password</p>
<p>The link is valid only for {{.ValidFor}}</p>

<a href="{{.ResetURL}}" clicktracking="off">{{.ResetURL}}</a>

<p>Kind regards,</p>
<p>M-ventory team</p>
`))

// PasswordResetBody renders the HTML body of the reset email.
func PasswordResetBody(name, resetURL string, validFor time.Duration) (string, error) {
	var buf bytes.Buffer
	err := passwordResetTmpl.Execute(&buf, struct {
		Name     string
		ResetURL string
		ValidFor string
	}{
		Name:     name,
		ResetURL: resetURL,
		ValidFor: formatDuration(validFor),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

func formatDuration(d time.Duration) string {
	switch {
	case d%time.Hour == 0 && d >= time.Hour:
		return plural(int(d/time.Hour), "hour")
	case d%time.Minute == 0 && d >= time.Minute:
		return plural(int(d/time.Minute), "minute")
	default:
		return d.String()
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return strconv.Itoa(n) + " " + unit + "s"
}
