package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	lmsAuth "github.com/MrEthical07/lmsAuth"
)

//go:embed templates/*.html
var templates embed.FS

var activationTemplate = template.Must(template.ParseFS(templates, "templates/activation.html"))

// ActivationSubject is the subject line of the activation mail.
const ActivationSubject = "Activate your account"

// RenderActivation renders the activation mail body.
func RenderActivation(m lmsAuth.ActivationMail, now time.Time) (string, error) {
	data := struct {
		Name      string
		Code      string
		ExpiresIn string
		Year      int
	}{
		Name:      m.Name,
		Code:      m.Code,
		ExpiresIn: humanDuration(m.ExpiresIn),
		Year:      now.Year(),
	}
	var buf bytes.Buffer
	if err := activationTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render activation mail: %w", err)
	}
	return buf.String(), nil
}

func humanDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "a few minutes"
	case d%time.Hour == 0:
		return fmt.Sprintf("%d hours", int(d/time.Hour))
	case d%time.Minute == 0:
		return fmt.Sprintf("%d minutes", int(d/time.Minute))
	default:
		return d.String()
	}
}
