package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title   string
	Heading string
	Body    string
}

type welcomeEmailData struct {
	baseEmailData
	Name string
	Role string
}

type requestUpdateEmailData struct {
	baseEmailData
	Name        string
	ServiceName string
	ScheduledAt string
}

type reminderEmailData struct {
	baseEmailData
	Name         string
	PendingCount int
}

type exportReadyEmailData struct {
	baseEmailData
	Name string
}

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

func renderEmailTemplate(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render email template %s: %w", name, err)
	}
	return buf.String(), nil
}
