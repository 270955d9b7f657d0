package out

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"

	"agentcoach/internal/modules/workspace/domain"
	workspaceout "agentcoach/internal/modules/workspace/port/out"
)

//go:embed templates/*.tmpl
var starterTemplates embed.FS

type EmbeddedTemplates struct {
	set *template.Template
}

func NewEmbeddedTemplates() (workspaceout.TemplateSource, error) {
	set, err := template.ParseFS(starterTemplates, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse starter templates: %w", err)
	}
	return &EmbeddedTemplates{set: set}, nil
}

func (t *EmbeddedTemplates) Render(name string, data domain.TemplateData) ([]byte, error) {
	buf := bytes.Buffer{}
	if err := t.set.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
