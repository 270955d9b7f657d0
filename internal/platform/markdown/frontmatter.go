package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	fence        = "---"
	openFence    = fence + "\n"
	closingFence = "\n" + fence + "\n"
)

// Render encodes meta as a YAML frontmatter block followed by body.
func Render(meta any, body string) (string, error) {
	raw, err := yaml.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("marshal frontmatter: %w", err)
	}
	buf := bytes.Buffer{}
	buf.WriteString(openFence)
	buf.Write(raw)
	buf.WriteString(openFence)
	buf.WriteString("\n")
	buf.WriteString(body)
	return buf.String(), nil
}

// Split decodes the frontmatter of content into meta and returns the remaining body.
// Content without a frontmatter block is an error: callers only read notes they wrote.
func Split(content string, meta any) (string, error) {
	if !strings.HasPrefix(content, openFence) {
		return "", fmt.Errorf("invalid frontmatter: missing opening separator")
	}
	rest := strings.TrimPrefix(content, openFence)
	idx := strings.Index(rest, closingFence)
	if idx < 0 {
		return "", fmt.Errorf("invalid frontmatter: missing closing separator")
	}
	if err := yaml.Unmarshal([]byte(rest[:idx]), meta); err != nil {
		return "", fmt.Errorf("unmarshal frontmatter: %w", err)
	}
	return strings.TrimPrefix(rest[idx+len(closingFence):], "\n"), nil
}
