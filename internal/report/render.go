package report

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var md = goldmark.New(
	goldmark.WithExtensions(extension.Table, extension.TaskList, extension.Linkify),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

var sanitizer = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	// Task-list checkboxes survive sanitization so rendered checklists keep
	// their state.
	p.AllowAttrs("type", "checked", "disabled").OnElements("input")
	return p
}

// RenderHTML converts report Markdown to HTML and sanitizes the result with
// an allow-list policy. Script tags and event handlers never survive.
func RenderHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return sanitizer.Sanitize(buf.String()), nil
}

// SanitizeHTML applies the storage sanitization policy to client-supplied
// HTML before it is persisted.
func SanitizeHTML(htmlContent string) string {
	return sanitizer.Sanitize(htmlContent)
}
