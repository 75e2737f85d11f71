package service

import (
	"html"
	"strings"
)

// htmlToText converts stored (sanitized) report HTML back into the
// Markdown-ish block text the PDF exporter lays out. Only the tags the
// sanitizer lets through need handling; anything unknown is dropped and its
// inner text kept.
func htmlToText(htmlContent string) string {
	var b strings.Builder
	var tableRow []string
	inCell := false

	s := htmlContent
	for {
		lt := strings.IndexByte(s, '<')
		if lt < 0 {
			b.WriteString(html.UnescapeString(s))
			break
		}
		if text := s[:lt]; strings.TrimSpace(text) != "" {
			if inCell {
				tableRow = append(tableRow, strings.TrimSpace(html.UnescapeString(text)))
			} else {
				b.WriteString(html.UnescapeString(text))
			}
		}
		gt := strings.IndexByte(s[lt:], '>')
		if gt < 0 {
			break
		}
		tag := strings.ToLower(strings.TrimSpace(s[lt+1 : lt+gt]))
		s = s[lt+gt+1:]

		name := tag
		if i := strings.IndexAny(name, " \t\n"); i >= 0 {
			name = name[:i]
		}
		switch name {
		case "h1":
			b.WriteString("\n\n# ")
		case "h2":
			b.WriteString("\n\n## ")
		case "h3", "h4":
			b.WriteString("\n\n### ")
		case "p", "ul", "ol", "table", "/h1", "/h2", "/h3", "/h4", "/p", "/ul", "/ol", "/table":
			b.WriteString("\n\n")
		case "li":
			b.WriteString("\n- ")
		case "br", "br/":
			b.WriteString("\n")
		case "td", "th":
			inCell = true
		case "/td", "/th":
			inCell = false
		case "/tr":
			if len(tableRow) > 0 {
				b.WriteString("\n| " + strings.Join(tableRow, " | ") + " |")
				tableRow = nil
			}
		}
	}

	// Collapse runs of blank lines left by adjacent block tags.
	lines := strings.Split(b.String(), "\n")
	var out []string
	blank := true
	for _, line := range lines {
		trimmed := strings.TrimRight(line, " \t")
		if strings.TrimSpace(trimmed) == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, trimmed)
		blank = false
	}
	return strings.Join(out, "\n")
}
