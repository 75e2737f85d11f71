package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderHTMLTablesAndHeadings(t *testing.T) {
	r, err := Generate(caForm())
	require.NoError(t, err)

	html, err := RenderHTML(r.Output)
	require.NoError(t, err)
	assert.Contains(t, html, "<h1>")
	assert.Contains(t, html, "<h2>")
	assert.Contains(t, html, "<table>")
}

func TestRenderHTMLStripsScript(t *testing.T) {
	html, err := RenderHTML("# Title\n\n<script>alert(1)</script>\n\nBody")
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
	assert.NotContains(t, html, "alert(1)")
}

func TestSanitizeHTML(t *testing.T) {
	in := `<p onclick="steal()">ok</p><script src="https://evil.example/x.js"></script>`
	out := SanitizeHTML(in)
	assert.NotContains(t, out, "script")
	assert.NotContains(t, out, "onclick")
	assert.Contains(t, out, "<p>ok</p>")
}
