package pdf

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testExporter() *Exporter {
	return NewExporter("", zerolog.Nop())
}

func longReport(paragraphs int) Result {
	var b strings.Builder
	b.WriteString("# Compliance Report\n\n")
	for i := 0; i < paragraphs; i++ {
		fmt.Fprintf(&b, "## Section %d\n\n", i+1)
		b.WriteString(strings.Repeat("Verify the filing requirements against current corporate records. ", 12))
		b.WriteString("\n\n")
	}
	return Result{Title: "CompliPilot Report", Toolkit: "CompliPilot", Markdown: b.String(), CreatedAt: time.Now()}
}

func TestExportSinglePage(t *testing.T) {
	e := testExporter()
	doc, footers := e.build([]Result{longReport(1)})
	require.NoError(t, doc.Error())
	assert.Equal(t, 1, doc.PageCount())
	assert.Equal(t, []string{"Page 1 of 1"}, footers)
}

func TestExportMultiPageFooters(t *testing.T) {
	e := testExporter()
	doc, footers := e.build([]Result{longReport(12)})
	require.NoError(t, doc.Error())

	n := doc.PageCount()
	require.Greater(t, n, 1, "12 long sections must not fit on a single page")
	require.Len(t, footers, n)
	for i, f := range footers {
		assert.Equal(t, fmt.Sprintf("Page %d of %d", i+1, n), f)
	}
}

func TestExportProducesPDFBytes(t *testing.T) {
	e := testExporter()
	out, err := e.Export(longReport(3))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "%PDF-"), "output must start with the PDF magic")
}

func TestExportAllModes(t *testing.T) {
	old := longReport(1)
	old.CreatedAt = time.Now().Add(-time.Hour)
	old.Markdown = "# Old Report\n\nOld body.\n"
	latest := longReport(1)
	latest.Markdown = "# Latest Report\n\nNew body.\n"

	e := testExporter()

	allDoc, _ := e.build([]Result{old, latest})
	require.NoError(t, allDoc.Error())

	out, err := e.ExportAll([]Result{old, latest}, ModeLatest)
	require.NoError(t, err)
	assert.NotEmpty(t, out)

	out, err = e.ExportAll([]Result{old, latest}, ModeAll)
	require.NoError(t, err)
	assert.NotEmpty(t, out)

	_, err = e.ExportAll([]Result{old, latest}, "newest")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownMode)

	_, err = e.ExportAll(nil, ModeAll)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnknownMode)
}

func TestExportAllLatestPicksNewest(t *testing.T) {
	older := Result{Title: "R", Toolkit: "T", Markdown: strings.Repeat("old paragraph text\n\n", 200), CreatedAt: time.Now().Add(-time.Hour)}
	newer := Result{Title: "R", Toolkit: "T", Markdown: "# Latest\n\nshort\n", CreatedAt: time.Now()}

	e := testExporter()
	// Latest mode keeps only the short, newest result: a single page.
	doc, _ := e.build([]Result{newer})
	require.NoError(t, doc.Error())
	single := doc.PageCount()

	out, err := e.ExportAll([]Result{older, newer}, ModeLatest)
	require.NoError(t, err)

	full, err := e.ExportAll([]Result{older, newer}, ModeAll)
	require.NoError(t, err)

	assert.Equal(t, 1, single)
	assert.Less(t, len(out), len(full), "latest export must be smaller than the concatenated export")
}

func TestParseBlocks(t *testing.T) {
	md := "# Title\n\nPara one line a\nline b\n\n| A | B |\n|---|---|\n| 1 | 2 |\n\n- [x] item\n1. ordered\n"
	blocks := parseBlocks(md)

	require.Len(t, blocks, 6)
	assert.Equal(t, blockHeading, blocks[0].kind)
	assert.Equal(t, 1, blocks[0].level)
	assert.Equal(t, "Para one line a line b", blocks[1].text)
	assert.Equal(t, "A   B", blocks[2].text)
	assert.Equal(t, "1   2", blocks[3].text)
	assert.Equal(t, "- [x] item", blocks[4].text)
	assert.Equal(t, "1. ordered", blocks[5].text)
}

func TestStripInline(t *testing.T) {
	assert.Equal(t, "bold and em", stripInline("**bold** and *em*"))
	assert.Equal(t, "Docs (https://example.com)", stripInline("[Docs](https://example.com)"))
}
