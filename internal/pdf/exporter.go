// Package pdf lays Markdown-ish report text out into a paginated PDF with
// header and footer bands. Pagination is two-pass: content first, then every
// footer is redrawn once the total page count is known, so "Page X of Y" is
// always accurate.
package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/rs/zerolog"
)

// Result is one generated report ready for export.
type Result struct {
	Title     string
	Toolkit   string
	Markdown  string
	CreatedAt time.Time
}

// Export mode for multi-result exports.
const (
	ModeAll    = "all"
	ModeLatest = "latest"
)

// ErrUnknownMode is returned when ExportAll is asked for a mode it does not
// know. Callers treat it as the caller's fault, unlike render failures.
var ErrUnknownMode = errors.New("unknown export mode")

// Page geometry in millimetres (A4 portrait).
const (
	pageWidth    = 210.0
	pageHeight   = 297.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 30.0
	marginBottom = 15.0
	footerBand   = 12.0
	headerBand   = 22.0

	bodyLineHeight = 5.0
	blockSpacing   = 2.5
)

// contentBottom is the y coordinate past which no block may start or spill.
const contentBottom = pageHeight - marginBottom - footerBand

// Exporter builds PDFs for report results. The toolkit icon is fetched once
// over HTTP on first use and cached for the exporter's lifetime.
type Exporter struct {
	iconURL string
	client  *http.Client
	logger  zerolog.Logger

	iconOnce sync.Once
	iconData []byte
}

// NewExporter creates an Exporter. iconURL may be empty, in which case the
// header ring falls back to the toolkit initial.
func NewExporter(iconURL string, logger zerolog.Logger) *Exporter {
	return &Exporter{
		iconURL: iconURL,
		client:  &http.Client{Timeout: 5 * time.Second},
		logger:  logger.With().Str("service", "PDFExporter").Logger(),
	}
}

// Export renders a single result to PDF.
func (e *Exporter) Export(result Result) ([]byte, error) {
	return e.render([]Result{result})
}

// ExportAll renders multiple results. Mode "all" concatenates every result
// with separators; "latest" keeps only the most recent by timestamp.
func (e *Exporter) ExportAll(results []Result, mode string) ([]byte, error) {
	if len(results) == 0 {
		return nil, fmt.Errorf("no results to export")
	}
	switch mode {
	case ModeLatest:
		sorted := make([]Result, len(results))
		copy(sorted, results)
		sort.Slice(sorted, func(i, j int) bool {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		})
		results = sorted[:1]
	case ModeAll, "":
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	return e.render(results)
}

func (e *Exporter) render(results []Result) ([]byte, error) {
	doc, _ := e.build(results)
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// build runs both layout passes and returns the document plus the footer
// labels drawn in the second pass, in page order.
func (e *Exporter) build(results []Result) (*fpdf.Fpdf, []string) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(marginLeft, marginTop, marginRight)
	// Page breaks are decided block by block below; the built-in trigger
	// would split blocks mid-way.
	doc.SetAutoPageBreak(false, 0)

	title := results[0].Title
	toolkit := results[0].Toolkit
	e.addPage(doc, title, toolkit)

	// First pass: stream blocks, breaking before any block whose wrapped
	// height would cross the content boundary.
	for i, res := range results {
		if i > 0 {
			e.separator(doc, title, toolkit)
		}
		for _, block := range parseBlocks(res.Markdown) {
			e.writeBlock(doc, block, title, toolkit)
		}
	}

	// Second pass: the total is now known, redraw every footer.
	total := doc.PageCount()
	footers := make([]string, 0, total)
	for page := 1; page <= total; page++ {
		doc.SetPage(page)
		label := fmt.Sprintf("Page %d of %d", page, total)
		e.drawFooter(doc, label)
		footers = append(footers, label)
	}
	return doc, footers
}

// addPage appends a page, draws the header band, and reapplies body
// typography. The PDF primitive is stateful: without the reset, whatever
// font was active before the break leaks into the new page's body text.
func (e *Exporter) addPage(doc *fpdf.Fpdf, title, toolkit string) {
	doc.AddPage()
	e.drawHeader(doc, title, toolkit)
	applyBodyFont(doc)
	doc.SetXY(marginLeft, marginTop)
}

func applyBodyFont(doc *fpdf.Fpdf) {
	doc.SetFont("Helvetica", "", 10.5)
	doc.SetTextColor(40, 40, 40)
}

func (e *Exporter) drawHeader(doc *fpdf.Fpdf, title, toolkit string) {
	doc.SetFillColor(28, 48, 80)
	doc.Rect(0, 0, pageWidth, headerBand, "F")

	doc.SetFont("Helvetica", "B", 14)
	doc.SetTextColor(255, 255, 255)
	doc.Text(marginLeft, 13.5, title)

	// Toolkit icon inside a drawn ring, top right.
	const ringR = 7.0
	cx, cy := pageWidth-marginRight-ringR, headerBand/2
	doc.SetDrawColor(255, 255, 255)
	doc.SetLineWidth(0.6)
	doc.Circle(cx, cy, ringR, "D")

	if icon := e.fetchIcon(); icon != nil {
		name := "toolkit-icon"
		opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
		if doc.GetImageInfo(name) == nil {
			doc.RegisterImageOptionsReader(name, opts, bytes.NewReader(icon))
		}
		size := ringR * 1.2
		doc.ImageOptions(name, cx-size/2, cy-size/2, size, size, false, opts, 0, "")
	} else {
		initial := "C"
		if toolkit != "" {
			initial = strings.ToUpper(toolkit[:1])
		}
		doc.SetFont("Helvetica", "B", 12)
		doc.Text(cx-2, cy+2, initial)
	}
}

// fetchIcon downloads the toolkit icon at most once. Any failure is logged
// and the exporter falls back to the drawn initial for its lifetime.
func (e *Exporter) fetchIcon() []byte {
	e.iconOnce.Do(func() {
		if e.iconURL == "" {
			return
		}
		resp, err := e.client.Get(e.iconURL)
		if err != nil {
			e.logger.Warn().Err(err).Str("url", e.iconURL).Msg("Failed to fetch toolkit icon")
			return
		}
		defer func() {
			_ = resp.Body.Close()
		}()
		if resp.StatusCode != http.StatusOK {
			e.logger.Warn().Int("status", resp.StatusCode).Str("url", e.iconURL).Msg("Toolkit icon fetch returned non-200")
			return
		}
		data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			e.logger.Warn().Err(err).Msg("Failed to read toolkit icon body")
			return
		}
		e.iconData = data
	})
	return e.iconData
}

func (e *Exporter) drawFooter(doc *fpdf.Fpdf, label string) {
	y := pageHeight - marginBottom - footerBand/2
	doc.SetDrawColor(200, 200, 200)
	doc.SetLineWidth(0.3)
	doc.Line(marginLeft, y-3, pageWidth-marginRight, y-3)

	doc.SetFont("Helvetica", "", 8.5)
	doc.SetTextColor(120, 120, 120)
	doc.Text(marginLeft, y+2, "Generated "+time.Now().Format("2006-01-02"))
	labelW := doc.GetStringWidth(label)
	doc.Text(pageWidth-marginRight-labelW, y+2, label)
	applyBodyFont(doc)
}

func (e *Exporter) separator(doc *fpdf.Fpdf, title, toolkit string) {
	e.ensureRoom(doc, bodyLineHeight*3, title, toolkit)
	y := doc.GetY() + blockSpacing
	doc.SetDrawColor(150, 150, 150)
	doc.SetLineWidth(0.4)
	doc.Line(marginLeft, y, pageWidth-marginRight, y)
	doc.SetY(y + blockSpacing*2)
}

// ensureRoom breaks the page when the upcoming block would cross the content
// boundary.
func (e *Exporter) ensureRoom(doc *fpdf.Fpdf, height float64, title, toolkit string) {
	if doc.GetY()+height > contentBottom {
		e.addPage(doc, title, toolkit)
	}
}

func (e *Exporter) writeBlock(doc *fpdf.Fpdf, b block, title, toolkit string) {
	width := pageWidth - marginLeft - marginRight

	switch b.kind {
	case blockHeading:
		size := map[int]float64{1: 16, 2: 13, 3: 11.5}[b.level]
		if size == 0 {
			size = 11.5
		}
		doc.SetFont("Helvetica", "B", size)
		doc.SetTextColor(28, 48, 80)
		lineH := size * 0.55
		lines := doc.SplitText(b.text, width)
		e.ensureRoom(doc, float64(len(lines))*lineH+blockSpacing*2, title, toolkit)
		doc.SetX(marginLeft)
		for _, line := range lines {
			doc.CellFormat(width, lineH, line, "", 2, "L", false, 0, "")
		}
		doc.SetY(doc.GetY() + blockSpacing)
		// Heading styling must not leak into the following paragraph.
		applyBodyFont(doc)
	case blockParagraph:
		lines := doc.SplitText(b.text, width)
		e.ensureRoom(doc, float64(len(lines))*bodyLineHeight+blockSpacing, title, toolkit)
		doc.SetX(marginLeft)
		for _, line := range lines {
			doc.CellFormat(width, bodyLineHeight, line, "", 2, "L", false, 0, "")
		}
		doc.SetY(doc.GetY() + blockSpacing)
	}
}
