package document

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// pdfBlock is one paragraph-like text block on a page, with its bounding box
// in PDF user space.
type pdfBlock struct {
	page int
	rect Rect
	text string
}

// PDFDocument is the block-based adapter for PDF files. Text is
// extracted per page in paragraph-like blocks; reassembly overlays translated
// text at the original block geometry (see overlay.go).
type PDFDocument struct {
	path      string
	pageCount int
	pageSizes []Rect
	blocks    []pdfBlock
}

// LoadPDF opens a PDF and extracts its text blocks.
func LoadPDF(path string) (*PDFDocument, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer f.Close()

	doc := &PDFDocument{path: path, pageCount: r.NumPage()}

	for pageNum := 1; pageNum <= r.NumPage(); pageNum++ {
		page := r.Page(pageNum)
		doc.pageSizes = append(doc.pageSizes, pageSize(page))
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			// A page that cannot be decoded yields no blocks; the rest of
			// the document is still processed.
			continue
		}

		blocks := buildBlocks(pageNum, rows)
		doc.blocks = append(doc.blocks, blocks...)
	}

	return doc, nil
}

// pageSize reads the page MediaBox, falling back to US Letter.
func pageSize(page pdf.Page) Rect {
	box := page.V.Key("MediaBox")
	if box.IsNull() || box.Len() < 4 {
		return Rect{X0: 0, Y0: 0, X1: 612, Y1: 792}
	}
	return Rect{
		X0: box.Index(0).Float64(),
		Y0: box.Index(1).Float64(),
		X1: box.Index(2).Float64(),
		Y1: box.Index(3).Float64(),
	}
}

// rowSpan is one extracted text row with its geometry.
type rowSpan struct {
	text     string
	rect     Rect
	fontSize float64
}

// buildBlocks merges extraction rows into paragraph-like blocks. Rows whose
// vertical gap stays within the line pitch belong to the same block; words
// hyphen-wrapped across rows are rejoined (dehyphenation).
func buildBlocks(pageNum int, rows pdf.Rows) []pdfBlock {
	spans := make([]rowSpan, 0, len(rows))
	for _, row := range rows {
		if span, ok := mergeRow(row); ok {
			spans = append(spans, span)
		}
	}

	// top-to-bottom, left-to-right reading order; PDF y grows upward
	const yTolerance = 5.0
	sort.SliceStable(spans, func(i, j int) bool {
		if math.Abs(spans[i].rect.Y0-spans[j].rect.Y0) < yTolerance {
			return spans[i].rect.X0 < spans[j].rect.X0
		}
		return spans[i].rect.Y0 > spans[j].rect.Y0
	})

	var blocks []pdfBlock
	var cur *pdfBlock
	var lastSpan rowSpan

	flush := func() {
		if cur != nil && strings.TrimSpace(cur.text) != "" {
			blocks = append(blocks, *cur)
		}
		cur = nil
	}

	for _, span := range spans {
		if cur == nil {
			b := pdfBlock{page: pageNum, rect: span.rect, text: span.text}
			cur = &b
			lastSpan = span
			continue
		}

		pitch := math.Max(lastSpan.fontSize, span.fontSize) * 1.8
		gap := lastSpan.rect.Y0 - span.rect.Y0
		if gap < 0 || gap > pitch {
			flush()
			b := pdfBlock{page: pageNum, rect: span.rect, text: span.text}
			cur = &b
			lastSpan = span
			continue
		}

		if strings.HasSuffix(cur.text, "-") {
			cur.text = strings.TrimSuffix(cur.text, "-") + span.text
		} else {
			cur.text += " " + span.text
		}
		cur.rect = union(cur.rect, span.rect)
		lastSpan = span
	}
	flush()

	return blocks
}

// mergeRow concatenates a row's text fragments and computes the row box.
// Fragment widths reported by the extractor are unreliable, so the right
// edge is estimated from glyph count and font size.
func mergeRow(row *pdf.Row) (rowSpan, bool) {
	var sb strings.Builder
	var minX, maxX, minY, maxY, fontSum float64
	var lastX, lastWidth float64
	count := 0

	for _, t := range row.Content {
		if t.S == "" {
			continue
		}
		if count > 0 && t.X > lastX+lastWidth+2 {
			sb.WriteString(" ")
		}
		sb.WriteString(t.S)

		width := float64(len(t.S)) * t.FontSize * 0.5
		if t.W > width {
			width = t.W
		}
		lastX, lastWidth = t.X, width

		right := t.X + width
		if count == 0 {
			minX, maxX, minY, maxY = t.X, right, t.Y, t.Y
		} else {
			minX = math.Min(minX, t.X)
			maxX = math.Max(maxX, right)
			minY = math.Min(minY, t.Y)
			maxY = math.Max(maxY, t.Y)
		}
		fontSum += t.FontSize
		count++
	}

	text := strings.TrimSpace(sb.String())
	if text == "" || count == 0 {
		return rowSpan{}, false
	}

	fontSize := fontSum / float64(count)
	if fontSize <= 0 {
		fontSize = 10
	}

	return rowSpan{
		text:     text,
		fontSize: fontSize,
		rect: Rect{
			X0: minX,
			Y0: minY - 0.25*fontSize, // descender allowance below baseline
			X1: maxX,
			Y1: maxY + fontSize,
		},
	}, true
}

func union(a, b Rect) Rect {
	return Rect{
		X0: math.Min(a.X0, b.X0),
		Y0: math.Min(a.Y0, b.Y0),
		X1: math.Max(a.X1, b.X1),
		Y1: math.Max(a.Y1, b.Y1),
	}
}

// Decompose returns one segment per text block in reading order.
func (d *PDFDocument) Decompose() []Segment {
	segments := make([]Segment, len(d.blocks))
	for i := range d.blocks {
		b := &d.blocks[i]
		rect := b.rect
		segments[i] = Segment{
			Key:     i,
			Content: b.text,
			Page:    b.page,
			Rect:    &rect,
			Empty:   strings.TrimSpace(b.text) == "",
		}
	}
	return segments
}

// PageCount reports the number of pages in the document.
func (d *PDFDocument) PageCount() int { return d.pageCount }

// Reassemble stores translated block content for the overlay render.
func (d *PDFDocument) Reassemble(segments []Segment) error {
	if len(segments) != len(d.blocks) {
		return fmt.Errorf("segment count mismatch: got %d, want %d", len(segments), len(d.blocks))
	}
	for i, seg := range segments {
		if seg.Empty {
			continue
		}
		d.blocks[i].text = seg.Content
	}
	return nil
}

// Save renders the overlay (opaque cover plus translated text per block) and
// stamps it page-for-page onto the original document at path.
func (d *PDFDocument) Save(path string) error {
	return writeOverlay(d, path)
}
