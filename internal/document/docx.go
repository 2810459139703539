package document

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
)

// RunFormat is the formatting snapshot taken from the first run of a
// paragraph that holds non-whitespace text. Nil fields mean "inherit / leave
// untouched". The snapshot is captured immediately before a paragraph is
// rewritten and consumed by that rewrite; it is never persisted.
type RunFormat struct {
	Bold      *bool
	Italic    *bool
	Underline *string
	FontName  *string
	FontSize  *string
	FontColor *string
	Highlight *string
}

// snapshotFormat captures formatting from the first run whose text is not
// pure whitespace, mirroring how a reader perceives the paragraph style.
func snapshotFormat(p *docxParagraph) *RunFormat {
	for i := range p.Runs {
		run := &p.Runs[i]
		if strings.TrimSpace(run.text()) == "" {
			continue
		}
		f := &RunFormat{}
		if props := run.Properties; props != nil {
			if props.Bold != nil {
				v := props.Bold.On()
				f.Bold = &v
			}
			if props.Italic != nil {
				v := props.Italic.On()
				f.Italic = &v
			}
			if props.Underline != nil {
				v := props.Underline.Val
				f.Underline = &v
			}
			if props.Fonts != nil && props.Fonts.ASCII != "" {
				v := props.Fonts.ASCII
				f.FontName = &v
			}
			if props.Size != nil {
				v := props.Size.Val
				f.FontSize = &v
			}
			if props.Color != nil {
				v := props.Color.Val
				f.FontColor = &v
			}
			if props.Highlight != nil {
				v := props.Highlight.Val
				f.Highlight = &v
			}
		}
		return f
	}
	return nil
}

// runPropsXML serializes the snapshot back to a w:rPr element.
func (f *RunFormat) runPropsXML() string {
	if f == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("<w:rPr>")
	if f.FontName != nil {
		fmt.Fprintf(&b, `<w:rFonts w:ascii="%s"/>`, escapeXMLAttr(*f.FontName))
	}
	if f.Bold != nil {
		if *f.Bold {
			b.WriteString("<w:b/>")
		} else {
			b.WriteString(`<w:b w:val="false"/>`)
		}
	}
	if f.Italic != nil {
		if *f.Italic {
			b.WriteString("<w:i/>")
		} else {
			b.WriteString(`<w:i w:val="false"/>`)
		}
	}
	if f.Underline != nil {
		fmt.Fprintf(&b, `<w:u w:val="%s"/>`, escapeXMLAttr(*f.Underline))
	}
	if f.FontSize != nil {
		fmt.Fprintf(&b, `<w:sz w:val="%s"/>`, escapeXMLAttr(*f.FontSize))
	}
	if f.FontColor != nil {
		fmt.Fprintf(&b, `<w:color w:val="%s"/>`, escapeXMLAttr(*f.FontColor))
	}
	if f.Highlight != nil {
		fmt.Fprintf(&b, `<w:highlight w:val="%s"/>`, escapeXMLAttr(*f.Highlight))
	}
	b.WriteString("</w:rPr>")
	return b.String()
}

// paraRef points at one paragraph inside a package part, with the exact byte
// range of its element in the raw part data.
type paraRef struct {
	para       docxParagraph
	start, end int64
	translated string
}

// Group is a run of consecutive segment keys that belong to the same
// structural container (body, one table, one header, one footer). Batching
// never crosses a group boundary.
type Group struct {
	Name       string
	Start, End int // segment key range, half-open
}

type docxPart struct {
	name string
	raw  []byte
	refs []*paraRef
}

// DocxDocument is the paragraph-based adapter for Word documents. The
// traversal order is fixed: body paragraphs, table cell paragraphs (row-major,
// cell-major), then per header/footer part its paragraphs and table cells.
type DocxDocument struct {
	zipData []byte
	parts   []*docxPart
	refs    []*paraRef
	groups  []Group
}

var headerFooterPattern = regexp.MustCompile(`^word/(header|footer)\d*\.xml$`)

// LoadDocx opens a DOCX package and parses its translatable parts.
func LoadDocx(path string) (*DocxDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read docx file: %w", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open docx package: %w", err)
	}

	doc := &DocxDocument{zipData: data}

	partNames := []string{"word/document.xml"}
	var headers, footers []string
	for _, f := range zr.File {
		if headerFooterPattern.MatchString(f.Name) {
			if strings.HasPrefix(f.Name, "word/header") {
				headers = append(headers, f.Name)
			} else {
				footers = append(footers, f.Name)
			}
		}
	}
	sort.Strings(headers)
	sort.Strings(footers)
	// Section order is approximated by interleaving the numbered header and
	// footer parts: header n, then footer n.
	for i := 0; i < len(headers) || i < len(footers); i++ {
		if i < len(headers) {
			partNames = append(partNames, headers[i])
		}
		if i < len(footers) {
			partNames = append(partNames, footers[i])
		}
	}

	for _, name := range partNames {
		raw, err := readZipFile(zr, name)
		if err != nil {
			if name == "word/document.xml" {
				return nil, fmt.Errorf("docx package has no %s: %w", name, err)
			}
			continue
		}

		body, tables, err := scanParagraphs(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}

		part := &docxPart{name: name, raw: raw}
		label := partLabel(name)

		doc.appendGroup(part, label, body)
		for ti, tbl := range tables {
			doc.appendGroup(part, fmt.Sprintf("%s table %d", label, ti+1), tbl)
		}
		doc.parts = append(doc.parts, part)
	}

	return doc, nil
}

func partLabel(name string) string {
	base := strings.TrimPrefix(name, "word/")
	base = strings.TrimSuffix(base, ".xml")
	if base == "document" {
		return "body"
	}
	return base
}

func (d *DocxDocument) appendGroup(part *docxPart, name string, refs []*paraRef) {
	if len(refs) == 0 {
		return
	}
	start := len(d.refs)
	d.refs = append(d.refs, refs...)
	part.refs = append(part.refs, refs...)
	d.groups = append(d.groups, Group{Name: name, Start: start, End: len(d.refs)})
}

// scanParagraphs walks a part's XML token stream, decoding each paragraph
// element together with the byte range it occupies. Paragraphs inside tables
// are grouped per outermost table; everything else counts as part body.
func scanParagraphs(raw []byte) (body []*paraRef, tables [][]*paraRef, err error) {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	tableDepth := 0
	tableIdx := -1

	for {
		start := dec.InputOffset()
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				if tableDepth == 0 {
					tableIdx++
					tables = append(tables, nil)
				}
				tableDepth++
			case "p":
				ref := &paraRef{start: start}
				if err := dec.DecodeElement(&ref.para, &t); err != nil {
					return nil, nil, err
				}
				ref.end = dec.InputOffset()
				if tableDepth > 0 {
					tables[tableIdx] = append(tables[tableIdx], ref)
				} else {
					body = append(body, ref)
				}
			}
		case xml.EndElement:
			if t.Name.Local == "tbl" {
				tableDepth--
			}
		}
	}

	return body, tables, nil
}

// Decompose returns one segment per paragraph in traversal order.
func (d *DocxDocument) Decompose() []Segment {
	segments := make([]Segment, len(d.refs))
	for i, ref := range d.refs {
		text := ref.para.paragraphText()
		if strings.TrimSpace(text) == "" {
			segments[i] = Segment{Key: i, Empty: true}
		} else {
			segments[i] = Segment{Key: i, Content: text}
		}
	}
	return segments
}

// Groups returns the structural containers of the decomposition so batching
// can honor container boundaries.
func (d *DocxDocument) Groups() []Group {
	out := make([]Group, len(d.groups))
	copy(out, d.groups)
	return out
}

// Reassemble stores translated content per paragraph. Paragraphs whose
// translation is blank keep their original runs unmodified; this is a
// deliberate conservative fallback.
func (d *DocxDocument) Reassemble(segments []Segment) error {
	if len(segments) != len(d.refs) {
		return fmt.Errorf("segment count mismatch: got %d, want %d", len(segments), len(d.refs))
	}
	for i, seg := range segments {
		if seg.Empty || strings.TrimSpace(seg.Content) == "" {
			continue
		}
		if seg.Content == d.refs[i].para.paragraphText() {
			continue
		}
		d.refs[i].translated = seg.Content
	}
	return nil
}

// Save writes the translated package: translated paragraphs are collapsed to
// a single run carrying the formatting snapshot, every other byte of every
// part stays as it was.
func (d *DocxDocument) Save(path string) error {
	modified := make(map[string][]byte, len(d.parts))
	for _, part := range d.parts {
		rebuilt, changed, err := rebuildPart(part)
		if err != nil {
			return fmt.Errorf("failed to rebuild %s: %w", part.name, err)
		}
		if changed {
			modified[part.name] = rebuilt
		}
	}

	zr, err := zip.NewReader(bytes.NewReader(d.zipData), int64(len(d.zipData)))
	if err != nil {
		return fmt.Errorf("failed to reopen docx package: %w", err)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	for _, f := range zr.File {
		w, err := zw.Create(f.Name)
		if err != nil {
			return fmt.Errorf("failed to add %s: %w", f.Name, err)
		}
		if data, ok := modified[f.Name]; ok {
			if _, err := w.Write(data); err != nil {
				return fmt.Errorf("failed to write %s: %w", f.Name, err)
			}
			continue
		}
		r, err := f.Open()
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", f.Name, err)
		}
		_, err = io.Copy(w, r)
		r.Close()
		if err != nil {
			return fmt.Errorf("failed to copy %s: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize docx package: %w", err)
	}
	return nil
}

// rebuildPart splices translated paragraphs into the raw part bytes. Refs are
// processed in byte order so identical paragraphs cannot be confused.
func rebuildPart(part *docxPart) ([]byte, bool, error) {
	refs := make([]*paraRef, len(part.refs))
	copy(refs, part.refs)
	sort.Slice(refs, func(i, j int) bool { return refs[i].start < refs[j].start })

	changed := false
	var buf bytes.Buffer
	cursor := int64(0)
	for _, ref := range refs {
		if ref.translated == "" {
			continue
		}
		if ref.start < cursor || ref.end > int64(len(part.raw)) {
			return nil, false, fmt.Errorf("paragraph range [%d,%d) out of bounds", ref.start, ref.end)
		}
		buf.Write(part.raw[cursor:ref.start])
		buf.WriteString(translatedParagraphXML(ref))
		cursor = ref.end
		changed = true
	}
	buf.Write(part.raw[cursor:])
	return buf.Bytes(), changed, nil
}

// translatedParagraphXML renders a paragraph collapsed to one run: original
// paragraph properties, snapshot run properties, translated text.
func translatedParagraphXML(ref *paraRef) string {
	var b strings.Builder
	b.WriteString("<w:p>")
	if props := ref.para.Properties; props != nil {
		b.WriteString("<w:pPr>")
		b.Write(props.Inner)
		b.WriteString("</w:pPr>")
	}
	b.WriteString("<w:r>")
	b.WriteString(snapshotFormat(&ref.para).runPropsXML())
	b.WriteString(`<w:t xml:space="preserve">`)
	b.WriteString(escapeXMLText(ref.translated))
	b.WriteString("</w:t></w:r></w:p>")
	return b.String()
}

func readZipFile(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name == name {
			r, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer r.Close()
			return io.ReadAll(r)
		}
	}
	return nil, fmt.Errorf("file %s not found in package", name)
}

func escapeXMLText(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

func escapeXMLAttr(s string) string {
	return escapeXMLText(s)
}
