package document

// WordprocessingML structures for the paragraphs of a DOCX package. Only the
// parts we touch are modelled: paragraphs, their runs, and the run properties
// that make up a formatting snapshot. Element tags use local names so they
// match regardless of the w: prefix. A paragraph also captures its verbatim
// inner XML; reassembly rewrites only translated paragraphs and leaves every
// other byte of the part untouched.

type docxParagraph struct {
	Inner      []byte         `xml:",innerxml"`
	Properties *docxParaProps `xml:"pPr"`
	Runs       []docxRun      `xml:"r"`
}

type docxParaProps struct {
	Inner []byte `xml:",innerxml"`
}

type docxRun struct {
	Properties *docxRunProps `xml:"rPr"`
	Text       *docxText     `xml:"t"`
	Tabs       []docxTab     `xml:"tab"`
	Breaks     []docxBreak   `xml:"br"`
}

type docxRunProps struct {
	Bold      *docxToggle  `xml:"b"`
	Italic    *docxToggle  `xml:"i"`
	Underline *docxValAttr `xml:"u"`
	Color     *docxValAttr `xml:"color"`
	Size      *docxValAttr `xml:"sz"`
	Fonts     *docxFonts   `xml:"rFonts"`
	Highlight *docxValAttr `xml:"highlight"`
}

// docxToggle is an on/off property like w:b. Absence means inherit; presence
// without a val attribute means on.
type docxToggle struct {
	Val string `xml:"val,attr"`
}

// On reports whether the toggle is enabled.
func (t *docxToggle) On() bool {
	return t != nil && t.Val != "false" && t.Val != "0"
}

type docxValAttr struct {
	Val string `xml:"val,attr"`
}

type docxFonts struct {
	ASCII string `xml:"ascii,attr"`
}

type docxText struct {
	Space string `xml:"space,attr"`
	Text  string `xml:",chardata"`
}

type docxTab struct{}

type docxBreak struct{}

// text returns the run's visible text: tabs and breaks count as whitespace
// characters, like the text a word processor displays.
func (r *docxRun) text() string {
	var s string
	for range r.Tabs {
		s += "\t"
	}
	for range r.Breaks {
		s += "\n"
	}
	if r.Text != nil {
		s += r.Text.Text
	}
	return s
}

// paragraphText concatenates the visible text of all runs.
func (p *docxParagraph) paragraphText() string {
	var s string
	for i := range p.Runs {
		s += p.Runs[i].text()
	}
	return s
}
