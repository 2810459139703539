// Package document decomposes documents into ordered translatable segments
// and reassembles translated content back into the original structure. One
// decomposer/reassembler pair exists per supported format: line-based for
// plain text, run-based for DOCX, block-based for PDF.
package document

import (
	"path/filepath"
	"strings"
)

// Kind identifies a supported document format.
type Kind int

const (
	KindUnknown Kind = iota
	KindText
	KindDocx
	KindPDF
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindDocx:
		return "docx"
	case KindPDF:
		return "pdf"
	default:
		return "unknown"
	}
}

// DetectKind sniffs the document format from the file extension.
func DetectKind(path string) Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		return KindText
	case ".docx":
		return KindDocx
	case ".pdf":
		return KindPDF
	default:
		return KindUnknown
	}
}

// Segment is the atomic translatable unit. Key is the segment's position in
// decomposition order; reassembly writes translated content back to the same
// key. Empty segments are never translated and only mark batch boundaries.
//
// Leading and Trailing carry surrounding whitespace for line-based segments.
// Page and Rect locate block-based segments on their page.
type Segment struct {
	Content string
	Key     int
	Empty   bool

	Leading  string
	Trailing string

	Page int
	Rect *Rect
}

// Rect is a bounding box in PDF user space (origin bottom-left, y up).
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// Width returns the horizontal extent of the box.
func (r *Rect) Width() float64 { return r.X1 - r.X0 }

// Height returns the vertical extent of the box.
func (r *Rect) Height() float64 { return r.Y1 - r.Y0 }
