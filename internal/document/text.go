package document

import (
	"fmt"
	"os"
	"strings"
	"unicode"
)

// TextDocument is the line-based adapter for plain-text files. Each logical
// line becomes one segment; whitespace around the line content is kept in
// segment metadata so that reassembly with unchanged content reproduces the
// original text exactly. Output is always written as UTF-8 regardless of the
// detected input encoding.
type TextDocument struct {
	Encoding string

	segments []Segment
}

// LoadText reads and decodes a plain-text file.
func LoadText(path string) (*TextDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read text file: %w", err)
	}

	enc := DetectEncoding(data)
	doc := &TextDocument{Encoding: enc}
	doc.segments = decomposeText(Decode(data, enc))
	return doc, nil
}

// NewTextDocument builds a document directly from text, mainly for tests.
func NewTextDocument(text string) *TextDocument {
	return &TextDocument{Encoding: "utf-8", segments: decomposeText(text)}
}

func decomposeText(text string) []Segment {
	lines := strings.Split(text, "\n")
	segments := make([]Segment, 0, len(lines))

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			// Blank or whitespace-only line. The original whitespace is
			// kept verbatim in Leading so the line round-trips exactly.
			segments = append(segments, Segment{
				Key:     i,
				Empty:   true,
				Leading: line,
			})
			continue
		}

		content := strings.TrimSpace(line)
		leading := line[:strings.IndexFunc(line, func(r rune) bool { return !unicode.IsSpace(r) })]
		// Everything after the trimmed content is trailing whitespace.
		trailing := line[len(leading)+len(content):]

		segments = append(segments, Segment{
			Key:      i,
			Content:  content,
			Leading:  leading,
			Trailing: trailing,
		})
	}

	return segments
}

// Decompose returns the document's segments in reading order.
func (d *TextDocument) Decompose() []Segment {
	out := make([]Segment, len(d.segments))
	copy(out, d.segments)
	return out
}

// Reassemble writes translated content back into the line structure. The
// segment count must match the decomposition.
func (d *TextDocument) Reassemble(segments []Segment) error {
	if len(segments) != len(d.segments) {
		return fmt.Errorf("segment count mismatch: got %d, want %d", len(segments), len(d.segments))
	}
	for i, seg := range segments {
		if seg.Key != d.segments[i].Key {
			return fmt.Errorf("segment %d has key %d, want %d", i, seg.Key, d.segments[i].Key)
		}
		if !d.segments[i].Empty {
			d.segments[i].Content = seg.Content
		}
	}
	return nil
}

// Text reconstructs the full document text from its segments.
func (d *TextDocument) Text() string {
	lines := make([]string, len(d.segments))
	for i, seg := range d.segments {
		if seg.Empty {
			lines[i] = seg.Leading
		} else {
			lines[i] = seg.Leading + seg.Content + seg.Trailing
		}
	}
	return strings.Join(lines, "\n")
}

// Save writes the reconstructed text as UTF-8.
func (d *TextDocument) Save(path string) error {
	if err := os.WriteFile(path, []byte(d.Text()), 0o644); err != nil {
		return fmt.Errorf("failed to write text file: %w", err)
	}
	return nil
}
