package translator

import (
	"unicode/utf8"

	"github.com/troosts/doctranslate/internal/document"
)

// Batch is a group of segments translated in a single provider call. Indices
// are segment keys into the decomposed document; Texts holds the
// corresponding contents.
type Batch struct {
	Indices []int
	Texts   []string
}

func (b *Batch) add(seg document.Segment) {
	b.Indices = append(b.Indices, seg.Key)
	b.Texts = append(b.Texts, seg.Content)
}

// BatchByLength groups non-empty segments under a character budget. An empty
// segment forces the current batch to flush so that translation never crosses
// a paragraph boundary. A single segment larger than the budget is sent
// alone; batches are never empty.
func BatchByLength(segments []document.Segment, maxChars int) []Batch {
	var batches []Batch
	var cur Batch
	size := 0

	flush := func() {
		if len(cur.Texts) > 0 {
			batches = append(batches, cur)
			cur = Batch{}
			size = 0
		}
	}

	for _, seg := range segments {
		if seg.Empty {
			flush()
			continue
		}
		n := utf8.RuneCountInString(seg.Content)
		if size > 0 && size+n > maxChars {
			flush()
		}
		cur.add(seg)
		size += n
	}
	flush()

	return batches
}

// BatchByCount groups segments into fixed-size batches, preserving order.
// Empty segments ride along so that batch positions keep matching segment
// positions; the invoker maps them back unchanged.
func BatchByCount(segments []document.Segment, size int) []Batch {
	if size <= 0 {
		size = 1
	}

	var batches []Batch
	for start := 0; start < len(segments); start += size {
		end := start + size
		if end > len(segments) {
			end = len(segments)
		}
		var b Batch
		for _, seg := range segments[start:end] {
			b.add(seg)
		}
		batches = append(batches, b)
	}
	return batches
}
