package document

import (
	"strings"
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeRow(y float64, fontSize float64, words ...string) *pdf.Row {
	var content pdf.TextHorizontal
	x := 72.0
	for _, w := range words {
		content = append(content, pdf.Text{
			S:        w,
			X:        x,
			Y:        y,
			FontSize: fontSize,
		})
		x += float64(len(w))*fontSize*0.5 + fontSize*0.25
	}
	return &pdf.Row{Position: int64(y), Content: content}
}

func TestBuildBlocksGroupsAdjacentRows(t *testing.T) {
	rows := pdf.Rows{
		makeRow(700, 10, "The quick brown"),
		makeRow(688, 10, "fox jumps."),
		// large vertical gap starts a new block
		makeRow(600, 10, "Second paragraph."),
	}

	blocks := buildBlocks(1, rows)
	require.Len(t, blocks, 2)
	assert.Equal(t, "The quick brown fox jumps.", blocks[0].text)
	assert.Equal(t, "Second paragraph.", blocks[1].text)
	assert.Equal(t, 1, blocks[0].page)
}

func TestBuildBlocksDehyphenation(t *testing.T) {
	rows := pdf.Rows{
		makeRow(700, 10, "transla-"),
		makeRow(688, 10, "tion works"),
	}

	blocks := buildBlocks(1, rows)
	require.Len(t, blocks, 1)
	assert.Equal(t, "translation works", blocks[0].text)
}

func TestBuildBlocksReadingOrder(t *testing.T) {
	// rows supplied out of order; higher Y means higher on the page
	rows := pdf.Rows{
		makeRow(500, 10, "bottom"),
		makeRow(710, 10, "top"),
	}

	blocks := buildBlocks(1, rows)
	require.Len(t, blocks, 2)
	assert.Equal(t, "top", blocks[0].text)
	assert.Equal(t, "bottom", blocks[1].text)
}

func TestBuildBlocksBoundingBoxCoversRows(t *testing.T) {
	rows := pdf.Rows{
		makeRow(700, 10, "first line"),
		makeRow(688, 10, "second line text"),
	}

	blocks := buildBlocks(1, rows)
	require.Len(t, blocks, 1)

	r := blocks[0].rect
	assert.InDelta(t, 72.0, r.X0, 0.01)
	assert.Less(t, r.Y0, 688.0)
	assert.Greater(t, r.Y1, 700.0)
	assert.Greater(t, r.Width(), 0.0)
}

func TestMergeRowInsertsWordGaps(t *testing.T) {
	row := &pdf.Row{Content: pdf.TextHorizontal{
		{S: "Hello", X: 72, Y: 700, FontSize: 10},
		// far enough right of the previous fragment to imply a space
		{S: "world", X: 110, Y: 700, FontSize: 10},
	}}

	span, ok := mergeRow(row)
	require.True(t, ok)
	assert.Equal(t, "Hello world", span.text)
}

func TestMergeRowSkipsEmptyRow(t *testing.T) {
	_, ok := mergeRow(&pdf.Row{Content: pdf.TextHorizontal{{S: "   ", X: 72, Y: 700, FontSize: 10}}})
	assert.False(t, ok)
}

func TestPDFDecomposeReassembleRoundTrip(t *testing.T) {
	doc := &PDFDocument{
		pageCount: 1,
		blocks: []pdfBlock{
			{page: 1, rect: Rect{X0: 72, Y0: 680, X1: 540, Y1: 710}, text: "Hello"},
			{page: 1, rect: Rect{X0: 72, Y0: 600, X1: 540, Y1: 640}, text: "World"},
		},
	}

	segs := doc.Decompose()
	require.Len(t, segs, 2)
	assert.Equal(t, 1, segs[0].Page)
	require.NotNil(t, segs[0].Rect)

	segs[0].Content = "Hallo"
	require.NoError(t, doc.Reassemble(segs))
	assert.Equal(t, "Hallo", doc.blocks[0].text)
	assert.Equal(t, "World", doc.blocks[1].text)

	segs = segs[:1]
	assert.Error(t, doc.Reassemble(segs))
}

func TestWrapTextRespectsWidth(t *testing.T) {
	lines := wrapText("one two three four five six seven", 80, 10)
	require.Greater(t, len(lines), 1)
	for _, line := range lines {
		assert.LessOrEqual(t, textWidth(line, 10), 85.0, "line too wide: %q", line)
	}
	assert.Equal(t, "one two three four five six seven", strings.Join(lines, " "))
}

func TestFitFontSizeShrinksToBox(t *testing.T) {
	long := strings.Repeat("translated content flows here ", 20)
	box := Rect{X0: 0, Y0: 0, X1: 200, Y1: 60}

	size := fitFontSize(long, box)
	assert.GreaterOrEqual(t, size, minOverlayFontSize)
	assert.Less(t, size, 12.0, "long text must shrink below the cap")

	short := fitFontSize("Hallo", box)
	assert.InDelta(t, 12.0, short, 0.01, "short text keeps the cap size")
}
