package document

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecomposeBlankLinePreservation(t *testing.T) {
	doc := NewTextDocument("Hello\n\n  \nWorld")

	segments := doc.Decompose()
	require.Len(t, segments, 4)

	assert.Equal(t, "Hello", segments[0].Content)
	assert.False(t, segments[0].Empty)

	assert.True(t, segments[1].Empty)
	assert.Equal(t, "", segments[1].Leading)

	assert.True(t, segments[2].Empty)
	assert.Equal(t, "  ", segments[2].Leading)

	assert.Equal(t, "World", segments[3].Content)

	// identity translation reproduces the input exactly
	require.NoError(t, doc.Reassemble(segments))
	assert.Equal(t, "Hello\n\n  \nWorld", doc.Text())
}

func TestRoundTripIdentity(t *testing.T) {
	inputs := []string{
		"single line",
		"  indented\n\ttabbed  \n",
		"a\n\n\nb",
		"trailing spaces   \nand\tmixed\t\n\n  \t \nend",
		"",
	}
	for _, input := range inputs {
		doc := NewTextDocument(input)
		require.NoError(t, doc.Reassemble(doc.Decompose()))
		assert.Equal(t, input, doc.Text(), "round trip of %q", input)
	}
}

func TestReassembleWithTranslation(t *testing.T) {
	doc := NewTextDocument("  Hello  \n\nWorld")

	segments := doc.Decompose()
	for i := range segments {
		switch segments[i].Content {
		case "Hello":
			segments[i].Content = "Hallo"
		case "World":
			segments[i].Content = "Wereld"
		}
	}

	require.NoError(t, doc.Reassemble(segments))
	assert.Equal(t, "  Hallo  \n\nWereld", doc.Text())
}

func TestReassembleCountMismatch(t *testing.T) {
	doc := NewTextDocument("a\nb")
	err := doc.Reassemble(doc.Decompose()[:1])
	assert.Error(t, err)
}

func TestLoadTextAndSave(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	out := filepath.Join(dir, "out.txt")

	content := "First line\n\n  Indented second\n"
	require.NoError(t, os.WriteFile(in, []byte(content), 0o644))

	doc, err := LoadText(in)
	require.NoError(t, err)
	assert.Equal(t, "utf-8", doc.Encoding)

	require.NoError(t, doc.Reassemble(doc.Decompose()))
	require.NoError(t, doc.Save(out))

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, content, string(got))
}

func TestLoadTextLatin1(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "latin1.txt")

	// "café" in Latin-1: é = 0xE9, invalid as UTF-8
	require.NoError(t, os.WriteFile(in, []byte{'c', 'a', 'f', 0xE9}, 0o644))

	doc, err := LoadText(in)
	require.NoError(t, err)
	assert.Equal(t, "latin-1", doc.Encoding)
	assert.Equal(t, "café", doc.Text())
}

func TestDetectKind(t *testing.T) {
	assert.Equal(t, KindText, DetectKind("/tmp/a.txt"))
	assert.Equal(t, KindDocx, DetectKind("report.DOCX"))
	assert.Equal(t, KindPDF, DetectKind("paper.pdf"))
	assert.Equal(t, KindUnknown, DetectKind("image.png"))
}
