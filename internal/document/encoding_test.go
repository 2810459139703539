package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectEncoding(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"plain ascii", []byte("hello world"), "utf-8"},
		{"valid utf-8", []byte("héllo wörld"), "utf-8"},
		{"utf-8 with bom", append([]byte{0xEF, 0xBB, 0xBF}, []byte("hello")...), "utf-8"},
		{"latin-1 bytes", []byte{'c', 'a', 'f', 0xE9}, "latin-1"},
		{"empty", nil, "utf-8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectEncoding(tt.data))
		})
	}
}

func TestDecode(t *testing.T) {
	assert.Equal(t, "café", Decode([]byte{'c', 'a', 'f', 0xE9}, "latin-1"))
	assert.Equal(t, "hello", Decode([]byte("hello"), "utf-8"))
	// windows-1252 maps 0x93/0x94 to curly quotes
	assert.Equal(t, "“hi”", Decode([]byte{0x93, 'h', 'i', 0x94}, "windows-1252"))
	// unknown encoding falls back to lossy utf-8
	assert.Equal(t, "ab", Decode([]byte("ab"), "ebcdic"))
}

func TestDecodeInvalidUTF8Substitutes(t *testing.T) {
	got := Decode([]byte{'a', 0xFF, 'b'}, "utf-8")
	assert.Contains(t, got, "a")
	assert.Contains(t, got, "b")
	assert.NotContains(t, got, "\xff")
}
