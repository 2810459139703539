package document

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// encodingCandidates is the fixed trial order for encoding detection.
var encodingCandidates = []struct {
	name string
	enc  encoding.Encoding
}{
	{"utf-8", unicode.UTF8},
	{"utf-8-sig", unicode.UTF8BOM},
	{"latin-1", charmap.ISO8859_1},
	{"windows-1252", charmap.Windows1252},
	{"iso-8859-1", charmap.ISO8859_1},
}

// DetectEncoding probes data against a fixed preference list and returns the
// name of the first encoding that decodes it cleanly. When nothing matches it
// falls back to "utf-8"; callers must then decode with substitution. The
// probe never consumes or mutates data.
func DetectEncoding(data []byte) string {
	for _, c := range encodingCandidates {
		if decodesCleanly(data, c.name) {
			return c.name
		}
	}
	return "utf-8"
}

func decodesCleanly(data []byte, name string) bool {
	switch name {
	case "utf-8":
		return utf8.Valid(data)
	case "utf-8-sig":
		return bytes.HasPrefix(data, utf8BOM) && utf8.Valid(data[len(utf8BOM):])
	default:
		// The single-byte charmaps accept every byte sequence.
		return true
	}
}

// Decode converts data from the named encoding to a UTF-8 string. Invalid
// bytes are substituted, never raised.
func Decode(data []byte, name string) string {
	for _, c := range encodingCandidates {
		if c.name == name {
			decoded, err := c.enc.NewDecoder().Bytes(data)
			if err != nil {
				break
			}
			return string(decoded)
		}
	}
	// Unknown name or decoder failure: lossy UTF-8 interpretation.
	return string(bytes.ToValidUTF8(data, []byte("�")))
}
