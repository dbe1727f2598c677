package csv

import (
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const utf8BOM = "\uFEFF"

// DecodeUTF8 wraps r so that a leading UTF-8 byte order mark is dropped and
// invalid byte sequences are replaced with U+FFFD.
func DecodeUTF8(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.UTF8BOM.NewDecoder())
}

// StripHeaderBOM removes a UTF-8 BOM from the first header cell if present.
// Inputs that were already passed through DecodeUTF8 never carry one; this
// covers a second BOM left behind by tools that prepend their own.
func StripHeaderBOM(headers []string) []string {
	if len(headers) == 0 {
		return headers
	}
	headers[0] = strings.TrimPrefix(headers[0], utf8BOM)
	return headers
}
