package ingest

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode turns uploaded bytes into text. UTF-8 (with or without a byte-order
// mark) is preferred; anything else is read as ISO-8859-1, which maps every
// byte to a rune, so Decode never fails.
func Decode(raw []byte) string {
	b := bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(b) {
		return string(b)
	}
	return decodeLatin1(b)
}

func decodeLatin1(raw []byte) string {
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return strings.ToValidUTF8(string(raw), string(utf8.RuneError))
	}
	return string(out)
}
