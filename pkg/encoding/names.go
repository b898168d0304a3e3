// Package encoding converts fixed-size name fields and archive paths of map
// files to UTF-8.
package encoding

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// Name encodings accepted by Decoder.
const (
	ASCII       = "ascii"
	Latin1      = "latin1"
	Windows1252 = "windows1252"
	EUCKR       = "euc-kr"
)

var charsets = map[string]encoding.Encoding{
	Latin1:      charmap.ISO8859_1,
	Windows1252: charmap.Windows1252,
	EUCKR:       korean.EUCKR,
}

// Names returns the accepted encoding names, sorted.
func Names() []string {
	names := []string{ASCII}
	for n := range charsets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Decoder returns a function converting name bytes in the named encoding to UTF-8.
// An empty name selects ASCII.
func Decoder(name string) (func([]byte) string, error) {
	name = strings.ToLower(name)
	if name == "" || name == ASCII {
		return ASCIIToUTF8, nil
	}
	enc, ok := charsets[name]
	if !ok {
		return nil, fmt.Errorf("unknown name encoding %q (want one of %s)", name, strings.Join(Names(), ", "))
	}
	return func(data []byte) string {
		return decode(enc, data)
	}, nil
}

// decode converts data with enc. Returns the original bytes as a string if conversion fails.
func decode(enc encoding.Encoding, data []byte) string {
	result, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return string(data)
	}
	return string(result)
}

// ASCIIToUTF8 keeps 7-bit bytes and replaces every other byte with U+FFFD.
func ASCIIToUTF8(data []byte) string {
	var sb strings.Builder
	sb.Grow(len(data))
	for _, b := range data {
		if b < utf8.RuneSelf {
			sb.WriteByte(b)
		} else {
			sb.WriteRune(utf8.RuneError)
		}
	}
	return sb.String()
}

// NormalizePath normalizes an archive path for case-insensitive lookup.
func NormalizePath(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	path = strings.TrimPrefix(path, "/")
	return strings.ToLower(path)
}
