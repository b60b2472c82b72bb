package validate

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	reEmail   = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reBarcode = regexp.MustCompile(`^[0-9A-Za-z-]{1,32}$`)
)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 254 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Name validates a display name: non-empty, at most 40 characters.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || utf8.RuneCountInString(s) > 40 {
		return "", false
	}
	return s, true
}

// Barcode validates a product barcode as produced by a decoder (EAN/UPC and
// similar alphanumeric symbologies).
func Barcode(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reBarcode.MatchString(s)
}

// BinCode normalizes a typed bin code the way the scanner UI does (trimmed,
// upper case). Only emptiness, length and the composite separator are
// rejected here; whether the bin exists is decided by the ledger.
func BinCode(s string) (string, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" || len(s) > 32 || strings.Contains(s, "|") {
		return "", false
	}
	return s, true
}
