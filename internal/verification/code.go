// Package verification derives the 6-digit code that gates report submission.
// The code is a pure function of the client metadata, so any party holding
// the same four values (the link generator, this service, the receiving
// endpoint) can reproduce it.
package verification

import (
	"crypto/subtle"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf16"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/dharsanguruparan/reporte/internal/model"
)

const (
	// Separator is U+241F (SYMBOL FOR UNIT SEPARATOR), unlikely in typed input.
	Separator = "␟"

	offsetBasis uint32 = 0x811C9DC5
	modulus     uint32 = 1_000_000
)

// combiningDiacritic matches the Combining Diacritical Marks block only.
// Other Mn characters survive so codes stay compatible with existing links.
func combiningDiacritic(r rune) bool {
	return r >= 0x0300 && r <= 0x036F
}

// Normalize folds free text so that accents, spacing and case do not change
// the code: NFD, strip U+0300..U+036F, collapse whitespace, uppercase.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.Predicate(combiningDiacritic)))
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	// Casers carry state; a fresh one per call keeps Normalize goroutine safe.
	return cases.Upper(language.Und).String(strings.Join(strings.FieldsFunc(stripped, isSpace), " "))
}

// isSpace also treats the information separators U+001C..U+001F as blanks,
// which unicode.IsSpace does not.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1C && r <= 0x1F)
}

// DigitsOnly keeps the Unicode decimal digits (category Nd) of s, as they
// are. Fullwidth or Arabic-Indic digits are not folded to ASCII.
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Hash is 32-bit FNV-1a fed with UTF-16 code units instead of bytes. Runes
// outside the BMP contribute both surrogate halves.
func Hash(s string) uint32 {
	h := offsetBasis
	for _, unit := range utf16.Encode([]rune(s)) {
		h ^= uint32(unit)
		h += (h << 1) + (h << 4) + (h << 7) + (h << 8) + (h << 24)
	}
	return h
}

// Canonical returns the separator-joined string that is hashed for meta.
func Canonical(meta model.RequestMetadata) string {
	return strings.Join([]string{
		Normalize(meta.ID),
		Normalize(meta.Ciudad),
		DigitsOnly(meta.NIT),
		Normalize(meta.NombreEmpresa),
	}, Separator)
}

// Code returns the zero-padded 6-digit verification code for meta.
func Code(meta model.RequestMetadata) string {
	return fmt.Sprintf("%06d", Hash(Canonical(meta))%modulus)
}

// Matches reports whether the code typed by the user, once stripped of
// anything but digits, equals the code for meta.
func Matches(meta model.RequestMetadata, entered string) bool {
	expected := Code(meta)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(DigitsOnly(entered))) == 1
}
