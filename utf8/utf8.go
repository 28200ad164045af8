// Package utf8 decomposes the single Unicode code points the letter
// alphabet is built from into the raw UTF-8 bytes the C emitter's sparse
// dispatch index keys on.
package utf8

import (
	"fmt"
	"unicode/utf8"
)

// Decompose returns letter's UTF-8 byte sequence. letter must be exactly
// one code point, the unit the training pipeline's letter alphabet is
// defined over; anything else is rejected rather than silently keyed on
// its first rune.
func Decompose(letter string) ([]byte, error) {
	r, size := utf8.DecodeRuneInString(letter)
	if r == utf8.RuneError || size != len(letter) {
		return nil, fmt.Errorf("letter %q is not a single well-formed Unicode code point", letter)
	}
	return []byte(letter), nil
}
