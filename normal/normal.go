// Package normal derives comparison keys from flattened text, e.g. to find
// the same title with different markup or spacing.
package normal

import (
	"strings"
	"unicode"
)

// Normalizer transforms a string.
type Normalizer interface {
	Normalize(string) string
}

// NormalizerFunc adapts a function to a Normalizer.
type NormalizerFunc func(string) string

func (f NormalizerFunc) Normalize(s string) string {
	return f(s)
}

// Pipeline applies normalizers in order.
type Pipeline struct {
	Normalizer []Normalizer
}

func (p *Pipeline) Normalize(s string) string {
	for _, n := range p.Normalizer {
		s = n.Normalize(s)
	}
	return s
}

var (
	Lower = NormalizerFunc(strings.ToLower)
	// AlphaNum keeps letters and digits.
	AlphaNum = NormalizerFunc(func(v string) string {
		return strings.Map(func(c rune) rune {
			if unicode.IsLetter(c) || unicode.IsDigit(c) {
				return c
			}
			return -1
		}, v)
	})
	// CollapseSpace replaces runs of whitespace, including newlines and
	// tabs, with a single space.
	CollapseSpace = NormalizerFunc(func(v string) string {
		return strings.Join(strings.Fields(v), " ")
	})
)

// TitleKey is lowercase letters and digits only, "Role of p53 in Cancer." and
// "role of p53 in cancer" share a key.
var TitleKey = &Pipeline{Normalizer: []Normalizer{Lower, AlphaNum}}
