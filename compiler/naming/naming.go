// Package naming derives identifiers from raw schema names.
//
// All functions are pure and deterministic over ASCII identifier input.
// Every generator goes through this package instead of formatting names
// inline, so the same schema always produces the same identifiers.
package naming

import (
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// DefaultSeparators split words in identifiers.
	DefaultSeparators = []string{"_", "-", " "}
	// PathSeparators additionally split on path and dot segments, as used
	// in endpoint names like "cars/search".
	PathSeparators = []string{"_", "-", " ", "/", "."}
)

// acronyms are kept upper case inside camel and pascal names.
var acronyms = map[string]struct{}{}

var rules = ruleset()

func ruleset() *inflect.Ruleset {
	rules := inflect.NewDefaultRuleset()
	for _, w := range []string{
		"ACL", "API", "ASCII", "CPU", "CSS", "DNS", "EOF", "GUID", "HTML",
		"HTTP", "HTTPS", "ID", "IP", "JSON", "LHS", "QPS", "RAM", "RHS",
		"RPC", "SLA", "SMTP", "SQL", "SSH", "TCP", "TLS", "TTL", "UDP",
		"UI", "UID", "URI", "URL", "UTF8", "UUID", "VM", "XML", "XMPP",
		"XSRF", "XSS",
	} {
		acronyms[w] = struct{}{}
		rules.AddAcronym(w)
	}
	return rules
}

// Words splits s into its words. Separators end a word, as do case
// boundaries ("HTTPCode" is "HTTP" and "Code"). Digits stay attached to the
// preceding word and other punctuation is dropped.
func Words(s string, separators ...string) []string {
	if len(separators) == 0 {
		separators = DefaultSeparators
	}
	for _, sep := range separators {
		if sep != "" {
			s = strings.ReplaceAll(s, sep, " ")
		}
	}
	s = strings.Map(func(r rune) rune {
		if r == ' ' || r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return r
		}
		return -1
	}, s)
	var words []string
	for _, field := range strings.Fields(s) {
		words = append(words, splitCase(field)...)
	}
	return words
}

func splitCase(s string) []string {
	rs := []rune(s)
	var (
		parts []string
		start int
	)
	for i := 1; i < len(rs); i++ {
		prev, cur := rs[i-1], rs[i]
		if !unicode.IsUpper(cur) {
			continue
		}
		switch {
		case unicode.IsLower(prev), unicode.IsDigit(prev):
		case unicode.IsUpper(prev) && i+1 < len(rs) && unicode.IsLower(rs[i+1]) && !pluralAcronym(rs, i):
		default:
			continue
		}
		parts = append(parts, string(rs[start:i]))
		start = i
	}
	return append(parts, string(rs[start:]))
}

// pluralAcronym reports whether rs[i] ends an acronym that is followed by a
// plural "s", as in "IDs" or "URLs".
func pluralAcronym(rs []rune, i int) bool {
	if rs[i+1] != 's' {
		return false
	}
	return i+2 == len(rs) || unicode.IsUpper(rs[i+2])
}

// Camel returns the lower camel-case form of s: "fetch_all" becomes
// "fetchAll" and "user_id" becomes "userID". Lower camel-case input is
// returned unchanged ("userId" stays "userId").
func Camel(s string, separators ...string) string {
	words := Words(s, separators...)
	if len(words) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(strings.ToLower(words[0]))
	for _, w := range words[1:] {
		b.WriteString(upperWord(w))
	}
	return b.String()
}

// Pascal returns the upper camel-case (type) form of s.
func Pascal(s string, separators ...string) string {
	var b strings.Builder
	for _, w := range Words(s, separators...) {
		b.WriteString(upperWord(w))
	}
	return b.String()
}

// Snake returns the lower snake-case form of s.
func Snake(s string, separators ...string) string {
	words := Words(s, separators...)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, "_")
}

// Plural returns the plural form of s, preserving its casing style.
func Plural(s string) string {
	if s == "" {
		return ""
	}
	return rules.Pluralize(s)
}

// Variable returns the variable casing of s.
func Variable(s string) string { return Camel(s) }

// TypeName returns the type casing of s.
func TypeName(s string) string { return Pascal(s) }

// PluralVariable returns the variable casing of the plural of s, as used
// for collection properties: "Car" becomes "cars".
func PluralVariable(s string) string { return Camel(Plural(s)) }

// Receiver returns a short receiver name for a type name, made of the
// lowered initials of its words: "CoreManagerCleanup" becomes "cmc".
func Receiver(s string) string {
	s = strings.TrimLeft(s, "[]*0123456789")
	var b strings.Builder
	for _, w := range Words(s) {
		b.WriteString(strings.ToLower(w[:1]))
	}
	if b.Len() == 0 {
		return "r"
	}
	return b.String()
}

// upperWord capitalizes w. Only all lower-case words are matched against
// the acronyms; words already carrying upper case keep their casing.
func upperWord(w string) string {
	if w == strings.ToLower(w) {
		if _, ok := acronyms[strings.ToUpper(w)]; ok {
			return strings.ToUpper(w)
		}
	}
	// A Caser is stateful and must not be shared between goroutines.
	return cases.Title(language.Und, cases.NoLower).String(w)
}
