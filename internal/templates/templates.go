// Package templates assembles locale-aware prompt fragments. Lookups are
// pure functions of (domain, name, language): the language is an explicit
// argument rather than parser state, so one parser instance is safe to share
// across concurrent requests.
package templates

import (
	"fmt"
	"strings"

	"github.com/abadojack/whatlanggo"
)

// Parser resolves named templates from locale bundles, falling back to the
// default language's bundle when the requested language has no match.
type Parser struct {
	primaryLanguage string
	defaultLanguage string
}

func NewParser(primaryLanguage, defaultLanguage string) *Parser {
	if defaultLanguage == "" {
		defaultLanguage = "en"
	}
	if primaryLanguage == "" {
		primaryLanguage = defaultLanguage
	}
	return &Parser{
		primaryLanguage: primaryLanguage,
		defaultLanguage: defaultLanguage,
	}
}

func (p *Parser) DefaultLanguage() string { return p.defaultLanguage }

// Get returns the named template from the given domain, substituting $name
// placeholders from subs. An empty lang selects the primary language;
// unknown placeholders are left untouched.
func (p *Parser) Get(domain, name, lang string, subs map[string]string) (string, error) {
	if lang == "" {
		lang = p.primaryLanguage
	}

	tpl, ok := lookup(lang, domain, name)
	if !ok && lang != p.defaultLanguage {
		tpl, ok = lookup(p.defaultLanguage, domain, name)
	}
	if !ok {
		return "", fmt.Errorf("template %s/%s not found for language %q or default %q",
			domain, name, lang, p.defaultLanguage)
	}

	return substitute(tpl, subs), nil
}

// DetectLanguage guesses the language of text, returning the default
// language when detection is unreliable or the language has no bundle.
func (p *Parser) DetectLanguage(text string) string {
	if strings.TrimSpace(text) == "" {
		return p.defaultLanguage
	}
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return p.defaultLanguage
	}
	code := info.Lang.Iso6391()
	if code == "" {
		return p.defaultLanguage
	}
	if _, ok := locales[code]; !ok {
		return p.defaultLanguage
	}
	return code
}

func lookup(lang, domain, name string) (string, bool) {
	domains, ok := locales[lang]
	if !ok {
		return "", false
	}
	tpls, ok := domains[domain]
	if !ok {
		return "", false
	}
	tpl, ok := tpls[name]
	return tpl, ok
}

// substitute expands $name and ${name} placeholders, leaving unknown ones
// in place.
func substitute(tpl string, subs map[string]string) string {
	if len(subs) == 0 {
		return tpl
	}
	expand := func(key string) string {
		if v, ok := subs[key]; ok {
			return v
		}
		return "$" + key
	}
	return expandPlaceholders(tpl, expand)
}

// expandPlaceholders mirrors os.Expand but never treats a lone "$" as a
// placeholder start unless followed by a letter, digit or brace.
func expandPlaceholders(s string, mapping func(string) string) string {
	var buf strings.Builder
	buf.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '$' || i+1 >= len(s) {
			buf.WriteByte(s[i])
			continue
		}
		name, width := parsePlaceholder(s[i+1:])
		if width == 0 {
			buf.WriteByte(s[i])
			continue
		}
		buf.WriteString(mapping(name))
		i += width
	}
	return buf.String()
}

func parsePlaceholder(s string) (string, int) {
	if s == "" {
		return "", 0
	}
	if s[0] == '{' {
		for j := 1; j < len(s); j++ {
			if s[j] == '}' {
				return s[1:j], j + 1
			}
		}
		return "", 0
	}
	j := 0
	for j < len(s) && (isAlphaNum(s[j]) || s[j] == '_') {
		j++
	}
	return s[:j], j
}

func isAlphaNum(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
