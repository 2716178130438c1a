// Package naming turns model identifiers into Go identifiers for generated code.
package naming

import (
	"go/token"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English, cases.NoLower)

// initialisms are upper-cased as a whole when they form a complete word.
var initialisms = map[string]string{
	"api":  "API",
	"http": "HTTP",
	"id":   "ID",
	"ids":  "IDs",
	"json": "JSON",
	"uri":  "URI",
	"url":  "URL",
	"uuid": "UUID",
}

// words splits an identifier on separators and lower-to-upper case transitions.
func words(s string) []string {
	var out []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			out = append(out, string(cur))
			cur = cur[:0]
		}
	}
	runes := []rune(strings.TrimSpace(s))
	for i, r := range runes {
		switch {
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			flush()
		case unicode.IsUpper(r) && len(cur) > 0:
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
	}
	flush()
	return out
}

// TypeName returns the exported Go type name for a model name,
// e.g. "get-widget" -> "GetWidget", "widget_id" -> "WidgetID".
func TypeName(s string) string {
	var b strings.Builder
	for _, w := range words(s) {
		if up, ok := initialisms[strings.ToLower(w)]; ok {
			b.WriteString(up)
			continue
		}
		b.WriteString(titleCaser.String(w))
	}
	out := b.String()
	if out == "" {
		return "Unnamed"
	}
	if unicode.IsDigit([]rune(out)[0]) {
		out = "T" + out
	}
	return out
}

// FieldName is the exported struct field name for a member.
func FieldName(member string) string {
	return TypeName(member)
}

// VariableName returns a lower camel case identifier that is safe to use as a
// Go local variable or parameter.
func VariableName(s string) string {
	ws := words(s)
	if len(ws) == 0 {
		return "value"
	}
	var b strings.Builder
	for i, w := range ws {
		lower := strings.ToLower(w)
		if i == 0 {
			b.WriteString(lower)
			continue
		}
		if up, ok := initialisms[lower]; ok {
			b.WriteString(up)
			continue
		}
		b.WriteString(titleCaser.String(lower))
	}
	out := b.String()
	if unicode.IsDigit([]rune(out)[0]) {
		out = "v" + out
	}
	if token.IsKeyword(out) {
		out += "Value"
	}
	return out
}

// PackageName returns a lowercase Go package name built from the given parts,
// e.g. ("Widget", "Model") -> "widgetmodel".
func PackageName(parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		for _, r := range strings.ToLower(p) {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
				b.WriteRune(r)
			}
		}
	}
	out := b.String()
	if out == "" {
		return "service"
	}
	if out[0] >= '0' && out[0] <= '9' {
		out = "p" + out
	}
	if token.IsKeyword(out) {
		out += "pkg"
	}
	return out
}

// FileName returns a snake_case Go file name stem, e.g. "CreateWidget" -> "create_widget".
func FileName(s string) string {
	ws := words(s)
	for i := range ws {
		ws[i] = strings.ToLower(ws[i])
	}
	if len(ws) == 0 {
		return "unnamed"
	}
	return strings.Join(ws, "_")
}

// ErrorName is the identifier suffix used for an error identity constant,
// e.g. "ValidationError" -> "ValidationError", "not_found" -> "NotFound".
func ErrorName(errorType string) string {
	return TypeName(errorType)
}
