package enrichment

import (
	"regexp"
	"strings"
)

var promptVariable = regexp.MustCompile(`\{\{\s*([a-z_]+)\s*\}\}`)

// fieldSource is any record exposing named string fields; the CRM record
// types all qualify.
type fieldSource interface {
	Field(name string) (string, bool)
}

// RenderPrompt substitutes {{variable}} placeholders with the record's field
// values. Unknown variables render as empty strings so a template written for
// one column set degrades instead of erroring.
func RenderPrompt(template string, rec fieldSource) string {
	return promptVariable.ReplaceAllStringFunc(template, func(match string) string {
		name := promptVariable.FindStringSubmatch(match)[1]
		value, ok := rec.Field(name)
		if !ok {
			return ""
		}
		return strings.TrimSpace(value)
	})
}
