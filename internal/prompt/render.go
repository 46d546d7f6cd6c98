// Package prompt renders the fixed instruction templates used for each
// document-writing task.
package prompt

import (
	"fmt"
	"strings"
	"text/template"
)

var parsed = mustParse()

func mustParse() map[TaskKind]*template.Template {
	out := make(map[TaskKind]*template.Template, len(templates))
	for kind, src := range templates {
		out[kind] = template.Must(template.New(string(kind)).Option("missingkey=error").Parse(src))
	}
	return out
}

// Render interpolates f into the template for kind. It is pure: identical
// inputs give identical output. Blank fields are substituted as-is; the only
// error is an unknown kind.
func Render(kind TaskKind, f Fields) (string, error) {
	t, ok := parsed[kind]
	if !ok {
		return "", fmt.Errorf("unknown task kind: %q", string(kind))
	}
	var b strings.Builder
	if err := t.Execute(&b, f); err != nil {
		return "", fmt.Errorf("render %s: %w", kind, err)
	}
	return b.String(), nil
}
