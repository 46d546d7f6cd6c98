package prompt

import (
	"errors"
	"fmt"
	"strings"
)

// Fields carries the free-text inputs a template may interpolate. Unset
// fields render as the empty string.
type Fields struct {
	Topic        string `json:"topic,omitempty"`
	Keywords     string `json:"keywords,omitempty"`
	Title        string `json:"title,omitempty"`
	Instructions string `json:"instructions,omitempty"`
	RawText      string `json:"raw_text,omitempty"`
	KeyPoints    string `json:"key_points,omitempty"`
	Papers       string `json:"papers,omitempty"`
	SectionName  string `json:"section_name,omitempty"`
}

// Field names used in ValidationError.Missing, matching the JSON request keys.
const (
	FieldTopic       = "topic"
	FieldKeyPoints   = "key_points"
	FieldPapers      = "papers"
	FieldRawText     = "text"
	FieldSectionName = "section"
)

var required = map[TaskKind][]string{
	TaskOutline:          {FieldTopic},
	TaskAbstract:         {FieldTopic, FieldKeyPoints},
	TaskSection:          {FieldSectionName, FieldTopic},
	TaskLiteratureReview: {FieldTopic, FieldPapers},
	TaskKeyPoints:        {FieldRawText},
}

// RequiredFields returns the field names that must be non-blank for kind.
func RequiredFields(kind TaskKind) []string {
	return append([]string(nil), required[kind]...)
}

func (f Fields) value(name string) string {
	switch name {
	case FieldTopic:
		return f.Topic
	case FieldKeyPoints:
		return f.KeyPoints
	case FieldPapers:
		return f.Papers
	case FieldRawText:
		return f.RawText
	case FieldSectionName:
		return f.SectionName
	}
	return ""
}

// ValidationError lists the required fields that were blank.
type ValidationError struct {
	Kind    TaskKind
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: missing required field(s): %s", e.Kind, strings.Join(e.Missing, ", "))
}

// Validate checks the required fields for kind. Render does not call it;
// callers at the input boundary do.
func Validate(kind TaskKind, f Fields) error {
	if !kind.valid() {
		return fmt.Errorf("unknown task kind: %q", string(kind))
	}
	var missing []string
	for _, name := range required[kind] {
		if strings.TrimSpace(f.value(name)) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Kind: kind, Missing: missing}
	}
	return nil
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}
