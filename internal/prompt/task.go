package prompt

import (
	"fmt"
	"strings"
)

// TaskKind names one document-writing task.
type TaskKind string

const (
	TaskOutline          TaskKind = "outline"
	TaskAbstract         TaskKind = "abstract"
	TaskSection          TaskKind = "section"
	TaskLiteratureReview TaskKind = "literature_review"
	TaskKeyPoints        TaskKind = "key_points"
)

// TaskKinds lists every supported task in a stable order.
var TaskKinds = []TaskKind{TaskOutline, TaskAbstract, TaskSection, TaskLiteratureReview, TaskKeyPoints}

// SectionNames is the fixed order of sections in a full paper.
var SectionNames = []string{
	"Introduction",
	"Literature Review",
	"Methodology",
	"Results and Discussion",
	"Conclusion",
}

// ParseTaskKind accepts the canonical names plus case, space and hyphen variants
// ("Literature Review", "key-points").
func ParseTaskKind(s string) (TaskKind, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	switch norm {
	case "outline":
		return TaskOutline, nil
	case "abstract":
		return TaskAbstract, nil
	case "section":
		return TaskSection, nil
	case "literature_review", "review", "lit_review":
		return TaskLiteratureReview, nil
	case "key_points", "keypoints":
		return TaskKeyPoints, nil
	}
	return "", fmt.Errorf("unknown task kind: %q", s)
}

func (k TaskKind) valid() bool {
	for _, t := range TaskKinds {
		if t == k {
			return true
		}
	}
	return false
}
