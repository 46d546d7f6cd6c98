package paper

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// KindPaper is the Document.Kind of a full multi-section paper.
const KindPaper = "paper"

// Section is one named part of a generated paper.
type Section struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// Document is the result of one generation call. Single-shot tasks have no
// Sections and carry the generated text in FullText.
type Document struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Sections  []Section `json:"sections,omitempty"`
	FullText  string    `json:"full_text"`
	CreatedAt time.Time `json:"created_at"`
}

func newDocument(kind string) *Document {
	return &Document{ID: uuid.NewString(), Kind: kind, CreatedAt: time.Now().UTC()}
}

// sectionHeader renders the separator written before each section's text.
func sectionHeader(name string) string {
	return "\n\n## " + name + "\n"
}

// AssembleFullText concatenates sections as "\n\n## {name}\n{text}" in order.
func AssembleFullText(sections []Section) string {
	var b strings.Builder
	for _, s := range sections {
		b.WriteString(sectionHeader(s.Name))
		b.WriteString(s.Text)
	}
	return b.String()
}

// Reconstruct rebuilds the full text from d.Sections. For papers it equals
// d.FullText.
func (d *Document) Reconstruct() string {
	if len(d.Sections) == 0 {
		return d.FullText
	}
	return AssembleFullText(d.Sections)
}
