package manager

import (
	"context"

	"paperd/internal/paper"
	"paperd/internal/prompt"
)

// Generate runs one single-shot task. Fields must already be validated.
func (m *Manager) Generate(ctx context.Context, kind prompt.TaskKind, f prompt.Fields) (*paper.Document, error) {
	return m.assistant.Generate(ctx, kind, f)
}

// GeneratePaper drafts all sections of a paper.
func (m *Manager) GeneratePaper(ctx context.Context, req paper.PaperRequest) (*paper.Document, error) {
	return m.assistant.GenerateFullPaper(ctx, req)
}
