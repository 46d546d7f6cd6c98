package paper

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"paperd/internal/prompt"
)

// ProgressFunc is called after each section completes. done counts finished
// sections out of total.
type ProgressFunc func(section string, done, total int)

// PaperRequest holds the fields shared by every section of a paper.
type PaperRequest struct {
	Topic        string
	Title        string
	Keywords     string
	Instructions string
	// Progress is optional.
	Progress ProgressFunc
}

func (r PaperRequest) fields(section string) prompt.Fields {
	return prompt.Fields{
		Topic:        r.Topic,
		Title:        r.Title,
		Keywords:     r.Keywords,
		Instructions: r.Instructions,
		SectionName:  section,
	}
}

// GenerateFullPaper drafts every section in SectionNames and assembles them
// in that order. The first failing section aborts the run and no document is
// returned.
func (a *Assistant) GenerateFullPaper(ctx context.Context, req PaperRequest) (*Document, error) {
	ctx, span := tracer.Start(ctx, "paper.full", trace.WithAttributes(
		attribute.Int("paper.sections", len(prompt.SectionNames)),
		attribute.Int("paper.concurrency", a.concurrency),
	))
	defer span.End()
	start := time.Now()

	var (
		texts []string
		err   error
	)
	if a.concurrency > 1 {
		texts, err = a.sectionsParallel(ctx, req)
	} else {
		texts, err = a.sectionsSequential(ctx, req)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		a.log.Warn().Err(err).Str("topic", req.Topic).Dur("dur", time.Since(start)).Msg("paper generation aborted")
		return nil, err
	}

	doc := newDocument(KindPaper)
	var full []byte
	for i, name := range prompt.SectionNames {
		doc.Sections = append(doc.Sections, Section{Name: name, Text: texts[i]})
		full = append(full, sectionHeader(name)...)
		full = append(full, texts[i]...)
	}
	doc.FullText = string(full)
	a.log.Info().Str("id", doc.ID).Str("topic", req.Topic).Int("len", len(doc.FullText)).Dur("dur", time.Since(start)).Msg("paper generated")
	return doc, nil
}

func (a *Assistant) sectionsSequential(ctx context.Context, req PaperRequest) ([]string, error) {
	total := len(prompt.SectionNames)
	texts := make([]string, total)
	for i, name := range prompt.SectionNames {
		text, err := a.GenerateSection(ctx, name, req)
		if err != nil {
			return nil, sectionError(name, err)
		}
		texts[i] = text
		if req.Progress != nil {
			req.Progress(name, i+1, total)
		}
	}
	return texts, nil
}

// sectionsParallel runs up to a.concurrency sections at once. Results are
// stored by index so presentation order does not depend on completion order.
func (a *Assistant) sectionsParallel(ctx context.Context, req PaperRequest) ([]string, error) {
	total := len(prompt.SectionNames)
	texts := make([]string, total)
	var (
		mu       sync.Mutex
		finished int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, name := range prompt.SectionNames {
		i, name := i, name
		g.Go(func() error {
			text, err := a.GenerateSection(gctx, name, req)
			if err != nil {
				return sectionError(name, err)
			}
			mu.Lock()
			defer mu.Unlock()
			texts[i] = text
			finished++
			if req.Progress != nil {
				req.Progress(name, finished, total)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return texts, nil
}
