// Package paper drives the generation backend for each writing task and
// assembles multi-section papers.
package paper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"paperd/internal/backend"
	"paperd/internal/prompt"
)

var tracer = otel.Tracer("paperd/paper")

// Options configures an Assistant.
type Options struct {
	// Sampling overrides the default sampling parameters per task.
	Sampling Overrides
	// Concurrency bounds parallel section generation. Values <= 1 generate
	// sections one after another.
	Concurrency int
	// KeepPrompt returns generated text as produced, including any echoed
	// prompt prefix.
	KeepPrompt bool
	Logger     zerolog.Logger
}

// Assistant renders prompts and runs them through a backend.
type Assistant struct {
	backend     backend.TextGenerationBackend
	profiles    Profiles
	concurrency int
	keepPrompt  bool
	log         zerolog.Logger
}

// NewAssistant returns an Assistant bound to b.
func NewAssistant(b backend.TextGenerationBackend, opts Options) *Assistant {
	n := opts.Concurrency
	if n < 1 {
		n = 1
	}
	if n > len(prompt.SectionNames) {
		n = len(prompt.SectionNames)
	}
	return &Assistant{
		backend:     b,
		profiles:    DefaultProfiles().Merge(opts.Sampling),
		concurrency: n,
		keepPrompt:  opts.KeepPrompt,
		log:         opts.Logger,
	}
}

// Profiles returns the effective sampling profiles.
func (a *Assistant) Profiles() Profiles { return a.profiles.Merge(nil) }

// Generate renders the template for kind with f and returns a single-shot
// document. Fields are not validated here.
func (a *Assistant) Generate(ctx context.Context, kind prompt.TaskKind, f prompt.Fields) (*Document, error) {
	text, err := a.run(ctx, kind, f)
	if err != nil {
		return nil, err
	}
	doc := newDocument(string(kind))
	doc.FullText = text
	return doc, nil
}

// GenerateOutline drafts an outline for topic.
func (a *Assistant) GenerateOutline(ctx context.Context, topic, keywords string) (string, error) {
	return a.run(ctx, prompt.TaskOutline, prompt.Fields{Topic: topic, Keywords: keywords})
}

// GenerateAbstract drafts an abstract from newline-separated key points.
func (a *Assistant) GenerateAbstract(ctx context.Context, topic, keyPoints string) (string, error) {
	return a.run(ctx, prompt.TaskAbstract, prompt.Fields{Topic: topic, KeyPoints: keyPoints})
}

// GenerateSection drafts one named section.
func (a *Assistant) GenerateSection(ctx context.Context, section string, req PaperRequest) (string, error) {
	return a.run(ctx, prompt.TaskSection, req.fields(section))
}

// GenerateLiteratureReview drafts a review from newline-separated paper summaries.
func (a *Assistant) GenerateLiteratureReview(ctx context.Context, topic, papers string) (string, error) {
	return a.run(ctx, prompt.TaskLiteratureReview, prompt.Fields{Topic: topic, Papers: papers})
}

// GenerateKeyPoints extracts key points from raw text.
func (a *Assistant) GenerateKeyPoints(ctx context.Context, text string) (string, error) {
	return a.run(ctx, prompt.TaskKeyPoints, prompt.Fields{RawText: text})
}

func (a *Assistant) run(ctx context.Context, kind prompt.TaskKind, f prompt.Fields) (string, error) {
	ctx, span := tracer.Start(ctx, "paper."+string(kind), trace.WithAttributes(
		attribute.String("paper.task", string(kind)),
		attribute.String("paper.backend", a.backend.Name()),
	))
	defer span.End()
	if f.SectionName != "" {
		span.SetAttributes(attribute.String("paper.section", f.SectionName))
	}

	p, err := prompt.Render(kind, f)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	sampling := a.profiles.For(kind)
	start := time.Now()
	out, err := a.backend.Generate(ctx, p, sampling)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	if !a.keepPrompt {
		out = StripPrompt(out, p)
	}
	span.SetAttributes(attribute.Int("paper.output_len", len(out)))
	a.log.Debug().Str("task", string(kind)).Str("section", f.SectionName).Int("max_length", sampling.MaxLength).
		Int("output_len", len(out)).Dur("dur", time.Since(start)).Msg("task generated")
	return out, nil
}

// StripPrompt removes a leading copy of p from out and trims surrounding
// whitespace.
func StripPrompt(out, p string) string {
	if p != "" && strings.HasPrefix(out, p) {
		out = out[len(p):]
	}
	return strings.TrimSpace(out)
}

// sectionError names the section whose generation failed.
func sectionError(name string, err error) error {
	return fmt.Errorf("section %q: %w", name, err)
}
