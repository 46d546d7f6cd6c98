package paper

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"paperd/internal/backend"
	"paperd/internal/prompt"
)

type mockBackend struct{ mock.Mock }

func (m *mockBackend) Generate(ctx context.Context, p string, s backend.SamplingConfig) (string, error) {
	args := m.Called(ctx, p, s)
	return args.String(0), args.Error(1)
}
func (m *mockBackend) Name() string { return "mock" }
func (m *mockBackend) Close() error { return nil }

func sectionPrompt(name string) interface{} {
	return mock.MatchedBy(func(p string) bool {
		return strings.HasPrefix(p, "Write the "+name+" section")
	})
}

var req = PaperRequest{Topic: "Deep Learning in Healthcare", Title: "Advances", Keywords: "medical imaging, CNN"}

func TestGenerateFullPaper_OrderAndAssembly(t *testing.T) {
	var progress []string
	r := req
	r.Progress = func(section string, done, total int) {
		assert.Equal(t, 5, total)
		progress = append(progress, section)
	}
	a := NewAssistant(backend.NewMock(backend.MockOptions{}), Options{})
	doc, err := a.GenerateFullPaper(context.Background(), r)
	require.NoError(t, err)

	require.Len(t, doc.Sections, 5)
	for i, name := range prompt.SectionNames {
		assert.Equal(t, name, doc.Sections[i].Name)
		assert.Equal(t, "Mock "+strings.ToLower(name)+" generated for this prompt.", doc.Sections[i].Text)
	}
	assert.Equal(t, prompt.SectionNames, progress)
	assert.Equal(t, KindPaper, doc.Kind)
	assert.NotEmpty(t, doc.ID)
	assert.True(t, strings.HasPrefix(doc.FullText, "\n\n## Introduction\nMock introduction"))
	assert.Equal(t, doc.FullText, doc.Reconstruct())
	assert.Equal(t, doc.FullText, AssembleFullText(doc.Sections))
}

func TestGenerateFullPaper_FailFast(t *testing.T) {
	m := &mockBackend{}
	boom := &backend.GenerationError{Backend: "mock", Err: errors.New("boom")}
	m.On("Generate", mock.Anything, sectionPrompt("Methodology"), mock.Anything).Return("", boom)
	m.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return("text", nil)

	a := NewAssistant(m, Options{})
	doc, err := a.GenerateFullPaper(context.Background(), req)
	require.Error(t, err)
	assert.Nil(t, doc)
	assert.Contains(t, err.Error(), "Methodology")
	assert.True(t, backend.IsGeneration(err))
	m.AssertNumberOfCalls(t, "Generate", 3)
	m.AssertNotCalled(t, "Generate", mock.Anything, sectionPrompt("Results and Discussion"), mock.Anything)
	m.AssertNotCalled(t, "Generate", mock.Anything, sectionPrompt("Conclusion"), mock.Anything)
}

// delayBackend answers later sections faster so completion order is reversed.
type delayBackend struct {
	mu      sync.Mutex
	active  int
	maxSeen int
	failOn  string
}

func (d *delayBackend) Name() string { return "delay" }
func (d *delayBackend) Close() error { return nil }
func (d *delayBackend) Generate(ctx context.Context, p string, s backend.SamplingConfig) (string, error) {
	d.mu.Lock()
	d.active++
	if d.active > d.maxSeen {
		d.maxSeen = d.active
	}
	d.mu.Unlock()
	defer func() { d.mu.Lock(); d.active--; d.mu.Unlock() }()

	for i, name := range prompt.SectionNames {
		if strings.HasPrefix(p, "Write the "+name+" section") {
			if name == d.failOn {
				return "", errors.New("failed")
			}
			select {
			case <-time.After(time.Duration(len(prompt.SectionNames)-i) * 10 * time.Millisecond):
			case <-ctx.Done():
				return "", ctx.Err()
			}
			return "text of " + name, nil
		}
	}
	return "", errors.New("unexpected prompt")
}

func TestGenerateFullPaper_ParallelKeepsOrder(t *testing.T) {
	d := &delayBackend{}
	var calls int
	r := req
	r.Progress = func(string, int, int) { calls++ }
	a := NewAssistant(d, Options{Concurrency: 3})
	doc, err := a.GenerateFullPaper(context.Background(), r)
	require.NoError(t, err)
	for i, name := range prompt.SectionNames {
		assert.Equal(t, name, doc.Sections[i].Name)
		assert.Equal(t, "text of "+name, doc.Sections[i].Text)
	}
	assert.Equal(t, doc.FullText, doc.Reconstruct())
	assert.Equal(t, 5, calls)
	assert.LessOrEqual(t, d.maxSeen, 3)
	assert.Greater(t, d.maxSeen, 1)
}

func TestGenerateFullPaper_ParallelFailure(t *testing.T) {
	a := NewAssistant(&delayBackend{failOn: "Methodology"}, Options{Concurrency: 5})
	doc, err := a.GenerateFullPaper(context.Background(), req)
	require.Error(t, err)
	assert.Nil(t, doc)
	assert.Contains(t, err.Error(), "Methodology")
}

func TestTasks_UseProfiles(t *testing.T) {
	m := &mockBackend{}
	want := map[string]int{"Outline:": 1000, "Abstract:": 300, "Literature Review:": 1000, "Key Points:": 300}
	for suffix, n := range want {
		suffix, n := suffix, n
		m.On("Generate", mock.Anything,
			mock.MatchedBy(func(p string) bool { return strings.HasSuffix(p, suffix) }),
			mock.MatchedBy(func(s backend.SamplingConfig) bool {
				return s.MaxLength == n && s.Temperature == 0.7 && s.TopP == 0.9 && s.RepetitionPenalty == 1.2 && s.DoSample
			})).Return(" out ", nil)
	}
	a := NewAssistant(m, Options{})
	ctx := context.Background()

	out, err := a.GenerateOutline(ctx, "t", "k")
	require.NoError(t, err)
	assert.Equal(t, "out", out)
	_, err = a.GenerateAbstract(ctx, "t", "a\nb")
	require.NoError(t, err)
	_, err = a.GenerateLiteratureReview(ctx, "t", "p1")
	require.NoError(t, err)
	_, err = a.GenerateKeyPoints(ctx, "raw")
	require.NoError(t, err)
	m.AssertExpectations(t)
}

func TestGenerate_SingleShotDocument(t *testing.T) {
	a := NewAssistant(backend.NewMock(backend.MockOptions{}), Options{})
	doc, err := a.Generate(context.Background(), prompt.TaskAbstract, prompt.Fields{Topic: "t", KeyPoints: "p"})
	require.NoError(t, err)
	assert.Equal(t, "abstract", doc.Kind)
	assert.Empty(t, doc.Sections)
	assert.Equal(t, "Mock abstract generated for this prompt.", doc.FullText)
	assert.Equal(t, doc.FullText, doc.Reconstruct())

	_, err = a.Generate(context.Background(), "poem", prompt.Fields{})
	assert.Error(t, err)
}

func TestEchoedPrompt(t *testing.T) {
	b := backend.NewMock(backend.MockOptions{EchoPrompt: true})
	out, err := NewAssistant(b, Options{}).GenerateOutline(context.Background(), "t", "")
	require.NoError(t, err)
	assert.Equal(t, "Mock outline generated for this prompt.", out)

	out, err = NewAssistant(b, Options{KeepPrompt: true}).GenerateOutline(context.Background(), "t", "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Create a detailed research paper outline"))
}

func TestStripPrompt(t *testing.T) {
	assert.Equal(t, "body", StripPrompt("P:\n body \n", "P:"))
	assert.Equal(t, "other P:", StripPrompt("other P:", "P:"))
	assert.Equal(t, "x", StripPrompt(" x ", ""))
}

func TestProfilesMerge(t *testing.T) {
	maxLen, temp, greedy := 800, 0.2, false
	p := DefaultProfiles().Merge(Overrides{
		prompt.TaskSection:  {MaxLength: &maxLen},
		prompt.TaskAbstract: {Temperature: &temp, DoSample: &greedy},
	})
	assert.Equal(t, 800, p.For(prompt.TaskSection).MaxLength)
	assert.True(t, p.For(prompt.TaskSection).DoSample, "unset do_sample keeps the default")
	assert.Equal(t, 0.7, p.For(prompt.TaskSection).Temperature)
	assert.Equal(t, 0.7, p.For(prompt.TaskOutline).Temperature)
	assert.Equal(t, 0.2, p.For(prompt.TaskAbstract).Temperature)
	assert.False(t, p.For(prompt.TaskAbstract).DoSample)
	assert.Equal(t, 300, p.For(prompt.TaskAbstract).MaxLength)
	// Defaults are not mutated.
	assert.Equal(t, 600, DefaultProfiles()[prompt.TaskSection].MaxLength)
}

func TestProfilesMerge_ExplicitZeroTemperature(t *testing.T) {
	zero := 0.0
	p := DefaultProfiles().Merge(Overrides{prompt.TaskOutline: {Temperature: &zero}})
	assert.Zero(t, p.For(prompt.TaskOutline).Temperature)
	assert.True(t, p.For(prompt.TaskOutline).DoSample)
}

func TestSamplingOverrideValidate(t *testing.T) {
	neg, one := -1, 1
	assert.NoError(t, SamplingOverride{}.Validate())
	assert.NoError(t, SamplingOverride{MaxLength: &one}.Validate())
	assert.Error(t, SamplingOverride{MaxLength: &neg}.Validate())
	assert.Error(t, SamplingOverride{NumReturnSequences: &neg}.Validate())
}

func TestGenerateFullPaper_Spans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	a := NewAssistant(backend.NewMock(backend.MockOptions{}), Options{})
	_, err := a.GenerateFullPaper(context.Background(), req)
	require.NoError(t, err)

	names := map[string]int{}
	for _, s := range sr.Ended() {
		names[s.Name()]++
	}
	assert.Equal(t, 1, names["paper.full"])
	assert.Equal(t, 5, names["paper.section"])
}
