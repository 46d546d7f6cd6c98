package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"paperd/internal/paper"
	"paperd/internal/prompt"
	"paperd/pkg/types"
)

type mockService struct {
	models   []types.Model
	status   types.StatusResponse
	ready    bool
	genErr   error
	gotKind  prompt.TaskKind
	gotField prompt.Fields
	gotPaper paper.PaperRequest
}

func (m *mockService) ListModels() []types.Model    { return append([]types.Model(nil), m.models...) }
func (m *mockService) Status() types.StatusResponse { return m.status }
func (m *mockService) Ready() bool                  { return m.ready }
func (m *mockService) Generate(ctx context.Context, kind prompt.TaskKind, f prompt.Fields) (*paper.Document, error) {
	m.gotKind, m.gotField = kind, f
	if m.genErr != nil {
		return nil, m.genErr
	}
	return &paper.Document{ID: "doc-1", Kind: string(kind), FullText: "generated " + string(kind)}, nil
}
func (m *mockService) GeneratePaper(ctx context.Context, req paper.PaperRequest) (*paper.Document, error) {
	m.gotPaper = req
	if m.genErr != nil {
		return nil, m.genErr
	}
	doc := &paper.Document{ID: "doc-2", Kind: paper.KindPaper}
	for _, name := range prompt.SectionNames {
		doc.Sections = append(doc.Sections, paper.Section{Name: name, Text: "text of " + name})
	}
	doc.FullText = paper.AssembleFullText(doc.Sections)
	return doc, nil
}

func postJSON(h http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestModelsHandler(t *testing.T) {
	svc := &mockService{models: []types.Model{{ID: "m1"}, {ID: "m2"}}}
	r := NewMux(svc)
	req := httptest.NewRequest(http.MethodGet, "/models", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("content-type=%s", ct)
	}
	var body map[string][]types.Model
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(body["models"]) != 2 {
		t.Fatalf("models len=%d", len(body["models"]))
	}
}

func TestStatusHandler(t *testing.T) {
	svc := &mockService{status: types.StatusResponse{UptimeSeconds: 10, Backend: types.BackendStatus{Backend: "mock", State: "ready"}}}
	r := NewMux(svc)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/status", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var body types.StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.UptimeSeconds != 10 || body.Backend.State != "ready" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestReadyz(t *testing.T) {
	svc := &mockService{ready: true}
	r := NewMux(svc)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestReadyz_NotReady(t *testing.T) {
	svc := &mockService{ready: false}
	r := NewMux(svc)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "loading") {
		t.Fatalf("body=%q", w.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	r := NewMux(&mockService{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestTaskEndpoints(t *testing.T) {
	cases := []struct {
		path string
		body string
		kind prompt.TaskKind
		want prompt.Fields
	}{
		{"/v1/outline", `{"topic":"Deep Learning in Healthcare","keywords":"medical imaging, CNN"}`, prompt.TaskOutline,
			prompt.Fields{Topic: "Deep Learning in Healthcare", Keywords: "medical imaging, CNN"}},
		{"/v1/abstract", `{"topic":"t","key_points":"a\nb"}`, prompt.TaskAbstract, prompt.Fields{Topic: "t", KeyPoints: "a\nb"}},
		{"/v1/section", `{"section":"Methodology","topic":"t","title":"T","keywords":"k","instructions":"i"}`, prompt.TaskSection,
			prompt.Fields{SectionName: "Methodology", Topic: "t", Title: "T", Keywords: "k", Instructions: "i"}},
		{"/v1/literature-review", `{"topic":"t","papers":"p1\np2"}`, prompt.TaskLiteratureReview, prompt.Fields{Topic: "t", Papers: "p1\np2"}},
		{"/v1/key-points", `{"text":"raw body"}`, prompt.TaskKeyPoints, prompt.Fields{RawText: "raw body"}},
	}
	for _, tc := range cases {
		svc := &mockService{}
		w := postJSON(NewMux(svc), tc.path, tc.body)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: status=%d body=%s", tc.path, w.Code, w.Body.String())
		}
		if svc.gotKind != tc.kind || svc.gotField != tc.want {
			t.Fatalf("%s: got kind=%s fields=%+v", tc.path, svc.gotKind, svc.gotField)
		}
		var resp types.TextResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("%s: json: %v", tc.path, err)
		}
		if resp.ID != "doc-1" || resp.Kind != string(tc.kind) || resp.Text != "generated "+string(tc.kind) {
			t.Fatalf("%s: unexpected response %+v", tc.path, resp)
		}
	}
}

func TestValidationReportsMissingFields(t *testing.T) {
	svc := &mockService{}
	w := postJSON(NewMux(svc), "/v1/abstract", `{"topic":"  "}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
	var resp types.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(resp.Missing) != 2 || resp.Missing[0] != "topic" || resp.Missing[1] != "key_points" {
		t.Fatalf("missing=%v", resp.Missing)
	}
	if svc.gotKind != "" {
		t.Fatalf("service should not be called on validation failure")
	}

	w = postJSON(NewMux(svc), "/v1/paper", `{"title":"x"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("paper status=%d", w.Code)
	}
}

func TestPaperJSON(t *testing.T) {
	svc := &mockService{}
	w := postJSON(NewMux(svc), "/v1/paper", `{"topic":"Robotics","title":"T","keywords":"rl","instructions":"brief"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if svc.gotPaper.Topic != "Robotics" || svc.gotPaper.Instructions != "brief" {
		t.Fatalf("unexpected request: %+v", svc.gotPaper)
	}
	var resp types.PaperResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(resp.Sections) != 5 || resp.Sections[0].Name != "Introduction" || resp.Sections[4].Name != "Conclusion" {
		t.Fatalf("unexpected sections: %+v", resp.Sections)
	}
	if !strings.HasPrefix(resp.FullText, "\n\n## Introduction\ntext of Introduction") {
		t.Fatalf("unexpected full text: %q", resp.FullText)
	}
}

func TestPaperTextDownload(t *testing.T) {
	w := postJSON(NewMux(&mockService{}), "/v1/paper?format=text", `{"topic":"Robotics"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("content-type=%s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); cd != `attachment; filename="research_paper.txt"` {
		t.Fatalf("content-disposition=%s", cd)
	}
	if !strings.Contains(w.Body.String(), "## Conclusion\ntext of Conclusion") {
		t.Fatalf("body=%q", w.Body.String())
	}

	w = postJSON(NewMux(&mockService{}), "/v1/paper?format=pdf", `{"topic":"Robotics"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown format, got %d", w.Code)
	}
}

func TestBadJSON(t *testing.T) {
	w := postJSON(NewMux(&mockService{}), "/v1/outline", "not-json")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestUnsupportedMediaType(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/outline", bytes.NewBufferString(`{"topic":"x"}`))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	NewMux(&mockService{}).ServeHTTP(w, req)
	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestBodyTooLarge(t *testing.T) {
	big := `{"text":"` + strings.Repeat("a", (1<<20)+10) + `"}`
	w := postJSON(NewMux(&mockService{}), "/v1/key-points", big)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for too-large body, got %d", w.Code)
	}
}

func TestContentTypeCaseInsensitive(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/outline", bytes.NewBufferString(`{"topic":"x"}`))
	req.Header.Set("Content-Type", "Application/JSON; charset=utf-8")
	w := httptest.NewRecorder()
	NewMux(&mockService{}).ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with mixed-case content-type, got %d", w.Code)
	}
}

// blockService blocks until the context is done; used to exercise the timeout path.
type blockService struct{ mockService }

func (b *blockService) Generate(ctx context.Context, kind prompt.TaskKind, f prompt.Fields) (*paper.Document, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestRequestTimeoutReturns504(t *testing.T) {
	defer SetRequestTimeout(0)
	SetRequestTimeout(50 * time.Millisecond)

	w := postJSON(NewMux(&blockService{}), "/v1/outline", `{"topic":"x"}`)
	if w.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504 on timeout, got %d", w.Code)
	}
}
