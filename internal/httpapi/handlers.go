package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"paperd/internal/paper"
	"paperd/internal/prompt"
	"paperd/pkg/types"
)

// DownloadName is the attachment file name for plain-text papers.
const DownloadName = "research_paper.txt"

type handlers struct {
	svc Service
}

// decodeJSON enforces the content type and body limit and decodes into dst.
// It writes the error response and returns false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		// Oversized bodies are reported as invalid JSON too, without size details.
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// outline godoc
// @Summary  Draft a research paper outline
// @Tags     generate
// @Accept   json
// @Produce  json
// @Param    body  body      types.OutlineRequest  true  "Outline request"
// @Success  200   {object}  types.TextResponse
// @Failure  400   {object}  types.ErrorResponse
// @Failure  429   {object}  types.ErrorResponse
// @Failure  503   {object}  types.ErrorResponse
// @Router   /v1/outline [post]
func (h *handlers) outline(w http.ResponseWriter, r *http.Request) {
	var req types.OutlineRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.runTask(w, r, prompt.TaskOutline, prompt.Fields{Topic: req.Topic, Keywords: req.Keywords})
}

// abstract godoc
// @Summary  Draft an abstract from key points
// @Tags     generate
// @Accept   json
// @Produce  json
// @Param    body  body      types.AbstractRequest  true  "Abstract request"
// @Success  200   {object}  types.TextResponse
// @Failure  400   {object}  types.ErrorResponse
// @Router   /v1/abstract [post]
func (h *handlers) abstract(w http.ResponseWriter, r *http.Request) {
	var req types.AbstractRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.runTask(w, r, prompt.TaskAbstract, prompt.Fields{Topic: req.Topic, KeyPoints: req.KeyPoints})
}

// section godoc
// @Summary  Draft one paper section
// @Tags     generate
// @Accept   json
// @Produce  json
// @Param    body  body      types.SectionRequest  true  "Section request"
// @Success  200   {object}  types.TextResponse
// @Failure  400   {object}  types.ErrorResponse
// @Router   /v1/section [post]
func (h *handlers) section(w http.ResponseWriter, r *http.Request) {
	var req types.SectionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.runTask(w, r, prompt.TaskSection, prompt.Fields{
		SectionName:  req.Section,
		Topic:        req.Topic,
		Title:        req.Title,
		Keywords:     req.Keywords,
		Instructions: req.Instructions,
	})
}

// literatureReview godoc
// @Summary  Draft a literature review from paper summaries
// @Tags     generate
// @Accept   json
// @Produce  json
// @Param    body  body      types.LiteratureReviewRequest  true  "Literature review request"
// @Success  200   {object}  types.TextResponse
// @Failure  400   {object}  types.ErrorResponse
// @Router   /v1/literature-review [post]
func (h *handlers) literatureReview(w http.ResponseWriter, r *http.Request) {
	var req types.LiteratureReviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.runTask(w, r, prompt.TaskLiteratureReview, prompt.Fields{Topic: req.Topic, Papers: req.Papers})
}

// keyPoints godoc
// @Summary  Extract key points from text
// @Tags     generate
// @Accept   json
// @Produce  json
// @Param    body  body      types.KeyPointsRequest  true  "Key points request"
// @Success  200   {object}  types.TextResponse
// @Failure  400   {object}  types.ErrorResponse
// @Router   /v1/key-points [post]
func (h *handlers) keyPoints(w http.ResponseWriter, r *http.Request) {
	var req types.KeyPointsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.runTask(w, r, prompt.TaskKeyPoints, prompt.Fields{RawText: req.Text})
}

func (h *handlers) runTask(w http.ResponseWriter, r *http.Request, kind prompt.TaskKind, f prompt.Fields) {
	if err := prompt.Validate(kind, f); err != nil {
		writeError(w, err)
		return
	}
	lvl := requestLogLevel(r)
	start := time.Now()
	logStart(r, lvl, string(kind))

	ctx, cancel := requestContext(r)
	defer cancel()
	doc, err := h.svc.Generate(ctx, kind, f)
	if err != nil {
		h.fail(w, r, lvl, string(kind), start, err)
		return
	}
	logEnd(r, lvl, string(kind), http.StatusOK, start, len(doc.FullText), nil)
	writeJSON(w, http.StatusOK, types.TextResponse{ID: doc.ID, Kind: doc.Kind, Text: doc.FullText})
}

// paper godoc
// @Summary  Draft a full five-section paper
// @Tags     generate
// @Accept   json
// @Produce  json,plain
// @Param    body    body      types.PaperRequest  true   "Paper request"
// @Param    format  query     string              false  "json (default) or text"
// @Success  200     {object}  types.PaperResponse
// @Failure  400     {object}  types.ErrorResponse
// @Failure  502     {object}  types.ErrorResponse
// @Router   /v1/paper [post]
func (h *handlers) paper(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	switch format {
	case "", "json", "text", "txt":
	default:
		writeJSONError(w, http.StatusBadRequest, "format must be json or text")
		return
	}
	var req types.PaperRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		writeError(w, &prompt.ValidationError{Kind: paper.KindPaper, Missing: []string{prompt.FieldTopic}})
		return
	}
	lvl := requestLogLevel(r)
	start := time.Now()
	logStart(r, lvl, paper.KindPaper)

	ctx, cancel := requestContext(r)
	defer cancel()
	doc, err := h.svc.GeneratePaper(ctx, paper.PaperRequest{
		Topic:        req.Topic,
		Title:        req.Title,
		Keywords:     req.Keywords,
		Instructions: req.Instructions,
	})
	if err != nil {
		h.fail(w, r, lvl, paper.KindPaper, start, err)
		return
	}
	logEnd(r, lvl, paper.KindPaper, http.StatusOK, start, len(doc.FullText), nil)

	if format == "text" || format == "txt" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+DownloadName+`"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(doc.FullText))
		return
	}
	resp := types.PaperResponse{ID: doc.ID, Kind: doc.Kind, FullText: doc.FullText}
	for _, s := range doc.Sections {
		resp.Sections = append(resp.Sections, types.SectionText{Name: s.Name, Text: s.Text})
	}
	writeJSON(w, http.StatusOK, resp)
}

// fail writes the mapped error unless the client or server has gone away.
func (h *handlers) fail(w http.ResponseWriter, r *http.Request, lvl LogLevel, task string, start time.Time, err error) {
	if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
		logEnd(r, lvl, task, 499, start, 0, err)
		return
	}
	status := writeError(w, err)
	logEnd(r, lvl, task, status, start, 0, err)
}
