package types

// OutlineRequest is the payload for POST /v1/outline.
type OutlineRequest struct {
	// Research topic. Required.
	Topic string `json:"topic" example:"Deep Learning in Healthcare"`
	// Comma-separated keywords.
	Keywords string `json:"keywords,omitempty" example:"medical imaging, CNN"`
}

// AbstractRequest is the payload for POST /v1/abstract.
type AbstractRequest struct {
	// Research topic. Required.
	Topic string `json:"topic" example:"Deep Learning in Healthcare"`
	// Key points, one per line. Required.
	KeyPoints string `json:"key_points" example:"CNNs detect tumors\nSmall labeled datasets"`
}

// SectionRequest is the payload for POST /v1/section.
type SectionRequest struct {
	// Section name, e.g. Introduction. Required.
	Section string `json:"section" example:"Introduction"`
	// Research topic. Required.
	Topic string `json:"topic" example:"Deep Learning in Healthcare"`
	// Paper title.
	Title string `json:"title,omitempty" example:"Advances in Deep Learning for Medical Diagnosis"`
	// Comma-separated keywords.
	Keywords string `json:"keywords,omitempty" example:"medical imaging, CNN"`
	// Additional instructions for the writer.
	Instructions string `json:"instructions,omitempty" example:"Use a formal tone."`
}

// LiteratureReviewRequest is the payload for POST /v1/literature-review.
type LiteratureReviewRequest struct {
	// Research topic. Required.
	Topic string `json:"topic" example:"Deep Learning in Healthcare"`
	// Paper summaries, one per line. Required.
	Papers string `json:"papers" example:"Smith 2020: CNNs for radiology\nLee 2021: transfer learning"`
}

// KeyPointsRequest is the payload for POST /v1/key-points.
type KeyPointsRequest struct {
	// Raw text to analyze. Required.
	Text string `json:"text" example:"Convolutional networks have improved ..."`
}

// PaperRequest is the payload for POST /v1/paper.
type PaperRequest struct {
	// Research topic. Required.
	Topic string `json:"topic" example:"Deep Learning in Healthcare"`
	// Paper title.
	Title string `json:"title,omitempty" example:"Advances in Deep Learning for Medical Diagnosis"`
	// Comma-separated keywords.
	Keywords string `json:"keywords,omitempty" example:"medical imaging, CNN"`
	// Additional instructions for the writer.
	Instructions string `json:"instructions,omitempty" example:"Use a formal tone."`
}

// TextResponse is returned by the single-shot generation endpoints.
type TextResponse struct {
	// Document identifier.
	ID string `json:"id" example:"6f1c2f8e-8a4e-4a55-9d59-0c1f3c1a2b3d"`
	// Task kind that produced the text.
	Kind string `json:"kind" example:"outline"`
	// Generated text.
	Text string `json:"text"`
}

// SectionText is one generated paper section.
type SectionText struct {
	Name string `json:"name" example:"Introduction"`
	Text string `json:"text"`
}

// PaperResponse is returned by POST /v1/paper.
type PaperResponse struct {
	ID       string        `json:"id" example:"6f1c2f8e-8a4e-4a55-9d59-0c1f3c1a2b3d"`
	Kind     string        `json:"kind" example:"paper"`
	Sections []SectionText `json:"sections"`
	// Concatenation of sections with markdown headers.
	FullText string `json:"full_text"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
	// Missing required fields, for validation errors.
	Missing []string `json:"missing,omitempty" example:"topic"`
}

// BackendStatus describes the model handle for GET /status.
type BackendStatus struct {
	// Backend variant (llama, llama-server, remote, mock).
	// example: remote
	Backend string `json:"backend" example:"remote"`
	// Configured model name or URL.
	Model string `json:"model" example:"facebook/bart-large-cnn"`
	// Lifecycle state (unloaded, loading, ready, error, closed).
	// example: ready
	State string `json:"state" example:"ready"`
	// Last load or generation error, if any.
	LastError string `json:"last_error,omitempty"`
	// Requests waiting or in flight.
	QueueLen int `json:"queue_len" example:"0"`
	// Requests currently generating.
	Inflight int `json:"inflight" example:"1"`
	// Maximum queued requests before backpressure triggers.
	MaxQueueDepth int `json:"max_queue_depth" example:"32"`
	// Last time the handle served a request (unix seconds).
	LastUsed int64 `json:"last_used_unix,omitempty" example:"1700000000"`
	// Total successful backend constructions.
	LoadsTotal uint64 `json:"loads_total" example:"1"`
	// Total generation calls.
	GenerationsTotal uint64 `json:"generations_total" example:"12"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	Backend BackendStatus `json:"backend"`
	// Uptime of the server in seconds.
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}
