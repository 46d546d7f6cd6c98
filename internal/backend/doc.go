// Package backend provides the text-generation backends and the shared model
// handle. It is structured into small files by concern:
//
//   - backend.go: TextGenerationBackend interface, SamplingConfig, Kind.
//   - errors.go: ModelUnavailableError, GenerationError, BusyError and Is helpers.
//   - handle.go: Handle, lazy construction, admission queue, status.
//   - factory.go: Options and New, selecting a variant by Kind.
//   - remote.go: hosted inference API variant (JSON over HTTPS, bearer token).
//   - llamaserver.go: llama.cpp server variant (/v1/completions, SSE stream).
//   - mock.go: deterministic offline variant.
//   - metrics.go: Prometheus collectors.
//
// Build tags and runtimes:
//
//   - In-process llama: uses the go-llama.cpp binding, enabled with
//     `-tags=llama`. Files: llama.go, llama_cgo.go (linker rpath hints).
//     Without the tag, llama_stub.go makes NewLlama fail with
//     ModelUnavailableError so default builds stay CGO-free.
package backend
