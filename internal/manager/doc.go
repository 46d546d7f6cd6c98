// Package manager coordinates the shared model handle and the paper
// assistant behind the HTTP API. It is structured into small files by concern:
//
//   - manager.go: Manager type, ManagerConfig and constructor.
//   - ops.go: generation entry points (Generate, GeneratePaper).
//   - status_report.go: Ready, Status and ListModels reporting.
//
// External packages should treat this package as the orchestration layer and
// use public methods only.
package manager
