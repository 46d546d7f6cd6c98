package main

// General API documentation for swaggo. The generated document lives in
// internal/httpapi/docs.go.
//
// @title           paperd API
// @version         1.0
// @description     HTTP API for drafting research papers with a language model.
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
