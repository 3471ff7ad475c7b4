// Package upstream provides the HTTP client for the Face API.
//
// The Face API performs face detection, encoding, matching and RAG-based
// question answering. The relay never implements any of that itself; this
// package is a thin, context-aware JSON client with one method per endpoint.
package upstream
