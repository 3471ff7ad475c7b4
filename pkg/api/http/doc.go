// Package http provides the relay's plain HTTP surface.
//
// The HTTP server exposes:
//   - Health checks (including upstream reachability)
//   - A descriptive root endpoint
//   - Prometheus metrics
//   - The WebSocket upgrade endpoint
package http
