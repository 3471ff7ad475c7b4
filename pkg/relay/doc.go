// Package relay defines the event vocabulary shared between the WebSocket
// API and the upstream Face API adapter.
//
// Every message on the wire is an Envelope: a named event, an optional
// request id for request/response correlation, and a JSON payload whose
// shape is fixed per event kind.
package relay
