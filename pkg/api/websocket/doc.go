// Package websocket implements the relay's client-facing event API.
//
// Browser clients connect to /ws and exchange relay.Envelope messages. Each
// inbound event maps to one Face API call and one terminal response or error
// event back to the sender; register-face and delete-face additionally
// broadcast a state-change event to every open connection.
package websocket
