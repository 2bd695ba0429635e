// ABOUTME: Synth control protocol package
// ABOUTME: Defines protocol messages and WebSocket client
// Package protocol implements the synthesizer's remote control protocol.
//
// Messages are JSON envelopes with a type, an optional request ID and a
// payload. The server greets every connection with server/hello and
// answers each request with a message carrying the same ID.
//
// Example:
//
//	client, err := protocol.Dial(ctx, protocol.Config{ServerAddr: "localhost:8928"})
//	now, err := client.Seek(ctx, 0.5)
package protocol
