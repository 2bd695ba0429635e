// ABOUTME: Remote control package for the synthesizer
// ABOUTME: Exposes the playback clock, oscillator and windows over WebSocket
// Package remote serves the synthesizer's control protocol.
//
// Clients connect to /control, receive server/hello and then send
// time, shape and window requests. See pkg/protocol for the messages.
package remote
