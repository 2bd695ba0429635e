// ABOUTME: Audio output package implementing the playback sink boundary
// ABOUTME: Provides the oto device sink, a device-less Null sink and the PCM Stream reader
// Package output connects a playback.Generator to an audio device.
//
// Devices pull audio: the oto player reads from a Stream on its own goroutine and the
// Stream asks the generator for exactly as many frames as the device wants, encoding
// them to the negotiated sample format. Nothing on that path blocks or allocates.
//
// Example:
//
//	sink, err := output.NewOto(audio.Format{SampleRate: 48000, Channels: 2}, output.OtoConfig{})
//	engine, err := playback.New(src, sink)
package output
