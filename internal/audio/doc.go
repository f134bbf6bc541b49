// Package audio plays 16-bit PCM WAV clips through the system audio device
// and builds the default chime used when no clip is configured.
package audio
