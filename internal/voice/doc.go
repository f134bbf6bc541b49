// Package voice is a client for a VOICEVOX-compatible speech synthesis
// engine and builds the Japanese time announcement phrase.
//
// Synthesis is a two-step chain: /audio_query turns text into synthesis
// parameters, and /synthesis turns those parameters into a WAV payload.
package voice
