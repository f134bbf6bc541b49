// Package rest exposes the clock and its alarm list over a small JSON API
// for browser front-ends. It is a thin layer over the same service the gRPC
// control endpoint uses.
package rest
