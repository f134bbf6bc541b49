// Package clock wires the flip engine and the alarm scheduler to a single
// one-second tick and runs the clock process: the terminal display or the
// headless loop, plus the gRPC and HTTP control surfaces.
package clock
