// Package client implements the flipclock-ctl commands.
//
// Each command connects to a running clock over gRPC, performs one alarm
// operation on behalf of the detected user and prints the resulting list.
package client
