// Package common holds helpers shared by the clock and its control tool.
//
// It provides a ClockControl gRPC client with per-call timeouts and a helper
// that detects the current system actor (hostname/username) for audit logs.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
