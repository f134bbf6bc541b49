// Package alarms implements persistence for the time-signal alarm list.
//
// The FileRepository stores the list as a single JSON array of
// [hour, minute] pairs and exposes a Repository interface that the
// scheduler depends on.
package alarms
