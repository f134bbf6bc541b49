// Package alarm contains the core domain types of the time-signal alarms.
//
// It defines Entry (an hour:minute pair), the validation rules applied to
// user input, the display ordering, and Actor (who changed the alarm list)
// with Clone helpers to avoid leaking internal references.
package alarm
