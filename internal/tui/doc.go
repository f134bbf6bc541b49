// Package tui renders the flip clock in a terminal.
//
// It follows the bubbletea model/update/view loop: a one-second tick message
// drives the clock core, commit messages from the flip engine trigger a
// redraw, and key presses manage the alarm list.
package tui
