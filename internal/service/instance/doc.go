// Package instance detects other running copies of the clock so two
// processes never fire the same alarm twice.
package instance
