// Package autostart registers the clock to launch at login.
package autostart
